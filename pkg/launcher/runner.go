package launcher

import (
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// Process is the handle the launcher keeps on a started server.
type Process interface {
	Pid() int
	Kill() error
	Wait() error
}

// CommandStarter abstracts process creation so tests run without a JVM.
type CommandStarter interface {
	Start(name string, args ...string) (Process, error)
}

type execStarter struct{}

func (execStarter) Start(name string, args ...string) (Process, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	log.Debug().Msgf("Starting command: %s %v", name, args)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &osProcess{cmd: cmd}, nil
}

type osProcess struct {
	cmd *exec.Cmd
}

func (p *osProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *osProcess) Kill() error {
	return p.cmd.Process.Kill()
}

func (p *osProcess) Wait() error {
	return p.cmd.Wait()
}
