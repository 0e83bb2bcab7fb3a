package launcher

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	httpHelper "github.com/mlservingstack/go-sdk/pkg/api/http"
	"github.com/mlservingstack/go-sdk/pkg/client/httpclient"
	"github.com/mlservingstack/go-sdk/pkg/client/serving"
	"github.com/mlservingstack/go-sdk/pkg/inference"
	"github.com/mlservingstack/go-sdk/pkg/metric"
)

const ShutdownPath = "/shutdown"

// Launcher owns one external serving server process: it writes the
// configuration file, starts the process, polls readiness and stops it.
type Launcher struct {
	conf        *Config
	servingConf *inference.InferenceConfiguration

	starter CommandStarter
	client  *serving.ClientV1

	mu         sync.Mutex
	proc       Process
	configPath string
	stopped    bool
}

type Option func(*Launcher)

// WithStarter replaces process creation, used by tests to avoid spawning a JVM.
func WithStarter(starter CommandStarter) Option {
	return func(l *Launcher) {
		l.starter = starter
	}
}

func New(conf *Config, servingConf *inference.InferenceConfiguration, opts ...Option) (*Launcher, error) {
	if err := conf.fillDefaults(); err != nil {
		return nil, err
	}
	if err := servingConf.Validate(); err != nil {
		return nil, err
	}
	l := &Launcher{
		conf:        conf,
		servingConf: servingConf,
		starter:     execStarter{},
		client: serving.NewClientV1(&serving.ClientConfig{
			Host:            conf.Host,
			Port:            servingConf.ServingConfig.HTTPPort,
			TimeoutExceedMS: conf.StartTimeoutMS,
			InputFormat:     servingConf.ServingConfig.InputDataFormat,
			OutputFormat:    servingConf.ServingConfig.OutputDataFormat,
		}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Client returns a serving client bound to the launched server's address.
func (l *Launcher) Client() serving.ServingClient {
	return l.client
}

// Start writes the configuration file and spawns the server process. It does
// not wait for readiness, see WaitUntilReady.
func (l *Launcher) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.proc != nil {
		return fmt.Errorf("server already started, pid: %d", l.proc.Pid())
	}

	configPath, err := l.writeConfigFile()
	if err != nil {
		return err
	}
	l.configPath = configPath

	proc, err := l.starter.Start(l.conf.JavaBin, "-jar", l.conf.ServerJar, "serve", "-c", configPath)
	if err != nil {
		return fmt.Errorf("failed to start serving server: %w", err)
	}
	l.proc = proc
	l.stopped = false
	metric.Incr(metric.ServerLaunchCount, []string{})
	log.Info().Msgf("Serving server started, pid: %d, config: %s", proc.Pid(), configPath)
	return nil
}

func (l *Launcher) writeConfigFile() (string, error) {
	data, err := l.servingConf.ToJSON()
	if err != nil {
		return "", err
	}
	file, err := os.CreateTemp(l.conf.ConfigDir, "serving-config-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()
	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("failed to write config file %s: %w", file.Name(), err)
	}
	return filepath.Clean(file.Name()), nil
}

// WaitUntilReady polls the healthcheck endpoint at a fixed interval until the
// server answers 2xx or the configured timeout elapses.
func (l *Launcher) WaitUntilReady(ctx context.Context) error {
	start := time.Now()
	deadline := start.Add(time.Duration(l.conf.StartTimeoutMS) * time.Millisecond)
	interval := time.Duration(l.conf.PollIntervalMS) * time.Millisecond

	var lastErr error
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = l.client.Health(ctx); lastErr == nil {
			metric.Timing(metric.ServerReadinessLatency, time.Since(start), []string{})
			log.Info().Msgf("Serving server ready after %s", time.Since(start))
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("serving server not ready after %dms: %w", l.conf.StartTimeoutMS, lastErr)
}

// Stop shuts the server down. It is idempotent, stopping an already stopped
// or never started server returns nil.
func (l *Launcher) Stop(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.proc == nil || l.stopped {
		return nil
	}

	l.requestShutdown(ctx)

	if err := l.proc.Kill(); err != nil && !isAlreadyFinished(err) {
		return fmt.Errorf("failed to kill serving server, pid %d: %w", l.proc.Pid(), err)
	}
	_ = l.proc.Wait()

	if l.configPath != "" {
		if err := os.Remove(l.configPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Msgf("Failed to remove config file %s", l.configPath)
		}
	}
	l.stopped = true
	metric.Incr(metric.ServerStopCount, []string{})
	log.Info().Msgf("Serving server stopped, pid: %d", l.proc.Pid())
	return nil
}

// requestShutdown asks the server to exit on its own before the hard kill.
func (l *Launcher) requestShutdown(ctx context.Context) {
	req, err := httpclient.NewHttpRequestBuilder().
		WithHost(l.conf.Host).
		WithPort(l.servingConf.ServingConfig.HTTPPort).
		WithPath(ShutdownPath).
		WithMethod(http.MethodPost).
		WithContext(ctx).
		BuildRaw(nil, "")
	if err != nil {
		return
	}
	resp, err := l.client.HttpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("Shutdown endpoint not reachable, killing process")
		return
	}
	defer resp.Body.Close()
	if !httpHelper.IsStandard2xx(resp.StatusCode) {
		log.Debug().Msgf("Shutdown endpoint returned %d, killing process", resp.StatusCode)
	}
}

func isAlreadyFinished(err error) bool {
	return err != nil && strings.Contains(err.Error(), "process already finished")
}
