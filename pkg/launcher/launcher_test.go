package launcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enum "github.com/mlservingstack/go-sdk/pkg/enums"
	"github.com/mlservingstack/go-sdk/pkg/inference"
	"github.com/mlservingstack/go-sdk/pkg/types"
)

type fakeProcess struct {
	pid       int
	killCalls int32
	killErr   error
}

func (p *fakeProcess) Pid() int { return p.pid }

func (p *fakeProcess) Kill() error {
	atomic.AddInt32(&p.killCalls, 1)
	return p.killErr
}

func (p *fakeProcess) Wait() error { return nil }

type fakeStarter struct {
	name string
	args []string
	proc *fakeProcess
	err  error
}

func (s *fakeStarter) Start(name string, args ...string) (Process, error) {
	s.name = name
	s.args = args
	if s.err != nil {
		return nil, s.err
	}
	return s.proc, nil
}

func testServingConf(port int) *inference.InferenceConfiguration {
	return &inference.InferenceConfiguration{
		ServingConfig: inference.ServingConfig{
			HTTPPort:         port,
			InputDataFormat:  enum.DataFormatJSON,
			OutputDataFormat: enum.DataFormatJSON,
		},
		Steps: []inference.PipelineStep{
			&inference.ModelStep{
				ModelConfig: inference.ModelConfig{
					ModelConfigType: inference.ModelConfigType{ModelType: "ONNX", ModelLoadingPath: "/models/m.onnx"},
					TensorDataTypesConfig: inference.TensorDataTypesConfig{
						InputDataTypes:  map[string]types.DataType{"x": types.DataTypeFP32},
						OutputDataTypes: map[string]types.DataType{"y": types.DataTypeFP32},
					},
				},
				InputNames:  []string{"x"},
				OutputNames: []string{"y"},
			},
		},
	}
}

func testConf(t *testing.T) *Config {
	t.Helper()
	return &Config{
		ServerJar:      "/opt/serving/server.jar",
		ConfigDir:      t.TempDir(),
		StartTimeoutMS: 500,
		PollIntervalMS: 10,
	}
}

func TestStartSpawnsServerWithConfigFile(t *testing.T) {
	starter := &fakeStarter{proc: &fakeProcess{pid: 42}}
	l, err := New(testConf(t), testServingConf(8080), WithStarter(starter))
	require.NoError(t, err)

	require.NoError(t, l.Start(context.Background()))

	assert.Equal(t, "java", starter.name)
	require.Len(t, starter.args, 5)
	assert.Equal(t, []string{"-jar", "/opt/serving/server.jar", "serve", "-c"}, starter.args[:4])

	configPath := starter.args[4]
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	parsed, err := inference.FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, 8080, parsed.ServingConfig.HTTPPort)

	assert.ErrorContains(t, l.Start(context.Background()), "already started")
}

func TestWaitUntilReady(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	serverURL, _ := url.Parse(server.URL)
	port, _ := strconv.Atoi(serverURL.Port())

	conf := testConf(t)
	conf.Host = serverURL.Hostname()
	l, err := New(conf, testServingConf(port), WithStarter(&fakeStarter{proc: &fakeProcess{pid: 1}}))
	require.NoError(t, err)

	require.NoError(t, l.WaitUntilReady(context.Background()))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
}

func TestWaitUntilReadyTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	serverURL, _ := url.Parse(server.URL)
	port, _ := strconv.Atoi(serverURL.Port())

	conf := testConf(t)
	conf.Host = serverURL.Hostname()
	conf.StartTimeoutMS = 50
	l, err := New(conf, testServingConf(port), WithStarter(&fakeStarter{proc: &fakeProcess{pid: 1}}))
	require.NoError(t, err)

	assert.ErrorContains(t, l.WaitUntilReady(context.Background()), "not ready")
}

func TestStopIsIdempotent(t *testing.T) {
	var shutdownCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == ShutdownPath && r.Method == http.MethodPost {
			atomic.AddInt32(&shutdownCalls, 1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	serverURL, _ := url.Parse(server.URL)
	port, _ := strconv.Atoi(serverURL.Port())

	proc := &fakeProcess{pid: 42}
	conf := testConf(t)
	conf.Host = serverURL.Hostname()
	l, err := New(conf, testServingConf(port), WithStarter(&fakeStarter{proc: proc}))
	require.NoError(t, err)

	// stopping before starting is a no-op
	assert.NoError(t, l.Stop(context.Background()))
	assert.Equal(t, int32(0), atomic.LoadInt32(&proc.killCalls))

	require.NoError(t, l.Start(context.Background()))
	assert.NoError(t, l.Stop(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&proc.killCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&shutdownCalls))

	// second stop is a no-op
	assert.NoError(t, l.Stop(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&proc.killCalls))
}

func TestStopRemovesConfigFile(t *testing.T) {
	starter := &fakeStarter{proc: &fakeProcess{pid: 42}}
	l, err := New(testConf(t), testServingConf(1), WithStarter(starter))
	require.NoError(t, err)

	require.NoError(t, l.Start(context.Background()))
	configPath := starter.args[4]
	_, err = os.Stat(configPath)
	require.NoError(t, err)

	require.NoError(t, l.Stop(context.Background()))
	_, err = os.Stat(configPath)
	assert.True(t, os.IsNotExist(err))
}

func TestNewRejectsMissingJar(t *testing.T) {
	_, err := New(&Config{}, testServingConf(8080))
	assert.ErrorContains(t, err, "server jar")
}
