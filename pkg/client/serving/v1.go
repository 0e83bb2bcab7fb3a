package serving

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	httpHelper "github.com/mlservingstack/go-sdk/pkg/api/http"
	"github.com/mlservingstack/go-sdk/pkg/client/httpclient"
	"github.com/mlservingstack/go-sdk/pkg/tensor"
)

var (
	client *ClientV1
	once   sync.Once
)

const (
	V1Prefix = "SERVING_CLIENT_V1"

	PredictPath = "/predict"
	HealthPath  = "/healthcheck"
)

func InitV1Client(configBytes []byte) ServingClient {
	if client == nil {
		once.Do(func() {
			clientConfig, err := getClientConfigs(configBytes)
			if err != nil {
				log.Panic().Err(err).Msgf("Invalid serving client configs: %#v", clientConfig)
			}
			client = NewClientV1(clientConfig)
		})
	}
	return client
}

// NewClientV1 builds a client without the package singleton, for callers that
// manage more than one server.
func NewClientV1(conf *ClientConfig) *ClientV1 {
	httpClient := httpclient.NewConnFromConfig(&httpclient.Config{
		Scheme:      "http",
		Host:        conf.Host,
		Port:        strconv.Itoa(conf.Port),
		TimeoutInMs: conf.TimeoutExceedMS,
		Transport: &httpclient.TransportConfig{
			DialTimeoutInMs:      conf.TimeoutExceedMS,
			KeepAliveTimeoutInMs: 30000,
			MaxIdleConns:         100,
			MaxIdleConnsPerHost:  10,
			IdleConnTimeoutInMs:  90000,
		},
	}, V1Prefix)
	return &ClientV1{
		ClientConfigs: conf,
		HttpClient:    httpClient,
	}
}

// Predict sends the input tensors in the configured input format and decodes
// the response in the configured output format. Server and transport errors
// are returned as-is, the caller decides whether to retry.
func (c *ClientV1) Predict(ctx context.Context, inputs []*tensor.Tensor) (map[string]*tensor.Tensor, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input tensors")
	}
	req, err := encodeRequest(ctx, c.ClientConfigs, inputs)
	if err != nil {
		return nil, err
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Error while calling predict on serving server")
		return nil, err
	}
	defer resp.Body.Close()

	return decodeResponse(c.ClientConfigs, resp)
}

// Health probes the healthcheck endpoint, returning nil on any 2xx.
func (c *ClientV1) Health(ctx context.Context) error {
	req, err := httpclient.NewHttpRequestBuilder().
		WithHost(c.ClientConfigs.Host).
		WithPort(c.ClientConfigs.Port).
		WithPath(HealthPath).
		WithMethod("GET").
		WithContext(ctx).
		BuildRaw(nil, "")
	if err != nil {
		return err
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !httpHelper.IsStandard2xx(resp.StatusCode) {
		return fmt.Errorf("serving server unhealthy, status: %d", resp.StatusCode)
	}
	return nil
}
