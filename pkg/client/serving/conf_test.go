package serving

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enum "github.com/mlservingstack/go-sdk/pkg/enums"
	"github.com/mlservingstack/go-sdk/pkg/types"
)

func TestGetClientConfigs(t *testing.T) {
	conf, err := getClientConfigs([]byte(`{
		"Host": "localhost",
		"Port": 8080,
		"TimeoutExceedMS": 1000,
		"InputFormat": "JSON",
		"OutputFormat": "ARROW"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "localhost", conf.Host)
	assert.Equal(t, 8080, conf.Port)
	assert.Equal(t, enum.DataFormatJSON, conf.InputFormat)
	assert.Equal(t, enum.DataFormatArrow, conf.OutputFormat)
}

func TestValidConfigs(t *testing.T) {
	valid := func() *ClientConfig {
		return &ClientConfig{
			Host:            "localhost",
			Port:            8080,
			TimeoutExceedMS: 1000,
			InputFormat:     enum.DataFormatJSON,
			OutputFormat:    enum.DataFormatJSON,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *ClientConfig)
		wantErr string
	}{
		{"valid", func(c *ClientConfig) {}, ""},
		{"missing host", func(c *ClientConfig) { c.Host = "" }, "host"},
		{"bad port", func(c *ClientConfig) { c.Port = 0 }, "port"},
		{"bad timeout", func(c *ClientConfig) { c.TimeoutExceedMS = 0 }, "timeout"},
		{"missing input format", func(c *ClientConfig) { c.InputFormat = enum.DataFormatUnknown }, "input format"},
		{"raw output without specs", func(c *ClientConfig) { c.OutputFormat = enum.DataFormatRaw }, "output specs"},
		{"raw output with string spec", func(c *ClientConfig) {
			c.OutputFormat = enum.DataFormatRaw
			c.OutputSpecs = map[string]TensorSpec{
				"labels": {DataType: types.DataTypeString, Shape: []int64{1}},
			}
		}, "raw bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := valid()
			tt.mutate(conf)
			ok, err := validConfigs(conf)
			if tt.wantErr == "" {
				assert.True(t, ok)
				assert.NoError(t, err)
			} else {
				assert.False(t, ok)
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestGetServingClientUnknownVersion(t *testing.T) {
	assert.Nil(t, GetServingClient(2, nil))
}
