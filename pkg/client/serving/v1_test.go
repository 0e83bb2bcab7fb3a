package serving

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enum "github.com/mlservingstack/go-sdk/pkg/enums"
	"github.com/mlservingstack/go-sdk/pkg/tensor"
	"github.com/mlservingstack/go-sdk/pkg/types"
)

func clientForServer(t *testing.T, server *httptest.Server, mutate func(c *ClientConfig)) *ClientV1 {
	t.Helper()
	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(serverURL.Port())
	require.NoError(t, err)

	conf := &ClientConfig{
		Host:            serverURL.Hostname(),
		Port:            port,
		TimeoutExceedMS: 2000,
		InputFormat:     enum.DataFormatJSON,
		OutputFormat:    enum.DataFormatJSON,
	}
	if mutate != nil {
		mutate(conf)
	}
	ok, err := validConfigs(conf)
	require.True(t, ok, "test config must be valid: %v", err)
	return NewClientV1(conf)
}

func TestPredictJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PredictPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		inputs, err := tensor.DecodeJSON(body)
		require.NoError(t, err)
		require.Len(t, inputs, 1)
		assert.Equal(t, "features", inputs[0].Name)

		resp, err := tensor.EncodeJSON([]*tensor.Tensor{{
			Name:     "scores",
			DataType: types.DataTypeFP32,
			Shape:    []int64{2},
			Values:   tensor.Values{Fp32Values: []float32{0.25, 0.75}},
		}})
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(resp)
	}))
	defer server.Close()

	c := clientForServer(t, server, nil)
	outputs, err := c.Predict(context.Background(), []*tensor.Tensor{{
		Name:     "features",
		DataType: types.DataTypeFP32,
		Shape:    []int64{2},
		Values:   tensor.Values{Fp32Values: []float32{1, 2}},
	}})
	require.NoError(t, err)

	require.Contains(t, outputs, "scores", "response must be keyed by declared output name")
	assert.Equal(t, []float32{0.25, 0.75}, outputs["scores"].Values.Fp32Values)
}

func TestPredictRawMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)

		reader := multipart.NewReader(r.Body, params["boundary"])
		part, err := reader.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "features", part.FormName())
		data, _ := io.ReadAll(part)
		assert.Equal(t, 8, len(data), "two float32 elements")

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		out, _ := writer.CreateFormFile("scores", "scores")
		encoded, err := tensor.EncodeRaw(&tensor.Tensor{
			Name:     "scores",
			DataType: types.DataTypeFP32,
			Shape:    []int64{2},
			Values:   tensor.Values{Fp32Values: []float32{0.5, 1.5}},
		})
		require.NoError(t, err)
		_, _ = out.Write(encoded)
		_ = writer.Close()

		w.Header().Set("Content-Type", writer.FormDataContentType())
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	c := clientForServer(t, server, func(conf *ClientConfig) {
		conf.InputFormat = enum.DataFormatRaw
		conf.OutputFormat = enum.DataFormatRaw
		conf.OutputSpecs = map[string]TensorSpec{
			"scores": {DataType: types.DataTypeFP32, Shape: []int64{2}},
		}
	})
	outputs, err := c.Predict(context.Background(), []*tensor.Tensor{{
		Name:     "features",
		DataType: types.DataTypeFP32,
		Shape:    []int64{2},
		Values:   tensor.Values{Fp32Values: []float32{1, 2}},
	}})
	require.NoError(t, err)

	require.Contains(t, outputs, "scores")
	assert.Equal(t, []float32{0.5, 1.5}, outputs["scores"].Values.Fp32Values)
}

func TestPredictArrow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.apache.arrow.stream", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		inputs, err := tensor.DecodeArrow(body)
		require.NoError(t, err)
		require.Len(t, inputs, 1)

		resp, err := tensor.EncodeArrow([]*tensor.Tensor{{
			Name:     "scores",
			DataType: types.DataTypeFP64,
			Shape:    []int64{3},
			Values:   tensor.Values{Fp64Values: []float64{0.1, 0.2, 0.3}},
		}})
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/vnd.apache.arrow.stream")
		_, _ = w.Write(resp)
	}))
	defer server.Close()

	c := clientForServer(t, server, func(conf *ClientConfig) {
		conf.InputFormat = enum.DataFormatArrow
		conf.OutputFormat = enum.DataFormatArrow
	})
	outputs, err := c.Predict(context.Background(), []*tensor.Tensor{{
		Name:     "features",
		DataType: types.DataTypeInt64,
		Shape:    []int64{3},
		Values:   tensor.Values{Int64Values: []int64{7, 8, 9}},
	}})
	require.NoError(t, err)

	require.Contains(t, outputs, "scores")
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, outputs["scores"].Values.Fp64Values)
}

func TestPredictSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := clientForServer(t, server, nil)
	_, err := c.Predict(context.Background(), []*tensor.Tensor{{
		Name:     "features",
		DataType: types.DataTypeFP32,
		Shape:    []int64{1},
		Values:   tensor.Values{Fp32Values: []float32{1}},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestPredictRejectsEmptyInputs(t *testing.T) {
	c := NewClientV1(&ClientConfig{
		Host:            "localhost",
		Port:            1,
		TimeoutExceedMS: 1,
		InputFormat:     enum.DataFormatJSON,
		OutputFormat:    enum.DataFormatJSON,
	})
	_, err := c.Predict(context.Background(), nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, HealthPath, r.URL.Path)
		if healthy {
			w.WriteHeader(http.StatusNoContent)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	c := clientForServer(t, server, nil)
	assert.NoError(t, c.Health(context.Background()))

	healthy = false
	assert.Error(t, c.Health(context.Background()))
}
