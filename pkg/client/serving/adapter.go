package serving

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	httpHelper "github.com/mlservingstack/go-sdk/pkg/api/http"
	"github.com/mlservingstack/go-sdk/pkg/client/httpclient"
	enum "github.com/mlservingstack/go-sdk/pkg/enums"
	"github.com/mlservingstack/go-sdk/pkg/tensor"
)

func encodeRequest(ctx context.Context, conf *ClientConfig, inputs []*tensor.Tensor) (*http.Request, error) {
	builder := httpclient.NewHttpRequestBuilder().
		WithHost(conf.Host).
		WithPort(conf.Port).
		WithPath(PredictPath).
		WithMethod(http.MethodPost).
		WithContext(ctx)

	switch conf.InputFormat {
	case enum.DataFormatJSON:
		body, err := tensor.EncodeJSON(inputs)
		if err != nil {
			return nil, err
		}
		return builder.BuildRaw(body, httpHelper.ContentTypeJSON)
	case enum.DataFormatRaw:
		parts := make(map[string][]byte, len(inputs))
		for _, t := range inputs {
			data, err := tensor.EncodeRaw(t)
			if err != nil {
				return nil, err
			}
			parts[t.Name] = data
		}
		return builder.BuildMultipart(parts)
	case enum.DataFormatArrow:
		body, err := tensor.EncodeArrow(inputs)
		if err != nil {
			return nil, err
		}
		return builder.BuildRaw(body, httpHelper.ContentTypeArrowStream)
	default:
		return nil, fmt.Errorf("unsupported input format %s", conf.InputFormat)
	}
}

func decodeResponse(conf *ClientConfig, resp *http.Response) (map[string]*tensor.Tensor, error) {
	if !httpHelper.IsStandard2xx(resp.StatusCode) {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("predict failed, status: %d, body: %s", resp.StatusCode, string(body))
	}

	switch conf.OutputFormat {
	case enum.DataFormatJSON:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		tensors, err := tensor.DecodeJSON(body)
		if err != nil {
			return nil, err
		}
		return keyByName(tensors), nil
	case enum.DataFormatRaw:
		return decodeRawResponse(conf, resp)
	case enum.DataFormatArrow:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		tensors, err := tensor.DecodeArrow(body)
		if err != nil {
			return nil, err
		}
		return keyByName(tensors), nil
	default:
		return nil, fmt.Errorf("unsupported output format %s", conf.OutputFormat)
	}
}

// decodeRawResponse reads a multipart body of packed tensor parts, decoding
// each against its declared output spec.
func decodeRawResponse(conf *ClientConfig, resp *http.Response) (map[string]*tensor.Tensor, error) {
	mediaType, params, err := mime.ParseMediaType(resp.Header.Get(httpHelper.HeaderContentType))
	if err != nil {
		return nil, fmt.Errorf("failed to parse response content type: %w", err)
	}
	if mediaType != httpHelper.ContentTypeMultipart {
		return nil, fmt.Errorf("unexpected response content type %s for raw output", mediaType)
	}

	reader := multipart.NewReader(resp.Body, params["boundary"])
	outputs := make(map[string]*tensor.Tensor)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read response part: %w", err)
		}
		name := part.FormName()
		spec, ok := conf.OutputSpecs[name]
		if !ok {
			return nil, fmt.Errorf("no output spec declared for response tensor %s", name)
		}
		data, err := io.ReadAll(part)
		if err != nil {
			return nil, fmt.Errorf("failed to read response tensor %s: %w", name, err)
		}
		t, err := tensor.DecodeRaw(name, spec.DataType, spec.Shape, data)
		if err != nil {
			return nil, err
		}
		outputs[name] = t
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("response contained no tensor parts")
	}
	return outputs, nil
}

func keyByName(tensors []*tensor.Tensor) map[string]*tensor.Tensor {
	outputs := make(map[string]*tensor.Tensor, len(tensors))
	for _, t := range tensors {
		outputs[t.Name] = t
	}
	return outputs
}
