package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	httpHelper "github.com/mlservingstack/go-sdk/pkg/api/http"
)

type RequestBuilder struct {
	host    string
	port    int
	path    string
	method  string
	headers map[string]string
	body    any
	ctx     context.Context
}

func NewHttpRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		headers: make(map[string]string),
	}
}

// WithHost sets the host for the request
func (h *RequestBuilder) WithHost(host string) *RequestBuilder {
	h.host = host
	return h
}

// WithPort sets the port for the request
func (h *RequestBuilder) WithPort(port int) *RequestBuilder {
	h.port = port
	return h
}

// WithPath sets the path for the request
func (h *RequestBuilder) WithPath(path string) *RequestBuilder {
	h.path = path
	return h
}

// WithMethod sets the method for the request
func (h *RequestBuilder) WithMethod(method string) *RequestBuilder {
	h.method = method
	return h
}

// WithHeader adds the header for the request
func (h *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	h.headers[key] = value
	return h
}

// WithBody sets the body for the request
func (h *RequestBuilder) WithBody(body any) *RequestBuilder {
	h.body = body
	return h
}

// WithContext sets the context for the request
func (h *RequestBuilder) WithContext(ctx context.Context) *RequestBuilder {
	h.ctx = ctx
	return h
}

func (h *RequestBuilder) validate() error {
	if len(h.host) == 0 {
		return errors.New("host is required")
	}
	if h.port == 0 {
		return errors.New("invalid port")
	}
	if len(h.path) == 0 {
		return errors.New("path is required")
	}
	if len(h.method) == 0 {
		return errors.New("method is required")
	}
	if h.ctx == nil {
		return errors.New("context is required, pass context.Background() if not required")
	}
	return nil
}

func (h *RequestBuilder) build(body *bytes.Buffer, contentType string) (*http.Request, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(h.ctx, h.method, httpHelper.BuildHttpUrl(h.host, h.port, h.path), body)
	if err != nil {
		return nil, err
	}
	for key, value := range h.headers {
		req.Header.Set(key, value)
	}
	if contentType != "" {
		req.Header.Set(httpHelper.HeaderContentType, contentType)
	}
	return req, nil
}

// BuildContentTypeJson validates the builder request and builds the http request
// with content type as application/json
func (h *RequestBuilder) BuildContentTypeJson() (*http.Request, error) {
	requestBody, err := json.Marshal(h.body)
	if err != nil {
		return nil, err
	}
	return h.build(bytes.NewBuffer(requestBody), httpHelper.ContentTypeJSON)
}

// BuildRaw builds the http request with the given pre-encoded body and content type
func (h *RequestBuilder) BuildRaw(body []byte, contentType string) (*http.Request, error) {
	return h.build(bytes.NewBuffer(body), contentType)
}

// BuildMultipart builds a multipart/form-data request with one file part per
// entry, part names preserved in map order
func (h *RequestBuilder) BuildMultipart(parts map[string][]byte) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, data := range parts {
		part, err := writer.CreateFormFile(name, name)
		if err != nil {
			return nil, fmt.Errorf("failed to create part %s: %w", name, err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write part %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return h.build(&buf, writer.FormDataContentType())
}
