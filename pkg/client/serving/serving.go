package serving

import (
	"context"

	"github.com/mlservingstack/go-sdk/pkg/tensor"
)

// ServingClient exposes the model-serving server APIs: Predict and Health.
type ServingClient interface {
	// Predict sends named input tensors and returns outputs keyed by the
	// tensor names the server's pipeline declares.
	Predict(ctx context.Context, inputs []*tensor.Tensor) (map[string]*tensor.Tensor, error)
	// Health probes the server's healthcheck endpoint.
	Health(ctx context.Context) error
}
