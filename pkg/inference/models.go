package inference

import (
	enum "github.com/mlservingstack/go-sdk/pkg/enums"
	"github.com/mlservingstack/go-sdk/pkg/types"
)

// ServingConfig declares how the external server binds and which payload
// encodings it speaks. Serialized field names follow the server's schema.
type ServingConfig struct {
	HTTPPort         int             `json:"httpPort"`
	ListenHost       string          `json:"listenHost,omitempty"`
	InputDataFormat  enum.DataFormat `json:"inputDataFormat"`
	OutputDataFormat enum.DataFormat `json:"outputDataFormat"`
	LogTimings       bool            `json:"logTimings,omitempty"`
	UploadsDirectory string          `json:"uploadsDirectory,omitempty"`
}

type ModelConfigType struct {
	ModelType        string `json:"modelType"`
	ModelLoadingPath string `json:"modelLoadingPath"`
}

// TensorDataTypesConfig maps tensor names to their declared data types on
// each side of a model step.
type TensorDataTypesConfig struct {
	InputDataTypes  map[string]types.DataType `json:"inputDataTypes"`
	OutputDataTypes map[string]types.DataType `json:"outputDataTypes"`
}

type ModelConfig struct {
	ModelConfigType       ModelConfigType       `json:"modelConfigType"`
	TensorDataTypesConfig TensorDataTypesConfig `json:"tensorDataTypesConfig"`
}

// ParallelInferenceConfig bounds the server-side worker pool for a model step.
// Zero values mean the server's defaults.
type ParallelInferenceConfig struct {
	Workers    int `json:"workers,omitempty"`
	BatchLimit int `json:"batchLimit,omitempty"`
	QueueLimit int `json:"queueLimit,omitempty"`
}

// TransformOp is a single column operation applied by a transform step, in
// declaration order.
type TransformOp struct {
	Operation string            `json:"operation"`
	Column    string            `json:"column,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
}

// InferenceConfiguration is the complete document handed to the external
// server: the serving section plus the ordered pipeline.
type InferenceConfiguration struct {
	ServingConfig ServingConfig  `json:"servingConfig"`
	Steps         []PipelineStep `json:"pipelineSteps"`
}
