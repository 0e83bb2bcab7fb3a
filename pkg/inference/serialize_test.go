package inference

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enum "github.com/mlservingstack/go-sdk/pkg/enums"
	"github.com/mlservingstack/go-sdk/pkg/types"
)

func sampleConfiguration() *InferenceConfiguration {
	return &InferenceConfiguration{
		ServingConfig: ServingConfig{
			HTTPPort:         8080,
			ListenHost:       "0.0.0.0",
			InputDataFormat:  enum.DataFormatJSON,
			OutputDataFormat: enum.DataFormatArrow,
			LogTimings:       true,
			UploadsDirectory: "/tmp/uploads",
		},
		Steps: []PipelineStep{
			&TransformStep{
				InputNames:  []string{"raw_features"},
				OutputNames: []string{"features"},
				Transforms: []TransformOp{
					{Operation: "normalize", Column: "raw_features"},
				},
			},
			&ModelStep{
				ModelConfig: ModelConfig{
					ModelConfigType: ModelConfigType{
						ModelType:        "ONNX",
						ModelLoadingPath: "/models/ranker.onnx",
					},
					TensorDataTypesConfig: TensorDataTypesConfig{
						InputDataTypes:  map[string]types.DataType{"features": types.DataTypeFP32},
						OutputDataTypes: map[string]types.DataType{"scores": types.DataTypeFP32},
					},
				},
				InputNames:              []string{"features"},
				OutputNames:             []string{"scores"},
				ParallelInferenceConfig: &ParallelInferenceConfig{Workers: 4, BatchLimit: 32, QueueLimit: 128},
			},
			&ScriptStep{
				ScriptPath:  "/scripts/postprocess.py",
				InputNames:  []string{"scores"},
				OutputNames: []string{"ranked"},
			},
		},
	}
}

func TestConfigurationJSONRoundTrip(t *testing.T) {
	in := sampleConfiguration()

	data, err := in.ToJSON()
	require.NoError(t, err)

	out, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestConfigurationJSONWireFieldNames(t *testing.T) {
	data, err := sampleConfiguration().ToJSON()
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "servingConfig")
	assert.Contains(t, doc, "pipelineSteps")

	var serving map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["servingConfig"], &serving))
	assert.Contains(t, serving, "httpPort")
	assert.Contains(t, serving, "inputDataFormat")
	assert.Contains(t, serving, "outputDataFormat")
	assert.Equal(t, `"ARROW"`, string(serving["outputDataFormat"]))

	var steps []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["pipelineSteps"], &steps))
	require.Len(t, steps, 3)
	assert.Equal(t, `"TRANSFORM"`, string(steps[0]["type"]))
	assert.Equal(t, `"MODEL"`, string(steps[1]["type"]))
	assert.Equal(t, `"SCRIPT"`, string(steps[2]["type"]))

	var model map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(steps[1]["modelConfig"], &model))
	assert.Contains(t, model, "modelConfigType")
	assert.Contains(t, model, "tensorDataTypesConfig")
}

func TestConfigurationYAMLRoundTrip(t *testing.T) {
	in := sampleConfiguration()

	data, err := in.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "httpPort: 8080")

	out, err := FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFromJSONRejectsUnknownStepType(t *testing.T) {
	_, err := FromJSON([]byte(`{
		"servingConfig": {"httpPort": 8080, "inputDataFormat": "JSON", "outputDataFormat": "JSON"},
		"pipelineSteps": [{"type": "SHADOW", "inputNames": ["a"], "outputNames": ["b"]}]
	}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SHADOW")
}

func TestFromYAMLRejectsMalformedDocument(t *testing.T) {
	_, err := FromYAML([]byte("servingConfig: [not: a: map"))
	assert.Error(t, err)
}
