package inference

import (
	"encoding/json"
	"fmt"
)

const (
	StepTypeModel     = "MODEL"
	StepTypeTransform = "TRANSFORM"
	StepTypeScript    = "SCRIPT"
)

// PipelineStep is one stage of the server's pipeline. The concrete kind is
// carried on the wire as a "type" discriminator field.
type PipelineStep interface {
	StepType() string
	InputTensorNames() []string
	OutputTensorNames() []string
	validate() error
}

// ModelStep runs a loaded model over its input tensors.
type ModelStep struct {
	ModelConfig             ModelConfig              `json:"modelConfig"`
	InputNames              []string                 `json:"inputNames"`
	OutputNames             []string                 `json:"outputNames"`
	ParallelInferenceConfig *ParallelInferenceConfig `json:"parallelInferenceConfig,omitempty"`
}

func (s *ModelStep) StepType() string            { return StepTypeModel }
func (s *ModelStep) InputTensorNames() []string  { return s.InputNames }
func (s *ModelStep) OutputTensorNames() []string { return s.OutputNames }

// TransformStep applies ordered column operations between steps.
type TransformStep struct {
	InputNames  []string      `json:"inputNames"`
	OutputNames []string      `json:"outputNames"`
	Transforms  []TransformOp `json:"transforms"`
}

func (s *TransformStep) StepType() string            { return StepTypeTransform }
func (s *TransformStep) InputTensorNames() []string  { return s.InputNames }
func (s *TransformStep) OutputTensorNames() []string { return s.OutputNames }

// ScriptStep executes a user script, loaded from a path or given inline.
type ScriptStep struct {
	ScriptPath    string   `json:"scriptPath,omitempty"`
	ScriptCode    string   `json:"scriptCode,omitempty"`
	ScriptInputs  []string `json:"scriptInputs,omitempty"`
	ScriptOutputs []string `json:"scriptOutputs,omitempty"`
	InputNames    []string `json:"inputNames"`
	OutputNames   []string `json:"outputNames"`
}

func (s *ScriptStep) StepType() string            { return StepTypeScript }
func (s *ScriptStep) InputTensorNames() []string  { return s.InputNames }
func (s *ScriptStep) OutputTensorNames() []string { return s.OutputNames }

func (s *ModelStep) MarshalJSON() ([]byte, error) {
	type alias ModelStep
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{Type: StepTypeModel, alias: (*alias)(s)})
}

func (s *TransformStep) MarshalJSON() ([]byte, error) {
	type alias TransformStep
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{Type: StepTypeTransform, alias: (*alias)(s)})
}

func (s *ScriptStep) MarshalJSON() ([]byte, error) {
	type alias ScriptStep
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{Type: StepTypeScript, alias: (*alias)(s)})
}

func unmarshalStep(raw json.RawMessage) (PipelineStep, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to read pipeline step envelope: %w", err)
	}

	var step PipelineStep
	switch envelope.Type {
	case StepTypeModel:
		step = &ModelStep{}
	case StepTypeTransform:
		step = &TransformStep{}
	case StepTypeScript:
		step = &ScriptStep{}
	default:
		return nil, fmt.Errorf("unknown pipeline step type %q", envelope.Type)
	}
	if err := json.Unmarshal(raw, step); err != nil {
		return nil, fmt.Errorf("failed to parse %s step: %w", envelope.Type, err)
	}
	return step, nil
}
