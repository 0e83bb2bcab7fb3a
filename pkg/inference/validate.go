package inference

import (
	"fmt"

	enum "github.com/mlservingstack/go-sdk/pkg/enums"
)

// Validate checks the configuration against the server's schema constraints
// before it is written to disk or sent to the launcher.
func (c *InferenceConfiguration) Validate() error {
	if err := c.ServingConfig.validate(); err != nil {
		return err
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("configuration requires at least one pipeline step")
	}
	for i, step := range c.Steps {
		if step == nil {
			return fmt.Errorf("pipeline step %d is nil", i)
		}
		if err := step.validate(); err != nil {
			return fmt.Errorf("pipeline step %d (%s): %w", i, step.StepType(), err)
		}
	}
	return nil
}

func (s *ServingConfig) validate() error {
	if s.HTTPPort < 1 || s.HTTPPort > 65535 {
		return fmt.Errorf("httpPort %d out of range", s.HTTPPort)
	}
	if s.InputDataFormat == enum.DataFormatUnknown {
		return fmt.Errorf("inputDataFormat is required")
	}
	if s.OutputDataFormat == enum.DataFormatUnknown {
		return fmt.Errorf("outputDataFormat is required")
	}
	return nil
}

func (s *ModelStep) validate() error {
	if s.ModelConfig.ModelConfigType.ModelType == "" {
		return fmt.Errorf("modelType is required")
	}
	if s.ModelConfig.ModelConfigType.ModelLoadingPath == "" {
		return fmt.Errorf("modelLoadingPath is required")
	}
	if len(s.InputNames) == 0 || len(s.OutputNames) == 0 {
		return fmt.Errorf("inputNames and outputNames must be non-empty")
	}
	if p := s.ParallelInferenceConfig; p != nil {
		if p.Workers < 0 || p.BatchLimit < 0 || p.QueueLimit < 0 {
			return fmt.Errorf("parallelInferenceConfig values must be non-negative")
		}
	}
	return nil
}

func (s *TransformStep) validate() error {
	if len(s.InputNames) == 0 || len(s.OutputNames) == 0 {
		return fmt.Errorf("inputNames and outputNames must be non-empty")
	}
	if len(s.Transforms) == 0 {
		return fmt.Errorf("transforms must be non-empty")
	}
	for i, op := range s.Transforms {
		if op.Operation == "" {
			return fmt.Errorf("transform %d: operation is required", i)
		}
	}
	return nil
}

func (s *ScriptStep) validate() error {
	if s.ScriptPath == "" && s.ScriptCode == "" {
		return fmt.Errorf("either scriptPath or scriptCode is required")
	}
	if s.ScriptPath != "" && s.ScriptCode != "" {
		return fmt.Errorf("scriptPath and scriptCode are mutually exclusive")
	}
	if len(s.InputNames) == 0 || len(s.OutputNames) == 0 {
		return fmt.Errorf("inputNames and outputNames must be non-empty")
	}
	return nil
}
