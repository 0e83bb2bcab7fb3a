package inference

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalJSON dispatches each pipeline step on its "type" field before
// binding the concrete step struct.
func (c *InferenceConfiguration) UnmarshalJSON(data []byte) error {
	var doc struct {
		ServingConfig ServingConfig     `json:"servingConfig"`
		Steps         []json.RawMessage `json:"pipelineSteps"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse inference configuration: %w", err)
	}

	c.ServingConfig = doc.ServingConfig
	c.Steps = make([]PipelineStep, 0, len(doc.Steps))
	for _, raw := range doc.Steps {
		step, err := unmarshalStep(raw)
		if err != nil {
			return err
		}
		c.Steps = append(c.Steps, step)
	}
	return nil
}

// ToJSON serializes the configuration after validating it.
func (c *InferenceConfiguration) ToJSON() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(c, "", "  ")
}

func FromJSON(data []byte) (*InferenceConfiguration, error) {
	conf := &InferenceConfiguration{}
	if err := json.Unmarshal(data, conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// ToYAML serializes the configuration with the same field names as the JSON
// form, routing through JSON so the struct tags stay the single source of
// truth for the wire schema.
func (c *InferenceConfiguration) ToYAML() ([]byte, error) {
	jsonBytes, err := c.ToJSON()
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func FromYAML(data []byte) (*InferenceConfiguration, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml configuration: %w", err)
	}
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return FromJSON(jsonBytes)
}
