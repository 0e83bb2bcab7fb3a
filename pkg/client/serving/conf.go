package serving

import (
	"encoding/json"
	"fmt"

	enum "github.com/mlservingstack/go-sdk/pkg/enums"
	"github.com/mlservingstack/go-sdk/pkg/types"
)

// TensorSpec declares the data type and shape of an output tensor. Raw
// responses carry no type information, so specs are mandatory for that format.
type TensorSpec struct {
	DataType types.DataType `json:"DataType"`
	Shape    []int64        `json:"Shape"`
}

type ClientConfig struct {
	Host            string                `json:"Host"`
	Port            int                   `json:"Port"`
	TimeoutExceedMS int                   `json:"TimeoutExceedMS"`
	InputFormat     enum.DataFormat       `json:"InputFormat"`
	OutputFormat    enum.DataFormat       `json:"OutputFormat"`
	OutputSpecs     map[string]TensorSpec `json:"OutputSpecs,omitempty"`
}

func getClientConfigs(configBytes []byte) (*ClientConfig, error) {
	conf := &ClientConfig{}

	err := json.Unmarshal(configBytes, &conf)
	if err != nil {
		return nil, err
	}

	if valid, err := validConfigs(conf); !valid {
		return nil, err
	}

	return conf, nil
}

func validConfigs(configs *ClientConfig) (bool, error) {
	if configs.Host == "" {
		return false, fmt.Errorf("serving host is invalid, configured value: %v", configs.Host)
	}
	if configs.Port < 1 || configs.Port > 65535 {
		return false, fmt.Errorf("serving port is invalid, configured value: %v", configs.Port)
	}
	if configs.TimeoutExceedMS <= 0 {
		return false, fmt.Errorf("serving timeout is invalid, configured value: %v", configs.TimeoutExceedMS)
	}
	if configs.InputFormat == enum.DataFormatUnknown {
		return false, fmt.Errorf("serving input format not configured")
	}
	if configs.OutputFormat == enum.DataFormatUnknown {
		return false, fmt.Errorf("serving output format not configured")
	}
	if configs.OutputFormat == enum.DataFormatRaw {
		if len(configs.OutputSpecs) == 0 {
			return false, fmt.Errorf("output specs are required for RAW output format")
		}
		for name, spec := range configs.OutputSpecs {
			if !spec.DataType.FixedWidth() {
				return false, fmt.Errorf("output %s: data type %s cannot be decoded from raw bytes", name, spec.DataType)
			}
			if len(spec.Shape) == 0 {
				return false, fmt.Errorf("output %s: shape not configured", name)
			}
		}
	}
	return true, nil
}
