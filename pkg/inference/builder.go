package inference

import (
	enum "github.com/mlservingstack/go-sdk/pkg/enums"
)

// Builder assembles an InferenceConfiguration fluently. Build validates the
// result, so a builder can be handed around half-finished.
type Builder struct {
	conf InferenceConfiguration
}

func NewBuilder() *Builder {
	return &Builder{
		conf: InferenceConfiguration{
			ServingConfig: ServingConfig{
				InputDataFormat:  enum.DataFormatJSON,
				OutputDataFormat: enum.DataFormatJSON,
			},
		},
	}
}

func (b *Builder) WithHTTPPort(port int) *Builder {
	b.conf.ServingConfig.HTTPPort = port
	return b
}

func (b *Builder) WithListenHost(host string) *Builder {
	b.conf.ServingConfig.ListenHost = host
	return b
}

func (b *Builder) WithInputDataFormat(format enum.DataFormat) *Builder {
	b.conf.ServingConfig.InputDataFormat = format
	return b
}

func (b *Builder) WithOutputDataFormat(format enum.DataFormat) *Builder {
	b.conf.ServingConfig.OutputDataFormat = format
	return b
}

func (b *Builder) WithLogTimings(enabled bool) *Builder {
	b.conf.ServingConfig.LogTimings = enabled
	return b
}

func (b *Builder) WithUploadsDirectory(dir string) *Builder {
	b.conf.ServingConfig.UploadsDirectory = dir
	return b
}

func (b *Builder) WithStep(step PipelineStep) *Builder {
	b.conf.Steps = append(b.conf.Steps, step)
	return b
}

func (b *Builder) Build() (*InferenceConfiguration, error) {
	if err := b.conf.Validate(); err != nil {
		return nil, err
	}
	conf := b.conf
	conf.Steps = append([]PipelineStep(nil), b.conf.Steps...)
	return &conf, nil
}
