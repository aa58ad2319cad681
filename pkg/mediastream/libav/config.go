package libav

import (
	"context"
)

// CustomOption is an option passed to the demuxer of FFmpeg, for example
// {"rtsp_transport", "tcp"}.
type CustomOption struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type Config struct {
	CustomOptions []CustomOption `yaml:"custom_options,omitempty"`
}

type Option interface {
	Apply(*Config)
}

type Options []Option

func (s Options) Config(ctx context.Context) Config {
	cfg := DefaultConfig(ctx)
	s.apply(&cfg)
	return cfg
}

func (s Options) apply(cfg *Config) {
	for _, opt := range s {
		opt.Apply(cfg)
	}
}

var DefaultConfig = func(ctx context.Context) Config {
	return Config{}
}

type OptionCustomOption CustomOption

func (opt OptionCustomOption) Apply(cfg *Config) {
	cfg.CustomOptions = append(cfg.CustomOptions, CustomOption(opt))
}
