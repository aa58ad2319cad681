package mediastream

import (
	"context"

	"github.com/xaionaro-go/mediastream/pkg/audio/accumulator"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

type Config struct {
	// AudioBufferInitialCapacity is the initial capacity (in bytes) of the
	// buffer accumulating decoded audio.
	AudioBufferInitialCapacity int

	// SeekFlags are passed to the demuxer on every seek.
	SeekFlags types.SeekFlags

	// Observer receives notifications in addition to the container
	// statistics. Nil means none.
	Observer types.Observer
}

func (cfg Config) Options() Options {
	return Options{
		OptionAudioBufferInitialCapacity(cfg.AudioBufferInitialCapacity),
		OptionSeekFlags(cfg.SeekFlags),
		OptionObserver{Observer: cfg.Observer},
	}
}

type Option interface {
	Apply(cfg *Config)
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
	return Config{
		AudioBufferInitialCapacity: accumulator.DefaultInitialCapacity,
		SeekFlags:                  types.NewSeekFlags(types.SeekFlagAny),
	}
}

type OptionAudioBufferInitialCapacity int

func (s OptionAudioBufferInitialCapacity) Apply(cfg *Config) {
	cfg.AudioBufferInitialCapacity = int(s)
}

type OptionSeekFlags types.SeekFlags

func (s OptionSeekFlags) Apply(cfg *Config) {
	cfg.SeekFlags = types.SeekFlags(s)
}

type OptionObserver struct {
	types.Observer
}

func (s OptionObserver) Apply(cfg *Config) {
	cfg.Observer = s.Observer
}
