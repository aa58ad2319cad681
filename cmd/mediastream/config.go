package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/xaionaro-go/datacounter"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/libav"
	"github.com/xaionaro-go/xpath"
)

type AudioConfig struct {
	Decode     bool   `yaml:"decode"`
	Channels   int    `yaml:"channels,omitempty"`
	SampleRate int    `yaml:"sample_rate,omitempty"`
	OutputPath string `yaml:"output_path,omitempty"`
}

type Config struct {
	URL           string               `yaml:"url"`
	CustomOptions []libav.CustomOption `yaml:"custom_options,omitempty"`
	StreamIndex   int                  `yaml:"stream_index"`
	Seek          *float64             `yaml:"seek,omitempty"`
	SeekFrame     *int64               `yaml:"seek_frame,omitempty"`
	CountFrames   bool                 `yaml:"count_frames"`
	Position      bool                 `yaml:"position"`
	Audio         AudioConfig          `yaml:"audio"`
	ListenMetrics string               `yaml:"listen_metrics,omitempty"`
}

type config Config

var _ io.ReaderFrom = (*Config)(nil)
var _ io.WriterTo = (*Config)(nil)

func defaultConfig() Config {
	return Config{
		StreamIndex: -1,
	}
}

func (cfg *Config) UnmarshalYAML(b []byte) error {
	if err := yaml.Unmarshal(b, (*config)(cfg)); err != nil {
		return fmt.Errorf("unable to unserialize data: %w", err)
	}
	return nil
}

func (cfg *Config) ReadFrom(
	r io.Reader,
) (int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return int64(len(b)), fmt.Errorf("unable to read: %w", err)
	}
	return int64(len(b)), cfg.UnmarshalYAML(b)
}

func (cfg Config) MarshalYAML() ([]byte, error) {
	b, err := yaml.Marshal((config)(cfg))
	if err != nil {
		return nil, fmt.Errorf("unable to serialize data %#+v: %w", cfg, err)
	}
	return b, nil
}

func (cfg Config) WriteTo(
	w io.Writer,
) (int64, error) {
	b, err := cfg.MarshalYAML()
	if err != nil {
		return 0, err
	}

	counter := datacounter.NewWriterCounter(w)
	if _, err := io.Copy(counter, bytes.NewReader(b)); err != nil {
		return int64(counter.Count()), err
	}
	return int64(counter.Count()), nil
}

func readConfigFromPath(
	ctx context.Context,
	cfgPath string,
	cfg *Config,
) error {
	cfgPath, err := xpath.Expand(cfgPath)
	if err != nil {
		return fmt.Errorf("unable to expand the path '%s': %w", cfgPath, err)
	}
	f, err := os.Open(cfgPath)
	if err != nil {
		return fmt.Errorf("unable to open '%s': %w", cfgPath, err)
	}
	defer f.Close()
	if _, err := cfg.ReadFrom(f); err != nil {
		return fmt.Errorf("unable to parse '%s': %w", cfgPath, err)
	}
	return nil
}

// applyFlags overrides the config values with the explicitly set flags.
func (cfg *Config) applyFlags(flags Flags) error {
	if flags.URL != "" {
		cfg.URL = flags.URL
	}
	for _, opt := range flags.CustomOptions {
		key, value, ok := strings.Cut(opt, "=")
		if !ok {
			return fmt.Errorf("invalid option '%s': expected 'key=value'", opt)
		}
		cfg.CustomOptions = append(cfg.CustomOptions, libav.CustomOption{Key: key, Value: value})
	}
	if flags.Changed("stream") {
		cfg.StreamIndex = flags.StreamIndex
	}
	if flags.Changed("seek") {
		seek := flags.Seek
		cfg.Seek = &seek
	}
	if flags.Changed("seek-frame") {
		seekFrame := flags.SeekFrame
		cfg.SeekFrame = &seekFrame
	}
	if flags.Changed("count-frames") {
		cfg.CountFrames = flags.CountFrames
	}
	if flags.Changed("position") {
		cfg.Position = flags.Position
	}
	if flags.Changed("decode-audio") {
		cfg.Audio.Decode = flags.DecodeAudio
	}
	if flags.Changed("channels") {
		cfg.Audio.Channels = flags.Channels
	}
	if flags.Changed("sample-rate") {
		cfg.Audio.SampleRate = flags.SampleRate
	}
	if flags.Changed("audio-output") {
		cfg.Audio.OutputPath = flags.AudioOutput
	}
	if flags.Changed("listen-metrics") {
		cfg.ListenMetrics = flags.ListenMetrics
	}
	if cfg.Seek != nil && cfg.SeekFrame != nil {
		return fmt.Errorf("only one of seek and seek_frame may be set")
	}
	return nil
}

func (cfg Config) libavOptions() []libav.Option {
	var opts []libav.Option
	for _, opt := range cfg.CustomOptions {
		opts = append(opts, libav.OptionCustomOption(opt))
	}
	return opts
}
