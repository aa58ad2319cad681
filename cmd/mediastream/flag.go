package main

import (
	"fmt"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/spf13/pflag"
)

type Flags struct {
	LoggerLevel   logger.Level
	ConfigPath    string
	WriteConfig   bool
	ListenMetrics string

	URL           string
	CustomOptions []string

	StreamIndex int
	Seek        float64
	SeekFrame   int64
	CountFrames bool
	Position    bool

	DecodeAudio bool
	Channels    int
	SampleRate  int
	AudioOutput string

	changed map[string]bool
}

// Changed reports if the flag was explicitly set on the command line.
func (f Flags) Changed(name string) bool {
	return f.changed[name]
}

func parseFlags(args []string) (Flags, error) {
	flags := Flags{
		LoggerLevel: logger.LevelWarning,
		changed:     map[string]bool{},
	}

	p := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	p.Var(&flags.LoggerLevel, "log-level", "Log level")
	p.StringVar(&flags.ConfigPath, "config", "", "the path to a YAML config file; flags override its values")
	p.BoolVar(&flags.WriteConfig, "write-config", false, "print the resulting config as YAML and exit")
	p.StringVar(&flags.ListenMetrics, "listen-metrics", "", "the address to serve Prometheus metrics at, e.g. 'localhost:9090'")
	p.StringSliceVarP(&flags.CustomOptions, "option", "o", nil, "a demuxer option as 'key=value'; may be repeated")
	p.IntVar(&flags.StreamIndex, "stream", -1, "the index of the stream to work on; by default the first video (or audio) stream")
	p.Float64Var(&flags.Seek, "seek", 0, "seek the stream to the given position in seconds before decoding")
	p.Int64Var(&flags.SeekFrame, "seek-frame", 0, "seek the stream to the given frame before decoding")
	p.BoolVar(&flags.CountFrames, "count-frames", false, "decode all the video frames of the stream and count them")
	p.BoolVar(&flags.Position, "position", false, "print the timestamp of the next packet of the stream")
	p.BoolVar(&flags.DecodeAudio, "decode-audio", false, "decode all the audio of the stream")
	p.IntVar(&flags.Channels, "channels", 0, "resample the decoded audio to this amount of channels; 0 keeps the source")
	p.IntVar(&flags.SampleRate, "sample-rate", 0, "resample the decoded audio to this sample rate; 0 keeps the source")
	p.StringVar(&flags.AudioOutput, "audio-output", "", "write the decoded audio as raw PCM into this file")

	if err := p.Parse(args[1:]); err != nil {
		return Flags{}, err
	}
	p.Visit(func(f *pflag.Flag) {
		flags.changed[f.Name] = true
	})

	switch p.NArg() {
	case 0:
	case 1:
		flags.URL = p.Arg(0)
	default:
		return Flags{}, fmt.Errorf("expected at most one input, but received %d: %s", p.NArg(), strings.Join(p.Args(), " "))
	}
	return flags, nil
}
