package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt/tool/logger"
	audiotypes "github.com/xaionaro-go/mediastream/pkg/audio/types"
	"github.com/xaionaro-go/mediastream/pkg/mediastream"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/libav"
	msmetrics "github.com/xaionaro-go/mediastream/pkg/mediastream/metrics"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

func run(
	ctx context.Context,
	cfg Config,
) (_ret *Report, _err error) {
	logger.Debugf(ctx, "run(ctx, '%s')", cfg.URL)
	defer func() { logger.Debugf(ctx, "/run(ctx, '%s'): %v", cfg.URL, _err) }()

	opener := libav.NewOpener(ctx, cfg.libavOptions()...)
	c, err := mediastream.Open(
		ctx, opener, cfg.URL,
		mediastream.OptionObserver{Observer: msmetrics.NewObserver(ctx, nil)},
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Errorf(ctx, "unable to close '%s': %v", cfg.URL, err)
		}
	}()

	if !cfg.needsStream() {
		r := newReport(c, nil)
		return &r, nil
	}

	s, err := selectStream(c, cfg.StreamIndex)
	if err != nil {
		return nil, err
	}
	decode, err := process(ctx, s, cfg)
	if err != nil {
		return nil, err
	}
	r := newReport(c, decode)
	return &r, nil
}

func (cfg Config) needsStream() bool {
	return cfg.Seek != nil || cfg.SeekFrame != nil || cfg.Position || cfg.CountFrames || cfg.Audio.Decode
}

// selectStream returns the stream by index, or (for a negative index) the
// first video stream, falling back to the first audio stream.
func selectStream(
	c *mediastream.Container,
	index int,
) (*mediastream.Stream, error) {
	if index >= 0 {
		return c.Stream(index)
	}
	for _, mediaType := range []types.MediaType{types.MediaTypeVideo, types.MediaTypeAudio} {
		for _, s := range c.Streams() {
			if s.MediaType() == mediaType {
				return s, nil
			}
		}
	}
	return nil, fmt.Errorf("'%s' has neither video nor audio streams", c.URL())
}

func process(
	ctx context.Context,
	s *mediastream.Stream,
	cfg Config,
) (*DecodeReport, error) {
	r := &DecodeReport{StreamIndex: s.Index()}

	switch {
	case cfg.Seek != nil:
		if err := s.Seek(ctx, *cfg.Seek); err != nil {
			return nil, err
		}
	case cfg.SeekFrame != nil:
		if err := s.SeekByFrame(ctx, *cfg.SeekFrame); err != nil {
			return nil, err
		}
	}

	if cfg.Position {
		position, err := s.Position(ctx)
		if err != nil {
			return nil, err
		}
		r.Position = &position
	}

	if cfg.CountFrames {
		frames := 0
		err := s.DecodeFrame(ctx, func(ctx context.Context, frame *mediastream.DecodedFrame) error {
			frames++
			if pts, ok := frame.PTSSeconds(); ok {
				r.LastPTS = &pts
			}
			logger.Tracef(ctx, "frame #%d: %s", frames, frame.VideoFrame)
			return nil
		})
		if err != nil {
			return nil, err
		}
		r.Frames = &frames
	}

	if cfg.Audio.Decode {
		data, format, err := s.DecodeAudioWithFormat(ctx, cfg.Audio.Channels, cfg.Audio.SampleRate)
		if err != nil {
			return nil, err
		}
		r.AudioFormat = format.String()
		r.AudioBytes = humanizeBytes(len(data))
		if length, ok := audioLength(len(data), format); ok {
			r.AudioLength = &length
		}
		if cfg.Audio.OutputPath != "" {
			if err := os.WriteFile(cfg.Audio.OutputPath, data, 0644); err != nil {
				return nil, fmt.Errorf("unable to write the audio into '%s': %w", cfg.Audio.OutputPath, err)
			}
		}
	}

	return r, nil
}

// audioLength returns the duration of size bytes of audio in seconds.
func audioLength(size int, format audiotypes.Format) (float64, bool) {
	if format.SampleRate == 0 || format.Channels == 0 || format.PCMFormat == audiotypes.PCMFormatUndefined {
		return 0, false
	}
	bytesPerSecond := float64(format.FrameSize()) * float64(format.SampleRate)
	return float64(size) / bytesPerSecond, true
}

func humanizeBytes(size int) string {
	return humanize.Bytes(uint64(size))
}
