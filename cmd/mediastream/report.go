package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
	"github.com/xaionaro-go/mediastream/pkg/mediastream"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

type StreamReport struct {
	Index       int               `yaml:"index"`
	MediaType   string            `yaml:"media_type"`
	Codec       string            `yaml:"codec"`
	Duration    *float64          `yaml:"duration,omitempty"`
	TimeBase    string            `yaml:"time_base"`
	FrameCount  int64             `yaml:"frame_count,omitempty"`
	FrameRate   float64           `yaml:"frame_rate,omitempty"`
	Rotation    *int              `yaml:"rotation,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
	CodecOpened bool              `yaml:"codec_opened"`
}

type DecodeReport struct {
	StreamIndex int      `yaml:"stream_index"`
	Frames      *int     `yaml:"frames,omitempty"`
	LastPTS     *float64 `yaml:"last_pts,omitempty"`
	Position    *float64 `yaml:"position,omitempty"`
	AudioFormat string   `yaml:"audio_format,omitempty"`
	AudioBytes  string   `yaml:"audio_bytes,omitempty"`
	AudioLength *float64 `yaml:"audio_length,omitempty"`
}

type StatisticsReport struct {
	PacketsRead        uint64 `yaml:"packets_read"`
	PacketsSkipped     uint64 `yaml:"packets_skipped"`
	BytesRead          string `yaml:"bytes_read"`
	VideoFramesDecoded uint64 `yaml:"video_frames_decoded"`
	AudioBytesDecoded  string `yaml:"audio_bytes_decoded"`
	Seeks              uint64 `yaml:"seeks"`
}

type Report struct {
	URL        string           `yaml:"url"`
	Streams    []StreamReport   `yaml:"streams"`
	Decode     *DecodeReport    `yaml:"decode,omitempty"`
	Statistics StatisticsReport `yaml:"statistics"`
}

func newStreamReport(s *mediastream.Stream) StreamReport {
	r := StreamReport{
		Index:       s.Index(),
		MediaType:   s.MediaType().String(),
		Codec:       s.CodecName(),
		TimeBase:    s.Descriptor().TimeBase.String(),
		FrameCount:  s.FrameCount(),
		FrameRate:   s.FrameRate(),
		Metadata:    s.Descriptor().Metadata,
		CodecOpened: s.IsCodecOpen(),
	}
	if duration, ok := s.Duration(); ok {
		r.Duration = &duration
	}
	if degrees, ok := s.RotationDegrees(); ok {
		r.Rotation = &degrees
	}
	return r
}

func newReport(c *mediastream.Container, decode *DecodeReport) Report {
	r := Report{
		URL:    c.URL(),
		Decode: decode,
	}
	for _, s := range c.Streams() {
		r.Streams = append(r.Streams, newStreamReport(s))
	}
	sort.Slice(r.Streams, func(i, j int) bool {
		return r.Streams[i].Index < r.Streams[j].Index
	})
	r.Statistics = newStatisticsReport(c.Statistics())
	return r
}

func newStatisticsReport(stats types.Statistics) StatisticsReport {
	return StatisticsReport{
		PacketsRead:        stats.PacketsRead,
		PacketsSkipped:     stats.PacketsSkipped,
		BytesRead:          humanize.Bytes(stats.BytesRead),
		VideoFramesDecoded: stats.VideoFramesDecoded,
		AudioBytesDecoded:  humanize.Bytes(stats.AudioBytesDecoded),
		Seeks:              stats.Seeks,
	}
}

func (r Report) WriteTo(w io.Writer) (int64, error) {
	b, err := yaml.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("unable to serialize the report: %w", err)
	}
	n, err := w.Write(b)
	return int64(n), err
}
