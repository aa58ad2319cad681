package types

import (
	"fmt"
	"math"
	"time"
)

const (
	// NoPTSValue is the "no timestamp" sentinel used by demuxers for unknown
	// timestamps and durations.
	NoPTSValue = int64(math.MinInt64)

	// TimeBase is the amount of container base units in a second.
	TimeBase = 1000000
)

type Rational struct {
	Num int64
	Den int64
}

func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) IsZero() bool {
	return r.Num == 0 || r.Den == 0
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

type MediaType int

const (
	MediaTypeUnknown = MediaType(iota)
	MediaTypeVideo
	MediaTypeAudio
	MediaTypeSubtitle
	MediaTypeData
)

func (t MediaType) String() string {
	switch t {
	case MediaTypeUnknown:
		return "unknown"
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	case MediaTypeSubtitle:
		return "subtitle"
	case MediaTypeData:
		return "data"
	default:
		return fmt.Sprintf("<unexpected_value_%d>", int(t))
	}
}

const MetadataKeyRotate = "rotate"

// StreamDescriptor describes one elementary stream of a container.
type StreamDescriptor struct {
	Index      int
	MediaType  MediaType
	CodecName  string
	TimeBase   Rational
	Duration   int64
	FrameCount int64
	FrameRate  Rational
	Metadata   map[string]string
}

// TicksToSeconds converts a raw timestamp of this stream to seconds.
func (d StreamDescriptor) TicksToSeconds(ticks int64) float64 {
	return float64(ticks) * d.TimeBase.Float64()
}

func (d StreamDescriptor) TicksToDuration(ticks int64) time.Duration {
	return time.Duration(float64(time.Second) * d.TicksToSeconds(ticks))
}

type SeekFlag uint

const (
	SeekFlagAny = SeekFlag(1 << iota)
	SeekFlagBackward
	SeekFlagByte
	SeekFlagFrame
)

type SeekFlags uint

func NewSeekFlags(flags ...SeekFlag) SeekFlags {
	var result SeekFlags
	for _, f := range flags {
		result |= SeekFlags(f)
	}
	return result
}

func (f SeekFlags) Has(flag SeekFlag) bool {
	return f&SeekFlags(flag) != 0
}
