package types

import (
	"fmt"
	"math"
	"strings"
)

type Channel uint16

type SampleRate uint32

type PCMFormat uint

const (
	PCMFormatUndefined = PCMFormat(iota)
	PCMFormatU8
	PCMFormatS16LE
	PCMFormatS32LE
	PCMFormatS64LE
	PCMFormatFloat32LE
	PCMFormatFloat64LE
	EndOfPCMFormat
)

// Size returns the width of a single sample of a single channel, in bytes.
func (f PCMFormat) Size() uint32 {
	switch f {
	case PCMFormatU8:
		return 1
	case PCMFormatS16LE:
		return 2
	case PCMFormatS32LE, PCMFormatFloat32LE:
		return 4
	case PCMFormatS64LE, PCMFormatFloat64LE:
		return 8
	default:
		return math.MaxUint32
	}
}

func (f PCMFormat) String() string {
	switch f {
	case PCMFormatUndefined:
		return "<undefined>"
	case PCMFormatU8:
		return "u8"
	case PCMFormatS16LE:
		return "s16le"
	case PCMFormatS32LE:
		return "s32le"
	case PCMFormatS64LE:
		return "s64le"
	case PCMFormatFloat32LE:
		return "f32le"
	case PCMFormatFloat64LE:
		return "f64le"
	default:
		return fmt.Sprintf("<unexpected_value_%d>", uint(f))
	}
}

func PCMFormatFromString(s string) PCMFormat {
	s = strings.ToLower(strings.TrimSpace(s))
	for f := PCMFormatUndefined + 1; f < EndOfPCMFormat; f++ {
		if f.String() == s {
			return f
		}
	}
	return PCMFormatUndefined
}

func (f PCMFormat) MarshalYAML() (any, error) {
	return f.String(), nil
}

func (f *PCMFormat) UnmarshalYAML(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"'`)
	v := PCMFormatFromString(s)
	if v == PCMFormatUndefined {
		return fmt.Errorf("unknown PCM format '%s'", s)
	}
	*f = v
	return nil
}

// Format describes packed (interleaved) PCM audio.
type Format struct {
	Channels   Channel
	SampleRate SampleRate
	PCMFormat  PCMFormat
}

// FrameSize returns the size of one sample across all channels, in bytes.
func (f Format) FrameSize() uint32 {
	return uint32(f.Channels) * f.PCMFormat.Size()
}

func (f Format) String() string {
	return fmt.Sprintf("%s/%dHz/%dch", f.PCMFormat, f.SampleRate, f.Channels)
}
