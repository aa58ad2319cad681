package types

import (
	"fmt"

	audiotypes "github.com/xaionaro-go/mediastream/pkg/audio/types"
)

// AudioFormat is the native output format of an audio decoder.
type AudioFormat struct {
	Channels   audiotypes.Channel
	SampleRate audiotypes.SampleRate
	PCMFormat  audiotypes.PCMFormat
	Planar     bool
}

// Packed returns the format of the same audio in the interleaved layout.
func (f AudioFormat) Packed() audiotypes.Format {
	return audiotypes.Format{
		Channels:   f.Channels,
		SampleRate: f.SampleRate,
		PCMFormat:  f.PCMFormat,
	}
}

func (f AudioFormat) String() string {
	layout := "packed"
	if f.Planar {
		layout = "planar"
	}
	return fmt.Sprintf("%s/%s", f.Packed(), layout)
}

// SampleBlock is one decoded unit of audio spanning all channels.
//
// For a packed format Planes contains exactly one plane with interleaved
// samples; for a planar format it contains one plane per channel.
type SampleBlock struct {
	Format    AudioFormat
	NbSamples int
	Planes    [][]byte
}

// Size returns the amount of bytes of the block:
// channels * samples * sample width.
func (b *SampleBlock) Size() int {
	return int(b.Format.Channels) * b.NbSamples * int(b.Format.PCMFormat.Size())
}

// AppendPacked appends the samples of the block to dst in the interleaved
// layout and returns the extended slice.
func (b *SampleBlock) AppendPacked(dst []byte) ([]byte, error) {
	size := b.Size()
	if !b.Format.Planar {
		if len(b.Planes) < 1 || len(b.Planes[0]) < size {
			return dst, fmt.Errorf("the sample block is expected to contain %d bytes, but it is shorter", size)
		}
		return append(dst, b.Planes[0][:size]...), nil
	}

	channels := int(b.Format.Channels)
	if len(b.Planes) < channels {
		return dst, fmt.Errorf("the sample block has %d planes, but %d channels", len(b.Planes), channels)
	}
	sampleSize := int(b.Format.PCMFormat.Size())
	planeSize := b.NbSamples * sampleSize
	for ch := 0; ch < channels; ch++ {
		if len(b.Planes[ch]) < planeSize {
			return dst, fmt.Errorf("plane %d is expected to contain %d bytes, but contains %d", ch, planeSize, len(b.Planes[ch]))
		}
	}

	offset := len(dst)
	dst = append(dst, make([]byte, size)...)
	out := dst[offset:]
	for i := 0; i < b.NbSamples; i++ {
		for ch := 0; ch < channels; ch++ {
			copy(out, b.Planes[ch][i*sampleSize:(i+1)*sampleSize])
			out = out[sampleSize:]
		}
	}
	return dst, nil
}

func (b *SampleBlock) Reset() {
	b.NbSamples = 0
	b.Planes = b.Planes[:0]
}
