package types

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	audiotypes "github.com/xaionaro-go/mediastream/pkg/audio/types"
)

func TestPacketRelease(t *testing.T) {
	released := 0
	p := NewPacket()
	assert.False(t, p.HasData())
	assert.True(t, p.IsEmpty())

	p.StreamIndex = 2
	p.Data = []byte{1, 2, 3}
	p.PTS = 10
	p.SetReleaseFunc(func() { released++ })
	assert.True(t, p.HasData())

	view := p.View(p.Data[1:])
	assert.Equal(t, []byte{2, 3}, view.Data)
	assert.Equal(t, int64(10), view.PTS)
	view.Release()
	assert.Zero(t, released, "a view must not own the packet resources")

	p.Release()
	assert.Equal(t, 1, released)
	assert.False(t, p.HasData())
	assert.Equal(t, NoPTSValue, p.PTS)
	assert.Equal(t, -1, p.StreamIndex)

	p.Release()
	assert.Equal(t, 1, released)
}

func TestVideoFrameClone(t *testing.T) {
	f := NewVideoFrame()
	f.Width, f.Height = 2, 1
	f.Data = []byte{1, 2}
	f.PTS = 5
	f.Native = struct{}{}

	c := f.Clone()
	f.Data[0] = 9
	assert.Equal(t, []byte{1, 2}, c.Data)
	assert.Equal(t, int64(5), c.PTS)
	assert.Nil(t, c.Native)

	var nilFrame *VideoFrame
	assert.Nil(t, nilFrame.Clone())
}

func TestSampleBlockAppendPacked(t *testing.T) {
	format := AudioFormat{
		Channels:   2,
		SampleRate: 48000,
		PCMFormat:  audiotypes.PCMFormatS16LE,
	}

	t.Run("packed", func(t *testing.T) {
		b := SampleBlock{Format: format, NbSamples: 2, Planes: [][]byte{{1, 1, 2, 2, 3, 3, 4, 4, 0xff}}}
		assert.Equal(t, 8, b.Size())
		out, err := b.AppendPacked([]byte{0})
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 1, 1, 2, 2, 3, 3, 4, 4}, out)
	})

	t.Run("planar", func(t *testing.T) {
		planar := format
		planar.Planar = true
		b := SampleBlock{Format: planar, NbSamples: 2, Planes: [][]byte{{1, 1, 2, 2}, {3, 3, 4, 4}}}
		out, err := b.AppendPacked(nil)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 1, 3, 3, 2, 2, 4, 4}, out)
	})

	t.Run("short", func(t *testing.T) {
		planar := format
		planar.Planar = true
		b := SampleBlock{Format: planar, NbSamples: 2, Planes: [][]byte{{1, 1, 2, 2}, {3, 3}}}
		_, err := b.AppendPacked(nil)
		require.Error(t, err)

		b = SampleBlock{Format: format, NbSamples: 2, Planes: [][]byte{{1, 1}}}
		_, err = b.AppendPacked(nil)
		require.Error(t, err)
	})
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("cause")
	for _, err := range []error{
		ErrUnsupportedFormat{URL: "a", Err: cause},
		ErrCodec{StreamIndex: 1, CodecName: "h264", Err: cause},
		ErrRange{URL: "a", Position: 1.5, Err: cause},
		ErrRuntime{Op: "op", Err: cause},
	} {
		wrapped := fmt.Errorf("wrapped: %w", err)
		assert.ErrorIs(t, wrapped, cause, "%T", err)
	}

	var errInvariant ErrInvariantViolation
	assert.ErrorAs(t, fmt.Errorf("x: %w", ErrInvariantViolation{Reason: "r"}), &errInvariant)
	assert.Equal(t, "r", errInvariant.Reason)
}

func TestStreamDescriptorTicks(t *testing.T) {
	d := StreamDescriptor{TimeBase: Rational{Num: 1, Den: 4}}
	assert.Equal(t, 1.5, d.TicksToSeconds(6))
	assert.Equal(t, 1500*time.Millisecond, d.TicksToDuration(6))
	assert.Zero(t, Rational{}.Float64())
	assert.True(t, Rational{Num: 0, Den: 1}.IsZero())
}
