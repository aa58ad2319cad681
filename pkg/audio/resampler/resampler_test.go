package resampler

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/mediastream/pkg/audio/types"
)

func float32Samples(values ...float32) []byte {
	b := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func s16Samples(b []byte) []int16 {
	result := make([]int16, len(b)/2)
	for i := range result {
		result[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return result
}

func TestRescaleRoundUp(t *testing.T) {
	assert.Equal(t, int64(0), RescaleRoundUp(0, 48000, 44100))
	assert.Equal(t, int64(10), RescaleRoundUp(10, 1, 1))
	assert.Equal(t, int64(20), RescaleRoundUp(10, 2, 1))
	assert.Equal(t, int64(4), RescaleRoundUp(10, 1, 3))
	assert.Equal(t, int64(1103), RescaleRoundUp(1200, 44100, 48000))
	assert.Equal(t, int64(math.MaxInt64), RescaleRoundUp(math.MaxInt64, 2, 1))
}

func TestResampleSameRateSameChannels(t *testing.T) {
	in := Format{Channels: 2, SampleRate: 48000, PCMFormat: types.PCMFormatFloat32LE}
	out := Format{Channels: 2, SampleRate: 48000, PCMFormat: types.PCMFormatS16LE}

	src := float32Samples(0, 0, 0.5, -0.5, 1, -1, 0.25, -0.25)
	dst, err := Resample(src, in, out)
	require.NoError(t, err)

	inSamples := len(src) / int(in.FrameSize())
	outSamples := len(dst) / int(out.FrameSize())
	assert.Equal(t, inSamples, outSamples)
	assert.Equal(t, []int16{0, 0, 16384, -16384, 32767, -32768, 8192, -8192}, s16Samples(dst))
}

func TestResampleDoubleRate(t *testing.T) {
	in := Format{Channels: 1, SampleRate: 22050, PCMFormat: types.PCMFormatFloat32LE}
	out := Format{Channels: 1, SampleRate: 44100, PCMFormat: types.PCMFormatS16LE}

	src := float32Samples(0, 0.5, 0.5, 0)
	dst, err := Resample(src, in, out)
	require.NoError(t, err)

	assert.Equal(t, 8, len(dst)/int(out.FrameSize()))
	assert.Equal(t, []int16{0, 8192, 16384, 16384, 16384, 8192, 0, 0}, s16Samples(dst))
}

func TestResampleHalfRateRoundsUp(t *testing.T) {
	in := Format{Channels: 1, SampleRate: 48000, PCMFormat: types.PCMFormatFloat32LE}
	out := Format{Channels: 1, SampleRate: 24000, PCMFormat: types.PCMFormatS16LE}

	r, err := New(in, out)
	require.NoError(t, err)

	src := float32Samples(0, 0, 0, 0, 0)
	assert.Equal(t, 3*2, r.OutputSize(len(src)))
	dst, err := r.Resample(src)
	require.NoError(t, err)
	assert.Len(t, dst, 6)
}

func TestResampleChannels(t *testing.T) {
	t.Run("mono_to_stereo", func(t *testing.T) {
		dst, err := Resample(
			float32Samples(0.5, -0.5),
			Format{Channels: 1, SampleRate: 8000, PCMFormat: types.PCMFormatFloat32LE},
			Format{Channels: 2, SampleRate: 8000, PCMFormat: types.PCMFormatS16LE},
		)
		require.NoError(t, err)
		assert.Equal(t, []int16{16384, 16384, -16384, -16384}, s16Samples(dst))
	})
	t.Run("stereo_to_mono", func(t *testing.T) {
		dst, err := Resample(
			float32Samples(0.5, 0, 1, 0.5),
			Format{Channels: 2, SampleRate: 8000, PCMFormat: types.PCMFormatFloat32LE},
			Format{Channels: 1, SampleRate: 8000, PCMFormat: types.PCMFormatS16LE},
		)
		require.NoError(t, err)
		assert.Equal(t, []int16{8192, 24576}, s16Samples(dst))
	})
}

func TestResampleIntoTooSmall(t *testing.T) {
	r, err := New(
		Format{Channels: 1, SampleRate: 8000, PCMFormat: types.PCMFormatFloat32LE},
		Format{Channels: 1, SampleRate: 16000, PCMFormat: types.PCMFormatS16LE},
	)
	require.NoError(t, err)

	src := float32Samples(0, 0, 0)
	_, err = r.ResampleInto(make([]byte, r.OutputSize(len(src))-1), src)
	var errTooSmall ErrDestinationTooSmall
	require.True(t, errors.As(err, &errTooSmall))
	assert.Equal(t, 12, errTooSmall.Required)
}

func TestResampleInvalidInput(t *testing.T) {
	_, err := Resample(
		[]byte{1, 2, 3},
		Format{Channels: 1, SampleRate: 8000, PCMFormat: types.PCMFormatFloat32LE},
		Format{Channels: 1, SampleRate: 8000, PCMFormat: types.PCMFormatS16LE},
	)
	require.Error(t, err)

	_, err = New(
		Format{Channels: 0, SampleRate: 8000, PCMFormat: types.PCMFormatFloat32LE},
		Format{Channels: 1, SampleRate: 8000, PCMFormat: types.PCMFormatS16LE},
	)
	require.Error(t, err)
}
