package mediastream

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/fake"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

func collectFrames(t *testing.T, s *Stream) ([][]byte, []float64) {
	ctx := testCtx()
	it, err := s.DecodeFrames(ctx)
	require.NoError(t, err)
	defer it.Close()

	var (
		data [][]byte
		pts  []float64
	)
	for it.Next(ctx) {
		frame := it.Frame().Clone()
		data = append(data, frame.Data)
		v, ok := it.PTS()
		require.True(t, ok)
		pts = append(pts, v)
	}
	require.NoError(t, it.Err())
	return data, pts
}

func TestDecodeFramesDrainsBufferedFrames(t *testing.T) {
	d := newAVDemuxer(
		func(d *fake.Decoder) { d.Delay = 1 },
		nil,
		packet(0, 0, 1),
		packet(1, 0, 100),
		packet(0, 3000, 2),
		packet(1, 800, 101),
		packet(0, 6000, 3),
	)
	c := NewContainer(testCtx(), d)
	s, err := c.Stream(0)
	require.NoError(t, err)

	data, pts := collectFrames(t, s)
	assert.Equal(t, [][]byte{{1}, {2}, {3}}, data)
	require.Len(t, pts, 3)
	assert.InDelta(t, 0.0, pts[0], 1e-9)
	assert.InDelta(t, 1.0/30, pts[1], 1e-9)
	assert.InDelta(t, 2.0/30, pts[2], 1e-9)
	assert.Equal(t, uint64(3), c.Statistics().VideoFramesDecoded)
	assert.Equal(t, 2, d.Decoders[0].FlushCalls)
}

func TestDecodeFramesPartialConsumption(t *testing.T) {
	d := newAVDemuxer(
		func(d *fake.Decoder) {
			d.MaxConsume = 2
			d.UnitSize = 3
		},
		nil,
		packet(0, 0, 1, 2, 3, 4, 5, 6),
		packet(0, 3000, 7, 8, 9),
	)
	c := NewContainer(testCtx(), d)
	s, err := c.Stream(0)
	require.NoError(t, err)

	data, _ := collectFrames(t, s)
	assert.Equal(t, [][]byte{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}, data)
}

func TestDecodeFrameOpensCodecOnce(t *testing.T) {
	ctx := testCtx()
	d := newAVDemuxer(nil, nil, packet(0, 0, 1), packet(0, 1, 2))
	c := NewContainer(ctx, d)
	s, err := c.Stream(0)
	require.NoError(t, err)

	count := 0
	consumer := func(ctx context.Context, frame *DecodedFrame) error {
		count++
		return nil
	}
	require.NoError(t, s.DecodeFrame(ctx, consumer))
	require.NoError(t, s.DecodeFrame(ctx, consumer))
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, d.OpenCount[0])
	assert.True(t, s.IsCodecOpen())
}

func TestDecodeFrameWithoutConsumer(t *testing.T) {
	ctx := testCtx()
	d := newAVDemuxer(nil, nil, packet(0, 0, 1))
	c := NewContainer(ctx, d)
	s, err := c.Stream(0)
	require.NoError(t, err)

	err = s.DecodeFrame(ctx, nil)
	var errRuntime types.ErrRuntime
	require.ErrorAs(t, err, &errRuntime)
	var errNoConsumer types.ErrNoConsumer
	require.ErrorAs(t, err, &errNoConsumer)
	assert.Zero(t, d.ReadCount)
	assert.Zero(t, d.OpenCount[0])
}

func TestDecodeFrameConsumerError(t *testing.T) {
	ctx := testCtx()
	d := newAVDemuxer(nil, nil, packet(0, 0, 1), packet(0, 1, 2))
	c := NewContainer(ctx, d)
	s, err := c.Stream(0)
	require.NoError(t, err)

	errStop := errors.New("stop")
	err = s.DecodeFrame(ctx, func(ctx context.Context, frame *DecodedFrame) error {
		return errStop
	})
	require.ErrorIs(t, err, errStop)
	assert.Equal(t, 1, d.ReadCount)
}

func TestDecodeFramesCodecError(t *testing.T) {
	ctx := testCtx()
	d := newAVDemuxer(nil, nil, packet(0, 0, 1))
	d.OpenError = errors.New("codec not found")
	c := NewContainer(ctx, d)
	s, err := c.Stream(0)
	require.NoError(t, err)

	_, err = s.DecodeFrames(ctx)
	var errCodec types.ErrCodec
	require.ErrorAs(t, err, &errCodec)
	assert.Equal(t, 0, errCodec.StreamIndex)
	assert.Equal(t, "fakevideo", errCodec.CodecName)

	duration, ok := s.Duration()
	assert.True(t, ok)
	assert.InDelta(t, 3.0, duration, 1e-9)
}

func TestDecodeFramesOnAudioStream(t *testing.T) {
	ctx := testCtx()
	d := newAVDemuxer(nil, nil, packet(1, 0, 1))
	c := NewContainer(ctx, d)
	s, err := c.Stream(1)
	require.NoError(t, err)

	_, err = s.DecodeFrames(ctx)
	var errRuntime types.ErrRuntime
	require.ErrorAs(t, err, &errRuntime)
}

func TestDecodeFramesDecodeError(t *testing.T) {
	ctx := testCtx()
	d := newAVDemuxer(
		func(d *fake.Decoder) {
			d.Err = errors.New("corrupted")
			d.ErrAt = 1
		},
		nil,
		packet(0, 0, 1), packet(0, 1, 2), packet(0, 2, 3),
	)
	c := NewContainer(ctx, d)
	s, err := c.Stream(0)
	require.NoError(t, err)

	it, err := s.DecodeFrames(ctx)
	require.NoError(t, err)
	require.True(t, it.Next(ctx))
	require.False(t, it.Next(ctx))
	var errRuntime types.ErrRuntime
	require.ErrorAs(t, it.Err(), &errRuntime)
	require.False(t, it.Next(ctx))
}

func TestExtractNextFrameBeforeCodecOpen(t *testing.T) {
	ctx := testCtx()
	d := newAVDemuxer(nil, nil, packet(0, 0, 1))
	codec := newCodecState(d, videoDescriptor(0))
	decoder := newVideoDecoder(NewPacketSource(d, nil), codec, types.DummyObserver{})

	err := decoder.ExtractNextFrame(ctx, types.NewVideoFrame())
	var errInvariant types.ErrInvariantViolation
	require.ErrorAs(t, err, &errInvariant)
	assert.Zero(t, d.ReadCount)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestDecodedFrameIsAView(t *testing.T) {
	ctx := testCtx()
	d := newAVDemuxer(nil, nil, packet(0, 0, 1), packet(0, types.NoPTSValue, 2))
	c := NewContainer(ctx, d)
	s, err := c.Stream(0)
	require.NoError(t, err)

	it, err := s.DecodeFrames(ctx)
	require.NoError(t, err)
	require.True(t, it.Next(ctx))
	view := it.Frame()
	owned := view.Clone()
	require.True(t, it.Next(ctx))

	assert.Equal(t, []byte{2}, view.Data)
	assert.Equal(t, []byte{1}, owned.Data)
	_, ok := it.PTS()
	assert.False(t, ok)
	assert.Zero(t, view.Position())
}
