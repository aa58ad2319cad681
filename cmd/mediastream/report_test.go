package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/facebookincubator/go-belt/tool/logger"
	xlogrus "github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/mediastream/pkg/mediastream"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/fake"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

func testContainer(t *testing.T) (context.Context, *mediastream.Container) {
	ctx := logger.CtxWithLogger(context.Background(), xlogrus.Default().WithLevel(logger.LevelTrace))
	demuxer := fake.NewDemuxer(
		[]types.StreamDescriptor{
			{
				Index:     0,
				MediaType: types.MediaTypeAudio,
				CodecName: "pcm_s16le",
				TimeBase:  types.Rational{Num: 1, Den: 8000},
				Duration:  types.NoPTSValue,
			},
			{
				Index:      1,
				MediaType:  types.MediaTypeVideo,
				CodecName:  "h264",
				TimeBase:   types.Rational{Num: 1, Den: 90},
				Duration:   270,
				FrameCount: 3,
				FrameRate:  types.Rational{Num: 1, Den: 1},
				Metadata:   map[string]string{types.MetadataKeyRotate: "90"},
			},
		},
		types.Packet{StreamIndex: 1, Data: []byte{1}, PTS: 0, DTS: 0},
		types.Packet{StreamIndex: 0, Data: []byte{9, 9}, PTS: 0, DTS: 0},
		types.Packet{StreamIndex: 1, Data: []byte{2}, PTS: 90, DTS: 90},
		types.Packet{StreamIndex: 1, Data: []byte{3}, PTS: 180, DTS: 180},
	)
	c := mediastream.NewContainer(ctx, demuxer)
	t.Cleanup(func() { _ = c.Close() })
	return ctx, c
}

func TestSelectStream(t *testing.T) {
	_, c := testContainer(t)

	s, err := selectStream(c, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Index(), "video is preferred")

	s, err = selectStream(c, 0)
	require.NoError(t, err)
	assert.Equal(t, types.MediaTypeAudio, s.MediaType())

	_, err = selectStream(c, 5)
	require.Error(t, err)
}

func TestProcessCountFrames(t *testing.T) {
	ctx, c := testContainer(t)
	s, err := selectStream(c, -1)
	require.NoError(t, err)

	r, err := process(ctx, s, Config{CountFrames: true})
	require.NoError(t, err)
	require.NotNil(t, r.Frames)
	assert.Equal(t, 3, *r.Frames)
	require.NotNil(t, r.LastPTS)
	assert.Equal(t, 2.0, *r.LastPTS)

	report := newReport(c, r)
	require.Len(t, report.Streams, 2)
	assert.Equal(t, "video", report.Streams[1].MediaType)
	require.NotNil(t, report.Streams[1].Rotation)
	assert.Equal(t, 90, *report.Streams[1].Rotation)
	require.NotNil(t, report.Streams[1].Duration)
	assert.Equal(t, 3.0, *report.Streams[1].Duration)
	assert.Nil(t, report.Streams[0].Duration)
	assert.True(t, report.Streams[1].CodecOpened)
	assert.Equal(t, uint64(4), report.Statistics.PacketsRead)
	assert.Equal(t, uint64(3), report.Statistics.VideoFramesDecoded)

	var buf bytes.Buffer
	_, err = report.WriteTo(&buf)
	require.NoError(t, err)

	var parsed Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "fake://media", parsed.URL)
	assert.Len(t, parsed.Streams, 2)
}

func TestProcessSeekAndPosition(t *testing.T) {
	ctx, c := testContainer(t)
	s, err := selectStream(c, 1)
	require.NoError(t, err)

	seek := 0.0
	r, err := process(ctx, s, Config{Seek: &seek, Position: true})
	require.NoError(t, err)
	require.NotNil(t, r.Position)
	assert.Equal(t, 0.0, *r.Position)
	assert.Equal(t, uint64(1), c.Statistics().Seeks)
}
