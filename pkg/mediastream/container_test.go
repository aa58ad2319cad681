package mediastream

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/fake"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

func TestOpenRejectsNotRegularFiles(t *testing.T) {
	ctx := testCtx()
	dir := t.TempDir()

	for _, path := range []string{dir, filepath.Join(dir, "does-not-exist.mkv")} {
		opener := &fake.Opener{Demuxer: newAVDemuxer(nil, nil)}
		_, err := Open(ctx, opener, path)
		var errNotRegular types.ErrNotRegularFile
		require.ErrorAs(t, err, &errNotRegular, path)
		assert.Equal(t, path, errNotRegular.Path)
		assert.Empty(t, opener.URLs)
	}
}

func TestOpenRegularFile(t *testing.T) {
	ctx := testCtx()
	path := filepath.Join(t.TempDir(), "media.mkv")
	require.NoError(t, os.WriteFile(path, []byte("not really a matroska file"), 0600))

	opener := &fake.Opener{Demuxer: newAVDemuxer(nil, nil)}
	c, err := Open(ctx, opener, path)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, []string{path}, opener.URLs)
	assert.Equal(t, path, c.URL())
	require.Len(t, c.Streams(), 2)
	assert.Equal(t, types.MediaTypeVideo, c.Streams()[0].MediaType())
	assert.Equal(t, types.MediaTypeAudio, c.Streams()[1].MediaType())
}

func TestOpenURLSkipsFileCheck(t *testing.T) {
	ctx := testCtx()
	opener := &fake.Opener{Demuxer: newAVDemuxer(nil, nil)}
	c, err := Open(ctx, opener, "rtmp://127.0.0.1/live/stream")
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, []string{"rtmp://127.0.0.1/live/stream"}, opener.URLs)
}

func TestOpenUnsupportedFormat(t *testing.T) {
	ctx := testCtx()
	errInvalidData := errors.New("invalid data found when processing input")
	opener := &fake.Opener{Err: errInvalidData}

	_, err := Open(ctx, opener, "file://whatever")
	var errUnsupported types.ErrUnsupportedFormat
	require.ErrorAs(t, err, &errUnsupported)
	require.ErrorIs(t, err, errInvalidData)
	assert.Equal(t, "file://whatever", errUnsupported.URL)
}

func TestContainerStreamNotFound(t *testing.T) {
	c := NewContainer(testCtx(), newAVDemuxer(nil, nil))
	_, err := c.Stream(2)
	require.Error(t, err)
}

func TestContainerClose(t *testing.T) {
	ctx := testCtx()
	d := newAVDemuxer(nil, nil, packet(0, 0, 1))
	c := NewContainer(ctx, d)
	s, err := c.Stream(0)
	require.NoError(t, err)
	_, err = s.DecodeFrames(ctx)
	require.NoError(t, err)
	require.True(t, s.IsCodecOpen())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, d.IsClosed)
	assert.False(t, d.Decoders[0].IsOpen())
	assert.False(t, s.IsCodecOpen())

	_, err = s.DecodeFrames(ctx)
	var errInvariant types.ErrInvariantViolation
	require.ErrorAs(t, err, &errInvariant)
	assert.Equal(t, 1, d.OpenCount[0])
}

type countingObserver struct {
	types.DummyObserver
	frames int
	seeks  int
}

func (o *countingObserver) VideoFrameDecoded(int) { o.frames++ }
func (o *countingObserver) Seeked(int, int64)     { o.seeks++ }

func TestContainerObserver(t *testing.T) {
	ctx := testCtx()
	observer := &countingObserver{}
	d := newAVDemuxer(nil, nil, packet(0, 0, 1), packet(1, 0, 2), packet(0, 1, 3))
	c := NewContainer(ctx, d, OptionObserver{Observer: observer})
	s, err := c.Stream(0)
	require.NoError(t, err)

	data, _ := collectFrames(t, s)
	require.Len(t, data, 2)
	require.NoError(t, s.Seek(ctx, 0))

	assert.Equal(t, 2, observer.frames)
	assert.Equal(t, 1, observer.seeks)
	assert.Equal(t, types.Statistics{
		PacketsRead:        3,
		PacketsSkipped:     1,
		BytesRead:          3,
		VideoFramesDecoded: 2,
		Seeks:              1,
	}, c.Statistics())
}

func TestConfigOptions(t *testing.T) {
	ctx := testCtx()
	cfg := Options{
		OptionAudioBufferInitialCapacity(1024),
		OptionSeekFlags(types.NewSeekFlags(types.SeekFlagBackward)),
	}.Config(ctx)
	assert.Equal(t, 1024, cfg.AudioBufferInitialCapacity)
	assert.True(t, cfg.SeekFlags.Has(types.SeekFlagBackward))
	assert.False(t, cfg.SeekFlags.Has(types.SeekFlagAny))
	assert.Equal(t, cfg, cfg.Options().Config(ctx))

	def := Options{}.Config(ctx)
	assert.True(t, def.SeekFlags.Has(types.SeekFlagAny))
}
