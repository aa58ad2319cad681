package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	audiotypes "github.com/xaionaro-go/mediastream/pkg/audio/types"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/libav"
)

func TestConfigWriteRead(t *testing.T) {
	seek := 1.5
	cfg := Config{
		URL:           "/tmp/clip.mkv",
		CustomOptions: []libav.CustomOption{{Key: "probesize", Value: "32"}},
		StreamIndex:   1,
		Seek:          &seek,
		CountFrames:   true,
		Audio: AudioConfig{
			Decode:     true,
			Channels:   2,
			SampleRate: 48000,
		},
	}

	var buf bytes.Buffer
	n, err := cfg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	var parsed Config
	_, err = parsed.ReadFrom(&buf)
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestReadConfigFromPath(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mediastream.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("url: rtsp://camera/stream\nstream_index: 0\naudio:\n  decode: true\n  sample_rate: 16000\n"), 0644))

	cfg := defaultConfig()
	require.NoError(t, readConfigFromPath(t.Context(), cfgPath, &cfg))
	assert.Equal(t, "rtsp://camera/stream", cfg.URL)
	assert.Equal(t, 0, cfg.StreamIndex)
	assert.True(t, cfg.Audio.Decode)
	assert.Equal(t, 16000, cfg.Audio.SampleRate)

	require.Error(t, readConfigFromPath(t.Context(), filepath.Join(dir, "missing.yaml"), &cfg))
}

func TestApplyFlags(t *testing.T) {
	flags, err := parseFlags([]string{"mediastream", "--stream", "2", "--seek", "3", "-o", "rtsp_transport=tcp", "--decode-audio", "--channels", "1", "/tmp/a.mp4"})
	require.NoError(t, err)

	cfg := defaultConfig()
	cfg.Audio.SampleRate = 8000
	require.NoError(t, cfg.applyFlags(flags))

	assert.Equal(t, "/tmp/a.mp4", cfg.URL)
	assert.Equal(t, 2, cfg.StreamIndex)
	require.NotNil(t, cfg.Seek)
	assert.Equal(t, 3.0, *cfg.Seek)
	assert.Nil(t, cfg.SeekFrame)
	assert.Equal(t, []libav.CustomOption{{Key: "rtsp_transport", Value: "tcp"}}, cfg.CustomOptions)
	assert.True(t, cfg.Audio.Decode)
	assert.Equal(t, 1, cfg.Audio.Channels)
	assert.Equal(t, 8000, cfg.Audio.SampleRate, "not overridden by a flag that was not set")
	assert.True(t, cfg.needsStream())
	assert.Len(t, cfg.libavOptions(), 1)
}

func TestApplyFlagsErrors(t *testing.T) {
	flags, err := parseFlags([]string{"mediastream", "-o", "novalue"})
	require.NoError(t, err)
	cfg := defaultConfig()
	require.Error(t, cfg.applyFlags(flags))

	flags, err = parseFlags([]string{"mediastream", "--seek", "1", "--seek-frame", "2"})
	require.NoError(t, err)
	cfg = defaultConfig()
	require.Error(t, cfg.applyFlags(flags))

	_, err = parseFlags([]string{"mediastream", "a", "b"})
	require.Error(t, err)
}

func TestAudioLength(t *testing.T) {
	length, ok := audioLength(4*48000, audiotypes.Format{
		Channels:   2,
		SampleRate: 48000,
		PCMFormat:  audiotypes.PCMFormatS16LE,
	})
	require.True(t, ok)
	assert.Equal(t, 1.0, length)

	_, ok = audioLength(100, audiotypes.Format{})
	assert.False(t, ok)
}
