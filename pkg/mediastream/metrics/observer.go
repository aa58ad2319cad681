// Package metrics exports the activity of containers as go-belt metrics.
package metrics

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/experimental/metrics"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

const (
	KeyPacketsRead        = "mediastream_packets_read"
	KeyPacketsSkipped     = "mediastream_packets_skipped"
	KeyBytesRead          = "mediastream_bytes_read"
	KeyVideoFramesDecoded = "mediastream_video_frames_decoded"
	KeyAudioBytesDecoded  = "mediastream_audio_bytes_decoded"
	KeySeeks              = "mediastream_seeks"
)

// Observer counts the activity reported by a container into the metrics of
// a context, and forwards every notification to Next (if set).
type Observer struct {
	Metrics metrics.Metrics
	Next    types.Observer
}

var _ types.Observer = (*Observer)(nil)

func NewObserver(
	ctx context.Context,
	next types.Observer,
) *Observer {
	return &Observer{
		Metrics: metrics.FromCtx(ctx),
		Next:    next,
	}
}

func (o *Observer) PacketRead(streamIndex int, size int) {
	o.Metrics.Count(KeyPacketsRead).Add(1)
	o.Metrics.Count(KeyBytesRead).Add(uint64(size))
	if o.Next != nil {
		o.Next.PacketRead(streamIndex, size)
	}
}

func (o *Observer) PacketSkipped(streamIndex int) {
	o.Metrics.Count(KeyPacketsSkipped).Add(1)
	if o.Next != nil {
		o.Next.PacketSkipped(streamIndex)
	}
}

func (o *Observer) VideoFrameDecoded(streamIndex int) {
	o.Metrics.Count(KeyVideoFramesDecoded).Add(1)
	if o.Next != nil {
		o.Next.VideoFrameDecoded(streamIndex)
	}
}

func (o *Observer) AudioBytesDecoded(streamIndex int, size int) {
	o.Metrics.Count(KeyAudioBytesDecoded).Add(uint64(size))
	if o.Next != nil {
		o.Next.AudioBytesDecoded(streamIndex, size)
	}
}

func (o *Observer) Seeked(streamIndex int, timestamp int64) {
	o.Metrics.Count(KeySeeks).Add(1)
	if o.Next != nil {
		o.Next.Seeked(streamIndex, timestamp)
	}
}
