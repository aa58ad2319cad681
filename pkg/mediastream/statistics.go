package mediastream

import (
	"sync/atomic"

	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// CommonsStatistics is the per-container set of counters. It is also the
// Observer the core reports to; the optional user Observer is chained.
type CommonsStatistics struct {
	PacketsRead        atomic.Uint64
	PacketsSkipped     atomic.Uint64
	BytesRead          atomic.Uint64
	VideoFramesDecoded atomic.Uint64
	AudioBytes         atomic.Uint64
	Seeks              atomic.Uint64

	next types.Observer
}

var _ types.Observer = (*CommonsStatistics)(nil)

func (stats *CommonsStatistics) Convert() types.Statistics {
	return types.Statistics{
		PacketsRead:        stats.PacketsRead.Load(),
		PacketsSkipped:     stats.PacketsSkipped.Load(),
		BytesRead:          stats.BytesRead.Load(),
		VideoFramesDecoded: stats.VideoFramesDecoded.Load(),
		AudioBytesDecoded:  stats.AudioBytes.Load(),
		Seeks:              stats.Seeks.Load(),
	}
}

func (stats *CommonsStatistics) PacketRead(streamIndex int, size int) {
	stats.PacketsRead.Add(1)
	stats.BytesRead.Add(uint64(size))
	if stats.next != nil {
		stats.next.PacketRead(streamIndex, size)
	}
}

func (stats *CommonsStatistics) PacketSkipped(streamIndex int) {
	stats.PacketsSkipped.Add(1)
	if stats.next != nil {
		stats.next.PacketSkipped(streamIndex)
	}
}

func (stats *CommonsStatistics) VideoFrameDecoded(streamIndex int) {
	stats.VideoFramesDecoded.Add(1)
	if stats.next != nil {
		stats.next.VideoFrameDecoded(streamIndex)
	}
}

func (stats *CommonsStatistics) AudioBytesDecoded(streamIndex int, size int) {
	stats.AudioBytes.Add(uint64(size))
	if stats.next != nil {
		stats.next.AudioBytesDecoded(streamIndex, size)
	}
}

func (stats *CommonsStatistics) Seeked(streamIndex int, timestamp int64) {
	stats.Seeks.Add(1)
	if stats.next != nil {
		stats.next.Seeked(streamIndex, timestamp)
	}
}
