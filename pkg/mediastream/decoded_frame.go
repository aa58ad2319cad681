package mediastream

import (
	"time"

	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// DecodedFrame is a decoded video frame of a stream.
//
// A DecodedFrame yielded by a FrameIterator is valid only until the next
// call of Next; use Clone to retain it.
type DecodedFrame struct {
	*types.VideoFrame
	Stream *Stream
}

// PTSSeconds returns the presentation timestamp in seconds, and false if it
// is unknown.
func (f *DecodedFrame) PTSSeconds() (float64, bool) {
	return f.toSeconds(f.VideoFrame.PTS)
}

// DTSSeconds returns the decoding timestamp in seconds, and false if it is
// unknown.
func (f *DecodedFrame) DTSSeconds() (float64, bool) {
	return f.toSeconds(f.VideoFrame.DTS)
}

func (f *DecodedFrame) toSeconds(ts int64) (float64, bool) {
	if ts == types.NoPTSValue {
		return 0, false
	}
	return f.Stream.descriptor.TicksToSeconds(ts), true
}

func (f *DecodedFrame) Position() time.Duration {
	if f.VideoFrame.PTS == types.NoPTSValue {
		return 0
	}
	return f.Stream.descriptor.TicksToDuration(f.VideoFrame.PTS)
}

func (f *DecodedFrame) Clone() *DecodedFrame {
	return &DecodedFrame{
		VideoFrame: f.VideoFrame.Clone(),
		Stream:     f.Stream,
	}
}
