package mediastream

import (
	"context"
	"errors"
	"io"

	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// FrameIterator pulls decoded frames of a video stream one by one:
//
//	it, err := stream.DecodeFrames(ctx)
//	...
//	defer it.Close()
//	for it.Next(ctx) {
//		frame := it.Frame()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
//
// An iterator cannot be restarted; a new one continues from the current
// position of the stream.
type FrameIterator struct {
	decoder *VideoDecoder
	frame   DecodedFrame
	err     error
	done    bool
}

func newFrameIterator(
	stream *Stream,
	decoder *VideoDecoder,
	frame *types.VideoFrame,
) *FrameIterator {
	return &FrameIterator{
		decoder: decoder,
		frame: DecodedFrame{
			VideoFrame: frame,
			Stream:     stream,
		},
	}
}

// Next decodes the next frame, and returns false when there are no frames
// left or an error occurred (see Err).
func (it *FrameIterator) Next(ctx context.Context) bool {
	if it.done {
		return false
	}

	err := it.decoder.ExtractNextFrame(ctx, it.frame.VideoFrame)
	switch {
	case err == nil:
		return true
	case errors.Is(err, io.EOF):
	default:
		it.err = err
	}
	it.done = true
	return false
}

// Frame returns the last decoded frame. The frame is overwritten by the
// next call of Next.
func (it *FrameIterator) Frame() *DecodedFrame {
	return &it.frame
}

func (it *FrameIterator) PTS() (float64, bool) {
	return it.frame.PTSSeconds()
}

func (it *FrameIterator) DTS() (float64, bool) {
	return it.frame.DTSSeconds()
}

func (it *FrameIterator) Err() error {
	return it.err
}

func (it *FrameIterator) Close() {
	it.done = true
}
