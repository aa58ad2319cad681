package types

import (
	"fmt"
)

// VideoFrame is a decoded picture.
//
// A frame yielded by a decoding loop is a view: the same VideoFrame is
// overwritten by every decoding iteration. Use Clone to retain it.
type VideoFrame struct {
	Width       int
	Height      int
	PixelFormat string
	Data        []byte
	PTS         int64
	DTS         int64

	// Native is the backend-specific representation of the frame (if any).
	// It is not preserved by Clone.
	Native any
}

func NewVideoFrame() *VideoFrame {
	return &VideoFrame{
		PTS: NoPTSValue,
		DTS: NoPTSValue,
	}
}

// Clone returns a copy of the frame that owns its data.
func (f *VideoFrame) Clone() *VideoFrame {
	if f == nil {
		return nil
	}
	result := *f
	result.Native = nil
	if f.Data != nil {
		result.Data = make([]byte, len(f.Data))
		copy(result.Data, f.Data)
	}
	return &result
}

func (f *VideoFrame) Reset() {
	f.Width, f.Height = 0, 0
	f.PixelFormat = ""
	f.Data = f.Data[:0]
	f.PTS = NoPTSValue
	f.DTS = NoPTSValue
}

func (f *VideoFrame) String() string {
	return fmt.Sprintf("%dx%d %s (%d bytes, pts:%d, dts:%d)", f.Width, f.Height, f.PixelFormat, len(f.Data), f.PTS, f.DTS)
}
