package mediastream

import (
	"context"

	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
	"github.com/xaionaro-go/xsync"
)

// LockedStream serializes the access to a Stream.
//
// All the streams of a container share the read cursor, so all the
// LockedStream-s of a container share the same mutex.
type LockedStream struct {
	stream *Stream
	locker *xsync.Mutex
}

// Locked returns the streams of the container wrapped into LockedStream-s
// sharing one mutex.
func (c *Container) Locked() []*LockedStream {
	locker := &xsync.Mutex{}
	result := make([]*LockedStream, 0, len(c.streams))
	for _, s := range c.streams {
		result = append(result, &LockedStream{
			stream: s,
			locker: locker,
		})
	}
	return result
}

// Descriptor does not need the lock: the descriptor is immutable.
func (s *LockedStream) Descriptor() types.StreamDescriptor {
	return s.stream.Descriptor()
}

func (s *LockedStream) Index() int {
	return s.stream.Index()
}

func (s *LockedStream) MediaType() types.MediaType {
	return s.stream.MediaType()
}

func (s *LockedStream) Duration() (float64, bool) {
	return s.stream.Duration()
}

func (s *LockedStream) Rotation() (string, bool) {
	return s.stream.Rotation()
}

// DecodeFrame holds the lock for the whole decoding.
func (s *LockedStream) DecodeFrame(
	ctx context.Context,
	consumer FrameConsumer,
) error {
	return xsync.DoA2R1(ctx, s.locker, s.stream.DecodeFrame, ctx, consumer)
}

func (s *LockedStream) DecodeAudio(
	ctx context.Context,
	channels int,
	sampleRate int,
) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	s.locker.Do(ctx, func() {
		data, err = s.stream.DecodeAudio(ctx, channels, sampleRate)
	})
	return data, err
}

func (s *LockedStream) Seek(ctx context.Context, seconds float64) error {
	return xsync.DoA2R1(ctx, s.locker, s.stream.Seek, ctx, seconds)
}

func (s *LockedStream) SeekByFrame(ctx context.Context, frameIndex int64) error {
	return xsync.DoA2R1(ctx, s.locker, s.stream.SeekByFrame, ctx, frameIndex)
}

func (s *LockedStream) Position(ctx context.Context) (float64, error) {
	return xsync.DoA1R2(ctx, s.locker, s.stream.Position, ctx)
}

func (s *LockedStream) IsCodecOpen(ctx context.Context) bool {
	return xsync.DoR1(ctx, s.locker, s.stream.IsCodecOpen)
}
