package types

import (
	"context"
)

// ContainerOpener opens media containers.
type ContainerOpener interface {
	// OpenContainer opens the container and probes its streams. It returns
	// ErrUnsupportedFormat if either fails.
	OpenContainer(ctx context.Context, url string) (Demuxer, error)
}

// Demuxer is an opened container.
type Demuxer interface {
	URL() string
	Streams() []StreamDescriptor

	// StartTime returns the start offset of the container in TimeBase units,
	// or NoPTSValue.
	StartTime() int64

	// ReadPacket reads the next packet of any stream into pkt. It returns
	// io.EOF when there are no packets left.
	ReadPacket(ctx context.Context, pkt *Packet) error

	SeekFrame(ctx context.Context, streamIndex int, timestamp int64, flags SeekFlags) error

	// OpenDecoder finds and opens a decoder for the stream. It returns
	// ErrCodec if the codec is not found or cannot be opened.
	OpenDecoder(ctx context.Context, streamIndex int) (Decoder, error)

	Close() error
}

// Decoder is a stateful decoder of a single stream.
//
// Both decode functions consume a prefix of pkt.Data and return the amount of
// bytes consumed, and whether the output argument now holds a complete frame
// (or sample block). An empty packet requests the decoder to drain its
// buffered output.
type Decoder interface {
	Kind() MediaType
	IsOpen() bool
	DecodeVideo(pkt *Packet, frame *VideoFrame) (consumed int, complete bool, err error)
	DecodeAudio(pkt *Packet, block *SampleBlock) (consumed int, complete bool, err error)
	AudioFormat() AudioFormat

	// Reset drops all the buffered state of the decoder; it is called after
	// the read cursor of the container is repositioned.
	Reset() error

	Close() error
}

// Observer receives notifications about the work done. All methods must be
// cheap and must not block.
type Observer interface {
	PacketRead(streamIndex int, size int)
	PacketSkipped(streamIndex int)
	VideoFrameDecoded(streamIndex int)
	AudioBytesDecoded(streamIndex int, size int)
	Seeked(streamIndex int, timestamp int64)
}

type DummyObserver struct{}

var _ Observer = DummyObserver{}

func (DummyObserver) PacketRead(int, int)        {}
func (DummyObserver) PacketSkipped(int)          {}
func (DummyObserver) VideoFrameDecoded(int)      {}
func (DummyObserver) AudioBytesDecoded(int, int) {}
func (DummyObserver) Seeked(int, int64)          {}
