package mediastream

import (
	"context"
	"errors"
	"io"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// PacketSource reads the packets of a single stream from a container,
// skipping the packets of all other streams.
type PacketSource struct {
	demuxer  types.Demuxer
	observer types.Observer
}

func NewPacketSource(
	demuxer types.Demuxer,
	observer types.Observer,
) *PacketSource {
	if observer == nil {
		observer = types.DummyObserver{}
	}
	return &PacketSource{
		demuxer:  demuxer,
		observer: observer,
	}
}

// NextForStream releases the previous content of pkt and reads into it the
// next packet of stream targetIndex. It returns io.EOF when the container
// has no packets left.
func (s *PacketSource) NextForStream(
	ctx context.Context,
	targetIndex int,
	pkt *types.Packet,
) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if pkt.HasData() {
			pkt.Release()
		}

		err := s.demuxer.ReadPacket(ctx, pkt)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return io.EOF
		default:
			return types.ErrRuntime{Op: "unable to read a packet", Err: err}
		}
		s.observer.PacketRead(pkt.StreamIndex, len(pkt.Data))

		if pkt.StreamIndex == targetIndex {
			logger.Tracef(ctx, "received a packet of stream #%d (pts:%d, dts:%d, size:%d)", pkt.StreamIndex, pkt.PTS, pkt.DTS, len(pkt.Data))
			return nil
		}
		s.observer.PacketSkipped(pkt.StreamIndex)
	}
}
