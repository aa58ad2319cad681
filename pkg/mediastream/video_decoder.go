package mediastream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// VideoDecoder extracts complete frames from a video stream.
//
// A packet may carry less or more than one frame, so the unconsumed bytes of
// the current packet are kept between calls. When the container runs out of
// packets the decoder is drained with empty packets until it has no frames
// left.
type VideoDecoder struct {
	source      *PacketSource
	codec       *codecState
	observer    types.Observer
	streamIndex int

	packet    *types.Packet
	remaining []byte
	draining  bool
	ended     bool
}

func newVideoDecoder(
	source *PacketSource,
	codec *codecState,
	observer types.Observer,
) *VideoDecoder {
	return &VideoDecoder{
		source:      source,
		codec:       codec,
		observer:    observer,
		streamIndex: codec.descriptor.Index,
		packet:      types.NewPacket(),
	}
}

// ExtractNextFrame decodes the next complete frame into frame. It returns
// io.EOF when there are no frames left.
func (d *VideoDecoder) ExtractNextFrame(
	ctx context.Context,
	frame *types.VideoFrame,
) (_err error) {
	logger.Tracef(ctx, "ExtractNextFrame")
	defer func() { logger.Tracef(ctx, "/ExtractNextFrame: %v", _err) }()

	decoder, err := d.codec.get()
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.ended {
			return io.EOF
		}

		if d.draining {
			return d.drainNextFrame(decoder, frame)
		}

		if len(d.remaining) == 0 {
			err := d.source.NextForStream(ctx, d.streamIndex, d.packet)
			switch {
			case err == nil:
			case errors.Is(err, io.EOF):
				logger.Debugf(ctx, "no packets left in stream #%d, draining the decoder", d.streamIndex)
				d.packet.Release()
				d.draining = true
				continue
			default:
				return err
			}
			d.remaining = d.packet.Data
			if len(d.remaining) == 0 {
				// an empty packet would be interpreted as a drain request
				continue
			}
		}

		view := d.packet.View(d.remaining)
		frame.PTS, frame.DTS = types.NoPTSValue, types.NoPTSValue
		consumed, complete, err := decoder.DecodeVideo(&view, frame)
		if err != nil {
			return types.ErrRuntime{Op: "unable to decode a video packet", Err: err}
		}
		if err := checkConsumed(consumed, complete, len(d.remaining)); err != nil {
			return err
		}
		d.remaining = d.remaining[consumed:]
		if complete {
			d.completeFrame(frame, &view)
			return nil
		}
	}
}

func (d *VideoDecoder) drainNextFrame(
	decoder types.Decoder,
	frame *types.VideoFrame,
) error {
	flush := types.Packet{
		StreamIndex: d.streamIndex,
		PTS:         types.NoPTSValue,
		DTS:         types.NoPTSValue,
	}
	frame.PTS, frame.DTS = types.NoPTSValue, types.NoPTSValue
	_, complete, err := decoder.DecodeVideo(&flush, frame)
	if err != nil {
		return types.ErrRuntime{Op: "unable to drain the video decoder", Err: err}
	}
	if !complete {
		d.ended = true
		return io.EOF
	}
	d.completeFrame(frame, &flush)
	return nil
}

func (d *VideoDecoder) completeFrame(
	frame *types.VideoFrame,
	pkt *types.Packet,
) {
	if frame.PTS == types.NoPTSValue {
		frame.PTS = pkt.PTS
	}
	if frame.DTS == types.NoPTSValue {
		frame.DTS = pkt.DTS
	}
	d.observer.VideoFrameDecoded(d.streamIndex)
}

// Reset forgets the current packet and restarts decoding from the current
// position of the container.
func (d *VideoDecoder) Reset() {
	d.packet.Release()
	d.remaining = nil
	d.draining = false
	d.ended = false
}

func (d *VideoDecoder) Close() {
	d.Reset()
}

func checkConsumed(consumed int, complete bool, available int) error {
	if consumed < 0 || consumed > available {
		return types.ErrRuntime{
			Op:  "unable to decode a packet",
			Err: fmt.Errorf("the decoder reported %d consumed bytes out of %d", consumed, available),
		}
	}
	if consumed == 0 && !complete {
		return types.ErrRuntime{
			Op:  "unable to decode a packet",
			Err: fmt.Errorf("the decoder made no progress on a packet of %d bytes", available),
		}
	}
	return nil
}
