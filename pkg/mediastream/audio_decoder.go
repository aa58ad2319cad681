package mediastream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/mediastream/pkg/audio/accumulator"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// AudioDecoder decodes the whole remaining audio of a stream at once.
type AudioDecoder struct {
	source          *PacketSource
	codec           *codecState
	observer        types.Observer
	streamIndex     int
	initialCapacity int

	packet  *types.Packet
	block   types.SampleBlock
	scratch []byte
}

func newAudioDecoder(
	source *PacketSource,
	codec *codecState,
	observer types.Observer,
	initialCapacity int,
) *AudioDecoder {
	return &AudioDecoder{
		source:          source,
		codec:           codec,
		observer:        observer,
		streamIndex:     codec.descriptor.Index,
		initialCapacity: initialCapacity,
		packet:          types.NewPacket(),
	}
}

// ExtractAllAudio decodes all the audio from the current position of the
// container up to its end, and returns the samples in the native sample
// format of the decoder, interleaved.
//
// The result is never nil on success: a stream without audio yields an
// empty slice. On failure nothing decoded so far is returned.
func (d *AudioDecoder) ExtractAllAudio(
	ctx context.Context,
) (_ret []byte, _err error) {
	logger.Debugf(ctx, "ExtractAllAudio(stream #%d)", d.streamIndex)
	defer func() { logger.Debugf(ctx, "/ExtractAllAudio(stream #%d): %d bytes, %v", d.streamIndex, len(_ret), _err) }()

	decoder, err := d.codec.get()
	if err != nil {
		return nil, err
	}
	defer d.packet.Release()

	acc := accumulator.New(d.initialCapacity)

	// drain by packets
	for {
		produced, err := d.decodeUntilBlock(ctx, decoder, acc)
		if err != nil {
			return nil, err
		}
		if produced <= 0 {
			break
		}
	}

	// drain the decoder-internal buffers
	d.packet.Release()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		flush := types.Packet{
			StreamIndex: d.streamIndex,
			PTS:         types.NoPTSValue,
			DTS:         types.NoPTSValue,
		}
		_, complete, err := decoder.DecodeAudio(&flush, &d.block)
		if err != nil {
			return nil, types.ErrRuntime{Op: "unable to drain the audio decoder", Err: err}
		}
		if !complete {
			break
		}
		if _, err := d.appendBlock(acc); err != nil {
			return nil, err
		}
	}

	logger.Debugf(ctx, "accumulated audio of stream #%d: %s (grew %d times)", d.streamIndex, acc, acc.GrowCount())
	return acc.CopyOut(), nil
}

// decodeUntilBlock reads packets until at least one of them completes a
// sample block (or until the end of the stream), and returns the amount of
// bytes appended to acc.
func (d *AudioDecoder) decodeUntilBlock(
	ctx context.Context,
	decoder types.Decoder,
	acc *accumulator.Accumulator,
) (int, error) {
	produced := 0
	frameComplete := false
	for !frameComplete {
		err := d.source.NextForStream(ctx, d.streamIndex, d.packet)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return produced, nil
		default:
			return produced, err
		}

		remaining := d.packet.Data
		for len(remaining) > 0 {
			view := d.packet.View(remaining)
			consumed, complete, err := decoder.DecodeAudio(&view, &d.block)
			if err != nil {
				return produced, types.ErrRuntime{Op: "unable to decode an audio packet", Err: err}
			}
			if err := checkConsumed(consumed, complete, len(remaining)); err != nil {
				return produced, err
			}
			remaining = remaining[consumed:]
			if !complete {
				continue
			}
			frameComplete = true
			n, err := d.appendBlock(acc)
			if err != nil {
				return produced, err
			}
			produced += n
		}
	}
	return produced, nil
}

func (d *AudioDecoder) appendBlock(acc *accumulator.Accumulator) (int, error) {
	var err error
	d.scratch, err = d.block.AppendPacked(d.scratch[:0])
	if err != nil {
		return 0, types.ErrRuntime{
			Op:  "unable to copy a decoded sample block",
			Err: fmt.Errorf("stream #%d: %w", d.streamIndex, err),
		}
	}
	acc.Append(d.scratch)
	d.observer.AudioBytesDecoded(d.streamIndex, len(d.scratch))
	return len(d.scratch), nil
}
