package libav

import (
	"context"
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/facebookincubator/go-belt/tool/logger"
	audiotypes "github.com/xaionaro-go/mediastream/pkg/audio/types"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// Decoder adapts the send/receive API of FFmpeg to the consume/complete
// model of types.Decoder: a packet is always sent as a whole.
type Decoder struct {
	formatContext *astiav.FormatContext
	stream        *astiav.Stream
	codec         *astiav.Codec
	codecContext  *astiav.CodecContext
	frame         *astiav.Frame
	sendPacket    *astiav.Packet

	kind    types.MediaType
	flushed bool
	samples []byte
}

var _ types.Decoder = (*Decoder)(nil)

func newDecoder(
	ctx context.Context,
	formatContext *astiav.FormatContext,
	stream *astiav.Stream,
) (_ret *Decoder, _err error) {
	logger.Debugf(ctx, "newDecoder(stream #%d)", stream.Index())
	defer func() { logger.Debugf(ctx, "/newDecoder(stream #%d): %v", stream.Index(), _err) }()

	d := &Decoder{
		formatContext: formatContext,
		stream:        stream,
		kind:          mediaTypeFromAstiav(stream.CodecParameters().MediaType()),
	}
	d.codec = astiav.FindDecoder(stream.CodecParameters().CodecID())
	if d.codec == nil {
		return nil, fmt.Errorf("unable to find a codec using codec ID %v", stream.CodecParameters().CodecID())
	}
	if err := d.openCodecContext(); err != nil {
		return nil, err
	}
	d.frame = astiav.AllocFrame()
	return d, nil
}

func (d *Decoder) openCodecContext() (_err error) {
	codecContext := astiav.AllocCodecContext(d.codec)
	if codecContext == nil {
		return fmt.Errorf("unable to allocate codec context")
	}
	defer func() {
		if _err != nil {
			codecContext.Free()
		}
	}()

	if err := d.stream.CodecParameters().ToCodecContext(codecContext); err != nil {
		return fmt.Errorf("CodecParameters().ToCodecContext(...) returned error: %w", err)
	}
	if d.kind == types.MediaTypeVideo {
		codecContext.SetFramerate(d.formatContext.GuessFrameRate(d.stream, nil))
	}
	if err := codecContext.Open(d.codec, nil); err != nil {
		return fmt.Errorf("unable to open codec context: %w", err)
	}

	d.codecContext = codecContext
	d.flushed = false
	return nil
}

func (d *Decoder) Kind() types.MediaType {
	return d.kind
}

func (d *Decoder) IsOpen() bool {
	return d.codecContext != nil
}

func (d *Decoder) AudioFormat() types.AudioFormat {
	if d.codecContext == nil {
		return types.AudioFormat{}
	}
	pcmFormat, planar := pcmFormatFromAstiav(d.codecContext.SampleFormat())
	return types.AudioFormat{
		Channels:   audiotypes.Channel(d.codecContext.ChannelLayout().Channels()),
		SampleRate: audiotypes.SampleRate(d.codecContext.SampleRate()),
		PCMFormat:  pcmFormat,
		Planar:     planar,
	}
}

// Reset reopens the codec context, dropping everything buffered in it.
func (d *Decoder) Reset() error {
	if d.codecContext == nil {
		return fmt.Errorf("the decoder is closed")
	}
	d.codecContext.Free()
	d.codecContext = nil
	return d.openCodecContext()
}

func (d *Decoder) Close() error {
	if d.codecContext != nil {
		d.codecContext.Free()
		d.codecContext = nil
	}
	if d.frame != nil {
		d.frame.Free()
		d.frame = nil
	}
	if d.sendPacket != nil {
		d.sendPacket.Free()
		d.sendPacket = nil
	}
	return nil
}

// decode feeds pkt to the codec and tries to receive one frame into d.frame.
func (d *Decoder) decode(pkt *types.Packet) (int, bool, error) {
	if d.codecContext == nil {
		return 0, false, fmt.Errorf("the decoder is closed")
	}

	if pkt.IsEmpty() {
		if !d.flushed {
			if err := d.codecContext.SendPacket(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
				return 0, false, fmt.Errorf("unable to send the flush packet: %w", err)
			}
			d.flushed = true
		}
		complete, err := d.receive()
		return 0, complete, err
	}

	if d.flushed {
		// a drained codec context accepts no more packets
		d.codecContext.Free()
		d.codecContext = nil
		if err := d.openCodecContext(); err != nil {
			return 0, false, fmt.Errorf("unable to reopen the codec context: %w", err)
		}
	}

	avPkt, err := d.nativePacket(pkt)
	if err != nil {
		return 0, false, err
	}
	consumed := len(pkt.Data)
	err = d.codecContext.SendPacket(avPkt)
	switch {
	case err == nil:
	case errors.Is(err, astiav.ErrEagain):
		consumed = 0
	default:
		return 0, false, fmt.Errorf("unable to send a packet to the decoder: %w", err)
	}

	complete, err := d.receive()
	if err != nil {
		return 0, false, err
	}
	return consumed, complete, nil
}

func (d *Decoder) receive() (bool, error) {
	err := d.codecContext.ReceiveFrame(d.frame)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, astiav.ErrEagain), errors.Is(err, astiav.ErrEof):
		return false, nil
	default:
		return false, fmt.Errorf("unable to receive a frame: %w", err)
	}
}

func (d *Decoder) nativePacket(pkt *types.Packet) (*astiav.Packet, error) {
	if avPkt, ok := pkt.Native.(*astiav.Packet); ok && avPkt.Size() == len(pkt.Data) {
		return avPkt, nil
	}
	if d.sendPacket == nil {
		d.sendPacket = astiav.AllocPacket()
	}
	d.sendPacket.Unref()
	if err := d.sendPacket.FromData(pkt.Data); err != nil {
		return nil, fmt.Errorf("unable to fill a packet: %w", err)
	}
	d.sendPacket.SetStreamIndex(pkt.StreamIndex)
	d.sendPacket.SetPts(timestampToAstiav(pkt.PTS))
	d.sendPacket.SetDts(timestampToAstiav(pkt.DTS))
	return d.sendPacket, nil
}

func timestampToAstiav(ts int64) int64 {
	if ts == types.NoPTSValue {
		return astiav.NoPtsValue
	}
	return ts
}

func (d *Decoder) DecodeVideo(
	pkt *types.Packet,
	frame *types.VideoFrame,
) (int, bool, error) {
	consumed, complete, err := d.decode(pkt)
	if err != nil || !complete {
		return consumed, complete, err
	}

	data, err := d.frame.Data().Bytes(1)
	if err != nil {
		return consumed, false, fmt.Errorf("unable to get the bytes of the frame: %w", err)
	}
	frame.Width = d.frame.Width()
	frame.Height = d.frame.Height()
	frame.PixelFormat = d.frame.PixelFormat().String()
	frame.Data = data
	frame.PTS = timestampFromAstiav(d.frame.Pts())
	frame.DTS = types.NoPTSValue
	frame.Native = d.frame
	return consumed, true, nil
}

func (d *Decoder) DecodeAudio(
	pkt *types.Packet,
	block *types.SampleBlock,
) (int, bool, error) {
	consumed, complete, err := d.decode(pkt)
	if err != nil || !complete {
		return consumed, complete, err
	}

	pcmFormat, planar := pcmFormatFromAstiav(d.frame.SampleFormat())
	if pcmFormat == audiotypes.PCMFormatUndefined {
		return consumed, false, fmt.Errorf("unsupported sample format %s", d.frame.SampleFormat())
	}
	size, err := d.frame.SamplesBufferSize(1)
	if err != nil {
		return consumed, false, fmt.Errorf("unable to get the size of the samples: %w", err)
	}
	if cap(d.samples) < size {
		d.samples = make([]byte, size)
	}
	d.samples = d.samples[:size]
	if _, err := d.frame.SamplesCopyToBuffer(d.samples, 1); err != nil {
		return consumed, false, fmt.Errorf("unable to copy the samples: %w", err)
	}

	block.Format = types.AudioFormat{
		Channels:   audiotypes.Channel(d.frame.ChannelLayout().Channels()),
		SampleRate: audiotypes.SampleRate(d.frame.SampleRate()),
		PCMFormat:  pcmFormat,
		Planar:     planar,
	}
	block.NbSamples = d.frame.NbSamples()
	block.Planes = block.Planes[:0]
	if !planar {
		block.Planes = append(block.Planes, d.samples)
		return consumed, true, nil
	}
	planeSize := block.NbSamples * int(pcmFormat.Size())
	for ch := 0; ch < int(block.Format.Channels); ch++ {
		if (ch+1)*planeSize > len(d.samples) {
			return consumed, false, fmt.Errorf("the samples buffer is too short for %d channels", block.Format.Channels)
		}
		block.Planes = append(block.Planes, d.samples[ch*planeSize:(ch+1)*planeSize])
	}
	return consumed, true, nil
}
