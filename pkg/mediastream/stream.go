package mediastream

import (
	"context"
	"fmt"
	"strconv"

	"github.com/facebookincubator/go-belt/tool/logger"
	audiotypes "github.com/xaionaro-go/mediastream/pkg/audio/types"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// Stream is one elementary stream of a Container.
type Stream struct {
	container  *Container
	descriptor types.StreamDescriptor
	codec      *codecState
	source     *PacketSource
	seeker     *SeekEngine

	video        *VideoDecoder
	audio        *AudioDecoder
	frame        *types.VideoFrame
	lastIterator *FrameIterator
}

func newStream(
	container *Container,
	descriptor types.StreamDescriptor,
) *Stream {
	observer := container.observer()
	return &Stream{
		container:  container,
		descriptor: descriptor,
		codec:      newCodecState(container.demuxer, descriptor),
		source:     NewPacketSource(container.demuxer, observer),
		seeker:     newSeekEngine(container.demuxer, descriptor, container.config.SeekFlags, observer),
	}
}

func (s *Stream) Container() *Container {
	return s.container
}

func (s *Stream) Descriptor() types.StreamDescriptor {
	return s.descriptor
}

func (s *Stream) Index() int {
	return s.descriptor.Index
}

func (s *Stream) MediaType() types.MediaType {
	return s.descriptor.MediaType
}

func (s *Stream) CodecName() string {
	return s.descriptor.CodecName
}

// Duration returns the duration in seconds, and false if the container does
// not report it.
func (s *Stream) Duration() (float64, bool) {
	if s.descriptor.Duration == types.NoPTSValue {
		return 0, false
	}
	return s.descriptor.TicksToSeconds(s.descriptor.Duration), true
}

// TimeBase returns the duration of one timestamp tick, in seconds.
func (s *Stream) TimeBase() float64 {
	return s.descriptor.TimeBase.Float64()
}

// FrameCount returns the nominal amount of frames; it is 0 when unknown.
func (s *Stream) FrameCount() int64 {
	return s.descriptor.FrameCount
}

func (s *Stream) FrameRate() float64 {
	return s.descriptor.FrameRate.Float64()
}

// Rotation returns the rotation hint from the metadata of the stream
// (for example "90"), and false if there is none.
func (s *Stream) Rotation() (string, bool) {
	v, ok := s.descriptor.Metadata[types.MetadataKeyRotate]
	return v, ok
}

// RotationDegrees is Rotation parsed as an integer.
func (s *Stream) RotationDegrees() (int, bool) {
	v, ok := s.Rotation()
	if !ok {
		return 0, false
	}
	degrees, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return degrees, true
}

// IsCodecOpen reports if the decoder of the stream was already opened.
func (s *Stream) IsCodecOpen() bool {
	return s.codec.IsOpen()
}

func (s *Stream) openCodec(
	ctx context.Context,
	kind types.MediaType,
) (types.Decoder, error) {
	decoder, err := s.codec.open(ctx)
	if err != nil {
		return nil, err
	}
	if decoder.Kind() != kind {
		return nil, types.ErrRuntime{
			Op:  fmt.Sprintf("unable to decode %s", kind),
			Err: fmt.Errorf("stream #%d is a %s stream", s.descriptor.Index, decoder.Kind()),
		}
	}
	return decoder, nil
}

// DecodeFrames opens the codec (if needed) and returns an iterator over the
// decoded frames, starting at the current position.
func (s *Stream) DecodeFrames(ctx context.Context) (_ret *FrameIterator, _err error) {
	logger.Debugf(ctx, "DecodeFrames(stream #%d)", s.descriptor.Index)
	defer func() { logger.Debugf(ctx, "/DecodeFrames(stream #%d): %v", s.descriptor.Index, _err) }()

	if _, err := s.openCodec(ctx, types.MediaTypeVideo); err != nil {
		return nil, err
	}
	if s.video == nil {
		s.video = newVideoDecoder(s.source, s.codec, s.container.observer())
		s.frame = types.NewVideoFrame()
	}
	if s.lastIterator != nil {
		s.lastIterator.Close()
	}
	s.lastIterator = newFrameIterator(s, s.video, s.frame)
	return s.lastIterator, nil
}

// FrameConsumer receives decoded frames; the frame is valid only during the
// call. Returning an error stops the decoding.
type FrameConsumer func(ctx context.Context, frame *DecodedFrame) error

// DecodeFrame decodes the frames from the current position to the end of the
// stream and passes every frame to consumer.
func (s *Stream) DecodeFrame(
	ctx context.Context,
	consumer FrameConsumer,
) error {
	if consumer == nil {
		return types.ErrRuntime{Op: "unable to decode frames", Err: types.ErrNoConsumer{}}
	}

	it, err := s.DecodeFrames(ctx)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next(ctx) {
		if err := consumer(ctx, it.Frame()); err != nil {
			return fmt.Errorf("the frame consumer returned an error: %w", err)
		}
	}
	return it.Err()
}

// DecodeAudio decodes all the audio from the current position to the end of
// the stream. If channels or sampleRate is positive and differs from the
// source, the audio is resampled to it in ResampledPCMFormat.
func (s *Stream) DecodeAudio(
	ctx context.Context,
	channels int,
	sampleRate int,
) ([]byte, error) {
	data, _, err := s.DecodeAudioWithFormat(ctx, channels, sampleRate)
	return data, err
}

// DecodeAudioWithFormat is DecodeAudio which also returns the format of the
// returned samples.
func (s *Stream) DecodeAudioWithFormat(
	ctx context.Context,
	channels int,
	sampleRate int,
) (_ret []byte, _format audiotypes.Format, _err error) {
	logger.Debugf(ctx, "DecodeAudio(stream #%d, %d, %d)", s.descriptor.Index, channels, sampleRate)
	defer func() { logger.Debugf(ctx, "/DecodeAudio(stream #%d, %d, %d): %d %s %v", s.descriptor.Index, channels, sampleRate, len(_ret), _format, _err) }()

	decoder, err := s.openCodec(ctx, types.MediaTypeAudio)
	if err != nil {
		return nil, audiotypes.Format{}, err
	}
	if s.audio == nil {
		s.audio = newAudioDecoder(s.source, s.codec, s.container.observer(), s.container.config.AudioBufferInitialCapacity)
	}

	data, err := s.audio.ExtractAllAudio(ctx)
	if err != nil {
		return nil, audiotypes.Format{}, err
	}
	return resampleAudio(ctx, data, decoder.AudioFormat(), channels, sampleRate)
}

// Seek repositions the container to the given time of this stream.
func (s *Stream) Seek(ctx context.Context, seconds float64) error {
	if err := s.seeker.SeekByTime(ctx, seconds); err != nil {
		return err
	}
	return s.afterSeek(ctx)
}

// SeekByFrame repositions the container to the given frame of this stream.
func (s *Stream) SeekByFrame(ctx context.Context, frameIndex int64) error {
	if err := s.seeker.SeekByFrame(ctx, frameIndex); err != nil {
		return err
	}
	return s.afterSeek(ctx)
}

func (s *Stream) SeekEngine() *SeekEngine {
	return s.seeker
}

// afterSeek resets all the streams of the container, since they all share
// the read cursor.
func (s *Stream) afterSeek(ctx context.Context) error {
	return s.container.resetDecoding(ctx)
}

func (s *Stream) resetDecoding(ctx context.Context) error {
	if s.video != nil {
		s.video.Reset()
	}
	if s.lastIterator != nil {
		s.lastIterator.Close()
		s.lastIterator = nil
	}
	if !s.codec.IsOpen() {
		return nil
	}
	if err := s.codec.decoder.Reset(); err != nil {
		return types.ErrRuntime{
			Op:  fmt.Sprintf("unable to reset the decoder of stream #%d after seeking", s.descriptor.Index),
			Err: err,
		}
	}
	logger.Tracef(ctx, "reset the decoder of stream #%d", s.descriptor.Index)
	return nil
}

// Position reads the next packet of this stream and returns its presentation
// timestamp in seconds. The packet is consumed.
func (s *Stream) Position(ctx context.Context) (float64, error) {
	pkt := types.NewPacket()
	defer pkt.Release()

	if err := s.source.NextForStream(ctx, s.descriptor.Index, pkt); err != nil {
		return 0, types.ErrRuntime{Op: "unable to extract a packet", Err: err}
	}
	if pkt.PTS == types.NoPTSValue {
		return 0, types.ErrRuntime{
			Op:  "unable to get the position",
			Err: fmt.Errorf("the packet of stream #%d has no timestamp", s.descriptor.Index),
		}
	}
	return s.descriptor.TicksToSeconds(pkt.PTS), nil
}

func (s *Stream) close() error {
	if s.lastIterator != nil {
		s.lastIterator.Close()
	}
	if s.video != nil {
		s.video.Close()
	}
	return s.codec.Close()
}
