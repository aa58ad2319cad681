package libav

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// Demuxer is a container opened by FFmpeg.
type Demuxer struct {
	*astikit.Closer
	*astiav.FormatContext
	*astiav.Dictionary

	url     string
	streams []types.StreamDescriptor
}

var _ types.Demuxer = (*Demuxer)(nil)

func newDemuxer(
	ctx context.Context,
	url string,
	cfg Config,
) (_ret *Demuxer, _err error) {
	logger.Debugf(ctx, "newDemuxer(ctx, '%s')", url)
	defer func() { logger.Debugf(ctx, "/newDemuxer(ctx, '%s'): %v", url, _err) }()

	if url == "" {
		return nil, fmt.Errorf("the provided URL is empty")
	}

	d := &Demuxer{
		Closer: astikit.NewCloser(),
		url:    url,
	}
	defer func() {
		if _err != nil {
			_ = d.Closer.Close()
		}
	}()

	d.FormatContext = astiav.AllocFormatContext()
	if d.FormatContext == nil {
		return nil, fmt.Errorf("unable to allocate a format context")
	}
	d.Closer.Add(d.FormatContext.Free)

	if len(cfg.CustomOptions) > 0 {
		d.Dictionary = astiav.NewDictionary()
		d.Closer.Add(d.Dictionary.Free)

		for _, opt := range cfg.CustomOptions {
			logger.Debugf(ctx, "Dictionary['%s'] = '%s'", opt.Key, opt.Value)
			if err := d.Dictionary.Set(opt.Key, opt.Value, 0); err != nil {
				return nil, fmt.Errorf("unable to set option '%s': %w", opt.Key, err)
			}
		}
	}

	if err := d.FormatContext.OpenInput(url, nil, d.Dictionary); err != nil {
		return nil, fmt.Errorf("unable to open input by URL '%s': %w", url, err)
	}
	d.Closer.Add(d.FormatContext.CloseInput)

	if err := d.FormatContext.FindStreamInfo(nil); err != nil {
		return nil, fmt.Errorf("unable to get stream info: %w", err)
	}

	for _, stream := range d.FormatContext.Streams() {
		d.streams = append(d.streams, d.describeStream(stream))
	}
	return d, nil
}

func (d *Demuxer) describeStream(stream *astiav.Stream) types.StreamDescriptor {
	params := stream.CodecParameters()
	frameRate := stream.RFrameRate()
	if frameRate.Num() == 0 {
		frameRate = d.FormatContext.GuessFrameRate(stream, nil)
	}
	return types.StreamDescriptor{
		Index:      stream.Index(),
		MediaType:  mediaTypeFromAstiav(params.MediaType()),
		CodecName:  params.CodecID().Name(),
		TimeBase:   rationalFromAstiav(stream.TimeBase()),
		Duration:   stream.Duration(),
		FrameCount: stream.NbFrames(),
		FrameRate:  rationalFromAstiav(frameRate),
		Metadata:   dictionaryToMap(stream.Metadata()),
	}
}

func mediaTypeFromAstiav(t astiav.MediaType) types.MediaType {
	switch t {
	case astiav.MediaTypeVideo:
		return types.MediaTypeVideo
	case astiav.MediaTypeAudio:
		return types.MediaTypeAudio
	case astiav.MediaTypeSubtitle:
		return types.MediaTypeSubtitle
	case astiav.MediaTypeData:
		return types.MediaTypeData
	}
	return types.MediaTypeUnknown
}

func rationalFromAstiav(r astiav.Rational) types.Rational {
	return types.Rational{Num: int64(r.Num()), Den: int64(r.Den())}
}

func dictionaryToMap(dict *astiav.Dictionary) map[string]string {
	result := map[string]string{}
	if dict == nil {
		return result
	}
	flags := astiav.NewDictionaryFlags(astiav.DictionaryFlagIgnoreSuffix)
	var entry *astiav.DictionaryEntry
	for {
		entry = dict.Get("", entry, flags)
		if entry == nil {
			return result
		}
		result[entry.Key()] = entry.Value()
	}
}

func (d *Demuxer) URL() string {
	return d.url
}

func (d *Demuxer) Streams() []types.StreamDescriptor {
	result := make([]types.StreamDescriptor, len(d.streams))
	copy(result, d.streams)
	return result
}

func (d *Demuxer) StartTime() int64 {
	startTime := d.FormatContext.StartTime()
	if startTime == astiav.NoPtsValue {
		return types.NoPTSValue
	}
	return startTime
}

func (d *Demuxer) ReadPacket(
	ctx context.Context,
	pkt *types.Packet,
) error {
	avPkt := packets.Get()
	if err := d.FormatContext.ReadFrame(avPkt); err != nil {
		packets.Put(avPkt)
		if errors.Is(err, astiav.ErrEof) {
			return io.EOF
		}
		return fmt.Errorf("unable to read a packet: %w", err)
	}
	logger.Tracef(ctx, "read a packet of stream #%d, size %d", avPkt.StreamIndex(), avPkt.Size())

	pkt.StreamIndex = avPkt.StreamIndex()
	pkt.Data = avPkt.Data()
	pkt.PTS = timestampFromAstiav(avPkt.Pts())
	pkt.DTS = timestampFromAstiav(avPkt.Dts())
	pkt.Duration = avPkt.Duration()
	pkt.Native = avPkt
	pkt.SetReleaseFunc(func() {
		packets.Put(avPkt)
	})
	return nil
}

func timestampFromAstiav(ts int64) int64 {
	if ts == astiav.NoPtsValue {
		return types.NoPTSValue
	}
	return ts
}

func (d *Demuxer) SeekFrame(
	ctx context.Context,
	streamIndex int,
	timestamp int64,
	flags types.SeekFlags,
) error {
	logger.Tracef(ctx, "SeekFrame(%d, %d, %v)", streamIndex, timestamp, flags)
	if err := d.FormatContext.SeekFrame(streamIndex, timestamp, seekFlagsToAstiav(flags)); err != nil {
		return fmt.Errorf("unable to seek in '%s' to %d: %w", d.url, timestamp, err)
	}
	return nil
}

func seekFlagsToAstiav(flags types.SeekFlags) astiav.SeekFlags {
	var result []astiav.SeekFlag
	for flag, avFlag := range map[types.SeekFlag]astiav.SeekFlag{
		types.SeekFlagAny:      astiav.SeekFlagAny,
		types.SeekFlagBackward: astiav.SeekFlagBackward,
		types.SeekFlagByte:     astiav.SeekFlagByte,
		types.SeekFlagFrame:    astiav.SeekFlagFrame,
	} {
		if flags.Has(flag) {
			result = append(result, avFlag)
		}
	}
	return astiav.NewSeekFlags(result...)
}

func (d *Demuxer) OpenDecoder(
	ctx context.Context,
	streamIndex int,
) (types.Decoder, error) {
	for _, stream := range d.FormatContext.Streams() {
		if stream.Index() != streamIndex {
			continue
		}
		decoder, err := newDecoder(ctx, d.FormatContext, stream)
		if err != nil {
			return nil, types.ErrCodec{
				StreamIndex: streamIndex,
				CodecName:   stream.CodecParameters().CodecID().Name(),
				Err:         err,
			}
		}
		return decoder, nil
	}
	return nil, types.ErrCodec{
		StreamIndex: streamIndex,
		Err:         fmt.Errorf("stream #%d not found", streamIndex),
	}
}

func (d *Demuxer) Close() error {
	return d.Closer.Close()
}
