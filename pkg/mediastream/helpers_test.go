package mediastream

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	audiotypes "github.com/xaionaro-go/mediastream/pkg/audio/types"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/fake"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

func testCtx() context.Context {
	return logger.CtxWithLogger(context.Background(), logrus.Default().WithLevel(logger.LevelTrace))
}

func videoDescriptor(index int) types.StreamDescriptor {
	return types.StreamDescriptor{
		Index:      index,
		MediaType:  types.MediaTypeVideo,
		CodecName:  "fakevideo",
		TimeBase:   types.Rational{Num: 1, Den: 90000},
		Duration:   270000,
		FrameCount: 90,
		FrameRate:  types.Rational{Num: 30, Den: 1},
	}
}

func audioDescriptor(index int) types.StreamDescriptor {
	return types.StreamDescriptor{
		Index:     index,
		MediaType: types.MediaTypeAudio,
		CodecName: "fakeaudio",
		TimeBase:  types.Rational{Num: 1, Den: 8000},
		Duration:  types.NoPTSValue,
	}
}

func packet(streamIndex int, pts int64, data ...byte) types.Packet {
	return types.Packet{
		StreamIndex: streamIndex,
		Data:        data,
		PTS:         pts,
		DTS:         pts,
	}
}

func float32Bytes(values ...float32) []byte {
	b := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func s16Values(b []byte) []int16 {
	result := make([]int16, len(b)/2)
	for i := range result {
		result[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return result
}

var float32Stereo8k = types.AudioFormat{
	Channels:   2,
	SampleRate: 8000,
	PCMFormat:  audiotypes.PCMFormatFloat32LE,
}

// newAVDemuxer returns a demuxer with a video stream #0 and an audio stream
// #1 whose decoders are configured by the given functions.
func newAVDemuxer(
	videoDecoder func(d *fake.Decoder),
	audioDecoder func(d *fake.Decoder),
	packets ...types.Packet,
) *fake.Demuxer {
	d := fake.NewDemuxer(
		[]types.StreamDescriptor{videoDescriptor(0), audioDescriptor(1)},
		packets...,
	)
	d.NewDecoder = func(descriptor types.StreamDescriptor) *fake.Decoder {
		decoder := fake.NewDecoder(descriptor.MediaType)
		switch descriptor.MediaType {
		case types.MediaTypeVideo:
			if videoDecoder != nil {
				videoDecoder(decoder)
			}
		case types.MediaTypeAudio:
			decoder.Format = float32Stereo8k
			if audioDecoder != nil {
				audioDecoder(decoder)
			}
		}
		return decoder
	}
	return d
}
