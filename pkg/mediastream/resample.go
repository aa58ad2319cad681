package mediastream

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/mediastream/pkg/audio/resampler"
	audiotypes "github.com/xaionaro-go/mediastream/pkg/audio/types"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// ResampledPCMFormat is the sample format of resampled audio.
const ResampledPCMFormat = audiotypes.PCMFormatS16LE

// resampleTarget returns the format to resample to, and false if no
// resampling is requested. A non-positive channel count or sample rate means
// "keep the source value".
func resampleTarget(
	src audiotypes.Format,
	channels int,
	sampleRate int,
) (audiotypes.Format, bool) {
	dst := src
	if channels > 0 {
		dst.Channels = audiotypes.Channel(channels)
	}
	if sampleRate > 0 {
		dst.SampleRate = audiotypes.SampleRate(sampleRate)
	}
	if dst.Channels == src.Channels && dst.SampleRate == src.SampleRate {
		return src, false
	}
	dst.PCMFormat = ResampledPCMFormat
	return dst, true
}

func resampleAudio(
	ctx context.Context,
	data []byte,
	srcFormat types.AudioFormat,
	channels int,
	sampleRate int,
) ([]byte, audiotypes.Format, error) {
	src := srcFormat.Packed()
	dst, ok := resampleTarget(src, channels, sampleRate)
	if !ok || len(data) == 0 {
		return data, src, nil
	}

	logger.Debugf(ctx, "resampling %d bytes from %s to %s", len(data), src, dst)
	r, err := resampler.New(src, dst)
	if err != nil {
		return nil, src, types.ErrRuntime{Op: "unable to initialize the resampler", Err: err}
	}
	resampled, err := r.Resample(data)
	if err != nil {
		return nil, src, types.ErrRuntime{Op: "unable to resample the audio", Err: err}
	}
	if len(resampled) <= 0 {
		logger.Warnf(ctx, "the resampler produced no data out of %d bytes, keeping the source audio", len(data))
		return data, src, nil
	}
	return resampled, dst, nil
}
