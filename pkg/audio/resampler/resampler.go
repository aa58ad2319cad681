package resampler

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/xaionaro-go/mediastream/pkg/audio/types"
)

type Format = types.Format

type sampleDecoder func(src []byte) float64
type sampleEncoder func(dst []byte, v float64)

var pcmSampleDecoders = [types.EndOfPCMFormat]sampleDecoder{
	types.PCMFormatU8: func(src []byte) float64 {
		return (float64(src[0]) - 0x80) / 0x80
	},
	types.PCMFormatS16LE: func(src []byte) float64 {
		return float64(int16(binary.LittleEndian.Uint16(src))) / (1 << 15)
	},
	types.PCMFormatS32LE: func(src []byte) float64 {
		return float64(int32(binary.LittleEndian.Uint32(src))) / (1 << 31)
	},
	types.PCMFormatS64LE: func(src []byte) float64 {
		return float64(int64(binary.LittleEndian.Uint64(src))) / (1 << 63)
	},
	types.PCMFormatFloat32LE: func(src []byte) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(src)))
	},
	types.PCMFormatFloat64LE: func(src []byte) float64 {
		return math.Float64frombits(binary.LittleEndian.Uint64(src))
	},
}

var pcmSampleEncoders = [types.EndOfPCMFormat]sampleEncoder{
	types.PCMFormatU8: func(dst []byte, v float64) {
		dst[0] = uint8(clamp(math.Round(v*0x80+0x80), 0, math.MaxUint8))
	},
	types.PCMFormatS16LE: func(dst []byte, v float64) {
		i := int16(clamp(math.Round(v*(1<<15)), math.MinInt16, math.MaxInt16))
		binary.LittleEndian.PutUint16(dst, uint16(i))
	},
	types.PCMFormatS32LE: func(dst []byte, v float64) {
		i := int32(clamp(math.Round(v*(1<<31)), math.MinInt32, math.MaxInt32))
		binary.LittleEndian.PutUint32(dst, uint32(i))
	},
	types.PCMFormatS64LE: func(dst []byte, v float64) {
		f := clamp(math.Round(v*(1<<63)), math.MinInt64, math.MaxInt64)
		var i int64
		switch {
		case f >= math.MaxInt64:
			i = math.MaxInt64
		default:
			i = int64(f)
		}
		binary.LittleEndian.PutUint64(dst, uint64(i))
	},
	types.PCMFormatFloat32LE: func(dst []byte, v float64) {
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(v)))
	},
	types.PCMFormatFloat64LE: func(dst []byte, v float64) {
		binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
	},
}

func clamp(v, min, max float64) float64 {
	switch {
	case v < min:
		return min
	case v > max:
		return max
	default:
		return v
	}
}

// RescaleRoundUp returns ceil(a * b / c) for non-negative a and b and
// positive c, saturating at math.MaxInt64.
func RescaleRoundUp(a, b, c int64) int64 {
	if a <= 0 || b <= 0 || c <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi >= uint64(c) {
		return math.MaxInt64
	}
	q, r := bits.Div64(hi, lo, uint64(c))
	if r != 0 {
		q++
	}
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q)
}

// ExpectedSamples returns the amount of output samples (per channel) produced
// for the given amount of input samples.
func ExpectedSamples(
	inSamples int,
	inRate types.SampleRate,
	outRate types.SampleRate,
) int {
	return int(RescaleRoundUp(int64(inSamples), int64(outRate), int64(inRate)))
}

type ErrDestinationTooSmall struct {
	Required  int
	Available int
}

func (e ErrDestinationTooSmall) Error() string {
	return fmt.Sprintf("the destination buffer is too small: %d < %d", e.Available, e.Required)
}

type precalculated struct {
	inSampleSize  int
	outSampleSize int
	inFrameSize   int
	outFrameSize  int
	decode        sampleDecoder
	encode        sampleEncoder
}

// Resampler converts packed PCM audio between formats, channel counts and
// sample rates. Rate conversion uses linear interpolation; channel
// conversion averages the input channels folded onto an output channel when
// downmixing and repeats input channels when upmixing.
type Resampler struct {
	inFormat  Format
	outFormat Format
	precalculated
}

func New(
	inFormat Format,
	outFormat Format,
) (*Resampler, error) {
	r := &Resampler{
		inFormat:  inFormat,
		outFormat: outFormat,
	}
	if err := r.init(); err != nil {
		return nil, fmt.Errorf("unable to initialize a resampler from %s to %s: %w", inFormat, outFormat, err)
	}
	return r, nil
}

func (r *Resampler) init() error {
	if r.inFormat.Channels == 0 || r.outFormat.Channels == 0 {
		return fmt.Errorf("the amount of channels must be positive")
	}
	if r.inFormat.SampleRate == 0 || r.outFormat.SampleRate == 0 {
		return fmt.Errorf("the sample rate must be positive")
	}
	if r.inFormat.PCMFormat >= types.EndOfPCMFormat || r.outFormat.PCMFormat >= types.EndOfPCMFormat {
		return fmt.Errorf("unexpected PCM format")
	}

	r.decode = pcmSampleDecoders[r.inFormat.PCMFormat]
	if r.decode == nil {
		return fmt.Errorf("unable to get a decode function for %s", r.inFormat.PCMFormat)
	}
	r.encode = pcmSampleEncoders[r.outFormat.PCMFormat]
	if r.encode == nil {
		return fmt.Errorf("unable to get an encode function for %s", r.outFormat.PCMFormat)
	}

	r.inSampleSize = int(r.inFormat.PCMFormat.Size())
	r.outSampleSize = int(r.outFormat.PCMFormat.Size())
	r.inFrameSize = r.inSampleSize * int(r.inFormat.Channels)
	r.outFrameSize = r.outSampleSize * int(r.outFormat.Channels)
	return nil
}

func (r *Resampler) InputFormat() Format {
	return r.inFormat
}

func (r *Resampler) OutputFormat() Format {
	return r.outFormat
}

// OutputSize returns the amount of bytes required to hold the result of
// resampling an input of the given size.
func (r *Resampler) OutputSize(inputSize int) int {
	inSamples := inputSize / r.inFrameSize
	return ExpectedSamples(inSamples, r.inFormat.SampleRate, r.outFormat.SampleRate) * r.outFrameSize
}

// Resample converts the whole src and returns a newly allocated buffer.
func (r *Resampler) Resample(src []byte) ([]byte, error) {
	dst := make([]byte, r.OutputSize(len(src)))
	n, err := r.ResampleInto(dst, src)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// ResampleInto converts the whole src into dst and returns the amount of bytes
// written. dst must be at least OutputSize(len(src)) bytes long.
func (r *Resampler) ResampleInto(dst, src []byte) (int, error) {
	if len(src)%r.inFrameSize != 0 {
		return 0, fmt.Errorf("the input size %d is not a multiple of %d", len(src), r.inFrameSize)
	}
	inSamples := len(src) / r.inFrameSize
	outSamples := ExpectedSamples(inSamples, r.inFormat.SampleRate, r.outFormat.SampleRate)
	required := outSamples * r.outFrameSize
	if len(dst) < required {
		return 0, ErrDestinationTooSmall{Required: required, Available: len(dst)}
	}
	if inSamples == 0 {
		return 0, nil
	}

	inChannels := int(r.inFormat.Channels)
	outChannels := int(r.outFormat.Channels)
	inRate := uint64(r.inFormat.SampleRate)
	outRate := uint64(r.outFormat.SampleRate)

	in := make([]float64, inChannels)
	out := make([]float64, outChannels)
	for dstIdx := 0; dstIdx < outSamples; dstIdx++ {
		pos := uint64(dstIdx) * inRate
		srcIdx := int(pos / outRate)
		frac := float64(pos%outRate) / float64(outRate)
		if srcIdx >= inSamples-1 {
			srcIdx, frac = inSamples-1, 0
		}

		cur := src[srcIdx*r.inFrameSize:]
		for ch := 0; ch < inChannels; ch++ {
			v := r.decode(cur[ch*r.inSampleSize:])
			if frac > 0 {
				next := r.decode(cur[r.inFrameSize+ch*r.inSampleSize:])
				v += (next - v) * frac
			}
			in[ch] = v
		}

		mixChannels(out, in)

		dstFrame := dst[dstIdx*r.outFrameSize:]
		for ch := 0; ch < outChannels; ch++ {
			r.encode(dstFrame[ch*r.outSampleSize:], out[ch])
		}
	}
	return required, nil
}

func mixChannels(out, in []float64) {
	if len(in) <= len(out) {
		for ch := range out {
			out[ch] = in[ch%len(in)]
		}
		return
	}

	for ch := range out {
		var sum float64
		var count int
		for srcCh := ch; srcCh < len(in); srcCh += len(out) {
			sum += in[srcCh]
			count++
		}
		out[ch] = sum / float64(count)
	}
}

// Resample is a shorthand for New(inFormat, outFormat) and Resample(src).
func Resample(
	src []byte,
	inFormat Format,
	outFormat Format,
) ([]byte, error) {
	r, err := New(inFormat, outFormat)
	if err != nil {
		return nil, err
	}
	return r.Resample(src)
}
