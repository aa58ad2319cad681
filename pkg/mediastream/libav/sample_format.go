package libav

import (
	"github.com/asticode/go-astiav"
	audiotypes "github.com/xaionaro-go/mediastream/pkg/audio/types"
)

// pcmFormatFromAstiav returns the PCM format of a sample format, and whether
// the sample format is planar.
func pcmFormatFromAstiav(sampleFormat astiav.SampleFormat) (audiotypes.PCMFormat, bool) {
	switch sampleFormat {
	case astiav.SampleFormatDbl:
		return audiotypes.PCMFormatFloat64LE, false
	case astiav.SampleFormatDblp:
		return audiotypes.PCMFormatFloat64LE, true
	case astiav.SampleFormatFlt:
		return audiotypes.PCMFormatFloat32LE, false
	case astiav.SampleFormatFltp:
		return audiotypes.PCMFormatFloat32LE, true
	case astiav.SampleFormatS16:
		return audiotypes.PCMFormatS16LE, false
	case astiav.SampleFormatS16P:
		return audiotypes.PCMFormatS16LE, true
	case astiav.SampleFormatS32:
		return audiotypes.PCMFormatS32LE, false
	case astiav.SampleFormatS32P:
		return audiotypes.PCMFormatS32LE, true
	case astiav.SampleFormatS64:
		return audiotypes.PCMFormatS64LE, false
	case astiav.SampleFormatS64P:
		return audiotypes.PCMFormatS64LE, true
	case astiav.SampleFormatU8:
		return audiotypes.PCMFormatU8, false
	case astiav.SampleFormatU8P:
		return audiotypes.PCMFormatU8, true
	}
	return audiotypes.PCMFormatUndefined, false
}
