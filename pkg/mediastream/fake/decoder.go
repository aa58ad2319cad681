package fake

import (
	"fmt"

	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

type unit struct {
	data []byte
	pts  int64
	dts  int64
}

// Decoder treats its input bytes as the decoded output: every UnitSize bytes
// of input become one frame (or sample block) carrying those bytes.
type Decoder struct {
	MediaType types.MediaType
	Format    types.AudioFormat

	// UnitSize is the amount of input bytes per output unit; 0 means one unit
	// per decode call.
	UnitSize int

	// MaxConsume limits the amount of bytes consumed per call; 0 means no
	// limit.
	MaxConsume int

	// Delay is the amount of output units held back until the decoder is
	// drained.
	Delay int

	// Err (if set) is returned by the decode call number ErrAt.
	Err   error
	ErrAt int

	DecodeCalls int
	FlushCalls  int
	ResetCount  int

	open    bool
	pending []byte
	queue   []unit
}

var _ types.Decoder = (*Decoder)(nil)

func NewDecoder(mediaType types.MediaType) *Decoder {
	return &Decoder{
		MediaType: mediaType,
		ErrAt:     -1,
	}
}

func (d *Decoder) Kind() types.MediaType {
	return d.MediaType
}

func (d *Decoder) IsOpen() bool {
	return d.open
}

func (d *Decoder) AudioFormat() types.AudioFormat {
	return d.Format
}

func (d *Decoder) decode(pkt *types.Packet) (int, *unit, error) {
	callIdx := d.DecodeCalls
	d.DecodeCalls++
	if d.Err != nil && callIdx == d.ErrAt {
		return 0, nil, d.Err
	}
	if !d.open {
		return 0, nil, fmt.Errorf("the decoder is closed")
	}

	if pkt.IsEmpty() {
		d.FlushCalls++
		d.pending = d.pending[:0]
		return 0, d.pop(), nil
	}

	consumed := len(pkt.Data)
	if d.MaxConsume > 0 && consumed > d.MaxConsume {
		consumed = d.MaxConsume
	}
	d.pending = append(d.pending, pkt.Data[:consumed]...)

	unitSize := d.UnitSize
	if unitSize <= 0 {
		unitSize = len(d.pending)
	}
	for len(d.pending) >= unitSize && unitSize > 0 {
		data := make([]byte, unitSize)
		copy(data, d.pending)
		d.pending = append(d.pending[:0], d.pending[unitSize:]...)
		d.queue = append(d.queue, unit{data: data, pts: pkt.PTS, dts: pkt.DTS})
	}

	if len(d.queue) > d.Delay {
		return consumed, d.pop(), nil
	}
	return consumed, nil, nil
}

func (d *Decoder) pop() *unit {
	if len(d.queue) == 0 {
		return nil
	}
	u := d.queue[0]
	d.queue = d.queue[1:]
	return &u
}

func (d *Decoder) DecodeVideo(
	pkt *types.Packet,
	frame *types.VideoFrame,
) (int, bool, error) {
	consumed, u, err := d.decode(pkt)
	if err != nil || u == nil {
		return consumed, false, err
	}
	frame.Width, frame.Height = len(u.data), 1
	frame.PixelFormat = "gray"
	frame.Data = append(frame.Data[:0], u.data...)
	frame.PTS, frame.DTS = u.pts, u.dts
	return consumed, true, nil
}

func (d *Decoder) DecodeAudio(
	pkt *types.Packet,
	block *types.SampleBlock,
) (int, bool, error) {
	consumed, u, err := d.decode(pkt)
	if err != nil || u == nil {
		return consumed, false, err
	}

	block.Format = d.Format
	frameSize := int(d.Format.Channels) * int(d.Format.PCMFormat.Size())
	block.NbSamples = len(u.data) / frameSize
	if !d.Format.Planar {
		block.Planes = append(block.Planes[:0], u.data)
		return consumed, true, nil
	}

	planeSize := block.NbSamples * int(d.Format.PCMFormat.Size())
	block.Planes = block.Planes[:0]
	for ch := 0; ch < int(d.Format.Channels); ch++ {
		block.Planes = append(block.Planes, u.data[ch*planeSize:(ch+1)*planeSize])
	}
	return consumed, true, nil
}

func (d *Decoder) Reset() error {
	d.ResetCount++
	d.pending = d.pending[:0]
	d.queue = d.queue[:0]
	return nil
}

func (d *Decoder) Close() error {
	d.open = false
	return nil
}

// Buffered returns the amount of output units not emitted yet.
func (d *Decoder) Buffered() int {
	return len(d.queue)
}
