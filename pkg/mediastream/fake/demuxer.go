// Package fake provides scripted in-memory implementations of the
// capabilities consumed by package mediastream, for tests.
package fake

import (
	"context"
	"fmt"
	"io"

	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

type SeekCall struct {
	StreamIndex int
	Timestamp   int64
	Flags       types.SeekFlags
}

// Demuxer replays Packets in order.
type Demuxer struct {
	URLValue       string
	StreamList     []types.StreamDescriptor
	StartTimeValue int64
	Packets        []types.Packet

	// ReadError (if set) is returned by the read of packet number
	// ReadErrorAt instead of the packet.
	ReadError   error
	ReadErrorAt int

	// SeekFunc (if set) returns the index of the packet to continue from.
	SeekFunc  func(streamIndex int, timestamp int64) (int, error)
	OpenError error

	// NewDecoder (if set) overrides the default decoder constructor.
	NewDecoder func(descriptor types.StreamDescriptor) *Decoder

	Position     int
	ReadCount    int
	ReleaseCount int
	Seeks        []SeekCall
	OpenCount    map[int]int
	Decoders     map[int]*Decoder
	IsClosed     bool
}

var _ types.Demuxer = (*Demuxer)(nil)

func NewDemuxer(
	streams []types.StreamDescriptor,
	packets ...types.Packet,
) *Demuxer {
	return &Demuxer{
		URLValue:       "fake://media",
		StreamList:     streams,
		StartTimeValue: types.NoPTSValue,
		Packets:        packets,
		ReadErrorAt:    -1,
		OpenCount:      map[int]int{},
		Decoders:       map[int]*Decoder{},
	}
}

func (d *Demuxer) URL() string {
	return d.URLValue
}

func (d *Demuxer) Streams() []types.StreamDescriptor {
	return d.StreamList
}

func (d *Demuxer) StartTime() int64 {
	return d.StartTimeValue
}

func (d *Demuxer) ReadPacket(
	ctx context.Context,
	pkt *types.Packet,
) error {
	readIdx := d.ReadCount
	d.ReadCount++
	if d.ReadError != nil && readIdx == d.ReadErrorAt {
		return d.ReadError
	}
	if d.Position >= len(d.Packets) {
		return io.EOF
	}
	src := d.Packets[d.Position]
	d.Position++

	pkt.StreamIndex = src.StreamIndex
	pkt.Data = src.Data
	pkt.PTS = src.PTS
	pkt.DTS = src.DTS
	pkt.Duration = src.Duration
	pkt.SetReleaseFunc(func() { d.ReleaseCount++ })
	return nil
}

func (d *Demuxer) SeekFrame(
	ctx context.Context,
	streamIndex int,
	timestamp int64,
	flags types.SeekFlags,
) error {
	d.Seeks = append(d.Seeks, SeekCall{
		StreamIndex: streamIndex,
		Timestamp:   timestamp,
		Flags:       flags,
	})
	if d.SeekFunc == nil {
		return nil
	}
	pos, err := d.SeekFunc(streamIndex, timestamp)
	if err != nil {
		return err
	}
	d.Position = pos
	return nil
}

func (d *Demuxer) OpenDecoder(
	ctx context.Context,
	streamIndex int,
) (types.Decoder, error) {
	d.OpenCount[streamIndex]++
	if d.OpenError != nil {
		return nil, d.OpenError
	}
	for _, descriptor := range d.StreamList {
		if descriptor.Index != streamIndex {
			continue
		}
		var decoder *Decoder
		if d.NewDecoder != nil {
			decoder = d.NewDecoder(descriptor)
		} else {
			decoder = NewDecoder(descriptor.MediaType)
		}
		decoder.open = true
		d.Decoders[streamIndex] = decoder
		return decoder, nil
	}
	return nil, fmt.Errorf("stream #%d not found", streamIndex)
}

func (d *Demuxer) Close() error {
	d.IsClosed = true
	return nil
}

// Opener returns the Demuxer for any URL.
type Opener struct {
	Demuxer *Demuxer
	Err     error
	URLs    []string
}

var _ types.ContainerOpener = (*Opener)(nil)

func (o *Opener) OpenContainer(
	ctx context.Context,
	url string,
) (types.Demuxer, error) {
	o.URLs = append(o.URLs, url)
	if o.Err != nil {
		return nil, o.Err
	}
	o.Demuxer.URLValue = url
	return o.Demuxer, nil
}
