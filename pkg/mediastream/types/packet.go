package types

// Packet is one demultiplexed unit of compressed data.
//
// A packet is owned by the read loop for one iteration only: Release must be
// called before the packet is reused for the next read.
type Packet struct {
	StreamIndex int
	Data        []byte
	PTS         int64
	DTS         int64
	Duration    int64

	// Native is the backend-specific representation of the packet (if any).
	Native any

	releaseFunc func()
}

func NewPacket() *Packet {
	p := &Packet{}
	p.reset()
	return p
}

// SetReleaseFunc sets the function that returns the backend resources of the
// packet; it is called once by Release.
func (p *Packet) SetReleaseFunc(fn func()) {
	p.releaseFunc = fn
}

// HasData reports if the packet still holds data that must be released.
func (p *Packet) HasData() bool {
	return p.Data != nil || p.Native != nil || p.releaseFunc != nil
}

// IsEmpty reports if the packet carries no payload. Feeding an empty packet
// to a decoder requests it to drain its internal buffers.
func (p *Packet) IsEmpty() bool {
	return len(p.Data) == 0
}

// Release frees the data of the packet and resets it to the empty state.
func (p *Packet) Release() {
	if p.releaseFunc != nil {
		p.releaseFunc()
	}
	p.reset()
}

func (p *Packet) reset() {
	p.StreamIndex = -1
	p.Data = nil
	p.PTS = NoPTSValue
	p.DTS = NoPTSValue
	p.Duration = 0
	p.Native = nil
	p.releaseFunc = nil
}

// View returns a packet that shares everything with p except the payload,
// which is replaced with data. The view does not own any resources.
func (p *Packet) View(data []byte) Packet {
	return Packet{
		StreamIndex: p.StreamIndex,
		Data:        data,
		PTS:         p.PTS,
		DTS:         p.DTS,
		Duration:    p.Duration,
		Native:      p.Native,
	}
}
