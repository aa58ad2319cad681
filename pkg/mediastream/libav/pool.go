package libav

import (
	"runtime"
	"sync"

	"github.com/asticode/go-astiav"
)

// packets recycles the demuxed packets: a packet goes back to the pool when
// the reader releases it, and is freed by the finalizer once the pool drops
// it.
var packets = packetPool{
	pool: sync.Pool{
		New: func() any {
			pkt := astiav.AllocPacket()
			runtime.SetFinalizer(pkt, (*astiav.Packet).Free)
			return pkt
		},
	},
}

type packetPool struct {
	pool sync.Pool
}

func (p *packetPool) Get() *astiav.Packet {
	return p.pool.Get().(*astiav.Packet)
}

func (p *packetPool) Put(pkt *astiav.Packet) {
	pkt.Unref()
	p.pool.Put(pkt)
}
