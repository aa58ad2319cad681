// Package accumulator provides a growable byte buffer for decoded audio.
//
// The buffer capacity always equals the initial capacity multiplied by a
// power of two: when an append does not fit, the capacity is doubled (as many
// times as needed), the existing content is moved into the new storage and
// the old storage is dropped. The capacity never shrinks while accumulating.
package accumulator

import (
	"fmt"
)

const DefaultInitialCapacity = 192000

type Accumulator struct {
	buf             []byte
	initialCapacity int
	growCount       uint
}

func New(initialCapacity int) *Accumulator {
	if initialCapacity <= 0 {
		initialCapacity = DefaultInitialCapacity
	}
	return &Accumulator{
		buf:             make([]byte, 0, initialCapacity),
		initialCapacity: initialCapacity,
	}
}

func (a *Accumulator) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	size := len(a.buf)
	a.reserve(size + len(p))
	a.buf = a.buf[:size+len(p)]
	copy(a.buf[size:], p)
}

func (a *Accumulator) reserve(required int) {
	newCap := cap(a.buf)
	if required <= newCap {
		return
	}
	for required > newCap {
		newCap *= 2
		a.growCount++
	}
	newBuf := make([]byte, len(a.buf), newCap)
	copy(newBuf, a.buf)
	a.buf = newBuf
}

// Len returns the amount of accumulated bytes.
func (a *Accumulator) Len() int {
	return len(a.buf)
}

// Cap returns the current capacity.
func (a *Accumulator) Cap() int {
	return cap(a.buf)
}

func (a *Accumulator) InitialCapacity() int {
	return a.initialCapacity
}

// GrowCount returns how many times the capacity was doubled.
func (a *Accumulator) GrowCount() uint {
	return a.growCount
}

// Bytes returns a view of the accumulated content. The view is valid only
// until the next Append or Reset.
func (a *Accumulator) Bytes() []byte {
	return a.buf
}

// CopyOut returns an independent copy of the accumulated content.
func (a *Accumulator) CopyOut() []byte {
	result := make([]byte, len(a.buf))
	copy(result, a.buf)
	return result
}

// Reset drops the content but keeps the capacity.
func (a *Accumulator) Reset() {
	a.buf = a.buf[:0]
}

func (a *Accumulator) String() string {
	return fmt.Sprintf("accumulator{size:%d, cap:%d}", len(a.buf), cap(a.buf))
}
