// Package buffer holds whole carving inputs in memory: files are mapped
// read-only, streams are read into pooled heap buffers.
package buffer

import (
	"math/bits"
	"sync"
)

// Source is one carving input. Detectors only ever read Data.
type Source interface {
	Data() []byte
	Len() int
	// Release returns pooled memory or unmaps the file. Data must not be used afterwards.
	Release()
}

const (
	minClass = 12 // 4 KiB
	maxClass = 24 // 16 MiB, larger buffers are left to the GC
)

// pools holds one pool per power-of-two capacity class.
var pools [maxClass - minClass + 1]sync.Pool

func class(size int) int {
	if size <= 1<<minClass {
		return minClass
	}
	return bits.Len(uint(size - 1))
}

// heapSource is a growable buffer whose capacity is always a class size.
type heapSource struct {
	buf []byte
}

// get returns an empty buffer able to hold size bytes.
func get(size int) *heapSource {
	c := class(size)
	if c <= maxClass {
		if h, ok := pools[c-minClass].Get().(*heapSource); ok {
			return h
		}
	}
	return &heapSource{buf: make([]byte, 0, 1<<c)}
}

func (h *heapSource) Data() []byte {
	return h.buf
}

func (h *heapSource) Len() int {
	return len(h.buf)
}

// grow makes room for n more bytes and returns the free tail of that size.
func (h *heapSource) grow(n int) []byte {
	l := len(h.buf)
	if l+n > cap(h.buf) {
		next := get(l + n)
		next.buf = append(next.buf, h.buf...)
		h.Release()
		h.buf = next.buf
	}
	return h.buf[l : l+n]
}

func (h *heapSource) Release() {
	c := class(cap(h.buf))
	if h.buf == nil || c > maxClass || cap(h.buf) != 1<<c {
		h.buf = nil
		return
	}
	pools[c-minClass].Put(&heapSource{buf: h.buf[:0]})
	h.buf = nil
}
