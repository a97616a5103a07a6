package mmio

import (
	"sync/atomic"
	"unsafe"
)

// Every function here performs exactly one load or store of its width.
// 32 and 64 bit accesses go through sync/atomic, which the compiler never
// caches, merges or elides. There are no 8 or 16 bit atomics, so those go
// through helpers that can't be inlined into (and optimized with) the caller.

//go:noinline
//go:nosplit
func load8(p *uint8) uint8 {
	return *p
}

//go:noinline
//go:nosplit
func load16(p *uint16) uint16 {
	return *p
}

//go:noinline
//go:nosplit
func store8(p *uint8, v uint8) {
	*p = v
}

//go:noinline
//go:nosplit
func store16(p *uint16, v uint16) {
	*p = v
}

// load reads w bits at p. The value is returned exactly as it sits on the bus.
func load(w Width, p unsafe.Pointer) uint64 {
	switch w {
	case W8:
		return uint64(load8((*uint8)(p)))
	case W16:
		return uint64(load16((*uint16)(p)))
	case W32:
		return uint64(atomic.LoadUint32((*uint32)(p)))
	case W64:
		return atomic.LoadUint64((*uint64)(p))
	}
	// widths are validated by New and never change afterwards
	panic("mmio: unreachable width " + w.String())
}

// store writes the low w bits of v to p without any byte order conversion.
func store(w Width, p unsafe.Pointer, v uint64) {
	switch w {
	case W8:
		store8((*uint8)(p), uint8(v))
	case W16:
		store16((*uint16)(p), uint16(v))
	case W32:
		atomic.StoreUint32((*uint32)(p), uint32(v))
	case W64:
		atomic.StoreUint64((*uint64)(p), v)
	default:
		panic("mmio: unreachable width " + w.String())
	}
}
