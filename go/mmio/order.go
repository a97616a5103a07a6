package mmio

import (
	"encoding/binary"
	"math/bits"
	"unsafe"
)

// HostLittle is true when the running CPU stores integers little-endian.
var HostLittle = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// Order returns the binary.ByteOrder matching a little endian flag.
func Order(little bool) binary.ByteOrder {
	if little {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// swap reverses the byte order of the low w bits of v.
// byte order is meaningless for a single byte, so W8 is the identity.
func swap(w Width, v uint64) uint64 {
	switch w {
	case W16:
		return uint64(bits.ReverseBytes16(uint16(v)))
	case W32:
		return uint64(bits.ReverseBytes32(uint32(v)))
	case W64:
		return bits.ReverseBytes64(v)
	}
	return v & 0xff
}

// toHost converts a raw value loaded from the bus into host order.
func toHost(w Width, raw uint64, little bool) uint64 {
	if little == HostLittle {
		return raw & w.Mask()
	}
	return swap(w, raw)
}

// fromHost converts a host value into the raw bus representation.
func fromHost(w Width, v uint64, little bool) uint64 {
	// swapping is an involution
	return toHost(w, v&w.Mask(), little)
}

// putValue stores the low w bits of v at the start of b.
func putValue(w Width, order binary.ByteOrder, b []byte, v uint64) {
	switch w {
	case W8:
		b[0] = byte(v)
	case W16:
		order.PutUint16(b, uint16(v))
	case W32:
		order.PutUint32(b, uint32(v))
	default:
		order.PutUint64(b, v)
	}
}

func getValue(w Width, order binary.ByteOrder, b []byte) uint64 {
	switch w {
	case W8:
		return uint64(b[0])
	case W16:
		return uint64(order.Uint16(b))
	case W32:
		return uint64(order.Uint32(b))
	}
	return order.Uint64(b)
}
