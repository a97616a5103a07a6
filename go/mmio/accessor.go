// Package mmio performs typed, byte-order-correct register accesses against
// memory that has already been mapped by the caller.
//
// An Accessor never maps, unmaps or validates its base address, and holds no
// locks: callers that share a register window between goroutines must
// serialize access themselves.
package mmio

import (
	"fmt"
	"unsafe"
)

type IO interface {
	Read(offset, size uint64) (uint64, error)
	Write(offset, size, value uint64) error
	Update(offset, size, clrMask, setMask uint64) error
}

// Access describes where a single (offset, size) request lands.
type Access struct {
	Width Width
	// Index is in units of Width.
	Index uint64
	// Addr is the byte offset from the accessor base.
	Addr uint64
}

type Accessor struct {
	base unsafe.Pointer
	// set by NewFromBytes so the backing array stays reachable
	mem []byte

	word     Width
	bulk     Width
	bulkSize uint64
	little   bool
}

// New creates an accessor for the region at base. Offsets passed to Read,
// Write and Update count words of wordWidth bits; a size of 1 accesses a
// single word and a size of bulkWidth/wordWidth accesses one bulk unit.
func New(base uintptr, wordWidth, bulkWidth uint, littleEndian bool) (*Accessor, error) {
	return newAccessor(unsafe.Pointer(base), nil, wordWidth, bulkWidth, littleEndian)
}

// NewFromBytes creates an accessor over mem, which is usually a slice
// returned by mmap. mem must not be resliced or unmapped while the accessor
// is in use.
func NewFromBytes(mem []byte, wordWidth, bulkWidth uint, littleEndian bool) (*Accessor, error) {
	if len(mem) == 0 {
		return nil, &ConfigError{Field: "region", Reason: "empty region"}
	}
	return newAccessor(unsafe.Pointer(&mem[0]), mem, wordWidth, bulkWidth, littleEndian)
}

func newAccessor(base unsafe.Pointer, mem []byte, wordWidth, bulkWidth uint, little bool) (*Accessor, error) {
	word, err := ParseWidth(wordWidth)
	if err != nil {
		return nil, &ConfigError{Field: "word width", Value: wordWidth}
	}
	bulk, err := ParseWidth(bulkWidth)
	if err != nil {
		return nil, &ConfigError{Field: "bulk width", Value: bulkWidth}
	}
	if bulk < word || bulk%word != 0 {
		return nil, &ConfigError{
			Field:  "bulk width",
			Value:  bulkWidth,
			Reason: fmt.Sprintf("bulk width %d is not a multiple of word width %d", bulkWidth, wordWidth),
		}
	}
	return &Accessor{
		base:     base,
		mem:      mem,
		word:     word,
		bulk:     bulk,
		bulkSize: uint64(bulk / word),
		little:   little,
	}, nil
}

func (a *Accessor) Base() uintptr      { return uintptr(a.base) }
func (a *Accessor) WordWidth() Width   { return a.word }
func (a *Accessor) BulkWidth() Width   { return a.bulk }
func (a *Accessor) BulkSize() uint64   { return a.bulkSize }
func (a *Accessor) LittleEndian() bool { return a.little }

func (a *Accessor) String() string {
	return fmt.Sprintf("mmio.Accessor(%#x, %d, %d, %t)", a.Base(), a.word, a.bulk, a.little)
}

// Resolve reports where Read(offset, size) would land without touching memory.
func (a *Accessor) Resolve(offset, size uint64) (Access, error) {
	return a.resolve(ACCESS_READ, offset, size)
}

func (a *Accessor) resolve(op int, offset, size uint64) (Access, error) {
	var acc Access
	// with a bulk size of 1 both paths are the same access; the word path wins
	switch size {
	case 1:
		acc = Access{Width: a.word, Index: offset}
	case a.bulkSize:
		acc = Access{Width: a.bulk, Index: offset / a.bulkSize}
	default:
		// TODO: multi-word accesses, taking a slice of words instead of one value
		return Access{}, &AccessError{Offset: offset, Size: size, Enum: op}
	}
	acc.Addr = acc.Index * uint64(acc.Width.Bytes())
	return acc, nil
}

func (a *Accessor) ptr(acc Access) unsafe.Pointer {
	return unsafe.Add(a.base, acc.Addr)
}

func (a *Accessor) Read(offset, size uint64) (uint64, error) {
	acc, err := a.resolve(ACCESS_READ, offset, size)
	if err != nil {
		return 0, err
	}
	return toHost(acc.Width, load(acc.Width, a.ptr(acc)), a.little), nil
}

// Write truncates value to the access width before storing it.
func (a *Accessor) Write(offset, size, value uint64) error {
	acc, err := a.resolve(ACCESS_WRITE, offset, size)
	if err != nil {
		return err
	}
	store(acc.Width, a.ptr(acc), fromHost(acc.Width, value, a.little))
	return nil
}

// Update stores (current & clrMask) | setMask. The load and the store are
// separate bus transactions; nothing prevents another writer in between.
func (a *Accessor) Update(offset, size, clrMask, setMask uint64) error {
	acc, err := a.resolve(ACCESS_UPDATE, offset, size)
	if err != nil {
		return err
	}
	p := a.ptr(acc)
	val := toHost(acc.Width, load(acc.Width, p), a.little)
	val = (val & clrMask) | setMask
	store(acc.Width, p, fromHost(acc.Width, val, a.little))
	return nil
}
