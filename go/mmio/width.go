package mmio

import (
	"fmt"

	"github.com/pkg/errors"
)

// Width is the size of a single bus access. The set is closed: anything
// other than W8, W16, W32 or W64 is rejected by ParseWidth.
type Width uint8

const (
	W8  Width = 8
	W16 Width = 16
	W32 Width = 32
	W64 Width = 64
)

func ParseWidth(bits uint) (Width, error) {
	switch bits {
	case 8, 16, 32, 64:
		return Width(bits), nil
	}
	return 0, errors.Errorf("unsupported access width: %d", bits)
}

func (w Width) Bits() uint  { return uint(w) }
func (w Width) Bytes() uint { return uint(w) / 8 }

// Mask returns the bits covered by a single access of width w.
func (w Width) Mask() uint64 {
	return ^uint64(0) >> (64 - uint(w))
}

// Digits is the number of hex digits needed to print a full value.
func (w Width) Digits() int { return int(w) / 4 }

func (w Width) String() string { return fmt.Sprintf("u%d", uint(w)) }
