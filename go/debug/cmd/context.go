package cmd

import (
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/lunixbochs/regio/go/mmio"
	"github.com/lunixbochs/regio/go/models"
)

// Bounds is implemented by mapped regions that know their own size.
type Bounds interface {
	Contains(off, n uint64) bool
}

type Context struct {
	io.Writer
	Config   *models.Config
	Accessor *mmio.Accessor
	// optional; accesses outside it are refused before reaching the accessor
	Region Bounds

	buf  *mmio.Buffered
	last map[[2]uint64]uint64
}

func NewContext(w io.Writer, config *models.Config, a *mmio.Accessor, region Bounds) *Context {
	c := &Context{Writer: w, Config: config, Accessor: a, Region: region}
	if config.Buffered {
		c.buf = mmio.NewBuffered(a)
	}
	return c
}

func (c *Context) Printf(format string, a ...interface{}) (n int, err error) {
	return fmt.Fprintf(c, format, a...)
}

// IO returns the buffer in buffered mode, otherwise the accessor.
func (c *Context) IO() mmio.IO {
	if c.buf != nil {
		return c.buf
	}
	return c.Accessor
}

func (c *Context) Buffered() *mmio.Buffered { return c.buf }

// Check refuses accesses that land outside the region. Invalid sizes pass
// through so the accessor reports them against the right operation.
func (c *Context) Check(offset, size uint64) (mmio.Access, error) {
	acc, err := c.Accessor.Resolve(offset, size)
	if err != nil || c.Region == nil {
		return acc, nil
	}
	n := uint64(acc.Width.Bytes())
	// the byte address does not fit in 64 bits
	if hi, _ := bits.Mul64(acc.Index, n); hi != 0 {
		return acc, errors.Errorf("offset %#x is outside the mapped region", offset)
	}
	if !c.Region.Contains(acc.Addr, n) {
		return acc, errors.Errorf("offset %#x (byte %#x) is outside the mapped region", offset, acc.Addr)
	}
	return acc, nil
}

// CheckRange refuses count words starting at word offset off unless all of
// them are inside the region.
func (c *Context) CheckRange(off, count uint64) error {
	if count == 0 {
		return nil
	}
	if count-1 > math.MaxUint64-off {
		return errors.Errorf("words %#x+%#x wrap around the address space", off, count)
	}
	if _, err := c.Check(off, 1); err != nil {
		return err
	}
	_, err := c.Check(off+count-1, 1)
	return err
}

func (c *Context) color() bool {
	return c.Config != nil && c.Config.Color
}
