package models

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/lunixbochs/regio/go/mmap"
	"github.com/lunixbochs/regio/go/mmio"
)

type Config struct {
	// mapping
	Dev string
	// PCI selects Dev as a BAR resource file of a PCI function
	PCI    string
	BAR    uint
	Offset int64
	Size   int64
	Create bool
	Sync   bool

	// accessor
	WordWidth uint
	BulkWidth uint
	Endian    string

	Color    bool
	Verbose  bool
	Buffered bool
	Output   io.WriteCloser
}

func NewConfig() *Config {
	return &Config{
		WordWidth: 32,
		BAR:       mmap.DefaultBAR,
		Endian:    "native",
		Output:    os.Stderr,
	}
}

// Bulk returns the bulk width, which defaults to the word width.
func (c *Config) Bulk() uint {
	if c.BulkWidth == 0 {
		return c.WordWidth
	}
	return c.BulkWidth
}

func (c *Config) LittleEndian() bool {
	switch c.Endian {
	case "little":
		return true
	case "big":
		return false
	}
	return mmio.HostLittle
}

// ResolvePCI points Dev at the selected BAR when a PCI function is set.
func (c *Config) ResolvePCI() error {
	if c.PCI == "" {
		return nil
	}
	dev, err := mmap.PCIResource(mmap.PCIDevicesDir, c.PCI, c.BAR)
	if err != nil {
		return err
	}
	c.Dev = dev
	return nil
}

func (c *Config) Validate() error {
	if c.Dev == "" {
		return errors.New("no device or file given (-dev or -pci)")
	}
	if _, err := mmio.ParseWidth(c.WordWidth); err != nil {
		return errors.Wrap(err, "word width")
	}
	if _, err := mmio.ParseWidth(c.Bulk()); err != nil {
		return errors.Wrap(err, "bulk width")
	}
	switch c.Endian {
	case "", "native", "little", "big":
	default:
		return errors.Errorf("%s is not a valid byte order ('little', 'big' or 'native')", c.Endian)
	}
	return nil
}

// Logf prints diagnostics when Verbose is set.
func (c *Config) Logf(format string, a ...interface{}) {
	if !c.Verbose || c.Output == nil {
		return
	}
	fmt.Fprintf(c.Output, format, a...)
}
