package cmd

import (
	"os"

	"github.com/pkg/errors"

	"github.com/lunixbochs/regio/go/mmio"
	"github.com/lunixbochs/regio/go/models"
)

var InfoCmd = cmd(&Command{
	Name: "info",
	Desc: "Show the accessor configuration.",
	Run: func(c *Context) {
		a := c.Accessor
		c.Printf("accessor: %s\n", a)
		c.Printf("word:     %s (%d bytes)\n", a.WordWidth(), a.WordWidth().Bytes())
		c.Printf("bulk:     %s (%d bytes, %d per bulk unit)\n", a.BulkWidth(), a.BulkWidth().Bytes(), a.BulkSize())
		order := "big"
		if a.LittleEndian() {
			order = "little"
		}
		c.Printf("endian:   %s\n", order)
		if r, ok := c.Region.(interface{ String() string }); ok {
			c.Printf("region:   %s\n", r.String())
		}
		if b := c.Buffered(); b != nil {
			c.Printf("buffered: %d pending\n", b.Len())
		} else {
			c.Printf("buffered: off\n")
		}
	},
})

var BufferCmd = cmd(&Command{
	Name: "buffer",
	Desc: "Turn write buffering on or off: buffer on|off",
	Run: func(c *Context, mode string) error {
		switch mode {
		case "on":
			if c.buf == nil {
				c.buf = mmio.NewBuffered(c.Accessor)
			}
		case "off":
			if c.buf != nil {
				if err := c.buf.Flush(); err != nil {
					return err
				}
			}
			c.buf = nil
		default:
			return errors.Errorf("expected on or off, got %q", mode)
		}
		return nil
	},
})

var SyncCmd = cmd(&Command{
	Name: "sync",
	Desc: "Write buffered values to the device.",
	Run: func(c *Context) error {
		if c.buf == nil {
			return errors.New("buffering is off")
		}
		return c.buf.Sync()
	},
})

var DropCmd = cmd(&Command{
	Name: "drop",
	Desc: "Discard buffered values.",
	Run: func(c *Context) error {
		if c.buf == nil {
			return errors.New("buffering is off")
		}
		c.buf.Drop()
		return nil
	},
})

var SaveCmd = cmd(&Command{
	Name: "save",
	Desc: "Save words to an image file: save off count file",
	Run: func(c *Context, off, count uint64, path string) error {
		if count == 0 {
			return errors.New("nothing to save")
		}
		if err := c.CheckRange(off, count); err != nil {
			return err
		}
		img, err := models.Capture(c.IO(), c.Accessor, off, count)
		if err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "save")
		}
		defer f.Close()
		if err := img.Save(f); err != nil {
			return err
		}
		c.Printf("saved %d words at %#x to %s\n", count, off, path)
		return nil
	},
})

var LoadCmd = cmd(&Command{
	Name: "load",
	Desc: "Restore an image file, or diff it against the device: load file [diff]",
	Run: func(c *Context, path string, rest ...string) error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "load")
		}
		defer f.Close()
		img, err := models.LoadImage(f)
		if err != nil {
			return err
		}
		if err := img.Check(c.Accessor); err != nil {
			return err
		}
		n := uint64(len(img.Words))
		if n == 0 {
			return nil
		}
		if err := c.CheckRange(img.Offset, n); err != nil {
			return err
		}
		if len(rest) > 0 && rest[0] == "diff" {
			cur, err := models.Capture(c.IO(), c.Accessor, img.Offset, n)
			if err != nil {
				return err
			}
			changes, err := img.Diff(cur)
			if err != nil {
				return err
			}
			changed := changes.Changed()
			if len(changed) == 0 {
				c.Printf("no differences\n")
				return nil
			}
			c.Printf("%s\n", changed.String(c.color()))
			return nil
		}
		if err := img.Restore(c.IO()); err != nil {
			return err
		}
		c.Printf("restored %d words at %#x\n", n, img.Offset)
		return nil
	},
})
