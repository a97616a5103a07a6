package cmd

import (
	"fmt"

	"github.com/lunixbochs/regio/go/mmio"
	"github.com/lunixbochs/regio/go/models"
)

// size arguments are optional everywhere and default to a single word
func sizeArg(rest []uint64) uint64 {
	if len(rest) > 0 && rest[0] != 0 {
		return rest[0]
	}
	return 1
}

func hexFmt(w mmio.Width) string {
	return fmt.Sprintf("%%#0%dx", w.Digits())
}

var ReadCmd = cmd(&Command{
	Name: "read",
	Desc: "Read a word (size 1) or a bulk unit: read off [size]",
	Run: func(c *Context, off uint64, rest ...uint64) error {
		size := sizeArg(rest)
		acc, err := c.Check(off, size)
		if err != nil {
			return err
		}
		val, err := c.IO().Read(off, size)
		if err != nil {
			return err
		}
		c.Printf(hexFmt(acc.Width)+"\n", val)
		return nil
	},
})

var WriteCmd = cmd(&Command{
	Name: "write",
	Desc: "Write a value: write off value [size]",
	Run: func(c *Context, off, value uint64, rest ...uint64) error {
		size := sizeArg(rest)
		if _, err := c.Check(off, size); err != nil {
			return err
		}
		return c.IO().Write(off, size, value)
	},
})

var UpdateCmd = cmd(&Command{
	Name: "update",
	Desc: "Masked read-modify-write, (val & clr) | set: update off clr set [size]",
	Run: func(c *Context, off, clr, set uint64, rest ...uint64) error {
		size := sizeArg(rest)
		if _, err := c.Check(off, size); err != nil {
			return err
		}
		return c.IO().Update(off, size, clr, set)
	},
})

var DumpCmd = cmd(&Command{
	Name: "dump",
	Desc: "Hex dump words: dump off count",
	Run: func(c *Context, off, count uint64) error {
		if count == 0 {
			return nil
		}
		if err := c.CheckRange(off, count); err != nil {
			return err
		}
		words := make([]uint64, count)
		for i := range words {
			val, err := c.IO().Read(off+uint64(i), 1)
			if err != nil {
				return err
			}
			words[i] = val
		}
		a := c.Accessor
		base := off * uint64(a.WordWidth().Bytes())
		for _, line := range models.HexDump(base, words, a.WordWidth(), mmio.Order(a.LittleEndian())) {
			c.Printf("  %s\n", line)
		}
		return nil
	},
})

var WatchCmd = cmd(&Command{
	Name: "watch",
	Desc: "Read and highlight changes since the last watch: watch off [size]",
	Run: func(c *Context, off uint64, rest ...uint64) error {
		size := sizeArg(rest)
		acc, err := c.Check(off, size)
		if err != nil {
			return err
		}
		val, err := c.IO().Read(off, size)
		if err != nil {
			return err
		}
		if c.last == nil {
			c.last = make(map[[2]uint64]uint64)
		}
		key := [2]uint64{acc.Addr, uint64(acc.Width)}
		old, seen := c.last[key]
		if !seen {
			old = val
		}
		c.last[key] = val
		change := models.NewChange(off, val, old, acc.Width.Digits())
		c.Printf("%s\n", change.String(c.color()))
		return nil
	},
})
