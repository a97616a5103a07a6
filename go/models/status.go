package models

import (
	"fmt"
	"strings"

	"github.com/mgutz/ansi"
)

var chSame = ansi.ColorCode("default:default")
var chNew = ansi.ColorCode("default+bu:default")

func colorPad(s, color string, pad int) string {
	length := len(s)
	s = color + s + ansi.Reset
	if length < pad {
		s = strings.Repeat(" ", pad-length) + s
	}
	return s
}

type ChangeMask struct {
	Old, New string
	Changed  bool
}

// Change is a register value that was read twice.
type Change struct {
	Offset   uint64
	Old, New uint64
	// hex digits needed for a full value
	Digits int
}

func NewChange(offset uint64, val, oldVal uint64, digits int) *Change {
	return &Change{
		Offset: offset,
		Old:    oldVal,
		New:    val,
		Digits: digits,
	}
}

func (c *Change) Changed() bool {
	return c.Old != c.New
}

// Mask splits the new value's hex digits into runs that did or did not
// change since the old value.
func (c *Change) Mask() []ChangeMask {
	hexFmt := fmt.Sprintf("%%0%dx", c.Digits)
	s1, s2 := fmt.Sprintf(hexFmt, c.New), fmt.Sprintf(hexFmt, c.Old)
	pos := 0
	matching := true
	masks := make([]ChangeMask, 0, len(s1))
	for i := range s1 {
		if (s1[i] == s2[i]) != matching {
			if i > pos {
				masks = append(masks, ChangeMask{
					New:     s1[pos:i],
					Old:     s2[pos:i],
					Changed: !matching,
				})
				pos = i
			}
			matching = !matching
		}
	}
	if pos < len(s1) {
		masks = append(masks, ChangeMask{
			New:     s1[pos:],
			Old:     s2[pos:],
			Changed: !matching,
		})
	}
	return masks
}

func (c *Change) String(color bool) string {
	var out []string
	hexFmt := fmt.Sprintf("%%0%dx", c.Digits)
	name := fmt.Sprintf("%#x", c.Offset)
	lineStart := fmt.Sprintf(" %6s 0x", name)
	if c.Changed() {
		if color {
			out = append(out, fmt.Sprintf(" %s 0x", colorPad(name, chNew, 6)))
			for _, mask := range c.Mask() {
				col := chSame
				if mask.Changed {
					col = chNew
				}
				out = append(out, col+mask.New)
			}
			out = append(out, ansi.Reset)
		} else {
			out = append(out, fmt.Sprintf("+"+lineStart+hexFmt+" (was 0x"+hexFmt+")", c.New, c.Old))
		}
	} else {
		out = append(out, fmt.Sprintf(" "+lineStart+hexFmt, c.New))
	}
	return strings.Join(out, "")
}

type Changes []*Change

func (cs Changes) String(color bool) string {
	var out []string
	for _, c := range cs {
		out = append(out, c.String(color))
	}
	return strings.Join(out, "\n")
}

func (cs Changes) Changed() Changes {
	ret := make(Changes, 0, cs.Count())
	for _, c := range cs {
		if c.Changed() {
			ret = append(ret, c)
		}
	}
	return ret
}

func (cs Changes) Count() int {
	ret := 0
	for _, c := range cs {
		if c.Changed() {
			ret += 1
		}
	}
	return ret
}
