package models

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/lunixbochs/regio/go/mmio"
)

func clean(p []byte) string {
	o := make([]byte, len(p))
	for i, c := range p {
		if c >= 0x20 && c <= 0x7e {
			o[i] = c
		} else {
			o[i] = '.'
		}
	}
	return string(o)
}

// HexDump formats words of width w read from byte address base. Values are
// printed in host order; the text column shows the bytes as they sit in the
// device, using order.
func HexDump(base uint64, words []uint64, w mmio.Width, order binary.ByteOrder) []string {
	bsz := int(w.Bytes())
	hexFmt := fmt.Sprintf("%%0%dx", bsz*2)
	padBlock := strings.Repeat(" ", bsz*2)
	padTail := strings.Repeat(" ", bsz)

	width := 80
	addrSize := 8 + 4
	blockCount := ((width - addrSize) * 3 / 4) / ((bsz + 1) * 2)
	if blockCount < 1 {
		blockCount = 1
	}
	var out []string
	blocks := make([]string, blockCount)
	tail := make([]string, blockCount)
	raw := make([]byte, 8)
	for i := 0; i < len(words); i += blockCount {
		line := words[i:]
		for j := 0; j < blockCount; j++ {
			if j < len(line) {
				v := line[j]
				switch w {
				case mmio.W8:
					raw[0] = byte(v)
				case mmio.W16:
					order.PutUint16(raw, uint16(v))
				case mmio.W32:
					order.PutUint32(raw, uint32(v))
				case mmio.W64:
					order.PutUint64(raw, v)
				}
				blocks[j] = fmt.Sprintf(hexFmt, v)
				tail[j] = clean(raw[:bsz])
			} else {
				blocks[j] = padBlock
				tail[j] = padTail
			}
		}
		addr := base + uint64(i*bsz)
		out = append(out, fmt.Sprintf("0x%08x: %s [%s]", addr, strings.Join(blocks, " "), strings.Join(tail, " ")))
	}
	return out
}
