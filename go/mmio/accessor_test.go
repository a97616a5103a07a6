package mmio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

var widths = []uint{8, 16, 32, 64}

func newTestAccessor(t *testing.T, mem []byte, word, bulk uint, little bool) *Accessor {
	t.Helper()
	a, err := NewFromBytes(mem, word, bulk, little)
	if err != nil {
		t.Fatalf("NewFromBytes(%d, %d, %t): %v", word, bulk, little, err)
	}
	return a
}

func TestNewValidation(t *testing.T) {
	mem := make([]byte, 64)
	bad := [][]uint{
		{24, 32},
		{32, 7},
		{0, 8},
		{8, 128},
		{32, 16},
		{64, 8},
	}
	for _, v := range bad {
		a, err := NewFromBytes(mem, v[0], v[1], true)
		if err == nil || a != nil {
			t.Errorf("accepted word=%d bulk=%d", v[0], v[1])
			continue
		}
		if !IsConfigError(err) {
			t.Errorf("word=%d bulk=%d: wrong error type %T", v[0], v[1], err)
		}
	}
	if _, err := NewFromBytes(nil, 8, 8, true); !IsConfigError(err) {
		t.Error("empty region accepted")
	}
	for _, word := range widths {
		for _, bulk := range widths {
			_, err := NewFromBytes(mem, word, bulk, false)
			if ok := bulk >= word; ok != (err == nil) {
				t.Errorf("word=%d bulk=%d: err=%v", word, bulk, err)
			}
		}
	}
}

func TestConfigErrorMessages(t *testing.T) {
	mem := make([]byte, 8)
	table := map[string][]uint{
		"invalid word width 24":                            {24, 32},
		"invalid bulk width 7":                             {8, 7},
		"bulk width 16 is not a multiple of word width 32": {32, 16},
	}
	for msg, v := range table {
		_, err := NewFromBytes(mem, v[0], v[1], true)
		if err == nil || err.Error() != msg {
			t.Errorf("got %v, want %q", err, msg)
		}
	}
}

func TestAttributes(t *testing.T) {
	mem := make([]byte, 64)
	a := newTestAccessor(t, mem, 16, 64, true)
	if a.WordWidth() != W16 || a.BulkWidth() != W64 || a.BulkSize() != 4 || !a.LittleEndian() {
		t.Fatalf("bad attributes: %v", a)
	}
	if a.Base() == 0 {
		t.Fatal("zero base")
	}
	want := fmt.Sprintf("mmio.Accessor(%#x, 16, 64, true)", a.Base())
	if a.String() != want {
		t.Errorf("String() = %q, want %q", a.String(), want)
	}
}

func TestWordRoundTrip(t *testing.T) {
	const v = 0x0123456789abcdef
	for _, little := range []bool{true, false} {
		for _, word := range widths {
			mem := make([]byte, 64)
			a := newTestAccessor(t, mem, word, word, little)
			for off := uint64(0); off < 4; off++ {
				if err := a.Write(off, 1, v+off); err != nil {
					t.Fatal(err)
				}
			}
			mask := Width(word).Mask()
			for off := uint64(0); off < 4; off++ {
				n, err := a.Read(off, 1)
				if err != nil {
					t.Fatal(err)
				}
				if n != (v+off)&mask {
					t.Errorf("word=%d little=%t off=%d: read %#x, want %#x", word, little, off, n, (v+off)&mask)
				}
			}
		}
	}
}

func TestBulkRoundTrip(t *testing.T) {
	const v = 0xfedcba9876543210
	for _, little := range []bool{true, false} {
		for _, word := range widths {
			for _, bulk := range widths {
				if bulk < word {
					continue
				}
				mem := make([]byte, 64)
				a := newTestAccessor(t, mem, word, bulk, little)
				size := a.BulkSize()
				if err := a.Write(2*size, size, v); err != nil {
					t.Fatal(err)
				}
				want := v & Width(bulk).Mask()
				// any word offset inside the bulk unit aliases the same bytes
				for off := 2 * size; off < 3*size; off++ {
					n, err := a.Read(off, size)
					if err != nil {
						t.Fatal(err)
					}
					if n != want {
						t.Errorf("word=%d bulk=%d little=%t off=%d: %#x != %#x", word, bulk, little, off, n, want)
					}
				}
				acc, err := a.Resolve(2*size+size-1, size)
				if err != nil {
					t.Fatal(err)
				}
				if acc.Index != 2 || acc.Addr != 2*uint64(bulk/8) || acc.Width != Width(bulk) {
					t.Errorf("bad resolve: %+v", acc)
				}
			}
		}
	}
}

func TestEndianBytes(t *testing.T) {
	table := map[bool][]byte{
		true:  {0x04, 0x03, 0x02, 0x01},
		false: {0x01, 0x02, 0x03, 0x04},
	}
	for little, want := range table {
		mem := make([]byte, 8)
		a := newTestAccessor(t, mem, 32, 32, little)
		if err := a.Write(0, 1, 0x01020304); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(mem[:4], want) {
			t.Errorf("little=%t: raw bytes % x, want % x", little, mem[:4], want)
		}
	}
}

func TestEndianRead(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	ltable := map[uint]uint64{
		8:  0x1,
		16: 0x0201,
		32: 0x04030201,
		64: 0x0807060504030201,
	}
	btable := map[uint]uint64{
		8:  0x1,
		16: 0x0102,
		32: 0x01020304,
		64: 0x0102030405060708,
	}
	for word, val := range ltable {
		mem := append([]byte(nil), raw...)
		a := newTestAccessor(t, mem, word, word, true)
		if n, err := a.Read(0, 1); err != nil {
			t.Error(err)
		} else if n != val {
			t.Errorf("little %d: %#x != %#x", word, n, val)
		}
	}
	for word, val := range btable {
		mem := append([]byte(nil), raw...)
		a := newTestAccessor(t, mem, word, word, false)
		if n, err := a.Read(0, 1); err != nil {
			t.Error(err)
		} else if n != val {
			t.Errorf("big %d: %#x != %#x", word, n, val)
		}
	}
}

func TestWordBulkScenario(t *testing.T) {
	const v = 0xAABBCCDD11223344
	table := map[bool]uint64{
		true:  0x3344,
		false: 0xAABB,
	}
	for little, first := range table {
		mem := make([]byte, 16)
		a := newTestAccessor(t, mem, 16, 64, little)
		if a.BulkSize() != 4 {
			t.Fatalf("bulk size %d", a.BulkSize())
		}
		if err := a.Write(0, 4, v); err != nil {
			t.Fatal(err)
		}
		if n, _ := a.Read(0, 4); n != v {
			t.Errorf("little=%t: bulk read %#x", little, n)
		}
		if n, _ := a.Read(0, 1); n != first {
			t.Errorf("little=%t: first word %#x, want %#x", little, n, first)
		}
		if got := Order(little).Uint64(mem); got != v {
			t.Errorf("little=%t: raw %#x", little, got)
		}
	}
}

func TestUpdate(t *testing.T) {
	for _, little := range []bool{true, false} {
		for _, word := range widths {
			mem := make([]byte, 32)
			for i := range mem {
				mem[i] = byte(0x5a + i)
			}
			a := newTestAccessor(t, mem, word, 64, little)
			for _, size := range []uint64{1, a.BulkSize()} {
				w := a.WordWidth()
				if size != 1 {
					w = a.BulkWidth()
				}
				before, err := a.Read(1*size, size)
				if err != nil {
					t.Fatal(err)
				}
				// no-op update
				if err := a.Update(1*size, size, ^uint64(0), 0); err != nil {
					t.Fatal(err)
				}
				if n, _ := a.Read(1*size, size); n != before {
					t.Errorf("no-op update changed %#x to %#x", before, n)
				}
				// set to exactly M
				const m = 0x8badf00ddeadbeef
				if err := a.Update(1*size, size, 0, m); err != nil {
					t.Fatal(err)
				}
				if n, _ := a.Read(1*size, size); n != m&w.Mask() {
					t.Errorf("word=%d size=%d: got %#x, want %#x", word, size, n, m&w.Mask())
				}
				// clear low nibble, set bit 1
				if err := a.Update(1*size, size, ^uint64(0xf), 0x2); err != nil {
					t.Fatal(err)
				}
				want := (m&^0xf | 0x2) & w.Mask()
				if n, _ := a.Read(1*size, size); n != want {
					t.Errorf("word=%d size=%d: got %#x, want %#x", word, size, n, want)
				}
			}
		}
	}
}

func TestInvalidSize(t *testing.T) {
	mem := make([]byte, 64)
	for i := range mem {
		mem[i] = 0xc3
	}
	canary := append([]byte(nil), mem...)
	a := newTestAccessor(t, mem, 16, 64, true)

	for _, size := range []uint64{0, 2, 3, 5, 8} {
		if _, err := a.Read(4, size); !IsAccessError(err) {
			t.Errorf("read size %d: %v", size, err)
		}
		if err := a.Write(4, size, 0); !IsAccessError(err) {
			t.Errorf("write size %d: %v", size, err)
		}
		if err := a.Update(4, size, 0, 0xffff); !IsAccessError(err) {
			t.Errorf("update size %d: %v", size, err)
		}
		if _, err := a.Resolve(4, size); err == nil {
			t.Errorf("resolve size %d succeeded", size)
		}
	}
	if !bytes.Equal(mem, canary) {
		t.Fatal("invalid access touched memory")
	}
}

func TestAccessErrorMessages(t *testing.T) {
	mem := make([]byte, 16)
	a := newTestAccessor(t, mem, 8, 32, false)
	_, err := a.Read(0x10, 3)
	if err == nil || err.Error() != "invalid read size 3 from offset 0x10" {
		t.Errorf("read: %v", err)
	}
	err = a.Write(0x10, 3, 1)
	if err == nil || err.Error() != "invalid write size 3 to offset 0x10" {
		t.Errorf("write: %v", err)
	}
	err = a.Update(0x10, 3, 1, 1)
	if err == nil || err.Error() != "invalid update size 3 at offset 0x10" {
		t.Errorf("update: %v", err)
	}
	if aerr, ok := err.(*AccessError); !ok || aerr.Enum != ACCESS_UPDATE || aerr.Size != 3 {
		t.Errorf("bad error: %#v", err)
	}
}

func TestWriteDoesNotSpill(t *testing.T) {
	for _, word := range widths {
		mem := make([]byte, 24)
		a := newTestAccessor(t, mem, word, word, true)
		if err := a.Write(1, 1, ^uint64(0)); err != nil {
			t.Fatal(err)
		}
		n := int(word / 8)
		for i, c := range mem {
			want := byte(0)
			if i >= n && i < 2*n {
				want = 0xff
			}
			if c != want {
				t.Fatalf("word=%d: byte %d = %#x, want %#x", word, i, c, want)
			}
		}
	}
}

func TestSingleByteIgnoresOrder(t *testing.T) {
	for _, little := range []bool{true, false} {
		mem := make([]byte, 4)
		a := newTestAccessor(t, mem, 8, 8, little)
		if err := a.Write(2, 1, 0x1ab); err != nil {
			t.Fatal(err)
		}
		if mem[2] != 0xab {
			t.Errorf("little=%t: byte %#x", little, mem[2])
		}
	}
}

func TestSwap(t *testing.T) {
	table := map[Width][2]uint64{
		W8:  {0x12, 0x12},
		W16: {0x1234, 0x3412},
		W32: {0x12345678, 0x78563412},
		W64: {0x0102030405060708, 0x0807060504030201},
	}
	for w, v := range table {
		if got := swap(w, v[0]); got != v[1] {
			t.Errorf("%s: %#x != %#x", w, got, v[1])
		}
	}
	if HostLittle != (binary.NativeEndian.Uint16([]byte{1, 0}) == 1) {
		t.Error("host byte order detection disagrees with memory layout")
	}
}

func TestParseWidth(t *testing.T) {
	for _, w := range widths {
		if got, err := ParseWidth(w); err != nil || got.Bits() != w {
			t.Errorf("ParseWidth(%d) = %v, %v", w, got, err)
		}
	}
	_, err := ParseWidth(24)
	if err == nil {
		t.Fatal("ParseWidth(24) succeeded")
	}
	if _, ok := err.(interface{ StackTrace() errors.StackTrace }); !ok {
		t.Errorf("width error carries no stack: %T", err)
	}
}
