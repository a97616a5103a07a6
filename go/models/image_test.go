package models

import (
	"bytes"
	"compress/gzip"
	"hash/crc32"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lunixbochs/struc"

	"github.com/lunixbochs/regio/go/mmio"
)

func testAccessor(t *testing.T, mem []byte, word, bulk uint, little bool) *mmio.Accessor {
	t.Helper()
	a, err := mmio.NewFromBytes(mem, word, bulk, little)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestImageSaveLoad(t *testing.T) {
	mem := make([]byte, 64)
	for i := range mem {
		mem[i] = byte(i * 7)
	}
	a := testAccessor(t, mem, 16, 64, false)
	img, err := Capture(a, a, 3, 9)
	if err != nil {
		t.Fatal(err)
	}
	if img.Words[0] != uint64(mem[6])<<8|uint64(mem[7]) {
		t.Fatalf("captured %#x", img.Words[0])
	}
	var buf bytes.Buffer
	if err := img.Save(&buf); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadImage(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(img, loaded); diff != "" {
		t.Fatalf("image changed after save/load (-want +got):\n%s", diff)
	}
}

func TestImageRestore(t *testing.T) {
	mem := make([]byte, 32)
	for i := range mem {
		mem[i] = byte(0xf0 + i)
	}
	want := append([]byte(nil), mem...)
	a := testAccessor(t, mem, 32, 32, true)
	img, err := Capture(a, a, 0, 8)
	if err != nil {
		t.Fatal(err)
	}
	for i := range mem {
		mem[i] = 0
	}
	if err := img.Check(a); err != nil {
		t.Fatal(err)
	}
	if err := img.Restore(a); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(mem, want) {
		t.Errorf("restored % x", mem)
	}
	other := testAccessor(t, mem, 32, 32, false)
	if err := img.Check(other); err == nil {
		t.Error("byte order mismatch not detected")
	}
}

func TestImageCorrupt(t *testing.T) {
	img := &Image{WordWidth: mmio.W8, BulkWidth: mmio.W32, Offset: 4, Words: []uint64{1, 2, 3}}
	var buf bytes.Buffer
	if err := img.Save(&buf); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	bad := append([]byte(nil), data...)
	bad[len(bad)-1] ^= 0xff
	if _, err := LoadImage(bytes.NewReader(bad)); err == nil {
		t.Error("checksum mismatch not detected")
	}
	if _, err := LoadImage(bytes.NewReader(data[:len(data)-2])); err == nil {
		t.Error("truncated image accepted")
	}
	bad = append([]byte(nil), data...)
	bad[0] = 'X'
	if _, err := LoadImage(bytes.NewReader(bad)); err == nil {
		t.Error("bad magic accepted")
	}
}

func TestImageDiff(t *testing.T) {
	a := &Image{WordWidth: mmio.W16, Offset: 8, Words: []uint64{1, 2, 3}}
	b := &Image{WordWidth: mmio.W16, Offset: 8, Words: []uint64{1, 0x20, 3}}
	cs, err := a.Diff(b)
	if err != nil {
		t.Fatal(err)
	}
	changed := cs.Changed()
	if len(changed) != 1 || changed[0].Offset != 9 || changed[0].Old != 2 || changed[0].New != 0x20 {
		t.Fatalf("bad diff: %v", changed.String(false))
	}
	if _, err := a.Diff(&Image{WordWidth: mmio.W16, Offset: 9, Words: b.Words}); err == nil {
		t.Error("diff across windows accepted")
	}
}

func TestImageHugeLength(t *testing.T) {
	var buf bytes.Buffer
	hdr := &imageHeader{Magic: imageMagic, Version: imageVersion, Length: 0xffffffff}
	if err := struc.PackWithOptions(&buf, hdr, strucOptions); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("short")
	_, err := LoadImage(&buf)
	if err == nil || !strings.Contains(err.Error(), "truncated: 5 of 4294967295") {
		t.Fatalf("oversized length: %v", err)
	}
}

func TestImageWordCountMismatch(t *testing.T) {
	// body claims 0x10000000 words but carries one
	body := []byte{16, 16, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0x10, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	var gzbuf bytes.Buffer
	gz := gzip.NewWriter(&gzbuf)
	gz.Write(body)
	gz.Close()
	data := gzbuf.Bytes()

	var buf bytes.Buffer
	hdr := &imageHeader{Magic: imageMagic, Version: imageVersion, Crc: crc32.ChecksumIEEE(data), Length: uint32(len(data))}
	if err := struc.PackWithOptions(&buf, hdr, strucOptions); err != nil {
		t.Fatal(err)
	}
	buf.Write(data)
	if _, err := LoadImage(&buf); err == nil || !strings.Contains(err.Error(), "for 268435456 words") {
		t.Fatalf("word count mismatch: %v", err)
	}
}

func TestCaptureThroughBuffer(t *testing.T) {
	mem := make([]byte, 8)
	a := testAccessor(t, mem, 16, 32, true)
	b := mmio.NewBuffered(a)
	b.Write(2, 1, 0xbeef)
	img, err := Capture(b, a, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint64{0, 0xbeef, 0}, img.Words); diff != "" {
		t.Errorf("capture ignored pending writes (-want +got):\n%s", diff)
	}
	if mem[4] != 0 {
		t.Error("capture flushed the buffer")
	}
}
