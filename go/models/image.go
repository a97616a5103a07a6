package models

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"hash/crc32"
	"io"
	"io/ioutil"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/lunixbochs/regio/go/mmio"
)

// image format:
//
// file header (big endian)
// [4]byte("RGIO")
// uint32(image format version)
// uint32(crc32 of compressed data)
// uint32(length of compressed data)
// remainder is gzip-compressed
//
// -- uncompressed data start --
// uint8(word width), uint8(bulk width), bool(little endian)
// uint64(word offset of the first word)
// uint32(number of words)
// 1..num: uint64(word value, host order)

const imageVersion = 1

// bytes of image body before the words
const imageBodyFixed = 15

var imageMagic = [4]byte{'R', 'G', 'I', 'O'}

type imageHeader struct {
	Magic   [4]byte `struc:"[4]byte"`
	Version uint32  `struc:"uint32"`
	Crc     uint32  `struc:"uint32"`
	Length  uint32  `struc:"uint32"`
}

type imageBody struct {
	WordWidth    uint8    `struc:"uint8"`
	BulkWidth    uint8    `struc:"uint8"`
	LittleEndian bool     `struc:"bool"`
	Offset       uint64   `struc:"uint64"`
	Count        uint32   `struc:"uint32,sizeof=Words"`
	Words        []uint64 `struc:"[]uint64"`
}

// Image is a snapshot of consecutive words of a register window.
type Image struct {
	WordWidth    mmio.Width
	BulkWidth    mmio.Width
	LittleEndian bool
	Offset       uint64
	Words        []uint64
}

var strucOptions = &struc.Options{Order: binary.BigEndian}

// Capture reads count words starting at word offset through dev. The image
// layout is taken from a, which dev reads through.
func Capture(dev mmio.IO, a *mmio.Accessor, offset, count uint64) (*Image, error) {
	img := &Image{
		WordWidth:    a.WordWidth(),
		BulkWidth:    a.BulkWidth(),
		LittleEndian: a.LittleEndian(),
		Offset:       offset,
		Words:        make([]uint64, count),
	}
	for i := range img.Words {
		val, err := dev.Read(offset+uint64(i), 1)
		if err != nil {
			return nil, err
		}
		img.Words[i] = val
	}
	return img, nil
}

// Check returns an error if the image was taken with a different accessor
// configuration than a.
func (img *Image) Check(a *mmio.Accessor) error {
	if img.WordWidth != a.WordWidth() || img.BulkWidth != a.BulkWidth() || img.LittleEndian != a.LittleEndian() {
		return errors.Errorf("image was saved as (%d, %d, %t), accessor is (%d, %d, %t)",
			img.WordWidth, img.BulkWidth, img.LittleEndian,
			a.WordWidth(), a.BulkWidth(), a.LittleEndian())
	}
	return nil
}

// Restore writes every word back in offset order.
func (img *Image) Restore(dev mmio.IO) error {
	for i, val := range img.Words {
		off := img.Offset + uint64(i)
		if err := dev.Write(off, 1, val); err != nil {
			return errors.Wrapf(err, "restore word %#x", off)
		}
	}
	return nil
}

// Diff compares two images of the same window word by word.
func (img *Image) Diff(other *Image) (Changes, error) {
	if img.Offset != other.Offset || len(img.Words) != len(other.Words) || img.WordWidth != other.WordWidth {
		return nil, errors.New("images cover different windows")
	}
	cs := make(Changes, len(img.Words))
	for i := range img.Words {
		cs[i] = NewChange(img.Offset+uint64(i), other.Words[i], img.Words[i], img.WordWidth.Digits())
	}
	return cs, nil
}

func (img *Image) Save(w io.Writer) error {
	var body bytes.Buffer
	gz := gzip.NewWriter(&body)
	b := &imageBody{
		WordWidth:    uint8(img.WordWidth),
		BulkWidth:    uint8(img.BulkWidth),
		LittleEndian: img.LittleEndian,
		Offset:       img.Offset,
		Words:        img.Words,
	}
	if err := struc.PackWithOptions(gz, b, strucOptions); err != nil {
		return errors.Wrap(err, "struc.Pack() failed")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "gzip")
	}
	data := body.Bytes()
	hdr := &imageHeader{
		Magic:   imageMagic,
		Version: imageVersion,
		Crc:     crc32.ChecksumIEEE(data),
		Length:  uint32(len(data)),
	}
	if err := struc.PackWithOptions(w, hdr, strucOptions); err != nil {
		return errors.Wrap(err, "struc.Pack() failed")
	}
	_, err := w.Write(data)
	return errors.Wrap(err, "write image")
}

func LoadImage(r io.Reader) (*Image, error) {
	var hdr imageHeader
	if err := struc.UnpackWithOptions(r, &hdr, strucOptions); err != nil {
		return nil, errors.Wrap(err, "image header")
	}
	if hdr.Magic != imageMagic {
		return nil, errors.New("not a register image")
	}
	if hdr.Version != imageVersion {
		return nil, errors.Errorf("unsupported image version %d", hdr.Version)
	}
	// the header length is not trusted for allocation
	data, err := ioutil.ReadAll(io.LimitReader(r, int64(hdr.Length)))
	if err != nil {
		return nil, errors.Wrap(err, "read image")
	}
	if uint64(len(data)) != uint64(hdr.Length) {
		return nil, errors.Errorf("image truncated: %d of %d bytes", len(data), hdr.Length)
	}
	if crc32.ChecksumIEEE(data) != hdr.Crc {
		return nil, errors.New("image checksum mismatch")
	}
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "gzip")
	}
	raw, err := ioutil.ReadAll(gz)
	if err != nil {
		return nil, errors.Wrap(err, "gzip")
	}
	if len(raw) < imageBodyFixed {
		return nil, errors.New("image body truncated")
	}
	count := uint64(binary.BigEndian.Uint32(raw[imageBodyFixed-4:]))
	if uint64(len(raw)) != imageBodyFixed+8*count {
		return nil, errors.Errorf("image body has %d bytes for %d words", len(raw), count)
	}
	var b imageBody
	if err := struc.UnpackWithOptions(bytes.NewReader(raw), &b, strucOptions); err != nil {
		return nil, errors.Wrap(err, "struc.Unpack() failed")
	}
	word, err := mmio.ParseWidth(uint(b.WordWidth))
	if err != nil {
		return nil, errors.Wrap(err, "image word width")
	}
	bulk, err := mmio.ParseWidth(uint(b.BulkWidth))
	if err != nil {
		return nil, errors.Wrap(err, "image bulk width")
	}
	return &Image{
		WordWidth:    word,
		BulkWidth:    bulk,
		LittleEndian: b.LittleEndian,
		Offset:       b.Offset,
		Words:        b.Words,
	}, nil
}
