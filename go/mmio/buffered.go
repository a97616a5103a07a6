package mmio

import (
	"sort"

	"github.com/pkg/errors"
)

type bufKey struct {
	Width Width
	Index uint64
}

type bufEntry struct {
	acc          Access
	offset, size uint64
	value        uint64
	// write order, used to merge overlapping word and bulk entries
	seq uint64
}

// Buffered collects writes in memory and only touches the device on Load,
// Store and Sync. Reads are served from the buffer when possible.
//
// Entries are keyed by the access they resolve to, so two bulk offsets inside
// the same bulk unit share an entry. A word entry and a bulk entry may cover
// the same bytes: reads merge them so the latest write wins, and Sync replays
// entries in the order they were written.
type Buffered struct {
	dev *Accessor
	buf map[bufKey]*bufEntry
	seq uint64
}

func NewBuffered(dev *Accessor) *Buffered {
	return &Buffered{dev: dev, buf: make(map[bufKey]*bufEntry)}
}

func (b *Buffered) Accessor() *Accessor { return b.dev }

// Len returns the number of buffered entries.
func (b *Buffered) Len() int { return len(b.buf) }

func (b *Buffered) put(acc Access, offset, size, value uint64) {
	b.seq++
	b.buf[bufKey{acc.Width, acc.Index}] = &bufEntry{
		acc:    acc,
		offset: offset,
		size:   size,
		value:  value,
		seq:    b.seq,
	}
}

// overlapping returns the entries of the other width sharing bytes with acc.
func (b *Buffered) overlapping(acc Access) []*bufEntry {
	bulkSize := b.dev.bulkSize
	if bulkSize == 1 {
		return nil
	}
	var out []*bufEntry
	if acc.Width == b.dev.word {
		if e, ok := b.buf[bufKey{b.dev.bulk, acc.Index / bulkSize}]; ok {
			out = append(out, e)
		}
		return out
	}
	first := acc.Index * bulkSize
	for i := uint64(0); i < bulkSize; i++ {
		if e, ok := b.buf[bufKey{b.dev.word, first + i}]; ok {
			out = append(out, e)
		}
	}
	return out
}

// merge lays the bytes of newer entries over val in write order.
func (b *Buffered) merge(acc Access, val uint64, newer []*bufEntry) uint64 {
	sort.Slice(newer, func(i, j int) bool { return newer[i].seq < newer[j].seq })
	order := Order(b.dev.little)
	raw := make([]byte, acc.Width.Bytes())
	putValue(acc.Width, order, raw, val)
	for _, e := range newer {
		src := make([]byte, e.acc.Width.Bytes())
		putValue(e.acc.Width, order, src, e.value)
		if e.acc.Addr <= acc.Addr {
			copy(raw, src[acc.Addr-e.acc.Addr:])
		} else {
			copy(raw[e.acc.Addr-acc.Addr:], src)
		}
	}
	return getValue(acc.Width, order, raw)
}

func (b *Buffered) Read(offset, size uint64) (uint64, error) {
	acc, err := b.dev.resolve(ACCESS_READ, offset, size)
	if err != nil {
		return 0, err
	}
	e, ok := b.buf[bufKey{acc.Width, acc.Index}]
	var newer []*bufEntry
	for _, o := range b.overlapping(acc) {
		if !ok || o.seq > e.seq {
			newer = append(newer, o)
		}
	}
	if len(newer) == 0 {
		if ok {
			return e.value, nil
		}
		return b.Load(offset, size)
	}
	var val uint64
	if ok {
		val = e.value
	} else if val, err = b.dev.Read(offset, size); err != nil {
		return 0, err
	}
	return b.merge(acc, val, newer), nil
}

func (b *Buffered) Write(offset, size, value uint64) error {
	acc, err := b.dev.resolve(ACCESS_WRITE, offset, size)
	if err != nil {
		return err
	}
	b.put(acc, offset, size, value&acc.Width.Mask())
	return nil
}

func (b *Buffered) Update(offset, size, clrMask, setMask uint64) error {
	if _, err := b.dev.resolve(ACCESS_UPDATE, offset, size); err != nil {
		return err
	}
	val, err := b.Read(offset, size)
	if err != nil {
		return err
	}
	return b.Write(offset, size, (val&clrMask)|setMask)
}

// Load reads from the device and refreshes the buffered value. The loaded
// value supersedes earlier buffered writes to the same bytes.
func (b *Buffered) Load(offset, size uint64) (uint64, error) {
	acc, err := b.dev.resolve(ACCESS_READ, offset, size)
	if err != nil {
		return 0, err
	}
	val, err := b.dev.Read(offset, size)
	if err != nil {
		return 0, err
	}
	b.put(acc, offset, size, val)
	return val, nil
}

// Store buffers value and writes it through to the device immediately.
func (b *Buffered) Store(offset, size, value uint64) error {
	if err := b.Write(offset, size, value); err != nil {
		return err
	}
	return b.dev.Write(offset, size, value)
}

// Sync writes every buffered entry to the device in write order. The buffer
// is kept.
func (b *Buffered) Sync() error {
	entries := make([]*bufEntry, 0, len(b.buf))
	for _, e := range b.buf {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	for _, e := range entries {
		if err := b.dev.Write(e.offset, e.size, e.value); err != nil {
			return errors.Wrapf(err, "sync %s at index %#x", e.acc.Width, e.acc.Index)
		}
	}
	return nil
}

// Drop forgets every buffered entry without writing anything.
func (b *Buffered) Drop() {
	b.buf = make(map[bufKey]*bufEntry)
	b.seq = 0
}

// Flush syncs and then drops the buffer. Entries are kept if Sync fails.
func (b *Buffered) Flush() error {
	if err := b.Sync(); err != nil {
		return err
	}
	b.Drop()
	return nil
}
