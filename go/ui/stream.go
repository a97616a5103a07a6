package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/lunixbochs/regio/go/mmio"
	"github.com/lunixbochs/regio/go/models"
)

// StreamUI polls a window of words and prints every word that changed
// between polls.
type StreamUI struct {
	config *models.Config
	dev    mmio.IO
	word   mmio.Width
	little bool

	offset uint64
	last   []uint64
	polls  int
}

func NewStreamUI(c *models.Config, a *mmio.Accessor, offset, count uint64) *StreamUI {
	return &StreamUI{
		config: c,
		dev:    a,
		word:   a.WordWidth(),
		little: a.LittleEndian(),
		offset: offset,
		last:   make([]uint64, count),
	}
}

func (s *StreamUI) Printf(f string, args ...interface{}) { fmt.Fprintf(s.config.Output, f, args...) }
func (s *StreamUI) Println(args ...interface{})          { fmt.Fprintln(s.config.Output, args...) }

func (s *StreamUI) read() ([]uint64, error) {
	words := make([]uint64, len(s.last))
	for i := range words {
		off := s.offset + uint64(i)
		val, err := s.dev.Read(off, 1)
		if err != nil {
			return nil, errors.Wrapf(err, "poll word %#x", off)
		}
		words[i] = val
	}
	return words, nil
}

// OnStart takes the first snapshot and dumps it.
func (s *StreamUI) OnStart() error {
	words, err := s.read()
	if err != nil {
		return err
	}
	s.last = words
	s.polls = 1
	base := s.offset * uint64(s.word.Bytes())
	for _, line := range models.HexDump(base, words, s.word, mmio.Order(s.little)) {
		s.Println(line)
	}
	return nil
}

// Poll rereads the window and prints the words that changed. It returns the
// number of changed words.
func (s *StreamUI) Poll() (int, error) {
	words, err := s.read()
	if err != nil {
		return 0, err
	}
	var changes models.Changes
	for i, val := range words {
		if val != s.last[i] {
			changes = append(changes, models.NewChange(s.offset+uint64(i), val, s.last[i], s.word.Digits()))
		}
	}
	s.last = words
	s.polls++
	if len(changes) > 0 {
		s.Printf("[poll %d]\n%s\n", s.polls, changes.String(s.config.Color))
	}
	return len(changes), nil
}

// Run polls every interval until ctx is done or, if limit is positive,
// limit polls have been made.
func (s *StreamUI) Run(ctx context.Context, interval time.Duration, limit int) error {
	if err := s.OnStart(); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for limit <= 0 || s.polls < limit {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Poll(); err != nil {
				return err
			}
		}
	}
	return nil
}
