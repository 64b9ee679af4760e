// Package history keeps a bounded, in-memory log of computed dot products.
//
// Entries are held newest first and are never written to disk.
package history

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/example/go-dotprod/internal/vector"
)

// DefaultLimit is the number of entries kept when New is given a limit <= 0.
const DefaultLimit = 50

const (
	KindInteger = "integer"
	KindReal    = "real"
)

// Entry is one recorded calculation. Numbers are kept as json.Number so
// integer results survive without float rounding.
type Entry struct {
	ID        int64         `json:"id"`
	Kind      string        `json:"kind"`
	A         []json.Number `json:"a"`
	B         []json.Number `json:"b"`
	Result    json.Number   `json:"result"`
	Dimension int           `json:"dimension"`
	Timestamp time.Time     `json:"timestamp"`
}

// FromBreakdown builds an unsaved Entry from a worked calculation.
func FromBreakdown[T vector.Number](kind string, bd vector.Breakdown[T]) Entry {
	return Entry{
		Kind:      kind,
		A:         numbers(bd.A),
		B:         numbers(bd.B),
		Result:    json.Number(fmt.Sprint(bd.Result)),
		Dimension: bd.Dimension(),
	}
}

func numbers[T vector.Number](xs []T) []json.Number {
	out := make([]json.Number, len(xs))
	for i, x := range xs {
		out[i] = json.Number(fmt.Sprint(x))
	}
	return out
}

// Store is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	limit   int
	nextID  int64
	entries []Entry
	now     func() time.Time
}

func New(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{limit: limit, now: time.Now}
}

// Add stamps e with an ID and timestamp, stores it at the front and drops the
// oldest entries beyond the limit. The stored entry is returned.
func (s *Store) Add(e Entry) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e.ID = s.nextID
	e.Timestamp = s.now().UTC()

	s.entries = append([]Entry{e}, s.entries...)
	if len(s.entries) > s.limit {
		s.entries = s.entries[:s.limit]
	}
	return e
}

// List returns a copy of the entries, newest first.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Entry(nil), s.entries...)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
}

var csvHeader = []string{"Vector A", "Vector B", "Result", "Dimension", "Timestamp"}

// WriteCSV exports the entries, newest first, under a fixed header row.
func (s *Store) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range s.List() {
		row := []string{
			formatVector(e.A),
			formatVector(e.B),
			e.Result.String(),
			fmt.Sprint(e.Dimension),
			e.Timestamp.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", e.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatVector(v []json.Number) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = n.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
