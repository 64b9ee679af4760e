package history

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/example/go-dotprod/internal/vector"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustEntry(t *testing.T, a, b []int) Entry {
	t.Helper()

	bd, err := vector.Explain(a, b)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	return FromBreakdown(KindInteger, bd)
}

func TestFromBreakdown(t *testing.T) {
	bd, err := vector.KernelScalar.Explain([]float64{1.5, 2}, []float64{2, 1.5})
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}

	e := FromBreakdown(KindReal, bd)
	if e.Result != "6" {
		t.Errorf("Result = %q, want %q", e.Result, "6")
	}
	if e.Dimension != 2 {
		t.Errorf("Dimension = %d, want 2", e.Dimension)
	}
	if e.A[0] != "1.5" || e.B[1] != "1.5" {
		t.Errorf("vectors = %v / %v", e.A, e.B)
	}
}

func TestStore_NewestFirstAndIDs(t *testing.T) {
	s := New(10)

	first := s.Add(mustEntry(t, []int{1}, []int{2}))
	second := s.Add(mustEntry(t, []int{3}, []int{4}))

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("IDs = %d, %d; want 1, 2", first.ID, second.ID)
	}

	got := s.List()
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("order = %d, %d; want newest first", got[0].ID, got[1].ID)
	}
}

func TestStore_DropsOldestBeyondLimit(t *testing.T) {
	s := New(3)
	for i := 0; i < 5; i++ {
		s.Add(mustEntry(t, []int{i}, []int{1}))
	}

	got := s.List()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Result != "4" || got[2].Result != "2" {
		t.Fatalf("kept results %q..%q, want 4..2", got[0].Result, got[2].Result)
	}
}

func TestStore_DefaultLimit(t *testing.T) {
	s := New(0)
	for i := 0; i < DefaultLimit+7; i++ {
		s.Add(Entry{})
	}
	if s.Len() != DefaultLimit {
		t.Fatalf("Len = %d, want %d", s.Len(), DefaultLimit)
	}
}

func TestStore_ListIsACopy(t *testing.T) {
	s := New(5)
	s.Add(mustEntry(t, []int{1}, []int{1}))

	got := s.List()
	got[0].Result = "999"

	if s.List()[0].Result != "1" {
		t.Fatal("mutating List() result changed the store")
	}
}

func TestStore_Clear(t *testing.T) {
	s := New(5)
	s.Add(Entry{})
	s.Clear()

	if s.Len() != 0 {
		t.Fatalf("Len after Clear = %d", s.Len())
	}
}

func TestStore_WriteCSV(t *testing.T) {
	s := New(5)
	s.now = fixedClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	s.Add(mustEntry(t, []int{1, 3, -5}, []int{4, -2, -1}))

	var buf bytes.Buffer
	if err := s.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	want := []string{"[1, 3, -5]", "[4, -2, -1]", "3", "3", "2026-01-02T03:04:05Z"}
	for i := range want {
		if rows[1][i] != want[i] {
			t.Errorf("column %q = %q, want %q", rows[0][i], rows[1][i], want[i])
		}
	}
}

func TestStore_WriteCSVEmptyHasHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := New(1).WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if buf.String() != "Vector A,Vector B,Result,Dimension,Timestamp\n" {
		t.Fatalf("unexpected csv: %q", buf.String())
	}
}

func TestEntry_JSONKeepsNumbers(t *testing.T) {
	e := mustEntry(t, []int{2}, []int{3})

	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["result"] != float64(6) {
		t.Fatalf("result = %#v, want JSON number 6", decoded["result"])
	}
}

func TestStore_ConcurrentAdd(t *testing.T) {
	s := New(1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(Entry{})
		}()
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Fatalf("Len = %d, want 50", s.Len())
	}
}
