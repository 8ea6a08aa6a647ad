package results

import (
	"os"
	"path/filepath"
	"testing"

	"softalign/internal/langpair"
)

func TestBufferAscendingIDsAppendOrderWithinID(t *testing.T) {
	buf := NewBuffer(0)
	// Ids {5, 2, 5} appended across two batches: 5→"A", then 2→"B", 5→"C".
	for _, step := range []struct {
		id     int64
		result string
	}{{5, "A"}, {2, "B"}, {5, "C"}} {
		if err := buf.Append(step.id, step.result); err != nil {
			t.Fatalf("Append(%d, %q) returned error: %v", step.id, step.result, err)
		}
	}
	if buf.Len() != 3 {
		t.Fatalf("Len = %d, want 3", buf.Len())
	}

	var got []string
	err := buf.Walk(func(id int64, results []string) error {
		got = append(got, results...)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	want := []string{"B", "A", "C"}
	if len(got) != len(want) {
		t.Fatalf("drained %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("drain order = %v, want %v", got, want)
		}
	}
}

func TestBufferRejectsOutOfRangeIDs(t *testing.T) {
	buf := NewBuffer(10)
	if err := buf.Append(10, "x"); err == nil {
		t.Error("expected error for id at capacity")
	}
	if err := buf.Append(-1, "x"); err == nil {
		t.Error("expected error for negative id")
	}
	if err := buf.Append(9, "x"); err != nil {
		t.Errorf("Append(9) returned error: %v", err)
	}
}

func TestBufferDefaultCapacity(t *testing.T) {
	buf := NewBuffer(0)
	if err := buf.Append(DefaultCapacity-1, "x"); err != nil {
		t.Fatalf("Append at capacity-1 returned error: %v", err)
	}
	if err := buf.Append(DefaultCapacity, "x"); err == nil {
		t.Fatal("expected error for id at default capacity")
	}
}

func TestOutputPath(t *testing.T) {
	pair, err := langpair.New("de", "en")
	if err != nil {
		t.Fatal(err)
	}
	got := OutputPath("/tmp/out", "test", pair)
	want := filepath.Join("/tmp/out", "test.de2en.align")
	if got != want {
		t.Fatalf("OutputPath = %q, want %q", got, want)
	}
}

func TestWriteSkipsEmptySlotsAndTruncates(t *testing.T) {
	dir := t.TempDir()
	pair, err := langpair.New("de", "en")
	if err != nil {
		t.Fatal(err)
	}
	path := OutputPath(dir, "test", pair)

	buf := NewBuffer(0)
	for _, step := range []struct {
		id     int64
		result string
	}{{5, "A"}, {2, "B"}, {5, "C"}} {
		if err := buf.Append(step.id, step.result); err != nil {
			t.Fatal(err)
		}
	}
	if err := Write(path, buf); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "B\nA\nC\n" {
		t.Fatalf("output = %q, want %q", string(data), "B\nA\nC\n")
	}

	// Rewriting with fewer results must truncate, not append.
	small := NewBuffer(0)
	if err := small.Append(0, "Z"); err != nil {
		t.Fatal(err)
	}
	if err := Write(path, small); err != nil {
		t.Fatal(err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Z\n" {
		t.Fatalf("rewritten output = %q, want %q", string(data), "Z\n")
	}
}

func TestWriteEmptyBufferProducesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.de2en.align")
	if err := Write(path, NewBuffer(0)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Fatalf("empty buffer produced %d bytes", len(data))
	}
}
