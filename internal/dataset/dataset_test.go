package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"softalign/internal/langpair"
	"softalign/internal/vocab"
)

func testPair(t *testing.T) langpair.Pair {
	t.Helper()
	pair, err := langpair.New("de", "en")
	if err != nil {
		t.Fatalf("build pair: %v", err)
	}
	return pair
}

func TestLoadRawText(t *testing.T) {
	dir := t.TempDir()
	pair := testPair(t)
	writeFile(t, filepath.Join(dir, "test.de"), "das haus\nein haus ,\n")
	writeFile(t, filepath.Join(dir, "test.en"), "the house\na house ,\n")

	srcDict := vocab.New()
	srcDict.AddSymbol("das", 1)
	srcDict.AddSymbol("haus", 2)
	srcDict.AddSymbol(",", 1)
	tgtDict := vocab.New()
	tgtDict.AddSymbol("the", 1)
	tgtDict.AddSymbol("house", 2)
	tgtDict.AddSymbol(",", 1)

	split, err := LoadRawText(dir, "test", pair, srcDict, tgtDict)
	if err != nil {
		t.Fatalf("LoadRawText returned error: %v", err)
	}
	if split.Len() != 2 {
		t.Fatalf("split has %d samples, want 2", split.Len())
	}

	first := split.Samples[0]
	if first.ID != 0 {
		t.Fatalf("first sample id = %d, want 0", first.ID)
	}
	if got, want := first.SourceLen(), 3; got != want {
		t.Fatalf("source len = %d, want %d (two words + eos)", got, want)
	}
	if first.Source[2] != srcDict.Eos() {
		t.Fatalf("source does not end with eos: %v", first.Source)
	}
	if len(first.SourceWords) != 2 || first.SourceWords[1] != "haus" {
		t.Fatalf("unexpected source words: %v", first.SourceWords)
	}

	second := split.Samples[1]
	if got, want := second.MaxLen(), 4; got != want {
		t.Fatalf("MaxLen = %d, want %d", got, want)
	}
}

func TestLoadRawTextRejectsLineCountMismatch(t *testing.T) {
	dir := t.TempDir()
	pair := testPair(t)
	writeFile(t, filepath.Join(dir, "test.de"), "eins\nzwei\n")
	writeFile(t, filepath.Join(dir, "test.en"), "one\n")

	if _, err := LoadRawText(dir, "test", pair, vocab.New(), vocab.New()); err == nil {
		t.Fatal("expected error for mismatched line counts")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	pair := testPair(t)
	store, err := OpenStore(filepath.Join(t.TempDir(), "dataset.db"))
	if err != nil {
		t.Fatalf("OpenStore returned error: %v", err)
	}
	defer store.Close()

	if err := store.SetPair(ctx, pair); err != nil {
		t.Fatalf("SetPair returned error: %v", err)
	}

	in := &Split{
		Name: "test",
		Pair: pair,
		Samples: []Sample{
			{ID: 0, Source: []int32{4, 5, 2}, Target: []int32{6, 2}},
			{ID: 1, Source: []int32{5, 2}, Target: []int32{7, 8, 2}},
		},
	}
	if err := store.WriteSplit(ctx, in); err != nil {
		t.Fatalf("WriteSplit returned error: %v", err)
	}

	out, err := store.ReadSplit(ctx, "test")
	if err != nil {
		t.Fatalf("ReadSplit returned error: %v", err)
	}
	if out.Pair != pair {
		t.Fatalf("pair = %+v, want %+v", out.Pair, pair)
	}
	if out.Len() != in.Len() {
		t.Fatalf("read %d samples, want %d", out.Len(), in.Len())
	}
	for i := range in.Samples {
		if out.Samples[i].ID != in.Samples[i].ID {
			t.Fatalf("sample %d id = %d, want %d", i, out.Samples[i].ID, in.Samples[i].ID)
		}
		if len(out.Samples[i].Source) != len(in.Samples[i].Source) {
			t.Fatalf("sample %d source length changed", i)
		}
		if out.Samples[i].Target[len(out.Samples[i].Target)-1] != 2 {
			t.Fatalf("sample %d target lost its eos", i)
		}
	}
}

func TestStoreWriteSplitReplacesExisting(t *testing.T) {
	ctx := context.Background()
	pair := testPair(t)
	store, err := OpenStore(filepath.Join(t.TempDir(), "dataset.db"))
	if err != nil {
		t.Fatalf("OpenStore returned error: %v", err)
	}
	defer store.Close()
	if err := store.SetPair(ctx, pair); err != nil {
		t.Fatal(err)
	}

	first := &Split{Name: "test", Pair: pair, Samples: []Sample{
		{ID: 0, Source: []int32{4, 2}, Target: []int32{4, 2}},
		{ID: 1, Source: []int32{5, 2}, Target: []int32{5, 2}},
	}}
	if err := store.WriteSplit(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := &Split{Name: "test", Pair: pair, Samples: []Sample{
		{ID: 0, Source: []int32{6, 2}, Target: []int32{6, 2}},
	}}
	if err := store.WriteSplit(ctx, second); err != nil {
		t.Fatal(err)
	}

	out, err := store.ReadSplit(ctx, "test")
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 1 {
		t.Fatalf("split has %d samples after rewrite, want 1", out.Len())
	}
}

func TestReadSplitMissing(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(filepath.Join(t.TempDir(), "dataset.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.SetPair(ctx, testPair(t)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ReadSplit(ctx, "valid"); err == nil {
		t.Fatal("expected error for missing split")
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
