package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// buildCheckpoint returns a 2-layer, 2-head checkpoint over small vocabularies
// where layer 0 head 0 aligns source id i with target id i (identity-ish
// embeddings) and the remaining tables are mild variations.
func buildCheckpoint(t *testing.T) *Checkpoint {
	t.Helper()
	header := Header{
		Layers:             2,
		Heads:              2,
		Dim:                4,
		SourceVocab:        8,
		TargetVocab:        8,
		MaxSourcePositions: 64,
		MaxTargetPositions: 64,
	}

	tables := make([][]TablePair, header.Layers)
	for l := range tables {
		tables[l] = make([]TablePair, header.Heads)
		for hd := range tables[l] {
			src := make([]float32, header.SourceVocab*header.Dim)
			tgt := make([]float32, header.TargetVocab*header.Dim)
			for v := 0; v < int(header.SourceVocab); v++ {
				// One-hot-ish embeddings so id v attends to id v, with a
				// small layer/head-dependent perturbation.
				src[v*int(header.Dim)+v%int(header.Dim)] = 4
				src[v*int(header.Dim)+(v+l+hd)%int(header.Dim)] += 0.5
			}
			for v := 0; v < int(header.TargetVocab); v++ {
				tgt[v*int(header.Dim)+v%int(header.Dim)] = 4
				tgt[v*int(header.Dim)+(v+l)%int(header.Dim)] += 0.25
			}
			tables[l][hd] = TablePair{Source: src, Target: tgt}
		}
	}

	ckpt, err := NewCheckpoint(header, tables)
	if err != nil {
		t.Fatalf("NewCheckpoint returned error: %v", err)
	}
	return ckpt
}

func TestCheckpointSaveLoadRoundTrip(t *testing.T) {
	ckpt := buildCheckpoint(t)
	path := filepath.Join(t.TempDir(), "model.ckpt")
	if err := ckpt.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Layers() != ckpt.Layers() || loaded.Heads() != ckpt.Heads() {
		t.Fatalf("shape changed: %d/%d vs %d/%d", loaded.Layers(), loaded.Heads(), ckpt.Layers(), ckpt.Heads())
	}

	src := []int32{1, 2, 3}
	tgt := []int32{2, 1}
	want, err := ckpt.Attention(src, tgt, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := loaded.Attention(src, tgt, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("attention[%d][%d] changed across round trip: %v vs %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	if err := writeFile(path, []byte("NOPEnot a checkpoint")); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestAttentionRowsAreDistributions(t *testing.T) {
	ckpt := buildCheckpoint(t)
	rows, err := ckpt.Attention([]int32{0, 3, 5}, []int32{1, 4}, 0, 1)
	if err != nil {
		t.Fatalf("Attention returned error: %v", err)
	}
	if len(rows) != 2 || len(rows[0]) != 3 {
		t.Fatalf("attention shape = %dx%d, want 2x3", len(rows), len(rows[0]))
	}
	for t2, row := range rows {
		var sum float64
		for _, v := range row {
			if v < 0 {
				t.Fatalf("negative attention weight in row %d: %v", t2, row)
			}
			sum += float64(v)
		}
		if math.Abs(sum-1) > 1e-5 {
			t.Fatalf("row %d sums to %v, want 1", t2, sum)
		}
	}
}

func TestAttentionPrefersMatchingIDs(t *testing.T) {
	ckpt := buildCheckpoint(t)
	// Target id 2 should attend hardest to source id 2 at position 1.
	rows, err := ckpt.Attention([]int32{1, 2, 3}, []int32{2}, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	row := rows[0]
	if !(row[1] > row[0] && row[1] > row[2]) {
		t.Fatalf("expected position 1 to dominate, got %v", row)
	}
}

func TestAttentionValidatesArguments(t *testing.T) {
	ckpt := buildCheckpoint(t)
	if _, err := ckpt.Attention([]int32{0}, []int32{0}, 5, 0); err == nil {
		t.Fatal("expected error for layer out of range")
	}
	if _, err := ckpt.Attention([]int32{0}, []int32{0}, 0, 9); err == nil {
		t.Fatal("expected error for head out of range")
	}
	if _, err := ckpt.Attention([]int32{99}, []int32{0}, 0, 0); err == nil {
		t.Fatal("expected error for out-of-vocabulary source id")
	}
	if _, err := ckpt.Attention(nil, []int32{0}, 0, 0); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestSetAlignmentLayer(t *testing.T) {
	ckpt := buildCheckpoint(t)
	if err := ckpt.SetAlignmentLayer(1); err != nil {
		t.Fatalf("SetAlignmentLayer(1) returned error: %v", err)
	}
	if got := ckpt.AlignmentLayer(); got != 1 {
		t.Fatalf("AlignmentLayer = %d, want 1", got)
	}
	if err := ckpt.SetAlignmentLayer(2); err == nil {
		t.Fatal("expected error for layer beyond model depth")
	}
}

func TestHalfSnapsWeights(t *testing.T) {
	ckpt := buildCheckpoint(t)
	// 0.1 is not representable in binary16; plant it and verify the cast
	// moves it while keeping determinism.
	ckpt.tables[0][0].Source[0] = 0.1
	ckpt.Half()
	got := ckpt.tables[0][0].Source[0]
	if got == 0.1 {
		t.Fatal("Half left a non-representable value unchanged")
	}
	if math.Abs(float64(got)-0.1) > 1e-3 {
		t.Fatalf("half-precision value %v too far from 0.1", got)
	}
	if halfRound(got) != got {
		t.Fatalf("value %v is not binary16-stable after cast", got)
	}
}

func TestFloat16RoundTrip(t *testing.T) {
	for _, v := range []float32{0, 1, -1, 0.5, -2.25, 65504, 6.103515625e-05} {
		if got := halfRound(v); got != v {
			t.Errorf("halfRound(%v) = %v, want exact", v, got)
		}
	}
	if got := halfRound(1e9); !math.IsInf(float64(got), 1) {
		t.Errorf("halfRound(1e9) = %v, want +Inf", got)
	}
}

func TestSplitPaths(t *testing.T) {
	got := SplitPaths("a.ckpt:b.ckpt::")
	if len(got) != 2 || got[0] != "a.ckpt" || got[1] != "b.ckpt" {
		t.Fatalf("SplitPaths = %v", got)
	}
	if got := SplitPaths(""); got != nil {
		t.Fatalf("SplitPaths(\"\") = %v, want nil", got)
	}
}

func TestLoadEnsembleAppliesTransforms(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.ckpt")
	b := filepath.Join(dir, "b.ckpt")
	ckpt := buildCheckpoint(t)
	if err := ckpt.Save(a); err != nil {
		t.Fatal(err)
	}
	if err := ckpt.Save(b); err != nil {
		t.Fatal(err)
	}

	models, err := LoadEnsemble([]string{a, b}, EnsembleOptions{AlignmentLayer: 1})
	if err != nil {
		t.Fatalf("LoadEnsemble returned error: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("loaded %d models, want 2", len(models))
	}
	for i, m := range models {
		if m.AlignmentLayer() != 1 {
			t.Fatalf("model %d alignment layer = %d, want 1", i, m.AlignmentLayer())
		}
	}

	if _, err := LoadEnsemble(nil, EnsembleOptions{}); err == nil {
		t.Fatal("expected error for empty path list")
	}
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func TestResolveMaxPositions(t *testing.T) {
	ckpt := buildCheckpoint(t) // limits 64/64
	src, tgt := ResolveMaxPositions(1024, 48, []Model{ckpt})
	if src != 64 || tgt != 48 {
		t.Fatalf("ResolveMaxPositions = (%d, %d), want (64, 48)", src, tgt)
	}
}
