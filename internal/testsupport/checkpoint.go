package testsupport

import (
	"testing"

	"softalign/internal/model"
)

// BuildCheckpoint writes a small deterministic checkpoint to path. Table
// values follow a fixed pattern so alignments are stable across runs.
func BuildCheckpoint(t testing.TB, path string, srcVocab, tgtVocab int) {
	t.Helper()

	const (
		layers = 3
		heads  = 2
		dim    = 4
	)
	header := model.Header{
		Layers:             layers,
		Heads:              heads,
		Dim:                dim,
		SourceVocab:        uint32(srcVocab),
		TargetVocab:        uint32(tgtVocab),
		MaxSourcePositions: 128,
		MaxTargetPositions: 128,
	}

	tables := make([][]model.TablePair, layers)
	for l := range tables {
		tables[l] = make([]model.TablePair, heads)
		for h := range tables[l] {
			src := make([]float32, srcVocab*dim)
			for i := range src {
				src[i] = float32((i+l+h)%7) / 7
			}
			tgt := make([]float32, tgtVocab*dim)
			for i := range tgt {
				tgt[i] = float32((i+2*l+h)%5) / 5
			}
			tables[l][h] = model.TablePair{Source: src, Target: tgt}
		}
	}

	ckpt, err := model.NewCheckpoint(header, tables)
	if err != nil {
		t.Fatalf("build checkpoint: %v", err)
	}
	if err := ckpt.Save(path); err != nil {
		t.Fatalf("save checkpoint %s: %v", path, err)
	}
}
