package model

import (
	"fmt"
	"strings"
)

// EnsembleOptions are the generation-time transforms applied to each model as
// it is loaded.
type EnsembleOptions struct {
	FP16           bool
	AlignmentLayer int
}

// SplitPaths splits a colon-separated checkpoint path list, dropping empty
// segments.
func SplitPaths(path string) []string {
	var paths []string
	for _, p := range strings.Split(path, ":") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return paths
}

// LoadEnsemble loads every checkpoint path in order and applies the
// generation-time transforms. Ensemble members must agree on vocabulary
// sizes; positional limits may differ and are reconciled by the caller.
func LoadEnsemble(paths []string, opts EnsembleOptions) ([]Model, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no checkpoint paths given")
	}

	models := make([]Model, 0, len(paths))
	var first *Checkpoint
	for _, path := range paths {
		ckpt, err := Load(path)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = ckpt
		} else if ckpt.header.SourceVocab != first.header.SourceVocab || ckpt.header.TargetVocab != first.header.TargetVocab {
			return nil, fmt.Errorf("checkpoint %s vocabulary sizes (%d, %d) disagree with %s (%d, %d)",
				path, ckpt.header.SourceVocab, ckpt.header.TargetVocab,
				paths[0], first.header.SourceVocab, first.header.TargetVocab)
		}

		if opts.FP16 {
			ckpt.Half()
		}
		if err := ckpt.SetAlignmentLayer(opts.AlignmentLayer); err != nil {
			return nil, fmt.Errorf("checkpoint %s: %w", path, err)
		}
		models = append(models, ckpt)
	}
	return models, nil
}

// ResolveMaxPositions returns the element-wise minimum of the task limit and
// every model's positional limits.
func ResolveMaxPositions(taskSrc, taskTgt int, models []Model) (int, int) {
	src, tgt := taskSrc, taskTgt
	for _, m := range models {
		ms, mt := m.MaxPositions()
		if ms < src {
			src = ms
		}
		if mt < tgt {
			tgt = mt
		}
	}
	return src, tgt
}
