package dataset

import (
	"softalign/internal/langpair"
)

// Sample is one sentence pair. Source and Target are dictionary ids with the
// eos id appended. The word slices are populated only in raw-text mode.
type Sample struct {
	ID          int64
	Source      []int32
	Target      []int32
	SourceWords []string
	TargetWords []string
}

// SourceLen returns the source length in tokens including eos.
func (s *Sample) SourceLen() int { return len(s.Source) }

// TargetLen returns the target length in tokens including eos.
func (s *Sample) TargetLen() int { return len(s.Target) }

// MaxLen returns the longer of the two sides, the quantity token-budget
// batching charges per sentence.
func (s *Sample) MaxLen() int {
	if len(s.Source) > len(s.Target) {
		return len(s.Source)
	}
	return len(s.Target)
}

// Split is one fully loaded dataset split in corpus order. Sample ids are the
// zero-based positions assigned at preparation time.
type Split struct {
	Name    string
	Pair    langpair.Pair
	Samples []Sample
}

// Len returns the number of sentence pairs in the split.
func (s *Split) Len() int { return len(s.Samples) }
