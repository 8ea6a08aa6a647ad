package batch

import (
	"fmt"

	"softalign/internal/dataset"
)

// Options controls batch planning. A zero MaxTokens or MaxSentences disables
// that budget; at least one must be set.
type Options struct {
	MaxTokens          int
	MaxSentences       int
	MaxSourcePositions int
	MaxTargetPositions int
	SkipInvalid        bool
	RequiredMultiple   int
	NumShards          int
	ShardID            int
}

func (o Options) validate() error {
	if o.MaxTokens <= 0 && o.MaxSentences <= 0 {
		return fmt.Errorf("batch: either a token or a sentence budget must be set")
	}
	if o.MaxSourcePositions <= 0 || o.MaxTargetPositions <= 0 {
		return fmt.Errorf("batch: max positions must be positive (got src=%d tgt=%d)", o.MaxSourcePositions, o.MaxTargetPositions)
	}
	if o.RequiredMultiple < 1 {
		return fmt.Errorf("batch: required batch size multiple must be at least 1, got %d", o.RequiredMultiple)
	}
	if o.NumShards < 1 {
		return fmt.Errorf("batch: num shards must be at least 1, got %d", o.NumShards)
	}
	if o.ShardID < 0 || o.ShardID >= o.NumShards {
		return fmt.Errorf("batch: shard id %d out of range for %d shards", o.ShardID, o.NumShards)
	}
	return nil
}

// Batch is one unit of work: a contiguous run of samples in corpus order.
type Batch struct {
	Samples []dataset.Sample
}

// IDs returns the sample ids in batch order.
func (b Batch) IDs() []int64 {
	ids := make([]int64, len(b.Samples))
	for i := range b.Samples {
		ids[i] = b.Samples[i].ID
	}
	return ids
}

// NumTokens returns the budgeted token cost of the batch: the longest sample
// length times the number of sentences.
func (b Batch) NumTokens() int {
	maxLen := 0
	for i := range b.Samples {
		if l := b.Samples[i].MaxLen(); l > maxLen {
			maxLen = l
		}
	}
	return maxLen * len(b.Samples)
}

// Plan builds the ordered batch sequence for one shard of the split. The full
// plan covers the split exactly once with no shuffling; shard k receives every
// NumShards-th batch starting at k.
func Plan(split *dataset.Split, opts Options) ([]Batch, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	var (
		batches []Batch
		cur     []dataset.Sample
		curMax  int
	)

	full := func(sentences, maxLen int) bool {
		if opts.MaxSentences > 0 && sentences > opts.MaxSentences {
			return true
		}
		if opts.MaxTokens > 0 && sentences*maxLen > opts.MaxTokens {
			return true
		}
		return false
	}

	flush := func(trim bool) {
		if len(cur) == 0 {
			return
		}
		size := len(cur)
		if trim && opts.RequiredMultiple > 1 && size > opts.RequiredMultiple {
			size -= size % opts.RequiredMultiple
		}
		batches = append(batches, Batch{Samples: cur[:size:size]})

		rest := cur[size:]
		cur = make([]dataset.Sample, len(rest))
		copy(cur, rest)
		curMax = 0
		for i := range cur {
			if l := cur[i].MaxLen(); l > curMax {
				curMax = l
			}
		}
	}

	for i := range split.Samples {
		sample := &split.Samples[i]
		if sample.SourceLen() > opts.MaxSourcePositions || sample.TargetLen() > opts.MaxTargetPositions {
			if opts.SkipInvalid {
				continue
			}
			return nil, fmt.Errorf(
				"sample %d length (%d, %d) exceeds maximum positions (%d, %d); use the skip-invalid option to drop it",
				sample.ID, sample.SourceLen(), sample.TargetLen(), opts.MaxSourcePositions, opts.MaxTargetPositions)
		}

		// A trimmed flush can leave a carryover that is still full once the
		// incoming sample is counted, so re-test after every flush.
		for len(cur) > 0 {
			newMax := curMax
			if l := sample.MaxLen(); l > newMax {
				newMax = l
			}
			if !full(len(cur)+1, newMax) {
				break
			}
			flush(true)
		}
		cur = append(cur, *sample)
		if l := sample.MaxLen(); l > curMax {
			curMax = l
		}
	}
	flush(false)

	if opts.NumShards == 1 {
		return batches, nil
	}
	sharded := make([]Batch, 0, (len(batches)+opts.NumShards-1)/opts.NumShards)
	for i := opts.ShardID; i < len(batches); i += opts.NumShards {
		sharded = append(sharded, batches[i])
	}
	return sharded, nil
}
