package generate

import (
	"fmt"
	"strings"

	"softalign/internal/align"
)

// defaultMaxTokens fills in the token budget when neither budget was given,
// so a bare invocation still batches sensibly.
const defaultMaxTokens = 12000

// Options collects every knob of one extraction pass. Zero values mean
// "unset"; Validate fills defaults and rejects inconsistent combinations.
type Options struct {
	// Path is the colon-separated checkpoint list. Required.
	Path string
	// Subset names the dataset split to iterate. Defaults to "test".
	Subset string

	Beam       int
	NBest      int
	Sampling   bool
	RawText    bool
	ReplaceUnk bool

	MaxTokens          int
	MaxSentences       int
	MaxSourcePositions int
	MaxTargetPositions int
	SkipInvalid        bool
	RequiredMultiple   int
	NumShards          int
	ShardID            int

	FP16 bool

	// PrintAlignment turns alignment extraction on; without it the pass is a
	// plain decoding sweep and no alignments are computed or written.
	PrintAlignment bool
	// DecodingDir is where the alignment file lands. Empty keeps results
	// in memory only.
	DecodingDir string

	AlignmentTask  string
	AlignmentLayer int
	// AlignmentHeads is accepted for invocation compatibility; the head
	// merge is fixed by the task variant instead.
	AlignmentHeads int
	Shifted        bool

	BufferCapacity int64
}

// Validate checks the option combination before any data or model is touched
// and fills defaults in place.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.Path) == "" {
		return fmt.Errorf("a checkpoint path is required for generation")
	}
	if o.Sampling && o.NBest != o.Beam {
		return fmt.Errorf("sampling requires nbest (%d) to equal beam (%d)", o.NBest, o.Beam)
	}
	if o.ReplaceUnk && !o.RawText {
		return fmt.Errorf("replacing unknown tokens requires a raw text dataset")
	}

	if o.Subset == "" {
		o.Subset = "test"
	}
	if o.Beam <= 0 {
		o.Beam = 1
	}
	if o.NBest <= 0 {
		o.NBest = 1
	}
	if o.MaxTokens <= 0 && o.MaxSentences <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	if o.MaxSourcePositions <= 0 {
		o.MaxSourcePositions = 1024
	}
	if o.MaxTargetPositions <= 0 {
		o.MaxTargetPositions = 1024
	}
	if o.RequiredMultiple <= 0 {
		o.RequiredMultiple = 1
	}
	if o.NumShards <= 0 {
		o.NumShards = 1
	}
	if o.ShardID < 0 || o.ShardID >= o.NumShards {
		return fmt.Errorf("shard id %d out of range for %d shards", o.ShardID, o.NumShards)
	}

	if o.PrintAlignment {
		if o.AlignmentTask == "" {
			o.AlignmentTask = string(align.TaskVanilla)
		}
		if _, err := align.ParseTask(o.AlignmentTask); err != nil {
			return err
		}
		if o.AlignmentLayer < 0 {
			return fmt.Errorf("alignment layer must not be negative, got %d", o.AlignmentLayer)
		}
	}
	return nil
}
