package align

import (
	"fmt"
	"strconv"
	"strings"

	"softalign/internal/batch"
	"softalign/internal/model"
	"softalign/internal/vocab"
)

// Task names the attention-supervision variant a model was trained with. It
// selects how per-head attention is merged before extraction.
type Task string

const (
	TaskVanilla  Task = "vanilla"
	TaskUseHead  Task = "usehead"
	TaskAddHead  Task = "addhead"
	TaskSupAlign Task = "supalign"
	TaskPtrNet   Task = "ptrnet"
	TaskDual     Task = "dual"
)

// Tasks lists every accepted task name in declaration order.
func Tasks() []Task {
	return []Task{TaskVanilla, TaskUseHead, TaskAddHead, TaskSupAlign, TaskPtrNet, TaskDual}
}

// ParseTask validates a task name.
func ParseTask(s string) (Task, error) {
	for _, task := range Tasks() {
		if Task(s) == task {
			return task, nil
		}
	}
	return "", fmt.Errorf("unknown alignment task %q (choose from %v)", s, Tasks())
}

// Link aligns one target token to one source token, both zero-based word
// positions.
type Link struct {
	Source int
	Target int
}

// Alignment is the ordered link list for one sentence pair.
type Alignment []Link

// String renders the alignment in Pharaoh "src-tgt" form.
func (a Alignment) String() string {
	var b strings.Builder
	for i, link := range a {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(link.Source))
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(link.Target))
	}
	return b.String()
}

// Options fixes the extraction strategy for a whole run.
type Options struct {
	Layer       int
	Task        Task
	Shifted     bool
	SourcePunct vocab.IDSet
	TargetPunct vocab.IDSet
}

// Extractor applies one strategy to every batch of a run.
type Extractor struct {
	model model.Model
	opts  Options
	merge mergeFunc
}

// NewExtractor binds the strategy. The layer must exist in the model and the
// task must be known; both are checked here so the batch loop never revisits
// the choice.
func NewExtractor(m model.Model, opts Options) (*Extractor, error) {
	if m == nil {
		return nil, fmt.Errorf("extractor requires a model")
	}
	if opts.Layer < 0 || opts.Layer >= m.Layers() {
		return nil, fmt.Errorf("alignment layer %d out of range for %d-layer model", opts.Layer, m.Layers())
	}
	merge, err := mergeForTask(opts.Task, m.Heads())
	if err != nil {
		return nil, err
	}
	return &Extractor{model: m, opts: opts, merge: merge}, nil
}

// Shifted reports which attention interpretation the extractor was bound to.
func (e *Extractor) Shifted() bool { return e.opts.Shifted }

// ExtractBatch computes one alignment per sample in the batch, keyed by
// sample id. Model errors propagate unchanged.
func (e *Extractor) ExtractBatch(b batch.Batch) (map[int64]Alignment, error) {
	out := make(map[int64]Alignment, len(b.Samples))
	for i := range b.Samples {
		sample := &b.Samples[i]
		alignment, err := e.extractSample(sample.Source, sample.Target)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", sample.ID, err)
		}
		out[sample.ID] = alignment
	}
	return out, nil
}

func (e *Extractor) extractSample(src, tgt []int32) (Alignment, error) {
	attn, err := e.mergedAttention(src, tgt)
	if err != nil {
		return nil, err
	}

	// Both sides carry a trailing eos; alignments link word positions only.
	srcWords := len(src) - 1
	tgtWords := len(tgt) - 1
	if srcWords <= 0 || tgtWords <= 0 {
		return Alignment{}, nil
	}

	alignment := make(Alignment, 0, tgtWords)
	for t := 0; t < tgtWords; t++ {
		if e.opts.TargetPunct.Contains(tgt[t]) {
			continue
		}
		row := attn[t]
		if e.opts.Shifted {
			// Row t+1 was produced while predicting token t+1, so its
			// attention describes the previously emitted token t.
			row = attn[t+1]
		}
		best := argmaxSource(row, src, srcWords, e.opts.SourcePunct)
		alignment = append(alignment, Link{Source: best, Target: t})
	}
	return alignment, nil
}

func (e *Extractor) mergedAttention(src, tgt []int32) ([][]float32, error) {
	return e.merge(e.model, src, tgt, e.opts.Layer)
}

// argmaxSource picks the strongest source word position, preferring
// non-punctuation candidates and falling back to a plain argmax when every
// source word is punctuation.
func argmaxSource(row []float32, src []int32, srcWords int, punct vocab.IDSet) int {
	best, bestAny := -1, 0
	for s := 0; s < srcWords; s++ {
		if row[s] > row[bestAny] {
			bestAny = s
		}
		if punct.Contains(src[s]) {
			continue
		}
		if best < 0 || row[s] > row[best] {
			best = s
		}
	}
	if best < 0 {
		return bestAny
	}
	return best
}

// mergeFunc collapses per-head attention into one matrix.
type mergeFunc func(m model.Model, src, tgt []int32, layer int) ([][]float32, error)

func mergeForTask(task Task, heads int) (mergeFunc, error) {
	switch task {
	case TaskVanilla, TaskSupAlign:
		return meanHeads, nil
	case TaskUseHead:
		return singleHead(0), nil
	case TaskPtrNet:
		return singleHead(heads - 1), nil
	case TaskAddHead:
		return combineHeads(func(acc, v float32) float32 { return acc + v }), nil
	case TaskDual:
		return combineHeads(func(acc, v float32) float32 {
			if v > acc {
				return v
			}
			return acc
		}), nil
	default:
		return nil, fmt.Errorf("unknown alignment task %q (choose from %v)", task, Tasks())
	}
}

func singleHead(head int) mergeFunc {
	return func(m model.Model, src, tgt []int32, layer int) ([][]float32, error) {
		return m.Attention(src, tgt, layer, head)
	}
}

func meanHeads(m model.Model, src, tgt []int32, layer int) ([][]float32, error) {
	acc, err := sumHeads(m, src, tgt, layer)
	if err != nil {
		return nil, err
	}
	inv := 1 / float32(m.Heads())
	for _, row := range acc {
		for i := range row {
			row[i] *= inv
		}
	}
	return acc, nil
}

func sumHeads(m model.Model, src, tgt []int32, layer int) ([][]float32, error) {
	return foldHeads(m, src, tgt, layer, func(acc, v float32) float32 { return acc + v })
}

func combineHeads(combine func(acc, v float32) float32) mergeFunc {
	return func(m model.Model, src, tgt []int32, layer int) ([][]float32, error) {
		return foldHeads(m, src, tgt, layer, combine)
	}
}

func foldHeads(m model.Model, src, tgt []int32, layer int, combine func(acc, v float32) float32) ([][]float32, error) {
	var acc [][]float32
	for head := 0; head < m.Heads(); head++ {
		attn, err := m.Attention(src, tgt, layer, head)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = attn
			continue
		}
		for t, row := range attn {
			for s, v := range row {
				acc[t][s] = combine(acc[t][s], v)
			}
		}
	}
	return acc, nil
}
