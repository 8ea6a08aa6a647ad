package generate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"softalign/internal/align"
	"softalign/internal/batch"
	"softalign/internal/logging"
	"softalign/internal/model"
	"softalign/internal/results"
	"softalign/internal/vocab"
)

const timestampLayout = "2006-01-02 15:04:05"

// Report summarizes one completed pass.
type Report struct {
	RunID      string
	Batches    int
	Sentences  int
	Alignments int
	// OutputPath is empty when no alignment file was written.
	OutputPath string
	Elapsed    time.Duration
}

// Runner executes one extraction pass over a task.
type Runner struct {
	task     Task
	opts     Options
	logger   *slog.Logger
	progress io.Writer
}

// NewRunner binds a task and options. A nil logger disables logging.
func NewRunner(task Task, opts Options, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{task: task, opts: opts, logger: logger}
}

// SetProgressOutput enables a per-batch progress bar on w. Meant for
// interactive terminals only.
func (r *Runner) SetProgressOutput(w io.Writer) { r.progress = w }

// Run validates options, loads the split and the model ensemble, plans
// batches, extracts alignments batch by batch when requested, and finally
// drains the result buffer to the alignment file.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	opts := r.opts
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := r.logger.With(logging.String("run_id", runID))
	logger.Info("resolved generation options",
		logging.String("path", opts.Path),
		logging.String("subset", opts.Subset),
		logging.Int("beam", opts.Beam),
		logging.Int("nbest", opts.NBest),
		logging.Int("max_tokens", opts.MaxTokens),
		logging.Int("max_sentences", opts.MaxSentences),
		logging.Bool("fp16", opts.FP16),
		logging.Bool("print_alignment", opts.PrintAlignment),
		logging.String("alignment_task", opts.AlignmentTask),
		logging.Int("alignment_layer", opts.AlignmentLayer),
		logging.Bool("shifted", opts.Shifted),
		logging.String("decoding_dir", opts.DecodingDir),
		logging.Int64("buffer_capacity", opts.BufferCapacity),
		logging.Int("num_shards", opts.NumShards),
		logging.Int("shard_id", opts.ShardID),
	)

	split, err := r.task.LoadSplit(ctx, opts.Subset)
	if err != nil {
		return nil, fmt.Errorf("load split %s: %w", opts.Subset, err)
	}

	paths := model.SplitPaths(opts.Path)
	logger.Info("loading model(s)",
		logging.String("from", opts.Path),
		logging.Int("count", len(paths)))
	models, err := r.task.LoadModels(paths, model.EnsembleOptions{
		FP16:           opts.FP16,
		AlignmentLayer: opts.AlignmentLayer,
	})
	if err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}

	taskSrc, taskTgt := r.task.MaxPositions()
	maxSrc, maxTgt := model.ResolveMaxPositions(taskSrc, taskTgt, models)

	batches, err := batch.Plan(split, batch.Options{
		MaxTokens:          opts.MaxTokens,
		MaxSentences:       opts.MaxSentences,
		MaxSourcePositions: maxSrc,
		MaxTargetPositions: maxTgt,
		SkipInvalid:        opts.SkipInvalid,
		RequiredMultiple:   opts.RequiredMultiple,
		NumShards:          opts.NumShards,
		ShardID:            opts.ShardID,
	})
	if err != nil {
		return nil, fmt.Errorf("plan batches: %w", err)
	}

	var (
		extractor *align.Extractor
		buffer    *results.Buffer
	)
	if opts.PrintAlignment {
		task, err := align.ParseTask(opts.AlignmentTask)
		if err != nil {
			return nil, err
		}
		extractor, err = align.NewExtractor(models[0], align.Options{
			Layer:       opts.AlignmentLayer,
			Task:        task,
			Shifted:     opts.Shifted,
			SourcePunct: vocab.PunctuationIDs(r.task.SourceDictionary()),
			TargetPunct: vocab.PunctuationIDs(r.task.TargetDictionary()),
		})
		if err != nil {
			return nil, err
		}
		if opts.DecodingDir != "" {
			buffer = results.NewBuffer(opts.BufferCapacity)
		}
	}

	started := time.Now()
	logger.Info("generation pass starting",
		logging.String("started_at", started.Format(timestampLayout)),
		logging.Int("batches", len(batches)),
		logging.Int("sentences", len(split.Samples)))

	var bar *progressbar.ProgressBar
	if r.progress != nil {
		bar = newProgressBar(r.progress, len(batches))
	}

	report := &Report{RunID: runID, Batches: len(batches)}
	for _, b := range batches {
		if len(b.Samples) == 0 {
			continue
		}
		report.Sentences += len(b.Samples)

		if extractor != nil {
			alignments, err := extractor.ExtractBatch(b)
			if err != nil {
				return nil, err
			}
			report.Alignments += len(alignments)
			if buffer != nil {
				for _, id := range b.IDs() {
					if err := buffer.Append(id, alignments[id].String()); err != nil {
						return nil, err
					}
				}
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	finished := time.Now()
	report.Elapsed = finished.Sub(started)
	logger.Info("generation pass finished",
		logging.String("finished_at", finished.Format(timestampLayout)),
		logging.Duration("elapsed", report.Elapsed),
		logging.Int("sentences", report.Sentences))

	if buffer != nil {
		outPath := results.OutputPath(opts.DecodingDir, opts.Subset, r.task.Pair())
		if err := results.Write(outPath, buffer); err != nil {
			return nil, err
		}
		report.OutputPath = outPath
		logger.Info("alignments written",
			logging.String("path", outPath),
			logging.Int("count", buffer.Len()))
	}
	return report, nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("batches"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
