package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"softalign/internal/align"
	"softalign/internal/generate"
	"softalign/internal/logging"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var (
		path       string
		subset     string
		sourceLang string
		targetLang string
		rawText    bool

		beam       int
		nbest      int
		sampling   bool
		replaceUnk bool

		maxTokens        int
		maxSentences     int
		maxSrcPositions  int
		maxTgtPositions  int
		skipInvalid      bool
		requiredMultiple int
		numShards        int
		shardID          int

		fp16 bool

		printAlignment bool
		decodingPath   string
		alignmentTask  string
		alignmentLayer int
		alignmentHeads int
		setShift       bool

		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "extract [data-dir]",
		Short: "Run an extraction pass over a dataset split",
		Long: `Run the model ensemble over a dataset split and, when requested, extract
soft word alignments from cross-attention and write them to the decoding
path as <subset>.<src>2<tgt>.align.

The data directory holds the dictionaries plus either a prepared dataset
store (see "softalign prepare") or raw <subset>.<lang> corpus files with
--raw-text. It defaults to the configured data_dir.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			dataDir := cfg.Paths.DataDir
			if len(args) > 0 {
				dataDir = strings.TrimSpace(args[0])
			}
			if dataDir == "" {
				return fmt.Errorf("no data directory given and no data_dir configured")
			}

			flags := cmd.Flags()
			opts := generate.Options{
				Path:               path,
				Subset:             subset,
				RawText:            rawText,
				Sampling:           sampling,
				ReplaceUnk:         replaceUnk,
				Beam:               intOrConfig(flags, "beam", beam, cfg.Generation.Beam),
				NBest:              intOrConfig(flags, "nbest", nbest, cfg.Generation.NBest),
				MaxTokens:          intOrConfig(flags, "max-tokens", maxTokens, cfg.Generation.MaxTokens),
				MaxSentences:       intOrConfig(flags, "max-sentences", maxSentences, cfg.Generation.MaxSentences),
				MaxSourcePositions: intOrConfig(flags, "max-source-positions", maxSrcPositions, cfg.Generation.MaxSourcePositions),
				MaxTargetPositions: intOrConfig(flags, "max-target-positions", maxTgtPositions, cfg.Generation.MaxTargetPositions),
				SkipInvalid:        skipInvalid,
				RequiredMultiple:   intOrConfig(flags, "required-batch-size-multiple", requiredMultiple, cfg.Generation.RequiredBatchSizeMultiple),
				NumShards:          numShards,
				ShardID:            shardID,
				FP16:               fp16,
				PrintAlignment:     printAlignment,
				DecodingDir:        stringOrConfig(flags, "decoding-path", decodingPath, cfg.Paths.DecodingDir),
				AlignmentTask:      stringOrConfig(flags, "alignment-task", alignmentTask, cfg.Alignment.Task),
				AlignmentLayer:     intOrConfig(flags, "alignment-layer", alignmentLayer, cfg.Alignment.Layer),
				AlignmentHeads:     intOrConfig(flags, "alignment-heads", alignmentHeads, cfg.Alignment.Heads),
				Shifted:            setShift,
				BufferCapacity:     cfg.Alignment.BufferCapacity,
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			task, err := generate.NewLocalTask(cmd.Context(), generate.LocalTaskOptions{
				DataDir:            dataDir,
				CheckpointDir:      cfg.Paths.CheckpointDir,
				RawText:            opts.RawText,
				SourceLang:         sourceLang,
				TargetLang:         targetLang,
				MaxSourcePositions: opts.MaxSourcePositions,
				MaxTargetPositions: opts.MaxTargetPositions,
			})
			if err != nil {
				return err
			}
			defer task.Close()

			runner := generate.NewRunner(task, opts, logger)
			if !noProgress && isTerminal(cmd.OutOrStdout()) {
				runner.SetProgressOutput(cmd.ErrOrStderr())
			}

			report, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed %d sentences in %d batches (%s)\n",
				report.Sentences, report.Batches, report.Elapsed.Round(timeRounding))
			if report.OutputPath != "" {
				fmt.Fprintf(out, "Wrote %d alignments to %s\n", report.Alignments, report.OutputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "", "Colon-separated list of model checkpoints (required)")
	cmd.Flags().StringVar(&subset, "gen-subset", "test", "Dataset split to process")
	cmd.Flags().StringVarP(&sourceLang, "source-lang", "s", "", "Source language code")
	cmd.Flags().StringVarP(&targetLang, "target-lang", "t", "", "Target language code")
	cmd.Flags().BoolVar(&rawText, "raw-text", false, "Load raw <subset>.<lang> files instead of the prepared store")

	cmd.Flags().IntVar(&beam, "beam", 5, "Beam size")
	cmd.Flags().IntVar(&nbest, "nbest", 1, "Number of hypotheses per sentence")
	cmd.Flags().BoolVar(&sampling, "sampling", false, "Sample hypotheses instead of beam search")
	cmd.Flags().BoolVar(&replaceUnk, "replace-unk", false, "Replace unknown tokens from the source (raw text only)")

	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Maximum tokens per batch")
	cmd.Flags().IntVar(&maxSentences, "max-sentences", 0, "Maximum sentences per batch")
	cmd.Flags().IntVar(&maxSrcPositions, "max-source-positions", 1024, "Maximum source sentence length")
	cmd.Flags().IntVar(&maxTgtPositions, "max-target-positions", 1024, "Maximum target sentence length")
	cmd.Flags().BoolVar(&skipInvalid, "skip-invalid-size-inputs-valid-test", false, "Drop sentences exceeding the position limits instead of failing")
	cmd.Flags().IntVar(&requiredMultiple, "required-batch-size-multiple", 8, "Trim batches to a multiple of this size")
	cmd.Flags().IntVar(&numShards, "num-shards", 1, "Split the batch plan across this many shards")
	cmd.Flags().IntVar(&shardID, "shard-id", 0, "Which shard of the batch plan to process")

	cmd.Flags().BoolVar(&fp16, "fp16", false, "Quantize model weights to half precision")

	cmd.Flags().BoolVar(&printAlignment, "print-vanilla-alignment", false, "Extract word alignments from cross-attention")
	cmd.Flags().StringVar(&decodingPath, "decoding-path", "", "Directory for the alignment output file")
	cmd.Flags().StringVar(&alignmentTask, "alignment-task", string(align.TaskVanilla), fmt.Sprintf("Attention-supervision variant %v", align.Tasks()))
	cmd.Flags().IntVar(&alignmentLayer, "alignment-layer", 2, "Decoder layer whose attention is read")
	cmd.Flags().IntVar(&alignmentHeads, "alignment-heads", 1, "Accepted for compatibility; head merging follows the task")
	cmd.Flags().BoolVar(&setShift, "set-shift", false, "Read shifted attention rows (row t+1 describes target token t)")

	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar even on a terminal")

	_ = cmd.MarkFlagRequired("path")

	return cmd
}
