package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"softalign/internal/dataset"
	"softalign/internal/langpair"
	"softalign/internal/model"
	"softalign/internal/vocab"
)

// Task resolves the dictionaries, dataset, and models one pass runs over.
// The runner never touches the filesystem itself, so tests can drive a full
// pass from in-memory doubles.
type Task interface {
	Pair() langpair.Pair
	SourceDictionary() *vocab.Dictionary
	TargetDictionary() *vocab.Dictionary
	LoadSplit(ctx context.Context, subset string) (*dataset.Split, error)
	LoadModels(paths []string, opts model.EnsembleOptions) ([]model.Model, error)
	// MaxPositions returns the task-side sequence-length limits, before
	// reconciliation with the loaded models.
	MaxPositions() (src, tgt int)
}

// LocalTaskOptions configures a filesystem-backed task.
type LocalTaskOptions struct {
	// DataDir holds the dictionaries plus either raw corpus files or the
	// prepared dataset store.
	DataDir string
	// CheckpointDir resolves relative checkpoint paths. Optional.
	CheckpointDir string
	// RawText selects `<subset>.<lang>` corpus files over the prepared store.
	RawText bool
	// SourceLang and TargetLang may be left empty for prepared data, where
	// the pair is read back from the store metadata.
	SourceLang string
	TargetLang string

	MaxSourcePositions int
	MaxTargetPositions int
}

// LocalTask reads dictionaries and splits from a data directory, raw or
// prepared.
type LocalTask struct {
	opts    LocalTaskOptions
	pair    langpair.Pair
	srcDict *vocab.Dictionary
	tgtDict *vocab.Dictionary
	store   *dataset.Store
}

// NewLocalTask resolves the language pair and loads both dictionaries
// eagerly, so a misconfigured data directory fails before any model load.
func NewLocalTask(ctx context.Context, opts LocalTaskOptions) (*LocalTask, error) {
	if opts.DataDir == "" {
		return nil, fmt.Errorf("a data directory is required")
	}
	if opts.MaxSourcePositions <= 0 {
		opts.MaxSourcePositions = 1024
	}
	if opts.MaxTargetPositions <= 0 {
		opts.MaxTargetPositions = 1024
	}

	task := &LocalTask{opts: opts}
	if !opts.RawText {
		store, err := dataset.OpenStore(filepath.Join(opts.DataDir, dataset.StoreName))
		if err != nil {
			return nil, err
		}
		task.store = store
	}

	pair, err := task.resolvePair(ctx)
	if err != nil {
		_ = task.Close()
		return nil, err
	}
	task.pair = pair

	if task.srcDict, err = loadDictionary(opts.DataDir, pair.Source); err != nil {
		_ = task.Close()
		return nil, err
	}
	if task.tgtDict, err = loadDictionary(opts.DataDir, pair.Target); err != nil {
		_ = task.Close()
		return nil, err
	}
	return task, nil
}

func (t *LocalTask) resolvePair(ctx context.Context) (langpair.Pair, error) {
	if t.opts.SourceLang != "" || t.opts.TargetLang != "" {
		pair, err := langpair.New(t.opts.SourceLang, t.opts.TargetLang)
		if err != nil {
			return langpair.Pair{}, err
		}
		if t.store != nil {
			stored, err := t.store.Pair(ctx)
			if err != nil {
				return langpair.Pair{}, err
			}
			if stored != pair {
				return langpair.Pair{}, fmt.Errorf("data directory was prepared for %s, not %s", stored, pair)
			}
		}
		return pair, nil
	}
	if t.store == nil {
		return langpair.Pair{}, fmt.Errorf("raw text datasets need explicit source and target languages")
	}
	return t.store.Pair(ctx)
}

// Close releases the dataset store, if any.
func (t *LocalTask) Close() error {
	if t.store == nil {
		return nil
	}
	return t.store.Close()
}

func (t *LocalTask) Pair() langpair.Pair                 { return t.pair }
func (t *LocalTask) SourceDictionary() *vocab.Dictionary { return t.srcDict }
func (t *LocalTask) TargetDictionary() *vocab.Dictionary { return t.tgtDict }

func (t *LocalTask) MaxPositions() (src, tgt int) {
	return t.opts.MaxSourcePositions, t.opts.MaxTargetPositions
}

// LoadSplit reads the named split from the raw corpus files or the prepared
// store, per the task's mode.
func (t *LocalTask) LoadSplit(ctx context.Context, subset string) (*dataset.Split, error) {
	if t.opts.RawText {
		return dataset.LoadRawText(t.opts.DataDir, subset, t.pair, t.srcDict, t.tgtDict)
	}
	return t.store.ReadSplit(ctx, subset)
}

// LoadModels loads the ensemble, resolving relative paths against the
// checkpoint directory. Every model's vocabulary sizes must match the task's
// dictionaries.
func (t *LocalTask) LoadModels(paths []string, opts model.EnsembleOptions) ([]model.Model, error) {
	resolved := make([]string, len(paths))
	for i, path := range paths {
		resolved[i] = path
		if t.opts.CheckpointDir != "" && !filepath.IsAbs(path) {
			candidate := filepath.Join(t.opts.CheckpointDir, path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				resolved[i] = candidate
			}
		}
	}
	return model.LoadEnsemble(resolved, opts)
}

// DictionaryPath returns the on-disk location of a language's dictionary.
func DictionaryPath(dataDir, lang string) string {
	return filepath.Join(dataDir, fmt.Sprintf("dict.%s.txt", lang))
}

func loadDictionary(dataDir, lang string) (*vocab.Dictionary, error) {
	dict, err := vocab.Load(DictionaryPath(dataDir, lang))
	if err != nil {
		return nil, fmt.Errorf("dictionary for %s: %w", lang, err)
	}
	return dict, nil
}
