package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"softalign/internal/dataset"
	"softalign/internal/generate"
	"softalign/internal/langpair"
	"softalign/internal/vocab"
)

func newPrepareCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceLang string
		targetLang string
		trainPref  string
		validPref  string
		testPref   string
		destDir    string
		srcDict    string
		tgtDict    string
	)

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Binarize a parallel corpus into a dataset store",
		Long: `Build dictionaries from the training corpus (or load existing ones), encode
every given split, and store the result as dict.<lang>.txt files plus a
dataset store in the destination directory. The extract command reads the
prepared directory directly.

Each prefix names a pair of corpus files: --trainpref /data/train expects
/data/train.<src> and /data/train.<tgt>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			pair, err := langpair.New(sourceLang, targetLang)
			if err != nil {
				return err
			}

			dest := strings.TrimSpace(destDir)
			if dest == "" {
				dest = cfg.Paths.DataDir
			}
			if dest == "" {
				return fmt.Errorf("no destination directory given and no data_dir configured")
			}
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("create destination directory: %w", err)
			}

			prefixes := map[string]string{
				"train": strings.TrimSpace(trainPref),
				"valid": strings.TrimSpace(validPref),
				"test":  strings.TrimSpace(testPref),
			}
			if prefixes["train"] == "" && prefixes["valid"] == "" && prefixes["test"] == "" {
				return fmt.Errorf("at least one of --trainpref, --validpref, --testpref is required")
			}

			source, err := resolveDictionary(srcDict, prefixes["train"], pair.Source)
			if err != nil {
				return err
			}
			target, err := resolveDictionary(tgtDict, prefixes["train"], pair.Target)
			if err != nil {
				return err
			}

			if err := source.Save(generate.DictionaryPath(dest, pair.Source)); err != nil {
				return err
			}
			if err := target.Save(generate.DictionaryPath(dest, pair.Target)); err != nil {
				return err
			}

			store, err := dataset.OpenStore(filepath.Join(dest, dataset.StoreName))
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SetPair(cmd.Context(), pair); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dictionary sizes: %s %d, %s %d\n",
				pair.Source, source.Len(), pair.Target, target.Len())

			for _, name := range []string{"train", "valid", "test"} {
				pref := prefixes[name]
				if pref == "" {
					continue
				}
				split, err := dataset.LoadRawText(filepath.Dir(pref), filepath.Base(pref), pair, source, target)
				if err != nil {
					return fmt.Errorf("split %s: %w", name, err)
				}
				split.Name = name
				if err := store.WriteSplit(cmd.Context(), split); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %d %s sentences\n", len(split.Samples), name)
			}

			fmt.Fprintf(out, "Prepared %s data in %s\n", pair, dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourceLang, "source-lang", "s", "", "Source language code")
	cmd.Flags().StringVarP(&targetLang, "target-lang", "t", "", "Target language code")
	cmd.Flags().StringVar(&trainPref, "trainpref", "", "Training corpus file prefix")
	cmd.Flags().StringVar(&validPref, "validpref", "", "Validation corpus file prefix")
	cmd.Flags().StringVar(&testPref, "testpref", "", "Test corpus file prefix")
	cmd.Flags().StringVar(&destDir, "destdir", "", "Destination directory (default: configured data_dir)")
	cmd.Flags().StringVar(&srcDict, "srcdict", "", "Reuse an existing source dictionary instead of building one")
	cmd.Flags().StringVar(&tgtDict, "tgtdict", "", "Reuse an existing target dictionary instead of building one")

	_ = cmd.MarkFlagRequired("source-lang")
	_ = cmd.MarkFlagRequired("target-lang")

	return cmd
}

// resolveDictionary loads an existing dictionary or builds one from the
// training corpus side.
func resolveDictionary(dictPath, trainPref, lang string) (*vocab.Dictionary, error) {
	if strings.TrimSpace(dictPath) != "" {
		return vocab.Load(dictPath)
	}
	if trainPref == "" {
		return nil, fmt.Errorf("no dictionary for %s: give --trainpref to build one or point at an existing file", lang)
	}
	return buildDictionary(trainPref + "." + lang)
}

// buildDictionary counts tokens in a corpus file and assembles a dictionary
// with entries ordered by descending count, ties broken alphabetically.
func buildDictionary(path string) (*vocab.Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	defer file.Close()

	counts := make(map[string]int64)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		for _, word := range strings.Fields(scanner.Text()) {
			counts[word]++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus file %s: %w", path, err)
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	dict := vocab.New()
	for _, word := range words {
		dict.AddSymbol(word, counts[word])
	}
	return dict, nil
}
