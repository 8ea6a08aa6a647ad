package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"softalign/internal/langpair"
	"softalign/internal/vocab"
)

// maxLineBytes bounds a single corpus line; sentence pairs past this are
// corpus defects, not data.
const maxLineBytes = 4 * 1024 * 1024

// LoadRawText reads `<dir>/<subset>.<lang>` for both sides of the pair,
// encodes each line with the matching dictionary, and pairs them up by line
// number. Line counts must agree.
func LoadRawText(dir, subset string, pair langpair.Pair, srcDict, tgtDict *vocab.Dictionary) (*Split, error) {
	srcLines, err := readLines(filepath.Join(dir, subset+"."+pair.Source))
	if err != nil {
		return nil, err
	}
	tgtLines, err := readLines(filepath.Join(dir, subset+"."+pair.Target))
	if err != nil {
		return nil, err
	}
	if len(srcLines) != len(tgtLines) {
		return nil, fmt.Errorf("raw text split %s: %d %s lines but %d %s lines",
			subset, len(srcLines), pair.Source, len(tgtLines), pair.Target)
	}

	split := &Split{Name: subset, Pair: pair, Samples: make([]Sample, 0, len(srcLines))}
	for i := range srcLines {
		srcWords := strings.Fields(srcLines[i])
		tgtWords := strings.Fields(tgtLines[i])
		split.Samples = append(split.Samples, Sample{
			ID:          int64(i),
			Source:      srcDict.Encode(srcWords),
			Target:      tgtDict.Encode(tgtWords),
			SourceWords: srcWords,
			TargetWords: tgtWords,
		})
	}
	return split, nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus file %s: %w", path, err)
	}
	return lines, nil
}
