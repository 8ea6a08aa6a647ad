package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to dir/name and returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteCorpus lays out a small de2en parallel corpus with dictionaries in the
// raw-text layout: dict.<lang>.txt plus <subset>.<lang> files.
func WriteCorpus(t testing.TB, dir, subset string) {
	t.Helper()

	WriteFile(t, dir, "dict.de.txt", "der 3\nhund 2\nkatze 1\n")
	WriteFile(t, dir, "dict.en.txt", "the 3\ndog 2\ncat 1\n")
	WriteFile(t, dir, subset+".de", "der hund\nder katze\n")
	WriteFile(t, dir, subset+".en", "the dog\nthe cat\n")
}

// CorpusVocabSize is the dictionary size WriteCorpus produces on each side:
// three corpus words plus the four reserved specials.
const CorpusVocabSize = 7
