package results

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"softalign/internal/langpair"
)

// OutputPath returns the alignment file location for one run:
// <dir>/<subset>.<src>2<tgt>.align.
func OutputPath(dir, subset string, pair langpair.Pair) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s.align", subset, pair))
}

// Write drains the buffer into path, one line per result, truncating any
// previous file. A sibling lock file serializes concurrent runs targeting the
// same output; holding the lock while another run writes is an error rather
// than a wait, since interleaved passes would clobber each other anyway.
func Write(path string, buf *Buffer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("output file %s is locked by another run", path)
	}
	defer func() { _ = lock.Unlock() }()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	err = buf.Walk(func(id int64, results []string) error {
		for _, result := range results {
			if _, err := w.WriteString(result); err != nil {
				return err
			}
			if err := w.WriteByte('\n'); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write output file %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output file %s: %w", path, err)
	}
	return file.Close()
}
