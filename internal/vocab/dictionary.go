package vocab

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Reserved token strings. Their indices are fixed by construction order.
const (
	BosWord = "<s>"
	PadWord = "<pad>"
	EosWord = "</s>"
	UnkWord = "<unk>"
)

// Dictionary is an ordered mapping between token ids and token strings.
// Ids are dense and assigned in insertion order, specials first.
type Dictionary struct {
	symbols []string
	counts  []int64
	indices map[string]int32

	bos, pad, eos, unk int32
}

// New returns a dictionary seeded with the four reserved specials.
func New() *Dictionary {
	d := &Dictionary{indices: make(map[string]int32)}
	d.bos = d.AddSymbol(BosWord, 0)
	d.pad = d.AddSymbol(PadWord, 0)
	d.eos = d.AddSymbol(EosWord, 0)
	d.unk = d.AddSymbol(UnkWord, 0)
	return d
}

// AddSymbol inserts a token with the given count, or accumulates the count if
// the token is already present. The token's id is returned either way.
func (d *Dictionary) AddSymbol(symbol string, count int64) int32 {
	if id, ok := d.indices[symbol]; ok {
		d.counts[id] += count
		return id
	}
	id := int32(len(d.symbols))
	d.symbols = append(d.symbols, symbol)
	d.counts = append(d.counts, count)
	d.indices[symbol] = id
	return id
}

// Index returns the id of the token, falling back to the unk id for tokens
// outside the dictionary.
func (d *Dictionary) Index(symbol string) int32 {
	if id, ok := d.indices[symbol]; ok {
		return id
	}
	return d.unk
}

// Contains reports whether the token is present in the dictionary.
func (d *Dictionary) Contains(symbol string) bool {
	_, ok := d.indices[symbol]
	return ok
}

// Symbol returns the string form of id. Out-of-range ids map to the unk word,
// mirroring lookup behavior on the index side.
func (d *Dictionary) Symbol(id int32) string {
	if id < 0 || int(id) >= len(d.symbols) {
		return UnkWord
	}
	return d.symbols[id]
}

// Count returns the accumulated corpus count for id, or zero when out of range.
func (d *Dictionary) Count(id int32) int64 {
	if id < 0 || int(id) >= len(d.counts) {
		return 0
	}
	return d.counts[id]
}

// Len returns the number of entries including specials.
func (d *Dictionary) Len() int { return len(d.symbols) }

func (d *Dictionary) Bos() int32 { return d.bos }
func (d *Dictionary) Pad() int32 { return d.pad }
func (d *Dictionary) Eos() int32 { return d.eos }
func (d *Dictionary) Unk() int32 { return d.unk }

// Encode maps whitespace-split words to ids, appending the eos id.
func (d *Dictionary) Encode(words []string) []int32 {
	ids := make([]int32, 0, len(words)+1)
	for _, w := range words {
		ids = append(ids, d.Index(w))
	}
	return append(ids, d.eos)
}

// Load reads a dictionary from the "token count" text format. Specials are
// implicit and never stored in the file.
func Load(path string) (*Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer file.Close()

	d := New()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		idx := strings.LastIndexByte(line, ' ')
		if idx <= 0 {
			return nil, fmt.Errorf("dictionary %s line %d: expected \"token count\", got %q", path, lineNo, line)
		}
		count, err := strconv.ParseInt(line[idx+1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("dictionary %s line %d: parse count: %w", path, lineNo, err)
		}
		token := line[:idx]
		if d.Contains(token) {
			return nil, fmt.Errorf("dictionary %s line %d: duplicate token %q", path, lineNo, token)
		}
		d.AddSymbol(token, count)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	return d, nil
}

// Save writes the dictionary in the same text format Load reads, skipping the
// reserved specials.
func (d *Dictionary) Save(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create dictionary %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for id := int(d.unk) + 1; id < len(d.symbols); id++ {
		if _, err := fmt.Fprintf(w, "%s %d\n", d.symbols[id], d.counts[id]); err != nil {
			return fmt.Errorf("write dictionary %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush dictionary %s: %w", path, err)
	}
	return file.Close()
}
