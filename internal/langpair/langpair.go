package langpair

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"ro", "ron", "rum", "Romanian", []string{"romanian"}},
	{"cs", "ces", "cze", "Czech", []string{"czech"}},
	{"fi", "fin", "", "Finnish", []string{"finnish"}},
	{"es", "spa", "", "Spanish", []string{"spanish"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"ar", "ara", "", "Arabic", []string{"arabic"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
	{"tr", "tur", "", "Turkish", []string{"turkish"}},
	{"nl", "nld", "dut", "Dutch", []string{"dutch"}},
	{"pl", "pol", "", "Polish", []string{"polish"}},
	{"sv", "swe", "", "Swedish", []string{"swedish"}},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// Normalize converts any recognized language code or word form to its
// canonical ISO 639-1 code. Codes outside the built-in table are accepted as
// long as they parse as a valid language tag; they pass through lowercased.
func Normalize(code string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return "", fmt.Errorf("language code is empty")
	}
	if e := lookup(trimmed); e != nil {
		return e.code2, nil
	}
	if _, err := language.Parse(trimmed); err != nil {
		return "", fmt.Errorf("unrecognized language code %q: %w", code, err)
	}
	return trimmed, nil
}

// DisplayName returns a human-readable language name for any recognized code,
// or the uppercased code when the table has no entry.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// Pair is a normalized source/target language pair.
type Pair struct {
	Source string
	Target string
}

// New validates and normalizes both codes into a Pair.
func New(source, target string) (Pair, error) {
	src, err := Normalize(source)
	if err != nil {
		return Pair{}, fmt.Errorf("source language: %w", err)
	}
	tgt, err := Normalize(target)
	if err != nil {
		return Pair{}, fmt.Errorf("target language: %w", err)
	}
	if src == tgt {
		return Pair{}, fmt.Errorf("source and target language are both %q", src)
	}
	return Pair{Source: src, Target: tgt}, nil
}

// String renders the pair in the direction form used for output file names,
// e.g. "de2en".
func (p Pair) String() string {
	return p.Source + "2" + p.Target
}
