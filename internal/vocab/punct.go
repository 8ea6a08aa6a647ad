package vocab

import "strings"

// asciiPunctuation matches Python's string.punctuation, which the alignment
// tooling historically used to classify punctuation tokens.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// IDSet is a set of dictionary ids. A nil IDSet means "absent": no ids are
// members and no derivation was performed.
type IDSet map[int32]struct{}

// Contains reports membership; it is safe on a nil set.
func (s IDSet) Contains(id int32) bool {
	if s == nil {
		return false
	}
	_, ok := s[id]
	return ok
}

// Len returns the number of ids in the set.
func (s IDSet) Len() int { return len(s) }

// PunctuationIDs returns the set of ids whose token string is contained in the
// ASCII punctuation alphabet. The function is pure and deterministic: it
// depends only on the dictionary contents.
func PunctuationIDs(d *Dictionary) IDSet {
	set := make(IDSet)
	for id := int32(0); int(id) < d.Len(); id++ {
		sym := d.Symbol(id)
		if sym != "" && strings.Contains(asciiPunctuation, sym) {
			set[id] = struct{}{}
		}
	}
	return set
}
