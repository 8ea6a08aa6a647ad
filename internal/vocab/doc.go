// Package vocab implements the token dictionary used on both sides of a
// translation pair.
//
// A Dictionary is an ordered id↔token table with the conventional special
// entries at fixed positions (<s>=0, <pad>=1, </s>=2, <unk>=3), loadable from
// and savable to the plain "token count" text format produced by corpus
// preprocessing. The package also derives the punctuation-token id sets the
// alignment extractor uses to mask punctuation.
package vocab
