// Package langpair provides language code normalization and the
// source/target pair naming used throughout the toolkit.
//
// All language-related conversions (ISO 639-1, ISO 639-2, word forms) are
// consolidated here so dataset loading, dictionary lookup, and output file
// naming agree on one canonical code per language.
package langpair
