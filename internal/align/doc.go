// Package align turns cross-attention matrices into word alignments.
//
// An Extractor is bound once per run to a model, a decoder layer, an
// alignment task's head-merging rule, and one of two attention
// interpretations: shifted, where attention row t belongs to the previous
// target token, or non-shifted, where row t belongs to token t directly.
// Punctuation tokens on either side are masked using the id sets derived from
// the dictionaries.
package align
