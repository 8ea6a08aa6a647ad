// Package batch plans the ordered mini-batches one extraction pass consumes.
//
// Batches cover a split exactly once in corpus order, sized by a token budget
// and/or a sentence budget, with over-length samples either rejected or
// skipped and batches distributed round-robin across shards.
package batch
