// Package generate drives one extraction pass: validate options, resolve the
// task's dictionaries and dataset, load the model ensemble, plan batches,
// run the chosen alignment strategy over every batch, and write buffered
// results once the pass completes.
//
// The Task interface is the seam between the driver and the data/model
// machinery; tests substitute doubles to exercise the pass without corpora or
// checkpoints on disk.
package generate
