// Package dataset loads parallel-corpus splits in two interchangeable forms:
// raw whitespace-tokenized text files and the binarized SQLite store written
// by the prepare command.
//
// Both loaders produce the same Split value, so downstream batching and
// extraction never care which mode a run used. Raw-text mode additionally
// retains the original word strings, which unknown-token replacement needs.
package dataset
