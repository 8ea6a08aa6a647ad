// Package model loads trained soft-alignment checkpoints and computes the
// cross-attention the extractor reads.
//
// A checkpoint stores per-layer, per-head source and target embedding tables;
// attention between a sentence pair is the softmax over source positions of
// scaled dot products between target-token and source-token embeddings. The
// Model interface is the seam the driver talks through, so tests substitute
// doubles without any checkpoint on disk.
package model
