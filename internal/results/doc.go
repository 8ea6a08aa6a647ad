// Package results buffers per-sample alignment results during a pass and
// writes them out in ascending sample-id order once the pass completes.
package results
