// Command softalign extracts soft word alignments from translation model
// cross-attention. It prepares binarized datasets, runs extraction passes
// over a split, and manages its configuration file.
package main
