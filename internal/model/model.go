package model

// Model is the capability set the extraction driver needs from a loaded
// network: positional limits for batch planning and cross-attention lookup
// for alignment extraction.
type Model interface {
	// MaxPositions returns the source and target sequence-length limits.
	MaxPositions() (src, tgt int)
	// Layers returns the number of decoder layers carrying attention.
	Layers() int
	// Heads returns the number of attention heads per layer.
	Heads() int
	// AlignmentLayer returns the layer selected for alignment extraction.
	AlignmentLayer() int
	// SetAlignmentLayer selects which layer's attention extraction reads.
	SetAlignmentLayer(layer int) error
	// Half casts the model weights to half precision in place.
	Half()
	// Attention returns the cross-attention matrix for one sentence pair,
	// indexed [target position][source position], rows summing to one.
	Attention(src, tgt []int32, layer, head int) ([][]float32, error)
}
