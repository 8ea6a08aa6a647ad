package model

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

var checkpointMagic = [4]byte{'S', 'A', 'L', 'N'}

const checkpointVersion = 1

// Header describes the shape of a checkpoint's embedding tables.
type Header struct {
	Version            uint32
	Layers             uint32
	Heads              uint32
	Dim                uint32
	SourceVocab        uint32
	TargetVocab        uint32
	MaxSourcePositions uint32
	MaxTargetPositions uint32
}

func (h Header) validate() error {
	if h.Layers == 0 || h.Heads == 0 || h.Dim == 0 {
		return fmt.Errorf("checkpoint header: layers, heads, and dim must be positive (got %d, %d, %d)", h.Layers, h.Heads, h.Dim)
	}
	if h.SourceVocab == 0 || h.TargetVocab == 0 {
		return fmt.Errorf("checkpoint header: vocabulary sizes must be positive")
	}
	if h.MaxSourcePositions == 0 || h.MaxTargetPositions == 0 {
		return fmt.Errorf("checkpoint header: max positions must be positive")
	}
	return nil
}

// TablePair holds one attention head's embedding tables, flattened row-major
// as vocab × dim.
type TablePair struct {
	Source []float32
	Target []float32
}

// Checkpoint is one loaded model. It satisfies Model.
type Checkpoint struct {
	header         Header
	tables         [][]TablePair // [layer][head]
	alignmentLayer int
}

// NewCheckpoint builds an in-memory checkpoint, validating table shapes
// against the header.
func NewCheckpoint(header Header, tables [][]TablePair) (*Checkpoint, error) {
	header.Version = checkpointVersion
	if err := header.validate(); err != nil {
		return nil, err
	}
	if uint32(len(tables)) != header.Layers {
		return nil, fmt.Errorf("checkpoint: %d layer tables for %d layers", len(tables), header.Layers)
	}
	srcLen := int(header.SourceVocab * header.Dim)
	tgtLen := int(header.TargetVocab * header.Dim)
	for l, heads := range tables {
		if uint32(len(heads)) != header.Heads {
			return nil, fmt.Errorf("checkpoint: layer %d has %d head tables for %d heads", l, len(heads), header.Heads)
		}
		for hd, pair := range heads {
			if len(pair.Source) != srcLen || len(pair.Target) != tgtLen {
				return nil, fmt.Errorf("checkpoint: layer %d head %d table sizes (%d, %d) do not match header (%d, %d)",
					l, hd, len(pair.Source), len(pair.Target), srcLen, tgtLen)
			}
		}
	}
	return &Checkpoint{header: header, tables: tables}, nil
}

// Load reads a checkpoint from disk.
func Load(path string) (*Checkpoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer file.Close()

	r := bufio.NewReaderSize(file, 1<<20)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("checkpoint %s: read magic: %w", path, err)
	}
	if !bytes.Equal(magic[:], checkpointMagic[:]) {
		return nil, fmt.Errorf("checkpoint %s: bad magic %q", path, magic)
	}

	var header Header
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("checkpoint %s: read header: %w", path, err)
	}
	if header.Version != checkpointVersion {
		return nil, fmt.Errorf("checkpoint %s: unsupported version %d", path, header.Version)
	}
	if err := header.validate(); err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", path, err)
	}

	tables := make([][]TablePair, header.Layers)
	for l := range tables {
		tables[l] = make([]TablePair, header.Heads)
		for hd := range tables[l] {
			src := make([]float32, header.SourceVocab*header.Dim)
			if err := binary.Read(r, binary.LittleEndian, src); err != nil {
				return nil, fmt.Errorf("checkpoint %s: layer %d head %d source table: %w", path, l, hd, err)
			}
			tgt := make([]float32, header.TargetVocab*header.Dim)
			if err := binary.Read(r, binary.LittleEndian, tgt); err != nil {
				return nil, fmt.Errorf("checkpoint %s: layer %d head %d target table: %w", path, l, hd, err)
			}
			tables[l][hd] = TablePair{Source: src, Target: tgt}
		}
	}

	return &Checkpoint{header: header, tables: tables}, nil
}

// Save writes the checkpoint in the binary format Load reads.
func (c *Checkpoint) Save(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriterSize(file, 1<<20)
	if _, err := w.Write(checkpointMagic[:]); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, c.header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for l := range c.tables {
		for hd := range c.tables[l] {
			if err := binary.Write(w, binary.LittleEndian, c.tables[l][hd].Source); err != nil {
				return fmt.Errorf("write layer %d head %d source table: %w", l, hd, err)
			}
			if err := binary.Write(w, binary.LittleEndian, c.tables[l][hd].Target); err != nil {
				return fmt.Errorf("write layer %d head %d target table: %w", l, hd, err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush checkpoint: %w", err)
	}
	return file.Close()
}

// MaxPositions returns the positional limits the model was trained with.
func (c *Checkpoint) MaxPositions() (int, int) {
	return int(c.header.MaxSourcePositions), int(c.header.MaxTargetPositions)
}

// Layers returns the decoder layer count.
func (c *Checkpoint) Layers() int { return int(c.header.Layers) }

// Heads returns the attention head count per layer.
func (c *Checkpoint) Heads() int { return int(c.header.Heads) }

// AlignmentLayer returns the layer selected for extraction.
func (c *Checkpoint) AlignmentLayer() int { return c.alignmentLayer }

// SetAlignmentLayer selects the layer extraction reads attention from.
func (c *Checkpoint) SetAlignmentLayer(layer int) error {
	if layer < 0 || layer >= c.Layers() {
		return fmt.Errorf("alignment layer %d out of range for %d-layer model", layer, c.Layers())
	}
	c.alignmentLayer = layer
	return nil
}

// Half casts every table to the nearest binary16 value in place.
func (c *Checkpoint) Half() {
	for l := range c.tables {
		for hd := range c.tables[l] {
			halfTable(c.tables[l][hd].Source)
			halfTable(c.tables[l][hd].Target)
		}
	}
}

func halfTable(table []float32) {
	for i, v := range table {
		table[i] = halfRound(v)
	}
}

// Attention computes the cross-attention matrix for one sentence pair at the
// given layer and head.
func (c *Checkpoint) Attention(src, tgt []int32, layer, head int) ([][]float32, error) {
	if layer < 0 || layer >= c.Layers() {
		return nil, fmt.Errorf("layer %d out of range for %d-layer model", layer, c.Layers())
	}
	if head < 0 || head >= c.Heads() {
		return nil, fmt.Errorf("head %d out of range for %d-head model", head, c.Heads())
	}
	if len(src) == 0 || len(tgt) == 0 {
		return nil, fmt.Errorf("attention requires non-empty source and target")
	}

	pair := c.tables[layer][head]
	dim := int(c.header.Dim)
	scale := float32(1 / math.Sqrt(float64(dim)))

	rows := make([][]float32, len(tgt))
	for t, tgtID := range tgt {
		if tgtID < 0 || uint32(tgtID) >= c.header.TargetVocab {
			return nil, fmt.Errorf("target id %d out of vocabulary (size %d)", tgtID, c.header.TargetVocab)
		}
		tgtEmb := pair.Target[int(tgtID)*dim : (int(tgtID)+1)*dim]
		row := make([]float32, len(src))
		for s, srcID := range src {
			if srcID < 0 || uint32(srcID) >= c.header.SourceVocab {
				return nil, fmt.Errorf("source id %d out of vocabulary (size %d)", srcID, c.header.SourceVocab)
			}
			srcEmb := pair.Source[int(srcID)*dim : (int(srcID)+1)*dim]
			var dot float32
			for i := 0; i < dim; i++ {
				dot += tgtEmb[i] * srcEmb[i]
			}
			row[s] = dot * scale
		}
		softmax(row)
		rows[t] = row
	}
	return rows, nil
}

func softmax(row []float32) {
	maxVal := row[0]
	for _, v := range row[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	var sum float64
	for i, v := range row {
		e := math.Exp(float64(v - maxVal))
		row[i] = float32(e)
		sum += e
	}
	inv := float32(1 / sum)
	for i := range row {
		row[i] *= inv
	}
}
