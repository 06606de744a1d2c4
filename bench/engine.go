package bench

import (
	"github.com/axiomhq/fsstbench/fsst"
)

// Engine trains Compressors. It is the only way the Runner reaches the
// compression code.
type Engine interface {
	Train(docs [][]byte) Compressor
}

// Compressor is a trained symbol table. It must not change after Train.
type Compressor interface {
	// CompressBulk returns one compressed buffer per document, in order.
	CompressBulk(docs [][]byte) [][]byte
	// CompressInto appends the compressed src to dst and fails rather than
	// grow dst past its capacity.
	CompressInto(dst, src []byte) ([]byte, error)
	Decompressor() Decompressor
}

// Decompressor inverts the output of the Compressor it came from.
type Decompressor interface {
	Decompress(src []byte) []byte
}

// FSST is the Engine backed by package fsst.
var FSST Engine = fsstEngine{}

type fsstEngine struct{}

func (fsstEngine) Train(docs [][]byte) Compressor {
	return fsstCompressor{fsst.Train(docs)}
}

type fsstCompressor struct {
	*fsst.Table
}

func (c fsstCompressor) Decompressor() Decompressor {
	return fsstDecompressor{c.Table.Decompressor()}
}

// TableSize is the serialized size of the symbol table.
func (c fsstCompressor) TableSize() int {
	data, err := c.MarshalBinary()
	if err != nil {
		return 0
	}
	return len(data)
}

type fsstDecompressor struct {
	*fsst.Decompressor
}

func (d fsstDecompressor) Decompress(src []byte) []byte {
	return d.DecodeAll(src)
}
