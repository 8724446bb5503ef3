package chunk

import (
	"sync/atomic"

	"github.com/Daemonyz/carbondata/internal/format"
)

// RawColumnChunk is a view over one column's compressed chunk bytes inside a
// read buffer, paired with its eagerly parsed descriptor. Chunks produced by
// a grouped read share the buffer: their byte ranges are disjoint and their
// union covers it exactly.
//
// The chunk keeps the buffer alive until Release is called; pruning
// consumers can inspect row counts and min/max statistics without any
// further I/O or decoding.
type RawColumnChunk struct {
	columnIndex int
	descriptor  *format.ChunkDescriptor

	buf    *sharedBuffer
	offset int // chunk start within buf
	length int

	// per-page statistics lifted out of the descriptor at read time
	rowCounts []uint32
	minValues [][]byte
	maxValues [][]byte

	reader   *Reader
	released atomic.Bool
}

// ColumnIndex returns the blocklet column index this chunk belongs to.
func (c *RawColumnChunk) ColumnIndex() int { return c.columnIndex }

// Descriptor returns the parsed chunk header.
func (c *RawColumnChunk) Descriptor() *format.ChunkDescriptor { return c.descriptor }

// PageCount returns the number of data pages in the chunk.
func (c *RawColumnChunk) PageCount() int { return c.descriptor.PageCount() }

// ByteOffset returns the chunk's start offset within its read buffer.
func (c *RawColumnChunk) ByteOffset() int { return c.offset }

// ByteLength returns the chunk's byte length.
func (c *RawColumnChunk) ByteLength() int { return c.length }

// RowCounts returns the per-page row counts.
func (c *RawColumnChunk) RowCounts() []uint32 { return c.rowCounts }

// MinValues returns the per-page raw minimum values, for pruning.
func (c *RawColumnChunk) MinValues() [][]byte { return c.minValues }

// MaxValues returns the per-page raw maximum values, for pruning.
func (c *RawColumnChunk) MaxValues() [][]byte { return c.maxValues }

// DecodePage materializes one page of the chunk. Safe to call concurrently
// for different pages; decoding the same page twice yields identical output.
func (c *RawColumnChunk) DecodePage(page int) (ColumnPage, error) {
	return c.reader.DecodePage(c, page)
}

// Release drops this chunk's reference on the underlying buffer. After the
// last chunk sharing a buffer is released the bytes are freed; decoding from
// a released chunk fails. Release is idempotent.
func (c *RawColumnChunk) Release() {
	if c.released.CompareAndSwap(false, true) {
		c.buf.release()
	}
}

func newRawColumnChunk(reader *Reader, column int, buf *sharedBuffer, offset, length int,
	descriptor *format.ChunkDescriptor) *RawColumnChunk {

	pages := descriptor.Pages
	c := &RawColumnChunk{
		columnIndex: column,
		descriptor:  descriptor,
		buf:         buf,
		offset:      offset,
		length:      length,
		rowCounts:   make([]uint32, len(pages)),
		minValues:   make([][]byte, len(pages)),
		maxValues:   make([][]byte, len(pages)),
		reader:      reader,
	}
	for i := range pages {
		c.rowCounts[i] = pages[i].RowCount
		c.minValues[i] = pages[i].MinValue
		c.maxValues[i] = pages[i].MaxValue
	}
	return c
}
