package chunk

import (
	"encoding/binary"
	"fmt"

	"github.com/Daemonyz/carbondata/internal/format"
)

// ColumnPage is one fully decoded dimension page. Values are addressed in
// original row order regardless of how they were stored: pages written in
// sorted order carry an inverted index that ValueAt applies transparently.
//
// Pages are read-only once returned.
type ColumnPage interface {
	// RowCount returns the number of rows in the page.
	RowCount() int

	// ValueAt returns the raw bytes of the value at the given row, in
	// original row order. The returned slice aliases page storage.
	ValueAt(row int) []byte

	// InvertedIndex returns the stored-order to row-order permutation, or
	// nil when the page was stored in original row order.
	InvertedIndex() []int32

	// InvertedIndexReverse returns the inverse permutation, or nil.
	InvertedIndexReverse() []int32
}

// FixedWidthPage holds dictionary-coded values as a flat byte array with a
// fixed row stride.
type FixedWidthPage struct {
	data       []byte
	valueWidth int
	rowCount   int
	inverted   []int32
	reverse    []int32
}

func newFixedWidthPage(data []byte, valueWidth, rowCount int, inverted, reverse []int32) (*FixedWidthPage, error) {
	if valueWidth <= 0 {
		return nil, format.NewCorruptError(fmt.Sprintf("fixed-width page with value width %d", valueWidth))
	}
	if len(data) != rowCount*valueWidth {
		return nil, format.NewCorruptError(
			fmt.Sprintf("fixed-width page has %d bytes, expected %d rows of width %d", len(data), rowCount, valueWidth))
	}
	return &FixedWidthPage{
		data:       data,
		valueWidth: valueWidth,
		rowCount:   rowCount,
		inverted:   inverted,
		reverse:    reverse,
	}, nil
}

func (p *FixedWidthPage) RowCount() int { return p.rowCount }

func (p *FixedWidthPage) ValueAt(row int) []byte {
	stored := row
	if p.reverse != nil {
		stored = int(p.reverse[row])
	}
	return p.data[stored*p.valueWidth : (stored+1)*p.valueWidth]
}

// ValueWidth returns the fixed byte width of each value.
func (p *FixedWidthPage) ValueWidth() int { return p.valueWidth }

// Data returns the page's flat value bytes in stored order.
func (p *FixedWidthPage) Data() []byte { return p.data }

func (p *FixedWidthPage) InvertedIndex() []int32        { return p.inverted }
func (p *FixedWidthPage) InvertedIndexReverse() []int32 { return p.reverse }

// VariableWidthPage holds values without a fixed stride: raw value bytes
// plus an offset table with one boundary per value plus one.
type VariableWidthPage struct {
	data     []byte
	offsets  []int32
	inverted []int32
	reverse  []int32
}

// newVariableWidthPage parses a length-value stream (uint16 little-endian
// length before each value) into value bytes and offsets.
func newVariableWidthPage(lvData []byte, rowCount int, inverted, reverse []int32) (*VariableWidthPage, error) {
	data := make([]byte, 0, len(lvData))
	offsets := make([]int32, 1, rowCount+1)

	pos := 0
	for pos < len(lvData) {
		if pos+2 > len(lvData) {
			return nil, format.NewCorruptError("variable-width page value length truncated")
		}
		n := int(binary.LittleEndian.Uint16(lvData[pos:]))
		pos += 2
		if pos+n > len(lvData) {
			return nil, format.NewCorruptError(
				fmt.Sprintf("variable-width page value of %d bytes truncated at %d", n, pos))
		}
		data = append(data, lvData[pos:pos+n]...)
		offsets = append(offsets, int32(len(data)))
		pos += n
	}

	if len(offsets)-1 != rowCount {
		return nil, format.NewCorruptError(
			fmt.Sprintf("variable-width page has %d values, expected %d rows", len(offsets)-1, rowCount))
	}

	return &VariableWidthPage{
		data:     data,
		offsets:  offsets,
		inverted: inverted,
		reverse:  reverse,
	}, nil
}

// wrapVariableWidthPage builds a page from already-split values and offsets,
// as produced by a meta-driven decoder.
func wrapVariableWidthPage(data []byte, offsets []int32, inverted, reverse []int32) *VariableWidthPage {
	return &VariableWidthPage{data: data, offsets: offsets, inverted: inverted, reverse: reverse}
}

func (p *VariableWidthPage) RowCount() int { return len(p.offsets) - 1 }

func (p *VariableWidthPage) ValueAt(row int) []byte {
	stored := row
	if p.reverse != nil {
		stored = int(p.reverse[row])
	}
	return p.data[p.offsets[stored]:p.offsets[stored+1]]
}

func (p *VariableWidthPage) InvertedIndex() []int32        { return p.inverted }
func (p *VariableWidthPage) InvertedIndexReverse() []int32 { return p.reverse }
