package datastore

import (
	"fmt"
)

// BlockletOffsets is the per-blocklet table of dimension column byte offsets
// plus the end bound of the blocklet's dimension region. The table has no
// sentinel entry past the last column, so the region end substitutes for it
// when computing the last column's chunk length.
//
// Immutable after construction; shared by every chunk read for the blocklet.
type BlockletOffsets struct {
	offsets   []int64
	regionEnd int64
}

// NewBlockletOffsets validates and builds an offset table. Offsets must be
// strictly increasing and the region end must not precede the last offset.
func NewBlockletOffsets(offsets []int64, regionEnd int64) (*BlockletOffsets, error) {
	if len(offsets) == 0 {
		return nil, fmt.Errorf("blocklet offsets: empty offset table")
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] <= offsets[i-1] {
			return nil, fmt.Errorf("blocklet offsets: offset %d (%d) not greater than offset %d (%d)",
				i, offsets[i], i-1, offsets[i-1])
		}
	}
	if regionEnd < offsets[len(offsets)-1] {
		return nil, fmt.Errorf("blocklet offsets: region end %d precedes last offset %d",
			regionEnd, offsets[len(offsets)-1])
	}

	return &BlockletOffsets{
		offsets:   append([]int64(nil), offsets...),
		regionEnd: regionEnd,
	}, nil
}

// Offset returns the byte offset of the given column's chunk.
func (b *BlockletOffsets) Offset(column int) int64 {
	return b.offsets[column]
}

// RegionEnd returns the end bound of the blocklet's dimension region.
func (b *BlockletOffsets) RegionEnd() int64 {
	return b.regionEnd
}

// ColumnCount returns the number of dimension columns in the blocklet.
func (b *BlockletOffsets) ColumnCount() int {
	return len(b.offsets)
}

// ChunkLength returns the byte length of one column's chunk. For the last
// column the region end bounds the chunk since there is no next offset.
func (b *BlockletOffsets) ChunkLength(column int) int64 {
	if column == len(b.offsets)-1 {
		return b.regionEnd - b.offsets[column]
	}
	return b.offsets[column+1] - b.offsets[column]
}

// RangeLength returns the contiguous byte length spanning columns first
// through last inclusive, as read by a grouped read.
func (b *BlockletOffsets) RangeLength(first, last int) int64 {
	if last == len(b.offsets)-1 {
		return b.regionEnd - b.offsets[first]
	}
	return b.offsets[last+1] - b.offsets[first]
}

// CheckRange validates a column index range against the table bounds.
func (b *BlockletOffsets) CheckRange(first, last int) error {
	if first < 0 || last >= len(b.offsets) || first > last {
		return fmt.Errorf("blocklet offsets: column range [%d,%d] outside table of %d columns",
			first, last, len(b.offsets))
	}
	return nil
}
