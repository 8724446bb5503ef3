package chunk

import (
	"encoding/binary"
	"fmt"

	"github.com/Daemonyz/carbondata/internal/compression"
	"github.com/Daemonyz/carbondata/internal/format"
)

// decodeInvertedIndex decodes a row-id segment: a compressed little-endian
// uint32 array mapping stored (sorted) positions back to original rows.
func decodeInvertedIndex(segment []byte, compressor compression.Compressor) ([]int32, error) {
	raw, err := compressor.Decompress(segment)
	if err != nil {
		e := format.NewCorruptError("inverted index decompress failed")
		e.Err = err
		return nil, e
	}

	if len(raw)%4 != 0 {
		return nil, format.NewCorruptError(
			fmt.Sprintf("inverted index segment of %d bytes is not a uint32 array", len(raw)))
	}

	indexes := make([]int32, len(raw)/4)
	for i := range indexes {
		indexes[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return indexes, nil
}

// invertReverseIndex derives the inverse permutation:
// reverse[indexes[i]] = i for all i.
func invertReverseIndex(indexes []int32) ([]int32, error) {
	reverse := make([]int32, len(indexes))
	seen := make([]bool, len(indexes))
	for i, v := range indexes {
		if v < 0 || int(v) >= len(indexes) {
			return nil, format.NewCorruptError(
				fmt.Sprintf("inverted index entry %d out of range: %d", i, v))
		}
		if seen[v] {
			return nil, format.NewCorruptError(
				fmt.Sprintf("inverted index entry %d duplicated: %d", i, v))
		}
		seen[v] = true
		reverse[v] = int32(i)
	}
	return reverse, nil
}
