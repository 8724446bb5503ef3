package chunk

import (
	"fmt"

	"github.com/Daemonyz/carbondata/internal/compression"
	"github.com/Daemonyz/carbondata/internal/format"
)

// decodeRunLengths decodes a run-length segment: a compressed sequence of
// varint run lengths, one per stored value, in stored order.
func decodeRunLengths(segment []byte, compressor compression.Compressor) ([]uint32, error) {
	raw, err := compressor.Decompress(segment)
	if err != nil {
		e := format.NewCorruptError("rle segment decompress failed")
		e.Err = err
		return nil, e
	}

	var runs []uint32
	pos := 0
	for pos < len(raw) {
		v, n := compression.ReadVarint(raw[pos:])
		if n <= 0 {
			return nil, format.NewCorruptError(
				fmt.Sprintf("rle segment varint truncated at byte %d", pos))
		}
		if v == 0 || v > 0xFFFFFFFF {
			return nil, format.NewCorruptError(fmt.Sprintf("rle run length %d out of range", v))
		}
		runs = append(runs, uint32(v))
		pos += n
	}
	return runs, nil
}

// expandRunLengths materializes run-length-coded data: stored value i (a
// fixed-width slot of valueWidth bytes) is repeated runs[i] times.
func expandRunLengths(data []byte, runs []uint32, valueWidth int) ([]byte, error) {
	if valueWidth <= 0 {
		return nil, format.NewCorruptError(fmt.Sprintf("rle expansion with value width %d", valueWidth))
	}
	if len(data) != len(runs)*valueWidth {
		return nil, format.NewCorruptError(
			fmt.Sprintf("rle data has %d bytes for %d runs of width %d", len(data), len(runs), valueWidth))
	}

	var total int
	for _, r := range runs {
		total += int(r)
	}

	expanded := make([]byte, 0, total*valueWidth)
	for i, r := range runs {
		value := data[i*valueWidth : (i+1)*valueWidth]
		for j := uint32(0); j < r; j++ {
			expanded = append(expanded, value...)
		}
	}
	return expanded, nil
}
