package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// LZ4Compressor implements Compressor using LZ4 block compression.
// Each buffer carries an 8-byte header: uncompressed size followed by
// compressed size, both little-endian uint32. A compressed size of zero
// means the payload is stored raw (LZ4 reports zero for incompressible
// input).
type LZ4Compressor struct{}

const lz4HeaderSize = 8

// NewLZ4Compressor creates a new LZ4 compressor
func NewLZ4Compressor() *LZ4Compressor {
	return &LZ4Compressor{}
}

// Compress compresses data using LZ4 block compression
func (l *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	buf := make([]byte, lz4HeaderSize+lz4.CompressBlockBound(len(data)))
	binary.LittleEndian.PutUint32(buf, uint32(len(data)))

	var c lz4.Compressor
	n, err := c.CompressBlock(data, buf[lz4HeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("lz4 compress failed: %w", err)
	}
	if n == 0 {
		// Incompressible input: store raw, compressed size stays zero
		copy(buf[lz4HeaderSize:], data)
		return buf[:lz4HeaderSize+len(data)], nil
	}

	binary.LittleEndian.PutUint32(buf[4:], uint32(n))
	return buf[:lz4HeaderSize+n], nil
}

// Decompress decompresses LZ4 block compressed data
func (l *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	if len(data) < lz4HeaderSize {
		return nil, fmt.Errorf("lz4 data too short for header")
	}

	uncompressedSize := binary.LittleEndian.Uint32(data)
	compressedSize := binary.LittleEndian.Uint32(data[4:])
	payload := data[lz4HeaderSize:]

	if compressedSize == 0 {
		if len(payload) != int(uncompressedSize) {
			return nil, fmt.Errorf("lz4 raw payload size mismatch: expected %d, got %d", uncompressedSize, len(payload))
		}
		out := make([]byte, uncompressedSize)
		copy(out, payload)
		return out, nil
	}

	if len(payload) != int(compressedSize) {
		return nil, fmt.Errorf("lz4 payload size mismatch: expected %d, got %d", compressedSize, len(payload))
	}

	out := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(payload, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress failed: %w", err)
	}
	if n != int(uncompressedSize) {
		return nil, fmt.Errorf("lz4 decompress size mismatch: expected %d, got %d", uncompressedSize, n)
	}

	return out, nil
}

// Algorithm returns LZ4
func (l *LZ4Compressor) Algorithm() Algorithm {
	return LZ4
}
