package compression

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor implements Compressor using Zstandard.
// Encoder and decoder instances are pooled: zstd.NewWriter allocations are
// expensive relative to compressing a single column chunk.
type ZstdCompressor struct{}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// NewZstdCompressor creates a new Zstandard compressor
func NewZstdCompressor() *ZstdCompressor {
	return &ZstdCompressor{}
}

// Compress compresses data using Zstandard
func (z *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	enc := getZstdEncoder()
	compressed := enc.EncodeAll(data, nil)
	zstdEncoderPool.Put(enc)

	return compressed, nil
}

// Decompress decompresses Zstandard compressed data
func (z *ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	dec := getZstdDecoder()
	decompressed, err := dec.DecodeAll(data, nil)
	zstdDecoderPool.Put(dec)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress failed: %w", err)
	}

	return decompressed, nil
}

// Algorithm returns Zstd
func (z *ZstdCompressor) Algorithm() Algorithm {
	return Zstd
}
