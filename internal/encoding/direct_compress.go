package encoding

import (
	"fmt"

	"github.com/Daemonyz/carbondata/internal/compression"
	"github.com/Daemonyz/carbondata/internal/format"
)

// DirectCompressDecoder decodes DIRECT_COMPRESS pages: fixed-width values
// passed straight through a general-purpose compressor. The encoder metadata
// blob is two bytes: compressor algorithm id and value width.
type DirectCompressDecoder struct {
	compressor compression.Compressor
	valueWidth int
}

// NewDirectCompressDecoder builds the decoder from encoder metadata.
func NewDirectCompressDecoder(meta [][]byte) (Decoder, error) {
	if len(meta) == 0 || len(meta[0]) < 2 {
		return nil, format.NewCorruptError("direct_compress encoder meta missing or too short")
	}

	compressor, err := compression.GetCompressor(compression.Algorithm(meta[0][0]))
	if err != nil {
		return nil, &UnsupportedError{
			Encodings: []format.Encoding{format.EncodingDirectCompress},
			Msg:       err.Error(),
		}
	}

	width := int(meta[0][1])
	if width == 0 {
		return nil, format.NewCorruptError("direct_compress encoder meta declares zero value width")
	}

	return &DirectCompressDecoder{compressor: compressor, valueWidth: width}, nil
}

// Decode decompresses the page bytes into a fixed-width result.
func (d *DirectCompressDecoder) Decode(data []byte, offset, length int) (*Result, error) {
	if offset < 0 || offset+length > len(data) {
		return nil, format.NewCorruptError(
			fmt.Sprintf("direct_compress page range [%d,%d) outside buffer of %d bytes", offset, offset+length, len(data)))
	}

	values, err := d.compressor.Decompress(data[offset : offset+length])
	if err != nil {
		e := format.NewCorruptError("direct_compress decompress failed")
		e.Err = err
		return nil, e
	}

	if len(values)%d.valueWidth != 0 {
		return nil, format.NewCorruptError(
			fmt.Sprintf("direct_compress payload of %d bytes is not a multiple of value width %d", len(values), d.valueWidth))
	}

	return &Result{Data: values}, nil
}

// ValueWidth returns the fixed byte width declared in the encoder metadata.
func (d *DirectCompressDecoder) ValueWidth() int {
	return d.valueWidth
}
