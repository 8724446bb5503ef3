package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/Daemonyz/carbondata/internal/compression"
	"github.com/Daemonyz/carbondata/internal/format"
)

// DirectStringDecoder decodes DIRECT_STRING pages: variable-width values
// stored as repeated uint16 length + bytes, the whole sequence passed through
// a general-purpose compressor. The encoder metadata blob is one byte: the
// compressor algorithm id.
type DirectStringDecoder struct {
	compressor compression.Compressor
}

// NewDirectStringDecoder builds the decoder from encoder metadata.
func NewDirectStringDecoder(meta [][]byte) (Decoder, error) {
	if len(meta) == 0 || len(meta[0]) < 1 {
		return nil, format.NewCorruptError("direct_string encoder meta missing or too short")
	}

	compressor, err := compression.GetCompressor(compression.Algorithm(meta[0][0]))
	if err != nil {
		return nil, &UnsupportedError{
			Encodings: []format.Encoding{format.EncodingDirectString},
			Msg:       err.Error(),
		}
	}

	return &DirectStringDecoder{compressor: compressor}, nil
}

// Decode decompresses the page and splits the length-prefixed values into a
// variable-width result.
func (d *DirectStringDecoder) Decode(data []byte, offset, length int) (*Result, error) {
	if offset < 0 || offset+length > len(data) {
		return nil, format.NewCorruptError(
			fmt.Sprintf("direct_string page range [%d,%d) outside buffer of %d bytes", offset, offset+length, len(data)))
	}

	raw, err := d.compressor.Decompress(data[offset : offset+length])
	if err != nil {
		e := format.NewCorruptError("direct_string decompress failed")
		e.Err = err
		return nil, e
	}

	values := make([]byte, 0, len(raw))
	offsets := []int32{0}

	pos := 0
	for pos < len(raw) {
		if pos+2 > len(raw) {
			return nil, format.NewCorruptError("direct_string value length truncated")
		}
		n := int(binary.LittleEndian.Uint16(raw[pos:]))
		pos += 2
		if pos+n > len(raw) {
			return nil, format.NewCorruptError(
				fmt.Sprintf("direct_string value of %d bytes truncated at %d", n, pos))
		}
		values = append(values, raw[pos:pos+n]...)
		offsets = append(offsets, int32(len(values)))
		pos += n
	}

	return &Result{Data: values, Offsets: offsets}, nil
}
