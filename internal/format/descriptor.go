package format

import (
	"encoding/binary"
	"fmt"

	"github.com/Daemonyz/carbondata/internal/compression"
)

// Chunk descriptor magic: "CDX3" (Columnar Dimension chunk indeX, v3 layout)
const DescriptorMagic = 0x33584443

// DescriptorVersion is the current descriptor layout version
const DescriptorVersion = 1

// PageMetadata describes one data page within a column chunk: how many rows
// it holds, how long each serialized segment is, which encodings were
// applied (order matters), the encoder metadata blobs required by
// self-describing codecs, and the raw min/max statistics used for pruning.
type PageMetadata struct {
	RowCount    uint32
	DataLength  uint32
	RowIDLength uint32 // 0 = no inverted-index segment
	RLELength   uint32 // 0 = no run-length segment
	Encodings   []Encoding
	EncoderMeta [][]byte
	MinValue    []byte
	MaxValue    []byte
}

// TotalLength returns the serialized byte length of all of the page's
// segments combined.
func (m *PageMetadata) TotalLength() uint32 {
	return m.DataLength + m.RowIDLength + m.RLELength
}

// HasEncoding reports whether the page was written with the given encoding.
func (m *PageMetadata) HasEncoding(enc Encoding) bool {
	return HasEncoding(m.Encodings, enc)
}

// ChunkDescriptor is the parsed self-describing header of one column chunk:
// the general-purpose compressor applied to the chunk's segments, per-page
// metadata, and the byte offset of each page relative to the first byte
// after the descriptor itself.
type ChunkDescriptor struct {
	Compressor  compression.Algorithm
	Pages       []PageMetadata
	PageOffsets []uint32

	// serialized descriptor length, set by UnmarshalDescriptor
	byteLength int
}

// ByteLength returns the number of bytes the serialized descriptor occupied.
// Page data starts at this offset within the chunk.
func (d *ChunkDescriptor) ByteLength() int {
	return d.byteLength
}

// PageCount returns the number of data pages in the chunk.
func (d *ChunkDescriptor) PageCount() int {
	return len(d.Pages)
}

// MarshalDescriptor serializes a descriptor to its binary layout.
func MarshalDescriptor(d *ChunkDescriptor) ([]byte, error) {
	if len(d.Pages) == 0 {
		return nil, fmt.Errorf("descriptor must have at least one page")
	}
	if len(d.PageOffsets) != len(d.Pages) {
		return nil, fmt.Errorf("page offset count %d does not match page count %d",
			len(d.PageOffsets), len(d.Pages))
	}
	if len(d.Pages) > 0xFFFF {
		return nil, fmt.Errorf("too many pages: %d", len(d.Pages))
	}

	buf := make([]byte, 0, 64+len(d.Pages)*32)
	buf = binary.LittleEndian.AppendUint32(buf, DescriptorMagic)
	buf = binary.LittleEndian.AppendUint16(buf, DescriptorVersion)
	buf = append(buf, byte(d.Compressor))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(d.Pages)))

	for i := range d.Pages {
		p := &d.Pages[i]
		buf = binary.LittleEndian.AppendUint32(buf, p.RowCount)
		buf = binary.LittleEndian.AppendUint32(buf, p.DataLength)
		buf = binary.LittleEndian.AppendUint32(buf, p.RowIDLength)
		buf = binary.LittleEndian.AppendUint32(buf, p.RLELength)

		if len(p.Encodings) > 0xFF {
			return nil, fmt.Errorf("page %d: too many encodings: %d", i, len(p.Encodings))
		}
		buf = append(buf, byte(len(p.Encodings)))
		for _, e := range p.Encodings {
			buf = append(buf, byte(e))
		}

		if len(p.EncoderMeta) > 0xFF {
			return nil, fmt.Errorf("page %d: too many encoder meta blobs: %d", i, len(p.EncoderMeta))
		}
		buf = append(buf, byte(len(p.EncoderMeta)))
		for _, meta := range p.EncoderMeta {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(len(meta)))
			buf = append(buf, meta...)
		}

		if len(p.MinValue) > 0xFFFF || len(p.MaxValue) > 0xFFFF {
			return nil, fmt.Errorf("page %d: min/max value too long", i)
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(p.MinValue)))
		buf = append(buf, p.MinValue...)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(p.MaxValue)))
		buf = append(buf, p.MaxValue...)
	}

	for _, off := range d.PageOffsets {
		buf = binary.LittleEndian.AppendUint32(buf, off)
	}

	return buf, nil
}

// UnmarshalDescriptor parses a descriptor from the start of a chunk buffer.
// The buffer may extend past the descriptor (it normally holds the page data
// too); the parsed descriptor records how many bytes it consumed.
func UnmarshalDescriptor(data []byte) (*ChunkDescriptor, error) {
	offset := 0

	if len(data) < 9 {
		return nil, NewCorruptError("descriptor truncated at header")
	}
	magic := binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	if magic != DescriptorMagic {
		return nil, NewCorruptError(fmt.Sprintf("bad descriptor magic 0x%08x", magic))
	}
	version := binary.LittleEndian.Uint16(data[offset:])
	offset += 2
	if version != DescriptorVersion {
		return nil, NewCorruptError(fmt.Sprintf("unsupported descriptor version %d", version))
	}

	compressor := compression.Algorithm(data[offset])
	offset++
	pageCount := int(binary.LittleEndian.Uint16(data[offset:]))
	offset += 2
	if pageCount == 0 {
		return nil, NewCorruptError("descriptor declares zero pages")
	}

	d := &ChunkDescriptor{
		Compressor: compressor,
		Pages:      make([]PageMetadata, pageCount),
	}

	for i := 0; i < pageCount; i++ {
		p := &d.Pages[i]

		if offset+16 > len(data) {
			return nil, NewCorruptError(fmt.Sprintf("descriptor truncated at page %d lengths", i))
		}
		p.RowCount = binary.LittleEndian.Uint32(data[offset:])
		p.DataLength = binary.LittleEndian.Uint32(data[offset+4:])
		p.RowIDLength = binary.LittleEndian.Uint32(data[offset+8:])
		p.RLELength = binary.LittleEndian.Uint32(data[offset+12:])
		offset += 16

		if offset >= len(data) {
			return nil, NewCorruptError(fmt.Sprintf("descriptor truncated at page %d encodings", i))
		}
		encCount := int(data[offset])
		offset++
		if offset+encCount > len(data) {
			return nil, NewCorruptError(fmt.Sprintf("descriptor truncated at page %d encoding list", i))
		}
		p.Encodings = make([]Encoding, encCount)
		for j := 0; j < encCount; j++ {
			p.Encodings[j] = Encoding(data[offset])
			offset++
		}

		if offset >= len(data) {
			return nil, NewCorruptError(fmt.Sprintf("descriptor truncated at page %d encoder meta count", i))
		}
		metaCount := int(data[offset])
		offset++
		p.EncoderMeta = make([][]byte, metaCount)
		for j := 0; j < metaCount; j++ {
			if offset+4 > len(data) {
				return nil, NewCorruptError(fmt.Sprintf("descriptor truncated at page %d meta blob %d length", i, j))
			}
			metaLen := int(binary.LittleEndian.Uint32(data[offset:]))
			offset += 4
			if offset+metaLen > len(data) {
				return nil, NewCorruptError(fmt.Sprintf("descriptor truncated at page %d meta blob %d", i, j))
			}
			p.EncoderMeta[j] = append([]byte(nil), data[offset:offset+metaLen]...)
			offset += metaLen
		}

		var err error
		if p.MinValue, offset, err = readValueBytes(data, offset, i, "min"); err != nil {
			return nil, err
		}
		if p.MaxValue, offset, err = readValueBytes(data, offset, i, "max"); err != nil {
			return nil, err
		}
	}

	if offset+pageCount*4 > len(data) {
		return nil, NewCorruptError("descriptor truncated at page offset table")
	}
	d.PageOffsets = make([]uint32, pageCount)
	for i := 0; i < pageCount; i++ {
		d.PageOffsets[i] = binary.LittleEndian.Uint32(data[offset:])
		offset += 4
	}

	d.byteLength = offset
	return d, nil
}

func readValueBytes(data []byte, offset, page int, what string) ([]byte, int, error) {
	if offset+2 > len(data) {
		return nil, 0, NewCorruptError(fmt.Sprintf("descriptor truncated at page %d %s length", page, what))
	}
	n := int(binary.LittleEndian.Uint16(data[offset:]))
	offset += 2
	if offset+n > len(data) {
		return nil, 0, NewCorruptError(fmt.Sprintf("descriptor truncated at page %d %s value", page, what))
	}
	val := append([]byte(nil), data[offset:offset+n]...)
	return val, offset + n, nil
}

// Validate cross-checks the descriptor against the byte length of the whole
// chunk it was parsed from. Page offsets must start at zero, increase by
// exactly the previous page's segment total, and the final page must end at
// the chunk boundary.
func (d *ChunkDescriptor) Validate(chunkLength int) error {
	if len(d.PageOffsets) != len(d.Pages) {
		return NewCorruptError(fmt.Sprintf("page offset count %d does not match page count %d",
			len(d.PageOffsets), len(d.Pages)))
	}
	if d.PageOffsets[0] != 0 {
		return NewCorruptError(fmt.Sprintf("first page offset is %d, expected 0", d.PageOffsets[0]))
	}

	for i := 0; i < len(d.Pages)-1; i++ {
		expected := d.PageOffsets[i] + d.Pages[i].TotalLength()
		if d.PageOffsets[i+1] != expected {
			return NewCorruptError(fmt.Sprintf("page %d offset %d does not follow page %d (expected %d)",
				i+1, d.PageOffsets[i+1], i, expected))
		}
	}

	last := len(d.Pages) - 1
	end := d.byteLength + int(d.PageOffsets[last]) + int(d.Pages[last].TotalLength())
	if end != chunkLength {
		return NewCorruptError(fmt.Sprintf("pages end at byte %d but chunk is %d bytes", end, chunkLength))
	}
	return nil
}
