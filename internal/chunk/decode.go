package chunk

import (
	"fmt"

	"github.com/Daemonyz/carbondata/internal/compression"
	"github.com/Daemonyz/carbondata/internal/encoding"
	"github.com/Daemonyz/carbondata/internal/format"
)

// DecodePage materializes one page of a raw chunk. The page's encoding list
// selects between the meta-driven codec path and the legacy pipeline.
//
// Decoding operates purely on the in-memory buffer: no I/O, no locks.
func (r *Reader) DecodePage(raw *RawColumnChunk, page int) (ColumnPage, error) {
	if !raw.buf.alive() {
		return nil, fmt.Errorf("decode page %d of column %d: chunk buffer released", page, raw.columnIndex)
	}
	descriptor := raw.descriptor
	if page < 0 || page >= descriptor.PageCount() {
		return nil, fmt.Errorf("page %d outside chunk with %d pages", page, descriptor.PageCount())
	}

	meta := &descriptor.Pages[page]

	// Absolute position of the page within the shared buffer: chunk start,
	// plus the descriptor's own serialized bytes, plus the page offset
	offset := raw.offset + descriptor.ByteLength() + int(descriptor.PageOffsets[page])
	data := raw.buf.data

	var (
		decoded ColumnPage
		err     error
	)
	if format.IsSelfDescribing(meta.Encodings) {
		decoded, err = r.decodeByMeta(raw, meta, data, offset)
	} else {
		decoded, err = r.decodeLegacy(raw, meta, data, offset)
	}
	if err != nil {
		return nil, r.decorate(err, raw.columnIndex, page,
			r.offsets.Offset(raw.columnIndex)+int64(descriptor.ByteLength())+int64(descriptor.PageOffsets[page]),
			int(meta.TotalLength()))
	}

	r.logger.Debug("decoded page",
		"column", raw.columnIndex, "page", page, "rows", meta.RowCount)

	return decoded, nil
}

// decodeByMeta dispatches to the encoding registry. The decoder is
// parameterized entirely by the page's encoder metadata blobs.
func (r *Reader) decodeByMeta(raw *RawColumnChunk, meta *format.PageMetadata, data []byte, offset int) (ColumnPage, error) {
	decoder, err := r.registry.CreateDecoder(meta.Encodings, meta.EncoderMeta)
	if err != nil {
		return nil, err
	}

	result, err := decoder.Decode(data, offset, int(meta.DataLength))
	if err != nil {
		return nil, err
	}

	if result.Offsets != nil {
		if len(result.Offsets)-1 != int(meta.RowCount) {
			return nil, format.NewCorruptError(
				fmt.Sprintf("meta-decoded page has %d values, expected %d rows", len(result.Offsets)-1, meta.RowCount))
		}
		return wrapVariableWidthPage(result.Data, result.Offsets, nil, nil), nil
	}

	return newFixedWidthPage(result.Data, r.valueWidths[raw.columnIndex], int(meta.RowCount), nil, nil)
}

// decodeLegacy runs the fixed four-step pipeline: decompress, then the
// optional inverted-index and RLE steps in that order (the index maps
// positions while RLE rewrites values, so index bytes precede RLE bytes in
// the page), then packaging keyed on the DICTIONARY flag.
func (r *Reader) decodeLegacy(raw *RawColumnChunk, meta *format.PageMetadata, data []byte, offset int) (ColumnPage, error) {
	for _, enc := range meta.Encodings {
		switch enc {
		case format.EncodingDictionary, format.EncodingInvertedIndex, format.EncodingRLE:
		default:
			return nil, &encoding.UnsupportedError{Encodings: meta.Encodings, Msg: "not a legacy pipeline flag"}
		}
	}

	compressor, err := compression.GetCompressor(raw.descriptor.Compressor)
	if err != nil {
		e := format.NewCorruptError("chunk declares unknown compressor")
		e.Err = err
		return nil, e
	}

	pageEnd := offset + int(meta.TotalLength())
	if offset < 0 || pageEnd > len(data) {
		return nil, format.NewCorruptError(
			fmt.Sprintf("page range [%d,%d) outside buffer of %d bytes", offset, pageEnd, len(data)))
	}

	dataPage, err := compressor.Decompress(data[offset : offset+int(meta.DataLength)])
	if err != nil {
		e := format.NewCorruptError("data segment decompress failed")
		e.Err = err
		return nil, e
	}
	cursor := offset + int(meta.DataLength)

	var inverted, reverse []int32
	if meta.HasEncoding(format.EncodingInvertedIndex) {
		inverted, err = decodeInvertedIndex(data[cursor:cursor+int(meta.RowIDLength)], compressor)
		if err != nil {
			return nil, err
		}
		if len(inverted) != int(meta.RowCount) {
			return nil, format.NewCorruptError(
				fmt.Sprintf("inverted index has %d entries, expected %d rows", len(inverted), meta.RowCount))
		}
		reverse, err = invertReverseIndex(inverted)
		if err != nil {
			return nil, err
		}
		cursor += int(meta.RowIDLength)
	}

	if meta.HasEncoding(format.EncodingRLE) {
		runs, err := decodeRunLengths(data[cursor:cursor+int(meta.RLELength)], compressor)
		if err != nil {
			return nil, err
		}
		dataPage, err = expandRunLengths(dataPage, runs, r.valueWidths[raw.columnIndex])
		if err != nil {
			return nil, err
		}
	}

	if !meta.HasEncoding(format.EncodingDictionary) {
		return newVariableWidthPage(dataPage, int(meta.RowCount), inverted, reverse)
	}
	return newFixedWidthPage(dataPage, r.valueWidths[raw.columnIndex], int(meta.RowCount), inverted, reverse)
}
