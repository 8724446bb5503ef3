package chunk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Daemonyz/carbondata/internal/compression"
	"github.com/Daemonyz/carbondata/internal/datastore"
	"github.com/Daemonyz/carbondata/internal/format"
)

// testPage describes one page to build into a test chunk. data holds the
// uncompressed data-segment content; the builder compresses it with the
// chunk's compressor.
type testPage struct {
	rowCount  int
	encodings []format.Encoding
	meta      [][]byte
	data      []byte
	rowID     []int32
	runs      []uint32
	min, max  []byte
}

// buildChunk serializes a column chunk: descriptor followed by the page
// segments in page order (data, then row-id, then rle per page).
func buildChunk(t *testing.T, algo compression.Algorithm, pages []testPage) []byte {
	t.Helper()

	compressor, err := compression.GetCompressor(algo)
	if err != nil {
		t.Fatalf("GetCompressor failed: %v", err)
	}

	descriptor := &format.ChunkDescriptor{Compressor: algo}
	var payload []byte

	for _, p := range pages {
		descriptor.PageOffsets = append(descriptor.PageOffsets, uint32(len(payload)))

		dataSeg, err := compressor.Compress(p.data)
		if err != nil {
			t.Fatalf("compressing data segment failed: %v", err)
		}
		payload = append(payload, dataSeg...)

		meta := format.PageMetadata{
			RowCount:    uint32(p.rowCount),
			DataLength:  uint32(len(dataSeg)),
			Encodings:   p.encodings,
			EncoderMeta: p.meta,
			MinValue:    p.min,
			MaxValue:    p.max,
		}

		if p.rowID != nil {
			raw := make([]byte, len(p.rowID)*4)
			for i, v := range p.rowID {
				binary.LittleEndian.PutUint32(raw[i*4:], uint32(v))
			}
			seg, err := compressor.Compress(raw)
			if err != nil {
				t.Fatalf("compressing row-id segment failed: %v", err)
			}
			meta.RowIDLength = uint32(len(seg))
			payload = append(payload, seg...)
		}

		if p.runs != nil {
			var raw []byte
			for _, r := range p.runs {
				raw = compression.AppendVarint(raw, uint64(r))
			}
			seg, err := compressor.Compress(raw)
			if err != nil {
				t.Fatalf("compressing rle segment failed: %v", err)
			}
			meta.RLELength = uint32(len(seg))
			payload = append(payload, seg...)
		}

		descriptor.Pages = append(descriptor.Pages, meta)
	}

	header, err := format.MarshalDescriptor(descriptor)
	if err != nil {
		t.Fatalf("MarshalDescriptor failed: %v", err)
	}
	return append(header, payload...)
}

// buildRegion writes chunks back to back into a temp file behind a fake file
// header, returning the file path and the matching offset table.
func buildRegion(t *testing.T, chunks ...[]byte) (string, *datastore.BlockletOffsets) {
	t.Helper()

	fileHeader := []byte("TESTFILEHEADER\x00\x00")
	var file []byte
	file = append(file, fileHeader...)

	offsets := make([]int64, 0, len(chunks))
	for _, c := range chunks {
		offsets = append(offsets, int64(len(file)))
		file = append(file, c...)
	}
	regionEnd := int64(len(file))

	// trailing footer bytes past the dimension region
	file = append(file, []byte("FOOTER")...)

	path := filepath.Join(t.TempDir(), "part_0000.bin")
	if err := os.WriteFile(path, file, 0o644); err != nil {
		t.Fatalf("writing region file failed: %v", err)
	}

	table, err := datastore.NewBlockletOffsets(offsets, regionEnd)
	if err != nil {
		t.Fatalf("NewBlockletOffsets failed: %v", err)
	}
	return path, table
}

// fixedValues builds rowCount fixed-width values where value i is filled
// with byte base+i.
func fixedValues(rowCount, width, base int) []byte {
	data := make([]byte, rowCount*width)
	for i := 0; i < rowCount; i++ {
		for j := 0; j < width; j++ {
			data[i*width+j] = byte(base + i)
		}
	}
	return data
}

// lvValues serializes values into the length-value layout of variable-width
// data segments.
func lvValues(values ...string) []byte {
	var data []byte
	for _, v := range values {
		data = binary.LittleEndian.AppendUint16(data, uint16(len(v)))
		data = append(data, v...)
	}
	return data
}

func newTestReader(t *testing.T, path string, table *datastore.BlockletOffsets, widths []int) *Reader {
	t.Helper()
	r, err := NewReader(path, table, widths, nil)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	return r
}

func TestReadRawChunkSingle(t *testing.T) {
	page := testPage{
		rowCount:  4,
		encodings: []format.Encoding{format.EncodingDictionary},
		data:      fixedValues(4, 3, 10),
		min:       []byte{10},
		max:       []byte{13},
	}
	c := buildChunk(t, compression.Snappy, []testPage{page})
	path, table := buildRegion(t, c)

	r := newTestReader(t, path, table, []int{3})
	fr := datastore.NewFileReader()
	defer func() { _ = fr.Close() }()

	raw, err := r.ReadRawChunk(fr, 0)
	if err != nil {
		t.Fatalf("ReadRawChunk failed: %v", err)
	}
	defer raw.Release()

	if raw.PageCount() != 1 {
		t.Fatalf("expected 1 page, got %d", raw.PageCount())
	}
	if raw.ByteLength() != len(c) {
		t.Errorf("expected chunk length %d, got %d", len(c), raw.ByteLength())
	}
	if raw.RowCounts()[0] != 4 {
		t.Errorf("expected 4 rows, got %d", raw.RowCounts()[0])
	}
	if !bytes.Equal(raw.MinValues()[0], []byte{10}) || !bytes.Equal(raw.MaxValues()[0], []byte{13}) {
		t.Error("min/max statistics not carried through")
	}

	decoded, err := raw.DecodePage(0)
	if err != nil {
		t.Fatalf("DecodePage failed: %v", err)
	}
	fixed, ok := decoded.(*FixedWidthPage)
	if !ok {
		t.Fatalf("expected FixedWidthPage, got %T", decoded)
	}
	if fixed.RowCount() != 4 || fixed.ValueWidth() != 3 {
		t.Errorf("unexpected page shape: rows=%d width=%d", fixed.RowCount(), fixed.ValueWidth())
	}
	for i := 0; i < 4; i++ {
		want := []byte{byte(10 + i), byte(10 + i), byte(10 + i)}
		if !bytes.Equal(fixed.ValueAt(i), want) {
			t.Errorf("row %d: expected %v, got %v", i, want, fixed.ValueAt(i))
		}
	}
}

func threeColumnRegion(t *testing.T) (string, *datastore.BlockletOffsets, []int) {
	t.Helper()
	c0 := buildChunk(t, compression.Snappy, []testPage{{
		rowCount:  4,
		encodings: []format.Encoding{format.EncodingDictionary},
		data:      fixedValues(4, 3, 0),
	}})
	c1 := buildChunk(t, compression.Snappy, []testPage{{
		rowCount:  3,
		encodings: nil, // no dictionary: variable width
		data:      lvValues("aa", "bbbb", "c"),
	}})
	c2 := buildChunk(t, compression.Snappy, []testPage{{
		rowCount:  2,
		encodings: []format.Encoding{format.EncodingDictionary},
		data:      fixedValues(2, 2, 40),
	}})
	path, table := buildRegion(t, c0, c1, c2)
	return path, table, []int{3, -1, 2}
}

func TestSingleMatchesGroupedLengths(t *testing.T) {
	path, table, widths := threeColumnRegion(t)
	r := newTestReader(t, path, table, widths)
	fr := datastore.NewFileReader()
	defer func() { _ = fr.Close() }()

	// read(h, i) length must equal read_range(h, i, i) length for every
	// column, including the last (region-end bound)
	for col := 0; col < table.ColumnCount(); col++ {
		single, err := r.ReadRawChunk(fr, col)
		if err != nil {
			t.Fatalf("ReadRawChunk(%d) failed: %v", col, err)
		}
		group, err := r.ReadRawChunksInGroup(fr, col, col)
		if err != nil {
			t.Fatalf("ReadRawChunksInGroup(%d,%d) failed: %v", col, col, err)
		}
		if len(group) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(group))
		}
		if single.ByteLength() != group[0].ByteLength() {
			t.Errorf("column %d: single length %d != grouped length %d",
				col, single.ByteLength(), group[0].ByteLength())
		}
		single.Release()
		group[0].Release()
	}
}

func TestGroupedChunksDisjointAndCovering(t *testing.T) {
	path, table, widths := threeColumnRegion(t)
	r := newTestReader(t, path, table, widths)
	fr := datastore.NewFileReader()
	defer func() { _ = fr.Close() }()

	chunks, err := r.ReadRawChunksInGroup(fr, 0, 2)
	if err != nil {
		t.Fatalf("ReadRawChunksInGroup failed: %v", err)
	}
	defer func() {
		for _, c := range chunks {
			c.Release()
		}
	}()

	// All chunks share one buffer
	for i := 1; i < len(chunks); i++ {
		if chunks[i].buf != chunks[0].buf {
			t.Error("grouped chunks do not share a buffer")
		}
	}

	// Ranges are contiguous: each chunk starts where the previous ended,
	// so they are pairwise disjoint and cover the buffer exactly
	expectedStart := 0
	for i, c := range chunks {
		if c.ByteOffset() != expectedStart {
			t.Errorf("chunk %d starts at %d, expected %d", i, c.ByteOffset(), expectedStart)
		}
		expectedStart += c.ByteLength()
	}
	if expectedStart != len(chunks[0].buf.data) {
		t.Errorf("chunks cover %d bytes of a %d byte buffer", expectedStart, len(chunks[0].buf.data))
	}

	// Each grouped chunk decodes to the same rows as a single read would
	decoded, err := chunks[1].DecodePage(0)
	if err != nil {
		t.Fatalf("DecodePage failed: %v", err)
	}
	if got := string(decoded.ValueAt(1)); got != "bbbb" {
		t.Errorf("expected bbbb, got %q", got)
	}
}

func TestGroupedReadAllOrNothing(t *testing.T) {
	c0 := buildChunk(t, compression.Snappy, []testPage{{
		rowCount:  2,
		encodings: []format.Encoding{format.EncodingDictionary},
		data:      fixedValues(2, 2, 0),
	}})
	c1 := buildChunk(t, compression.Snappy, []testPage{{
		rowCount:  2,
		encodings: []format.Encoding{format.EncodingDictionary},
		data:      fixedValues(2, 2, 8),
	}})
	c1[0] ^= 0xff // corrupt column 1's descriptor magic

	path, table := buildRegion(t, c0, c1)
	r := newTestReader(t, path, table, []int{2, 2})
	fr := datastore.NewFileReader()
	defer func() { _ = fr.Close() }()

	chunks, err := r.ReadRawChunksInGroup(fr, 0, 1)
	if err == nil {
		t.Fatal("expected error for corrupt column in group, got nil")
	}
	if chunks != nil {
		t.Error("expected no partial result")
	}

	var corrupt *format.CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError, got %v", err)
	}
	if corrupt.Column != 1 {
		t.Errorf("expected error scoped to column 1, got column %d", corrupt.Column)
	}

	// Column 0 on its own still reads fine
	raw, err := r.ReadRawChunk(fr, 0)
	if err != nil {
		t.Fatalf("ReadRawChunk(0) failed: %v", err)
	}
	raw.Release()
}

func TestSharedBufferLifetime(t *testing.T) {
	path, table, widths := threeColumnRegion(t)
	r := newTestReader(t, path, table, widths)
	fr := datastore.NewFileReader()
	defer func() { _ = fr.Close() }()

	chunks, err := r.ReadRawChunksInGroup(fr, 0, 2)
	if err != nil {
		t.Fatalf("ReadRawChunksInGroup failed: %v", err)
	}

	// Releasing some chunks must not invalidate the others
	chunks[0].Release()
	chunks[0].Release() // idempotent
	chunks[1].Release()

	if _, err := chunks[2].DecodePage(0); err != nil {
		t.Errorf("decode after sibling release failed: %v", err)
	}

	chunks[2].Release()
	if _, err := chunks[2].DecodePage(0); err == nil {
		t.Error("expected error decoding from released buffer, got nil")
	}
}

func TestReadRawChunkBadColumn(t *testing.T) {
	path, table, widths := threeColumnRegion(t)
	r := newTestReader(t, path, table, widths)
	fr := datastore.NewFileReader()
	defer func() { _ = fr.Close() }()

	if _, err := r.ReadRawChunk(fr, 3); err == nil {
		t.Error("expected error for column past table, got nil")
	}
	if _, err := r.ReadRawChunksInGroup(fr, 2, 1); err == nil {
		t.Error("expected error for inverted range, got nil")
	}
}

func TestReaderWidthTableMismatch(t *testing.T) {
	path, table, _ := threeColumnRegion(t)
	if _, err := NewReader(path, table, []int{3}, nil); err == nil {
		t.Error("expected error for short width table, got nil")
	}
}

func TestDescriptorLengthMismatchIsCorrupt(t *testing.T) {
	c := buildChunk(t, compression.Snappy, []testPage{{
		rowCount:  2,
		encodings: []format.Encoding{format.EncodingDictionary},
		data:      fixedValues(2, 2, 0),
	}})
	// extra trailing byte inside the chunk bounds breaks the
	// pages-end-at-chunk-boundary invariant
	c = append(c, 0x00)

	path, table := buildRegion(t, c)
	r := newTestReader(t, path, table, []int{2})
	fr := datastore.NewFileReader()
	defer func() { _ = fr.Close() }()

	_, err := r.ReadRawChunk(fr, 0)
	var corrupt *format.CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError, got %v", err)
	}
	if corrupt.Column != 0 || corrupt.Path != path {
		t.Errorf("error missing location context: %v", corrupt)
	}
}
