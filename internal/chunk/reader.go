// Package chunk implements the read path for dimension column chunks: offset
// navigation, grouped positional reads, eager descriptor parsing, and the
// per-page decode pipeline.
package chunk

import (
	"fmt"

	"github.com/Daemonyz/carbondata/internal/datastore"
	"github.com/Daemonyz/carbondata/internal/encoding"
	"github.com/Daemonyz/carbondata/internal/format"
	"github.com/Daemonyz/carbondata/internal/logging"
)

// Reader reads and decodes the dimension column chunks of one blocklet.
// It holds no mutable state after construction: reads and decodes may run
// concurrently across columns and pages, serialized only inside the
// FileReader for the duration of each positional read.
type Reader struct {
	filePath    string
	offsets     *datastore.BlockletOffsets
	valueWidths []int // declared byte width per column; <= 0 means variable

	// chunk lengths derived from the offset table at construction; the
	// grouped read cross-checks parsed descriptors against this table
	chunkLengths []int64

	registry *encoding.Registry
	logger   *logging.Logger
}

// NewReader creates a chunk reader for one blocklet region. valueWidths must
// carry one entry per column in the offset table.
func NewReader(filePath string, offsets *datastore.BlockletOffsets, valueWidths []int, logger *logging.Logger) (*Reader, error) {
	return NewReaderWithRegistry(filePath, offsets, valueWidths, encoding.DefaultRegistry(), logger)
}

// NewReaderWithRegistry creates a chunk reader with a custom encoding
// registry, for callers that install additional self-describing codecs.
func NewReaderWithRegistry(filePath string, offsets *datastore.BlockletOffsets, valueWidths []int,
	registry *encoding.Registry, logger *logging.Logger) (*Reader, error) {

	if len(valueWidths) != offsets.ColumnCount() {
		return nil, fmt.Errorf("value width table has %d entries for %d columns",
			len(valueWidths), offsets.ColumnCount())
	}
	if logger == nil {
		logger = logging.Global()
	}

	chunkLengths := make([]int64, offsets.ColumnCount())
	for i := range chunkLengths {
		chunkLengths[i] = offsets.ChunkLength(i)
	}

	return &Reader{
		filePath:     filePath,
		offsets:      offsets,
		valueWidths:  append([]int(nil), valueWidths...),
		chunkLengths: chunkLengths,
		registry:     registry,
		logger:       logger.With("component", "chunk_reader"),
	}, nil
}

// ReadRawChunk reads one column's chunk with a single positional read and
// parses its descriptor eagerly, so row counts and min/max statistics are
// available without further I/O.
func (r *Reader) ReadRawChunk(fr datastore.FileReader, column int) (*RawColumnChunk, error) {
	if err := r.offsets.CheckRange(column, column); err != nil {
		return nil, err
	}

	offset := r.offsets.Offset(column)
	length := int(r.chunkLengths[column])

	buf, err := fr.ReadByteBuffer(r.filePath, offset, length)
	if err != nil {
		return nil, err
	}

	descriptor, err := r.parseDescriptor(buf, column, offset)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("read raw chunk",
		"column", column, "offset", offset, "length", length, "pages", descriptor.PageCount())

	shared := newSharedBuffer(buf, 1)
	return newRawColumnChunk(r, column, shared, 0, length, descriptor), nil
}

// ReadRawChunksInGroup reads the chunks of columns first through last
// inclusive with one positional read and slices the buffer into per-column
// chunks without copying. The result is all-or-nothing: a malformed column
// aborts the whole group.
func (r *Reader) ReadRawChunksInGroup(fr datastore.FileReader, first, last int) ([]*RawColumnChunk, error) {
	if err := r.offsets.CheckRange(first, last); err != nil {
		return nil, err
	}

	startOffset := r.offsets.Offset(first)
	totalLength := int(r.offsets.RangeLength(first, last))

	buf, err := fr.ReadByteBuffer(r.filePath, startOffset, totalLength)
	if err != nil {
		return nil, err
	}

	count := last - first + 1
	shared := newSharedBuffer(buf, count)
	chunks := make([]*RawColumnChunk, 0, count)

	runningLength := 0
	for column := first; column <= last; column++ {
		currentLength := int(r.chunkLengths[column])
		if runningLength+currentLength > len(buf) {
			e := format.NewCorruptError(
				fmt.Sprintf("chunk length table places column past the grouped read of %d bytes", len(buf)))
			e.Path, e.Column = r.filePath, column
			return nil, e
		}

		descriptor, err := r.parseDescriptor(buf[runningLength:runningLength+currentLength],
			column, startOffset+int64(runningLength))
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, newRawColumnChunk(r, column, shared, runningLength, currentLength, descriptor))
		runningLength += currentLength
	}

	// Per-column lengths telescope to the range length; anything else means
	// the offset table and the read disagree
	if runningLength != len(buf) {
		e := format.NewCorruptError(
			fmt.Sprintf("grouped read of %d bytes not covered by column chunks totaling %d", len(buf), runningLength))
		e.Path = r.filePath
		return nil, e
	}

	r.logger.Debug("read raw chunk group",
		"first_column", first, "last_column", last, "offset", startOffset, "length", totalLength)

	return chunks, nil
}

// parseDescriptor parses and validates one column's descriptor, decorating
// any corruption with the column and byte range for diagnosis.
func (r *Reader) parseDescriptor(data []byte, column int, fileOffset int64) (*format.ChunkDescriptor, error) {
	descriptor, err := format.UnmarshalDescriptor(data)
	if err != nil {
		return nil, r.decorate(err, column, -1, fileOffset, len(data))
	}
	if err := descriptor.Validate(len(data)); err != nil {
		return nil, r.decorate(err, column, -1, fileOffset, len(data))
	}
	return descriptor, nil
}

// decorate fills in location context on corrupt-format errors.
func (r *Reader) decorate(err error, column, page int, offset int64, length int) error {
	if e, ok := err.(*format.CorruptError); ok {
		if e.Path == "" {
			e.Path = r.filePath
		}
		if e.Column < 0 {
			e.Column = column
		}
		if e.Page < 0 {
			e.Page = page
		}
		if e.Length == 0 {
			e.Offset, e.Length = offset, length
		}
	}
	return err
}
