// Package encoding resolves self-describing page encodings to concrete
// decoders. It is the extension seam for new codec generations: the legacy
// dictionary/inverted-index/RLE pipeline is fixed, but anything registered
// here can be decoded without touching the pipeline.
package encoding

import (
	"fmt"
	"sync"

	"github.com/Daemonyz/carbondata/internal/format"
)

// UnsupportedError reports an encoding identifier or combination this
// decoder version does not understand. It is fatal for the page; the file
// needs a newer reader, not a retry.
type UnsupportedError struct {
	Encodings []format.Encoding
	Msg       string
}

func (e *UnsupportedError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("unsupported encoding: %s (%v)", e.Msg, e.Encodings)
	}
	return fmt.Sprintf("unsupported encoding: %v", e.Encodings)
}

// Result is the output of a meta-driven decoder: fully materialized value
// bytes. Offsets is nil for fixed-width values; for variable-width values it
// holds len(values)+1 boundaries into Data.
type Result struct {
	Data    []byte
	Offsets []int32
}

// RowCount returns the number of values in the result given the fixed value
// width, or from the offset table for variable-width results.
func (r *Result) RowCount(valueWidth int) int {
	if r.Offsets != nil {
		return len(r.Offsets) - 1
	}
	if valueWidth <= 0 {
		return 0
	}
	return len(r.Data) / valueWidth
}

// Decoder decodes one page's raw bytes into materialized values.
type Decoder interface {
	Decode(data []byte, offset, length int) (*Result, error)
}

// DecoderFactory builds a decoder from the page's encoder metadata blobs.
type DecoderFactory func(meta [][]byte) (Decoder, error)

// Registry maps self-describing encoding identifiers to decoder factories.
// Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[format.Encoding]DecoderFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[format.Encoding]DecoderFactory)}
}

// DefaultRegistry creates a registry with the built-in codecs registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(format.EncodingDirectCompress, NewDirectCompressDecoder)
	r.Register(format.EncodingDirectString, NewDirectStringDecoder)
	return r
}

// Register installs a decoder factory for an encoding identifier, replacing
// any previous registration.
func (r *Registry) Register(enc format.Encoding, factory DecoderFactory) {
	r.mu.Lock()
	r.factories[enc] = factory
	r.mu.Unlock()
}

// CreateDecoder resolves the page's encoding list to a decoder. Only a
// single self-describing encoding is valid here; anything else is the legacy
// pipeline's business and is rejected.
func (r *Registry) CreateDecoder(encodings []format.Encoding, meta [][]byte) (Decoder, error) {
	if len(encodings) != 1 {
		return nil, &UnsupportedError{Encodings: encodings, Msg: "expected exactly one self-describing encoding"}
	}

	r.mu.RLock()
	factory, ok := r.factories[encodings[0]]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedError{Encodings: encodings, Msg: "no decoder registered"}
	}

	return factory(meta)
}
