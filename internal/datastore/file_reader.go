package datastore

import (
	"fmt"
	"os"
	"sync"
)

// FileReader issues positional reads against data files. All reads through
// one FileReader are mutually exclusive: the handle is a shared mutable
// resource, so the read syscall itself is serialized while parsing and
// decoding of returned buffers stay fully parallel.
//
// No retry or timeout policy lives here; callers own both.
type FileReader interface {
	// ReadByteBuffer reads exactly length bytes starting at offset.
	ReadByteBuffer(path string, offset int64, length int) ([]byte, error)

	// Close releases all cached file handles.
	Close() error
}

// fileReader caches one open *os.File per path. The mutex is scoped strictly
// around handle lookup and the ReadAt call.
type fileReader struct {
	mu    sync.Mutex
	files map[string]*os.File
}

// NewFileReader creates a FileReader with an empty handle cache.
func NewFileReader() FileReader {
	return &fileReader{files: make(map[string]*os.File)}
}

func (r *fileReader) ReadByteBuffer(path string, offset int64, length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("negative read length %d for %s", length, path)
	}

	// Allocate outside the lock; only the I/O needs exclusion
	buf := make([]byte, length)
	if length == 0 {
		return buf, nil
	}

	r.mu.Lock()
	file, err := r.file(path)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	_, err = file.ReadAt(buf, offset)
	r.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("read %d bytes at %d from %s: %w", length, offset, path, err)
	}
	return buf, nil
}

// file returns the cached handle for path, opening it on first use.
// Caller must hold r.mu.
func (r *fileReader) file(path string) (*os.File, error) {
	if f, ok := r.files[path]; ok {
		return f, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r.files[path] = f
	return f, nil
}

func (r *fileReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for path, f := range r.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", path, err)
		}
		delete(r.files, path)
	}
	return firstErr
}
