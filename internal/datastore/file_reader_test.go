package datastore

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing temp file failed: %v", err)
	}
	return path
}

func TestReadByteBuffer(t *testing.T) {
	data := []byte("0123456789abcdef")
	path := writeTempFile(t, "chunk.bin", data)

	r := NewFileReader()
	defer func() { _ = r.Close() }()

	got, err := r.ReadByteBuffer(path, 4, 6)
	if err != nil {
		t.Fatalf("ReadByteBuffer failed: %v", err)
	}
	if !bytes.Equal(got, []byte("456789")) {
		t.Errorf("expected 456789, got %s", got)
	}

	// Zero-length reads return an empty buffer without touching the file
	got, err = r.ReadByteBuffer(path, 0, 0)
	if err != nil {
		t.Fatalf("zero-length read failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty buffer, got %d bytes", len(got))
	}
}

func TestReadByteBufferErrors(t *testing.T) {
	path := writeTempFile(t, "short.bin", []byte("abc"))

	r := NewFileReader()
	defer func() { _ = r.Close() }()

	if _, err := r.ReadByteBuffer(path, 0, -1); err == nil {
		t.Error("expected error for negative length")
	}
	if _, err := r.ReadByteBuffer(path, 0, 10); err == nil {
		t.Error("expected error for read past EOF")
	}
	if _, err := r.ReadByteBuffer(filepath.Join(t.TempDir(), "missing.bin"), 0, 1); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConcurrentReads(t *testing.T) {
	// 64 columns of 32 bytes each, column i filled with byte i
	const columns, width = 64, 32
	data := make([]byte, columns*width)
	for i := 0; i < columns; i++ {
		for j := 0; j < width; j++ {
			data[i*width+j] = byte(i)
		}
	}
	path := writeTempFile(t, "columns.bin", data)

	r := NewFileReader()
	defer func() { _ = r.Close() }()

	var wg sync.WaitGroup
	errs := make(chan error, columns)
	for i := 0; i < columns; i++ {
		wg.Add(1)
		go func(col int) {
			defer wg.Done()
			buf, err := r.ReadByteBuffer(path, int64(col*width), width)
			if err != nil {
				errs <- err
				return
			}
			for _, b := range buf {
				if b != byte(col) {
					t.Errorf("column %d: read byte %d", col, b)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent read failed: %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	path := writeTempFile(t, "x.bin", []byte("x"))

	r := NewFileReader()
	if _, err := r.ReadByteBuffer(path, 0, 1); err != nil {
		t.Fatalf("ReadByteBuffer failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
