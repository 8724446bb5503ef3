package compression

import (
	"testing"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 255, 300, 16383, 16384, 1 << 21, 1 << 35, 1<<64 - 1}

	for _, v := range values {
		buf := AppendVarint(nil, v)
		got, n := ReadVarint(buf)
		if n != len(buf) {
			t.Errorf("value %d: expected %d bytes read, got %d", v, len(buf), n)
		}
		if got != v {
			t.Errorf("round trip mismatch: expected %d, got %d", v, got)
		}
	}
}

func TestVarintSequence(t *testing.T) {
	values := []uint64{5, 1000, 0, 42, 1 << 30}

	var buf []byte
	for _, v := range values {
		buf = AppendVarint(buf, v)
	}

	offset := 0
	for i, want := range values {
		got, n := ReadVarint(buf[offset:])
		if n <= 0 {
			t.Fatalf("value %d: read failed at offset %d", i, offset)
		}
		if got != want {
			t.Errorf("value %d: expected %d, got %d", i, want, got)
		}
		offset += n
	}

	if offset != len(buf) {
		t.Errorf("expected %d bytes consumed, got %d", len(buf), offset)
	}
}

func TestVarintTruncated(t *testing.T) {
	buf := AppendVarint(nil, 1<<40)
	_, n := ReadVarint(buf[:len(buf)-1])
	if n != 0 {
		t.Errorf("expected read failure on truncated varint, got n=%d", n)
	}
}
