package format

import (
	"fmt"
	"strings"
)

// CorruptError reports bytes that cannot be interpreted as valid chunk data:
// offset/length arithmetic mismatches, descriptor parse failures,
// decompression failures, and index/RLE segment length mismatches. It is
// never retried at this layer; the bytes are what they are.
type CorruptError struct {
	Path   string
	Column int   // -1 when not attributable to a column
	Page   int   // -1 when not attributable to a page
	Offset int64 // byte range within the file, when known
	Length int
	Msg    string
	Err    error
}

// NewCorruptError creates a CorruptError with column and page unset.
func NewCorruptError(msg string) *CorruptError {
	return &CorruptError{Column: -1, Page: -1, Msg: msg}
}

func (e *CorruptError) Error() string {
	var b strings.Builder
	b.WriteString("corrupt chunk format: ")
	b.WriteString(e.Msg)

	if e.Path != "" {
		fmt.Fprintf(&b, " path=%s", e.Path)
	}
	if e.Column >= 0 {
		fmt.Fprintf(&b, " column=%d", e.Column)
	}
	if e.Page >= 0 {
		fmt.Fprintf(&b, " page=%d", e.Page)
	}
	if e.Length > 0 {
		fmt.Fprintf(&b, " range=[%d,%d)", e.Offset, e.Offset+int64(e.Length))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}
