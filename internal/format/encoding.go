package format

import "fmt"

// Encoding identifies one transform applied to a dimension page. The values
// are persisted in the chunk descriptor, so they must never be reordered.
//
// Dictionary, InvertedIndex and RLE are legacy pipeline flags combined by
// presence checks. DirectCompress and DirectString are self-describing
// codecs: a page carrying exactly one of them is decoded through the
// encoding registry instead of the legacy pipeline.
type Encoding uint8

const (
	EncodingDictionary     Encoding = 0
	EncodingInvertedIndex  Encoding = 1
	EncodingRLE            Encoding = 2
	EncodingDirectCompress Encoding = 3
	EncodingDirectString   Encoding = 4
)

func (e Encoding) String() string {
	switch e {
	case EncodingDictionary:
		return "DICTIONARY"
	case EncodingInvertedIndex:
		return "INVERTED_INDEX"
	case EncodingRLE:
		return "RLE"
	case EncodingDirectCompress:
		return "DIRECT_COMPRESS"
	case EncodingDirectString:
		return "DIRECT_STRING"
	default:
		return fmt.Sprintf("ENCODING(%d)", uint8(e))
	}
}

// HasEncoding reports whether enc appears in the encoding list.
func HasEncoding(encodings []Encoding, enc Encoding) bool {
	for _, e := range encodings {
		if e == enc {
			return true
		}
	}
	return false
}

// IsSelfDescribing reports whether the encoding list selects the meta-driven
// decode path: exactly one encoding, and that encoding is fully parameterized
// by its encoder metadata blob.
func IsSelfDescribing(encodings []Encoding) bool {
	if len(encodings) != 1 {
		return false
	}
	switch encodings[0] {
	case EncodingDirectCompress, EncodingDirectString:
		return true
	}
	return false
}
