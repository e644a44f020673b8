package mp3

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/simonhull/audiotag/internal/types"
)

// TextEncoding is the ID3v2 text encoding byte.
type TextEncoding byte

const (
	// EncodingLatin1 is ISO-8859-1.
	EncodingLatin1 TextEncoding = 0
	// EncodingUTF16 is UTF-16 with a byte order mark.
	EncodingUTF16 TextEncoding = 1
	// EncodingUTF16BE is UTF-16 big-endian without BOM (ID3v2.4 only).
	EncodingUTF16BE TextEncoding = 2
	// EncodingUTF8 is UTF-8 (ID3v2.4 only).
	EncodingUTF8 TextEncoding = 3
)

// String returns the configuration name of the encoding.
func (e TextEncoding) String() string {
	switch e {
	case EncodingLatin1:
		return "latin1"
	case EncodingUTF16:
		return "utf16"
	case EncodingUTF16BE:
		return "utf16be"
	case EncodingUTF8:
		return "utf8"
	default:
		return "unknown"
	}
}

// ParseTextEncoding maps a configuration name to an encoding.
func ParseTextEncoding(name string) (TextEncoding, bool) {
	switch strings.ToLower(name) {
	case "latin1", "iso-8859-1":
		return EncodingLatin1, true
	case "utf16", "utf-16":
		return EncodingUTF16, true
	case "utf16be", "utf-16be":
		return EncodingUTF16BE, true
	case "utf8", "utf-8":
		return EncodingUTF8, true
	}
	return 0, false
}

// codec returns the x/text encoding for e, or nil for UTF-8.
func (e TextEncoding) codec() encoding.Encoding {
	switch e {
	case EncodingLatin1:
		return charmap.ISO8859_1
	case EncodingUTF16:
		// The BOM decides byte order when present; writers emit FF FE.
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	default:
		return nil
	}
}

// terminator returns the string terminator for e.
func (e TextEncoding) terminator() []byte {
	if e == EncodingUTF16 || e == EncodingUTF16BE {
		return []byte{0, 0}
	}
	return []byte{0}
}

// validFor reports whether e may be written into a tag of the given major version.
func (e TextEncoding) validFor(major byte) bool {
	switch e {
	case EncodingLatin1, EncodingUTF16:
		return true
	case EncodingUTF16BE, EncodingUTF8:
		return major == 4
	default:
		return false
	}
}

// decodeText decodes one string. UTF-16 without a BOM is read big-endian.
func decodeText(data []byte, enc TextEncoding) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if enc == EncodingUTF16 && !hasBOM(data) {
		enc = EncodingUTF16BE
	}
	c := enc.codec()
	if c == nil {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError)), nil
	}
	if enc == EncodingUTF16 || enc == EncodingUTF16BE {
		data = data[:len(data)&^1]
	}
	out, err := c.NewDecoder().Bytes(data)
	if err != nil {
		return "", types.Errorf(types.KindMalformedEntry, "undecodable %s text: %v", enc, err)
	}
	return string(out), nil
}

func hasBOM(data []byte) bool {
	return len(data) >= 2 && (data[0] == 0xFF && data[1] == 0xFE || data[0] == 0xFE && data[1] == 0xFF)
}

// encodeText encodes one string without a terminator.
func encodeText(s string, enc TextEncoding) ([]byte, error) {
	c := enc.codec()
	if c == nil {
		return []byte(s), nil
	}
	out, err := c.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, types.Errorf(types.KindMalformedEntry, "cannot encode %q as %s", s, enc)
	}
	return out, nil
}

// representable reports whether every value can be written as Latin-1.
func representable(values []string) bool {
	enc := charmap.ISO8859_1.NewEncoder()
	for _, v := range values {
		if _, err := enc.String(v); err != nil {
			return false
		}
	}
	return true
}

// indexTerminator finds the first terminator for enc. UTF-16 terminators
// are only matched on even offsets.
func indexTerminator(data []byte, enc TextEncoding) int {
	if enc != EncodingUTF16 && enc != EncodingUTF16BE {
		return bytes.IndexByte(data, 0)
	}
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return i
		}
	}
	return -1
}

// splitText splits a terminator-separated list and decodes each part.
//
// A single trailing terminator ends the last string rather than starting
// an empty one.
func splitText(data []byte, enc TextEncoding) ([]string, error) {
	term := len(enc.terminator())
	var values []string
	for {
		i := indexTerminator(data, enc)
		if i < 0 {
			s, err := decodeText(data, enc)
			if err != nil {
				return nil, err
			}
			return append(values, s), nil
		}
		s, err := decodeText(data[:i], enc)
		if err != nil {
			return nil, err
		}
		values = append(values, s)
		data = data[i+term:]
		if len(data) == 0 {
			return values, nil
		}
	}
}

// joinText encodes values separated by terminators, with no trailing
// terminator.
func joinText(values []string, enc TextEncoding) ([]byte, error) {
	var buf []byte
	for i, v := range values {
		if i > 0 {
			buf = append(buf, enc.terminator()...)
		}
		b, err := encodeText(v, enc)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	return buf, nil
}

// splitDescription splits "[description]\0[rest]" as used by TXXX, COMM and USLT.
func splitDescription(data []byte, enc TextEncoding) (string, []byte, error) {
	i := indexTerminator(data, enc)
	if i < 0 {
		desc, err := decodeText(data, enc)
		return desc, nil, err
	}
	desc, err := decodeText(data[:i], enc)
	if err != nil {
		return "", nil, err
	}
	rest := data[i+len(enc.terminator()):]
	// Some writers put a stray NUL after the description's terminator,
	// leaving the value's BOM at an odd offset.
	if enc == EncodingUTF16 && len(rest) >= 3 && rest[0] == 0 && hasBOM(rest[1:]) {
		rest = rest[1:]
	}
	return desc, rest, nil
}
