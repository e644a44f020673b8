// Package vorbis implements the Vorbis comment block: a vendor string
// followed by UTF-8 "KEY=value" entries, each with a little-endian
// length prefix.
//
// FLAC stores its tags in this block. The layout is the same one Ogg
// Vorbis uses, minus the trailing framing bit.
package vorbis

import (
	"fmt"
	"math"
	"strings"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// Block is a decoded comment block.
type Block struct {
	Vendor string
	Tags   types.TagSet
}

// ParseComment splits a single "KEY=value" comment on the first '='.
//
// Field names are case-insensitive; the key is returned upper-cased. A
// field name that Encode would refuse is rejected here too, so a block
// that reads can always be written back.
func ParseComment(comment string) (key, value string, err error) {
	key, value, ok := strings.Cut(comment, "=")
	if !ok {
		return "", "", types.Errorf(types.KindMalformedEntry, "missing '=' in comment %q", comment)
	}
	key = types.CanonicalKey(key)
	if err := ValidKey(key); err != nil {
		return "", "", err
	}
	return key, value, nil
}

// Decode parses a comment block. base is the block's offset in the file,
// used in error messages.
//
// Layout:
//
//	[vendor length u32le][vendor][count u32le]
//	count × [length u32le]["KEY=value"]
func Decode(data []byte, base int64) (*Block, error) {
	c := binutil.NewCursorAt(data, base)

	vendor, err := readString(c, "vendor string")
	if err != nil {
		return nil, err
	}
	count, err := c.Uint32LE("comment count")
	if err != nil {
		return nil, truncated(err)
	}

	b := &Block{Vendor: vendor}
	for i := range count {
		comment, err := readString(c, fmt.Sprintf("comment %d", i))
		if err != nil {
			return nil, err
		}
		key, value, err := ParseComment(comment)
		if err != nil {
			return nil, err
		}
		b.Tags.Add(key, value)
	}
	return b, nil
}

// readString reads a u32le length-prefixed string.
func readString(c *binutil.Cursor, what string) (string, error) {
	n, err := c.Uint32LE(what + " length")
	if err != nil {
		return "", truncated(err)
	}
	if int64(n) > int64(c.Remaining()) {
		return "", &types.Error{
			Kind:   types.KindTruncatedFrame,
			Reason: fmt.Sprintf("%s declares %d bytes but only %d remain", what, n, c.Remaining()),
			Offset: c.Offset(),
		}
	}
	return c.String(int(n), what)
}

// truncated turns a short read into TruncatedFrame.
func truncated(err error) error {
	if types.KindOf(err) != types.KindOutOfBounds {
		return err
	}
	e := *err.(*types.Error)
	e.Kind = types.KindTruncatedFrame
	return &e
}

// Encode serialises a comment block. Keys are written in TagSet order,
// one entry per value.
func Encode(vendor string, tags types.TagSet) ([]byte, error) {
	w := binutil.NewWriter(256)
	if err := putString(w, vendor); err != nil {
		return nil, err
	}

	count := 0
	for _, values := range tags.All() {
		count += len(values)
	}
	if count > math.MaxUint32 {
		return nil, types.Errorf(types.KindMalformedEntry, "too many comments: %d", count)
	}
	w.PutUint32LE(uint32(count))

	for key, values := range tags.All() {
		if err := ValidKey(key); err != nil {
			return nil, err
		}
		for _, v := range values {
			if err := putString(w, key+"="+v); err != nil {
				return nil, err
			}
		}
	}
	return w.Bytes(), nil
}

func putString(w *binutil.Writer, s string) error {
	if uint64(len(s)) > math.MaxUint32 {
		return types.Errorf(types.KindMalformedEntry, "comment of %d bytes is too long", len(s))
	}
	w.PutUint32LE(uint32(len(s)))
	w.PutString(s)
	return nil
}

// ValidKey checks that key is a legal field name: printable ASCII
// 0x20 through 0x7D, excluding '='.
func ValidKey(key string) error {
	if key == "" {
		return types.Errorf(types.KindMalformedEntry, "empty field name")
	}
	for i := 0; i < len(key); i++ {
		if c := key[i]; c < 0x20 || c > 0x7D || c == '=' {
			return types.Errorf(types.KindMalformedEntry, "invalid character %q in field name %q", c, key)
		}
	}
	return nil
}
