package m4a

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// itemKeys maps ilst text items to tag keys. The names match the ID3v2
// and Vorbis comment keys for the same fields. In MP4 the © of "©nam" is
// the single byte 0xA9.
var itemKeys = map[string]string{
	"\xa9nam": "TITLE",
	"\xa9ART": "ARTIST",
	"aART":    "ALBUMARTIST",
	"\xa9alb": "ALBUM",
	"\xa9gen": "GENRE",
	"\xa9cmt": "COMMENT",
	"\xa9wrt": "COMPOSER",
	"\xa9day": "DATE",
	"\xa9lyr": "LYRICS",
	"\xa9grp": "CONTENTGROUP",
	"\xa9too": "ENCODING",
	"\xa9wrk": "WORK",
	"\xa9mvn": "MOVEMENTNAME",
	"cprt":    "COPYRIGHT",
	"desc":    "DESCRIPTION",
	"soar":    "ARTISTSORT",
	"soaa":    "ALBUMARTISTSORT",
	"soal":    "ALBUMSORT",
	"sonm":    "TITLESORT",
	"soco":    "COMPOSERSORT",
}

// Integer items.
var intKeys = map[string]string{
	"tmpo": "BPM",
	"cpil": "COMPILATION",
	"pgap": "GAPLESS",
}

// Well-known data atom types.
const (
	dataImplicit = 0
	dataUTF8     = 1
	dataUTF16    = 2
	dataInt      = 21
	dataUint     = 22
)

// dataValue is one data atom: a type indicator and the raw value.
type dataValue struct {
	Type  uint32
	Value []byte
}

// parseIlst decodes the items of an ilst atom. Items without a key (cover
// art, unknown binary items) are skipped.
func parseIlst(ilst atom) (types.TagSet, error) {
	var tags types.TagSet
	items, err := ilst.children(0)
	if err != nil {
		return tags, err
	}
	for _, item := range items {
		key, values, err := decodeItem(item)
		if err != nil {
			return tags, err
		}
		if key != "" {
			tags.Add(key, values...)
		}
	}
	return tags, nil
}

// decodeItem returns the key and values of one ilst item.
func decodeItem(item atom) (string, []string, error) {
	children, err := item.children(0)
	if err != nil {
		return "", nil, err
	}
	var data []dataValue
	var name string
	for _, c := range children {
		switch c.Type {
		case "data":
			if len(c.Data) < 8 {
				return "", nil, &types.Error{Kind: types.KindMalformedEntry, Reason: fmt.Sprintf("data atom of %s is %d bytes", printable(item.Type), len(c.Data)), Offset: c.Offset}
			}
			// Type indicator: a version byte, then a 24-bit type. A locale follows.
			typ := uint32(c.Data[1])<<16 | uint32(c.Data[2])<<8 | uint32(c.Data[3])
			data = append(data, dataValue{Type: typ, Value: c.Data[8:]})
		case "name":
			if len(c.Data) >= 4 {
				name = string(c.Data[4:])
			}
		}
	}

	var key string
	switch {
	case item.Type == "----":
		if name == "" {
			return "", nil, nil
		}
		key = types.CanonicalKey(name)
	case item.Type == "trkn":
		return "TRACKNUMBER", pairs(data), nil
	case item.Type == "disk":
		return "DISCNUMBER", pairs(data), nil
	case intKeys[item.Type] != "":
		return intKeys[item.Type], integers(data), nil
	default:
		if key = itemKeys[item.Type]; key == "" {
			return "", nil, nil
		}
	}

	var values []string
	for _, d := range data {
		s, ok, err := text(d)
		if err != nil {
			return "", nil, &types.Error{Kind: types.KindMalformedEntry, Reason: fmt.Sprintf("%s: %v", printable(item.Type), err), Offset: item.Offset}
		}
		if ok {
			values = append(values, s)
		}
	}
	if len(values) == 0 {
		return "", nil, nil
	}
	return key, values, nil
}

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// text decodes a textual or numeric data value. ok is false for binary
// values such as JPEG or PNG cover art.
func text(d dataValue) (string, bool, error) {
	switch d.Type {
	case dataUTF8:
		return strings.ToValidUTF8(string(d.Value), string(utf8.RuneError)), true, nil
	case dataUTF16:
		out, err := utf16be.NewDecoder().Bytes(d.Value)
		if err != nil {
			return "", false, err
		}
		return string(out), true, nil
	case dataInt, dataUint:
		n, ok := integer(d)
		return strconv.FormatInt(n, 10), ok, nil
	}
	return "", false, nil
}

// integer decodes a big-endian integer of 1, 2, 4 or 8 bytes.
func integer(d dataValue) (int64, bool) {
	b := d.Value
	switch len(b) {
	case 1, 2, 4, 8:
	default:
		return 0, false
	}
	var u uint64
	for _, x := range b {
		u = u<<8 | uint64(x)
	}
	if d.Type == dataInt || d.Type == dataImplicit {
		shift := 64 - 8*len(b)
		return int64(u<<shift) >> shift, true
	}
	return int64(u), true
}

func integers(data []dataValue) []string {
	var out []string
	for _, d := range data {
		if n, ok := integer(d); ok {
			out = append(out, strconv.FormatInt(n, 10))
		}
	}
	return out
}

// pairs decodes trkn and disk values: reserved(2) number(2) total(2), as
// "number" or "number/total".
func pairs(data []dataValue) []string {
	var out []string
	for _, d := range data {
		c := binutil.NewChainCursor(binutil.NewCursor(d.Value))
		_ = binutil.ReadChained[uint16](c, "reserved")
		n := binutil.ReadChained[uint16](c, "number")
		total := binutil.ReadChained[uint16](c, "total")
		if c.Error() != nil || n == 0 {
			continue
		}
		if total > 0 {
			out = append(out, fmt.Sprintf("%d/%d", n, total))
		} else {
			out = append(out, strconv.Itoa(int(n)))
		}
	}
	return out
}

// printable renders an atom type with 0xA9 as ©.
func printable(typ string) string {
	return strings.ReplaceAll(typ, "\xa9", "©")
}
