package mp3

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/simonhull/audiotag/internal/types"
)

// id3v1Size is the fixed size of an ID3v1 trailer.
const id3v1Size = 128

// hasID3v1 reports whether data ends with an ID3v1 trailer.
func hasID3v1(data []byte) bool {
	return len(data) >= id3v1Size && bytes.Equal(data[len(data)-id3v1Size:len(data)-id3v1Size+3], []byte("TAG"))
}

// parseID3v1 decodes the 128-byte trailer at the end of data.
//
// Layout: "TAG" title(30) artist(30) album(30) year(4) comment(30) genre(1).
// ID3v1.1 stores a track number in the last comment byte after a NUL.
func parseID3v1(data []byte) (types.TagSet, *types.TagBlockLocation) {
	var tags types.TagSet
	if !hasID3v1(data) {
		return tags, nil
	}
	start := len(data) - id3v1Size
	tag := data[start:]

	field := func(key string, b []byte) {
		if v := latin1Field(b); v != "" {
			tags.Set(key, v)
		}
	}
	field("TITLE", tag[3:33])
	field("ARTIST", tag[33:63])
	field("ALBUM", tag[63:93])
	field("DATE", tag[93:97])

	comment := tag[97:127]
	if comment[28] == 0 && comment[29] != 0 {
		field("COMMENT", comment[:28])
		tags.Set("TRACKNUMBER", strconv.Itoa(int(comment[29])))
	} else {
		field("COMMENT", comment)
	}

	if name := genreName(int(tag[127])); name != "" {
		tags.Set("GENRE", name)
	}

	return tags, &types.TagBlockLocation{Offset: int64(start), Length: id3v1Size}
}

// latin1Field decodes a fixed-width Latin-1 field padded with NULs or spaces.
func latin1Field(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	s, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return strings.TrimRight(string(s), " ")
}

// putLatin1 writes s into a fixed-width field, truncating and replacing
// characters Latin-1 cannot represent.
func putLatin1(dst []byte, s string) {
	i := 0
	for _, r := range s {
		if i >= len(dst) {
			return
		}
		b, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			b = '?'
		}
		dst[i] = b
		i++
	}
}

// encodeID3v1 builds a 128-byte ID3v1.1 trailer. Keys without an ID3v1
// field are dropped.
func encodeID3v1(tags types.TagSet) []byte {
	tag := make([]byte, id3v1Size)
	copy(tag, "TAG")
	putLatin1(tag[3:33], tags.GetFirst("TITLE"))
	putLatin1(tag[33:63], tags.GetFirst("ARTIST"))
	putLatin1(tag[63:93], tags.GetFirst("ALBUM"))
	putLatin1(tag[93:97], tags.GetFirst("DATE"))

	if track := leadingInt(tags.GetFirst("TRACKNUMBER")); track > 0 && track < 256 {
		putLatin1(tag[97:125], tags.GetFirst("COMMENT"))
		tag[126] = byte(track)
	} else {
		putLatin1(tag[97:127], tags.GetFirst("COMMENT"))
	}

	tag[127] = noGenre
	if idx, ok := genreIndex(tags.GetFirst("GENRE")); ok {
		tag[127] = byte(idx)
	}
	return tag
}

// id3v1Keys are the keys an ID3v1.1 trailer has a field for.
var id3v1Keys = map[string]bool{
	"TITLE": true, "ARTIST": true, "ALBUM": true, "DATE": true,
	"COMMENT": true, "TRACKNUMBER": true, "GENRE": true,
}

// checkID3v1 reports the first tag encodeID3v1 would lose. Text longer
// than its field is truncated, which the format allows.
func checkID3v1(tags types.TagSet) error {
	for key, values := range tags.All() {
		if !id3v1Keys[key] {
			return types.Errorf(types.KindUnsupportedWrite, "id3v1 has no field for %s", key)
		}
		if len(values) > 1 {
			return types.Errorf(types.KindUnsupportedWrite, "id3v1 holds one %s value, got %d", key, len(values))
		}
		v := values[0]
		switch key {
		case "TRACKNUMBER":
			if n := leadingInt(v); n < 1 || n > 255 {
				return types.Errorf(types.KindUnsupportedWrite, "id3v1 track number %q out of range", v)
			}
		case "GENRE":
			if _, ok := genreIndex(v); !ok {
				return types.Errorf(types.KindUnsupportedWrite, "id3v1 has no genre %q", v)
			}
		default:
			if !representable(values) {
				return types.Errorf(types.KindUnsupportedWrite, "id3v1 %s %q is not Latin-1", key, v)
			}
		}
	}
	return nil
}

// leadingInt parses the number before an optional "/total" suffix.
func leadingInt(s string) int {
	n, _, _ := strings.Cut(s, "/")
	v, err := strconv.Atoi(strings.TrimSpace(n))
	if err != nil {
		return 0
	}
	return v
}
