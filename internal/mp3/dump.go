package mp3

import (
	"fmt"
	"strings"

	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

// List returns the frames of the ID3v2 tag in file order, then the fields
// of an ID3v1 trailer if the file has one. Frame offsets are relative to
// the tag start, after tag-level unsynchronisation is undone.
func (p *ID3v2) List(data []byte) ([]registry.Element, error) {
	var out []registry.Element
	if hasID3v2(data) {
		_, _, err := walkID3v2(data, func(h header, off int64, f frame) error {
			out = append(out, registry.Element{
				ID:     f.ID,
				Offset: off,
				Size:   len(f.Data),
				Detail: frameDetail(f, h.Major),
			})
			return nil
		})
		if err != nil {
			return out, err
		}
	}
	trailer, _ := NewID3v1().List(data)
	return append(out, trailer...), nil
}

// frameDetail summarises a frame the way a read would see it.
func frameDetail(f frame, major byte) string {
	var tags types.TagSet
	keep, err := decodeFrame(f, major, &tags, nil)
	switch {
	case err != nil:
		return "undecodable: " + err.Error()
	case keep && f.opaque(major):
		return fmt.Sprintf("opaque (flags 0x%04x), preserved", f.Flags)
	case keep:
		return "preserved"
	}
	parts := make([]string, 0, tags.Len())
	for key, values := range tags.All() {
		parts = append(parts, key+"="+strings.Join(values, "; "))
	}
	return strings.Join(parts, ", ")
}

// id3v1Fields is the fixed trailer layout.
var id3v1Fields = []struct {
	id   string
	off  int
	size int
}{
	{"TAG", 0, 3},
	{"TITLE", 3, 30},
	{"ARTIST", 33, 30},
	{"ALBUM", 63, 30},
	{"YEAR", 93, 4},
	{"COMMENT", 97, 30},
	{"GENRE", 127, 1},
}

// List returns the fields of the ID3v1 trailer with file offsets.
func (p *ID3v1) List(data []byte) ([]registry.Element, error) {
	if !hasID3v1(data) {
		return nil, nil
	}
	start := len(data) - id3v1Size
	tag := data[start:]

	out := make([]registry.Element, 0, len(id3v1Fields))
	for _, fl := range id3v1Fields {
		raw := tag[fl.off : fl.off+fl.size]
		detail := latin1Field(raw)
		if fl.id == "GENRE" {
			detail = fmt.Sprintf("%d %s", raw[0], genreName(int(raw[0])))
		}
		out = append(out, registry.Element{
			ID:     fl.id,
			Offset: int64(start + fl.off),
			Size:   fl.size,
			Detail: detail,
		})
	}
	return out, nil
}
