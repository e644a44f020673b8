package flac

import (
	"fmt"

	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/vorbis"
)

var blockNames = map[byte]string{
	0: "STREAMINFO",
	1: "PADDING",
	2: "APPLICATION",
	3: "SEEKTABLE",
	4: "VORBIS_COMMENT",
	5: "CUESHEET",
	6: "PICTURE",
}

// List returns the metadata blocks with their file offsets.
func (p *Plugin) List(data []byte) ([]registry.Element, error) {
	var out []registry.Element
	_, err := walkBlocks(data, func(off int64, b block) error {
		name, ok := blockNames[b.Type]
		if !ok {
			name = fmt.Sprintf("RESERVED(%d)", b.Type)
		}
		out = append(out, registry.Element{
			ID:     name,
			Offset: off,
			Size:   len(b.Data),
			Detail: blockDetail(b, off),
		})
		return nil
	})
	return out, err
}

func blockDetail(b block, off int64) string {
	switch b.Type {
	case blockTypeStreamInfo:
		if a, err := parseStreamInfo(b.Data, off+blockHeaderSize); err == nil {
			return a.String() + ", " + a.Duration.String()
		}
	case blockTypeVorbisComment:
		if cb, err := vorbis.Decode(b.Data, off+blockHeaderSize); err == nil {
			return fmt.Sprintf("vendor %q, %d keys", cb.Vendor, cb.Tags.Len())
		}
	}
	return ""
}
