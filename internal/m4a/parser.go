// Package m4a implements a read-only tag plugin for MP4 audio (M4A, M4B),
// whose tags live in the iTunes-style moov/udta/meta/ilst atom.
package m4a

import (
	"strings"

	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

// Plugin reads MP4 audio files. Writing fails with UnsupportedWrite:
// growing moov means patching the chunk offset tables, which this plugin
// does not do.
type Plugin struct{}

// New creates the MP4 plugin.
func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Name() string               { return "mp4" }
func (p *Plugin) Format() types.Format       { return types.FormatMP4 }
func (p *Plugin) Placement() types.Placement { return types.Append }

// ReadOnly marks the plugin as unable to encode.
func (p *Plugin) ReadOnly() bool { return true }

func (p *Plugin) Signature() registry.Signature {
	return registry.Signature{
		Magic:      []byte("ftyp"),
		Offset:     4,
		MIME:       []string{"audio/mp4", "audio/x-m4a"},
		Extensions: []string{".m4a", ".m4b", ".mp4"},
	}
}

// Decode reads the ilst tags and the first audio track's properties. A
// file without a moov atom decodes to no tags and no audio.
func (p *Plugin) Decode(data []byte) (*types.Decoded, error) {
	top, moov, ok, err := topLevel(data)
	if err != nil || !ok {
		return &types.Decoded{}, err
	}

	var mdatSize int64
	for _, a := range top {
		if a.Type == "mdat" {
			mdatSize += int64(len(a.Data))
		}
	}
	audio, err := parseAudio(moov, mdatSize)
	if err != nil {
		return nil, err
	}

	d := &types.Decoded{Audio: audio}
	ilst, ok, err := descend([]atom{moov}, "moov", "udta", "meta", "ilst")
	if err != nil {
		return nil, err
	}
	if ok {
		if d.Tags, err = parseIlst(ilst); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// topLevel reads the top-level atoms and finds moov.
func topLevel(data []byte) ([]atom, atom, bool, error) {
	top, err := readAtoms(data, 0)
	if err != nil {
		return nil, atom{}, false, err
	}
	if len(top) == 0 || top[0].Type != "ftyp" {
		return nil, atom{}, false, &types.Error{Kind: types.KindMalformedHeader, Reason: "file does not start with an ftyp atom"}
	}
	moov, ok := find(top, "moov")
	return top, moov, ok, nil
}

// Encode always fails: MP4 tags are read only.
func (p *Plugin) Encode(types.TagSet, *types.Decoded) ([]byte, error) {
	return nil, types.Errorf(types.KindUnsupportedWrite, "writing MP4 ilst atoms is not supported")
}

// List returns the ilst items with their decoded values.
func (p *Plugin) List(data []byte) ([]registry.Element, error) {
	_, moov, ok, err := topLevel(data)
	if err != nil || !ok {
		return nil, err
	}
	ilst, ok, err := descend([]atom{moov}, "moov", "udta", "meta", "ilst")
	if err != nil || !ok {
		return nil, err
	}
	items, err := ilst.children(0)
	if err != nil {
		return nil, err
	}

	out := make([]registry.Element, 0, len(items))
	for _, item := range items {
		detail := "skipped"
		if key, values, err := decodeItem(item); err != nil {
			detail = "undecodable: " + err.Error()
		} else if key != "" {
			detail = key + "=" + strings.Join(values, "; ")
		}
		out = append(out, registry.Element{
			ID:     printable(item.Type),
			Offset: item.Offset,
			Size:   len(item.Data),
			Detail: detail,
		})
	}
	return out, nil
}
