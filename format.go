package audiotag

import (
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

// Format identifies a tag container family.
type Format = types.Format

// Supported formats.
const (
	FormatUnknown = types.FormatUnknown
	FormatID3v2   = types.FormatID3v2
	FormatID3v1   = types.FormatID3v1
	FormatFLAC    = types.FormatFLAC
	FormatOgg     = types.FormatOgg
	FormatMP4     = types.FormatMP4
)

// Plugin is the contract a tag format implements. Custom plugins are added
// with WithPlugins.
type Plugin = registry.Plugin

// Signature describes how a plugin recognises its files.
type Signature = registry.Signature

// Element is one raw unit of a tag block, as listed by Dump.
type Element = registry.Element

// Decoded is what a plugin extracts from a file.
type Decoded = types.Decoded

// TagBlockLocation is the byte range of a tag block within a file.
type TagBlockLocation = types.TagBlockLocation

// Placement says where a new tag block goes in a file that has none.
type Placement = types.Placement

// Placements.
const (
	Prepend = types.Prepend
	Append  = types.Append
)

// FormatInfo describes one registered plugin.
type FormatInfo struct {
	Name       string
	Format     Format
	Extensions []string
	Writable   bool
}

// Formats lists the registered plugins in the order files are matched
// against them.
func (t *Tagger) Formats() []FormatInfo {
	plugins := t.registry.Plugins()
	out := make([]FormatInfo, 0, len(plugins))
	for _, p := range plugins {
		out = append(out, FormatInfo{
			Name:       p.Name(),
			Format:     p.Format(),
			Extensions: p.Signature().Extensions,
			Writable:   registry.Writable(p),
		})
	}
	return out
}
