// Package registry holds the tag format plugins and picks the one that
// handles a given file.
package registry

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/simonhull/audiotag/internal/types"
)

// Plugin is the interface all tag format plugins implement.
//
// Plugins are stateless after construction and safe for concurrent use.
type Plugin interface {
	// Name is a short human-readable identifier, e.g. "id3v2".
	Name() string

	// Format is the tag family the plugin handles.
	Format() types.Format

	// Signature describes how to recognise files the plugin handles.
	Signature() Signature

	// Placement says where a new tag block goes when the file has none.
	Placement() types.Placement

	// Decode extracts tags, the tag block location and audio properties
	// from the complete file contents.
	Decode(data []byte) (*types.Decoded, error)

	// Encode serialises tags into a complete tag block that replaces
	// prev.Location in the file. prev is the result of Decode on the same
	// file and may carry plugin state that must be preserved.
	Encode(tags types.TagSet, prev *types.Decoded) ([]byte, error)
}

// Signature is a declarative description of a container's identifying marks.
// Zero-valued fields are not checked.
type Signature struct {
	// Magic must appear at Offset from the start of the file.
	Magic  []byte
	Offset int

	// Sniff, if set, is a content test run alongside Magic. It matches
	// containers without a fixed magic, such as headerless MPEG streams.
	Sniff func(data []byte) bool

	// TrailerMagic must appear TrailerOffset bytes before the end of the file.
	TrailerMagic  []byte
	TrailerOffset int

	// MIME lists content types (as detected by mimetype) the plugin accepts.
	MIME []string

	// Extensions lists lower-case filename extensions including the dot.
	Extensions []string
}

func (s Signature) matchLeading(data []byte) bool {
	if len(s.Magic) > 0 && s.Offset+len(s.Magic) <= len(data) &&
		bytes.Equal(data[s.Offset:s.Offset+len(s.Magic)], s.Magic) {
		return true
	}
	return s.Sniff != nil && len(data) > 0 && s.Sniff(data)
}

func (s Signature) matchTrailing(data []byte) bool {
	if len(s.TrailerMagic) == 0 || s.TrailerOffset > len(data) || s.TrailerOffset < len(s.TrailerMagic) {
		return false
	}
	start := len(data) - s.TrailerOffset
	return bytes.Equal(data[start:start+len(s.TrailerMagic)], s.TrailerMagic)
}

func (s Signature) matchMIME(mime *mimetype.MIME) bool {
	if mime == nil {
		return false
	}
	return slices.ContainsFunc(s.MIME, mime.Is)
}

func (s Signature) matchExtension(ext string) bool {
	return ext != "" && slices.Contains(s.Extensions, ext)
}

// Registry is an immutable, ordered set of plugins.
type Registry struct {
	plugins []Plugin
}

// New builds a Registry. Plugins are consulted in the given order.
func New(plugins ...Plugin) *Registry {
	return &Registry{plugins: slices.Clone(plugins)}
}

// Plugins returns the registered plugins in order.
func (r *Registry) Plugins() []Plugin {
	return slices.Clone(r.plugins)
}

// Identify returns the plugin that handles data, or nil.
//
// Checks run in priority order: leading magic or sniffed content, trailing
// magic, content type, then the filename extension (only if filename is not
// empty).
// Within each step plugins are tried in registration order.
func (r *Registry) Identify(data []byte, filename string) Plugin {
	for _, p := range r.plugins {
		if p.Signature().matchLeading(data) {
			return p
		}
	}
	for _, p := range r.plugins {
		if p.Signature().matchTrailing(data) {
			return p
		}
	}

	if len(data) > 0 {
		mime := mimetype.Detect(data)
		for _, p := range r.plugins {
			if p.Signature().matchMIME(mime) {
				return p
			}
		}
	}

	if filename == "" {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, p := range r.plugins {
		if p.Signature().matchExtension(ext) {
			return p
		}
	}
	return nil
}

// Element is one structural unit of a tag block: an ID3v2 frame, a FLAC
// metadata block or an ID3v1 field.
type Element struct {
	ID     string
	Offset int64 // of the element header within the file or tag
	Size   int   // payload bytes
	Detail string
}

// ReadOnly is implemented by plugins that decode a format but cannot
// encode it. Their Encode fails with UnsupportedWrite.
type ReadOnly interface {
	ReadOnly() bool
}

// Writable reports whether p can encode tags.
func Writable(p Plugin) bool {
	ro, ok := p.(ReadOnly)
	return !ok || !ro.ReadOnly()
}

// Lister is implemented by plugins that can list the raw elements of a
// file's tag block, for diagnostics.
type Lister interface {
	List(data []byte) ([]Element, error)
}
