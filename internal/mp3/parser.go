// Package mp3 implements the ID3v2 and ID3v1 tag plugins for MPEG audio
// files, plus MPEG Layer III stream properties.
package mp3

import (
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

// UnknownKeyPolicy says what ID3v2 encoding does with keys that have no
// dedicated frame.
type UnknownKeyPolicy int

const (
	// KeepUnknownKeys stores them in TXXX frames described by the key.
	KeepUnknownKeys UnknownKeyPolicy = iota
	// DropUnknownKeys leaves them out of the tag.
	DropUnknownKeys
)

// ID3v2Options controls how new ID3v2 tags are written.
type ID3v2Options struct {
	// Version is the major version (3 or 4) for files without a tag.
	// Existing tags keep their version.
	Version byte
	// Encoding for text frames. UTF-8 and UTF-16BE fall back to UTF-16 in
	// v2.3 tags; Latin-1 falls back to UTF-16 for text it cannot hold.
	Encoding    TextEncoding
	UnknownKeys UnknownKeyPolicy
	// Padding appended when the tag grows past its old block.
	Padding int
}

// DefaultID3v2Options returns the options used when none are configured.
func DefaultID3v2Options() ID3v2Options {
	return ID3v2Options{
		Version:  4,
		Encoding: EncodingUTF16,
		Padding:  1024,
	}
}

// ID3v2 is the plugin for ID3v2.3 and ID3v2.4 tags. It also handles bare
// MPEG streams, which get a fresh tag prepended on write. An ID3v1 trailer
// on such a stream is read as the starting tags and left in place.
type ID3v2 struct {
	opts ID3v2Options
}

// NewID3v2 creates the ID3v2 plugin.
func NewID3v2(opts ID3v2Options) *ID3v2 {
	if opts.Version != 3 && opts.Version != 4 {
		opts.Version = 4
	}
	return &ID3v2{opts: opts}
}

func (p *ID3v2) Name() string               { return "id3v2" }
func (p *ID3v2) Format() types.Format       { return types.FormatID3v2 }
func (p *ID3v2) Placement() types.Placement { return types.Prepend }

func (p *ID3v2) Signature() registry.Signature {
	return registry.Signature{
		Magic:      []byte("ID3"),
		Sniff:      isMPEGStream,
		MIME:       []string{"audio/mpeg"},
		Extensions: []string{".mp3", ".mp2", ".mpga"},
	}
}

// Decode parses the tag at the start of data, if any, and the stream
// properties of the audio that follows.
func (p *ID3v2) Decode(data []byte) (*types.Decoded, error) {
	end := len(data)
	if hasID3v1(data) {
		end -= id3v1Size
	}

	if !hasID3v2(data) {
		trailer, _ := parseID3v1(data)
		return &types.Decoded{Tags: trailer, Audio: parseAudio(data, 0, end)}, nil
	}

	tags, loc, state, err := parseID3v2(data)
	if err != nil {
		return nil, err
	}
	return &types.Decoded{
		Tags:     tags,
		Location: loc,
		State:    state,
		Audio:    parseAudio(data, int(min(loc.End(), int64(end))), end),
	}, nil
}

// Encode builds a tag block for tags that replaces prev.Location.
func (p *ID3v2) Encode(tags types.TagSet, prev *types.Decoded) ([]byte, error) {
	var state *id3v2State
	var prevLen int64
	if prev != nil {
		state, _ = prev.State.(*id3v2State)
		if prev.Location != nil {
			prevLen = prev.Location.Length
		}
	}
	return encodeID3v2(tags, state, prevLen, p.opts)
}

// ID3v1 is the plugin for the 128-byte ID3v1 trailer.
type ID3v1 struct{}

// NewID3v1 creates the ID3v1 plugin.
func NewID3v1() *ID3v1 {
	return &ID3v1{}
}

func (p *ID3v1) Name() string               { return "id3v1" }
func (p *ID3v1) Format() types.Format       { return types.FormatID3v1 }
func (p *ID3v1) Placement() types.Placement { return types.Append }

func (p *ID3v1) Signature() registry.Signature {
	return registry.Signature{
		TrailerMagic:  []byte("TAG"),
		TrailerOffset: id3v1Size,
	}
}

// Decode parses the trailer and the stream properties of the audio before it.
func (p *ID3v1) Decode(data []byte) (*types.Decoded, error) {
	tags, loc := parseID3v1(data)
	end := len(data)
	if loc != nil {
		end = int(loc.Offset)
	}
	return &types.Decoded{
		Tags:     tags,
		Location: loc,
		Audio:    parseAudio(data, 0, end),
	}, nil
}

// Encode builds a 128-byte trailer. Tags the trailer cannot hold fail
// with UnsupportedWrite rather than being dropped.
func (p *ID3v1) Encode(tags types.TagSet, _ *types.Decoded) ([]byte, error) {
	if err := checkID3v1(tags); err != nil {
		return nil, err
	}
	return encodeID3v1(tags), nil
}
