// Package ogg implements a read-only tag plugin for Ogg Vorbis and Ogg
// Opus streams, whose tags live in the second header packet as a Vorbis
// comment block.
package ogg

import (
	"bytes"
	"fmt"
	"time"

	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
	"github.com/simonhull/audiotag/internal/vorbis"
)

// Plugin reads Ogg Vorbis and Ogg Opus files. Writing fails with
// UnsupportedWrite: rewriting the comment packet means repaginating the
// stream, which this plugin does not do.
type Plugin struct{}

// New creates the Ogg plugin.
func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Name() string               { return "ogg" }
func (p *Plugin) Format() types.Format       { return types.FormatOgg }
func (p *Plugin) Placement() types.Placement { return types.Prepend }

// ReadOnly marks the plugin as unable to encode.
func (p *Plugin) ReadOnly() bool { return true }

func (p *Plugin) Signature() registry.Signature {
	return registry.Signature{
		Magic:      []byte(capturePattern),
		MIME:       []string{"audio/ogg", "audio/opus"},
		Extensions: []string{".ogg", ".oga", ".opus"},
	}
}

// Decode reads the identification and comment headers of the first
// logical stream and the duration from its last page. No tag block
// location is reported since the tags cannot be rewritten in place.
func (p *Plugin) Decode(data []byte) (*types.Decoded, error) {
	packets, pages, err := headerPackets(data, 2)
	if err != nil {
		return nil, err
	}
	ident, comment := packets[0], packets[1]

	var audio *types.AudioProperties
	var block *vorbis.Block
	var preSkip int64
	switch {
	case bytes.HasPrefix(ident.Data, vorbisIdentification):
		if audio, err = parseVorbisIdentification(ident); err == nil {
			block, err = parseVorbisComment(comment)
		}
	case bytes.HasPrefix(ident.Data, opusHead):
		if audio, preSkip, err = parseOpusHead(ident); err == nil {
			block, err = parseOpusTags(comment)
		}
	default:
		return nil, &types.Error{Kind: types.KindUnsupportedFormat, Reason: fmt.Sprintf("unknown Ogg codec %q", codecMagic(ident.Data))}
	}
	if err != nil {
		return nil, err
	}

	serial := pages[0].Serial
	if granule, ok := lastGranule(data, serial); ok && audio.SampleRateHz > 0 {
		if samples := granule - preSkip; samples > 0 {
			audio.Duration = time.Duration(float64(samples) / float64(audio.SampleRateHz) * float64(time.Second))
		}
	}
	// Opus carries no nominal bitrate; average over the audio pages.
	if audio.BitrateKbps == 0 && audio.Duration > 0 {
		last := pages[len(pages)-1]
		audioBytes := int64(len(data)) - (last.dataOffset() + int64(len(last.Data)))
		audio.BitrateKbps = int(float64(audioBytes*8) / audio.Duration.Seconds() / 1000)
	}

	return &types.Decoded{Tags: block.Tags, Audio: audio}, nil
}

// Encode always fails: Ogg tags are read only.
func (p *Plugin) Encode(types.TagSet, *types.Decoded) ([]byte, error) {
	return nil, types.Errorf(types.KindUnsupportedWrite, "writing Ogg comment headers is not supported")
}

// List returns the pages that carry the header packets.
func (p *Plugin) List(data []byte) ([]registry.Element, error) {
	packets, pages, err := headerPackets(data, 2)
	if err != nil {
		return nil, err
	}
	out := make([]registry.Element, 0, len(pages))
	for _, pg := range pages {
		out = append(out, registry.Element{
			ID:     "page",
			Offset: pg.Offset,
			Size:   len(pg.Data),
			Detail: fmt.Sprintf("serial %08x, sequence %d, granule %d", pg.Serial, pg.Sequence, pg.Granule),
		})
	}
	if block, err := commentBlock(packets); err == nil {
		out = append(out, registry.Element{
			ID:     "comments",
			Offset: packets[1].Offset,
			Size:   len(packets[1].Data),
			Detail: fmt.Sprintf("vendor %q, %d keys", block.Vendor, block.Tags.Len()),
		})
	}
	return out, nil
}

// commentBlock decodes the comment packet for either codec.
func commentBlock(packets []packet) (*vorbis.Block, error) {
	if bytes.HasPrefix(packets[0].Data, opusHead) {
		return parseOpusTags(packets[1])
	}
	return parseVorbisComment(packets[1])
}

// codecMagic returns the printable start of an identification packet.
func codecMagic(b []byte) string {
	return string(b[:min(len(b), 8)])
}
