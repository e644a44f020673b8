package ogg

import (
	"bytes"
	"fmt"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
	"github.com/simonhull/audiotag/internal/vorbis"
)

var (
	vorbisIdentification = []byte("\x01vorbis")
	vorbisComment        = []byte("\x03vorbis")
)

// vorbisIdentificationSize is the fixed size of the identification header.
const vorbisIdentificationSize = 30

// parseVorbisIdentification reads the audio properties of a Vorbis
// identification header.
//
// Layout: 0x01 "vorbis" version(4) channels(1) rate(4) bitrate max(4)
// nominal(4) min(4) blocksizes(1) framing(1), all little-endian.
func parseVorbisIdentification(p packet) (*types.AudioProperties, error) {
	if len(p.Data) < vorbisIdentificationSize {
		return nil, &types.Error{
			Kind:   types.KindMalformedHeader,
			Reason: fmt.Sprintf("vorbis identification header is %d bytes, want %d", len(p.Data), vorbisIdentificationSize),
			Offset: p.Offset,
		}
	}

	c := binutil.NewCursorAt(p.Data[len(vorbisIdentification):], p.Offset+int64(len(vorbisIdentification)))
	version, _ := c.Uint32LE("vorbis version")
	if version != 0 {
		return nil, &types.Error{Kind: types.KindMalformedHeader, Reason: fmt.Sprintf("unsupported vorbis version %d", version), Offset: p.Offset}
	}
	channels, _ := c.Uint8("channels")
	rate, _ := c.Uint32LE("sample rate")
	_ = c.Skip(4, "maximum bitrate")
	nominal, _ := c.Uint32LE("nominal bitrate")

	props := &types.AudioProperties{
		Codec:        "Vorbis",
		SampleRateHz: int(rate),
		Channels:     int(channels),
		VBR:          true,
	}
	if n := int32(nominal); n > 0 {
		props.BitrateKbps = int(n) / 1000
	}
	return props, nil
}

// parseVorbisComment decodes the comment header. The trailing framing bit
// after the comment list is ignored.
func parseVorbisComment(p packet) (*vorbis.Block, error) {
	if !bytes.HasPrefix(p.Data, vorbisComment) {
		return nil, &types.Error{Kind: types.KindMalformedHeader, Reason: "second packet is not a vorbis comment header", Offset: p.Offset}
	}
	n := len(vorbisComment)
	return vorbis.Decode(p.Data[n:], p.Offset+int64(n))
}
