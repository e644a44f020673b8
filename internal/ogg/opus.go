package ogg

import (
	"bytes"
	"fmt"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
	"github.com/simonhull/audiotag/internal/vorbis"
)

var (
	opusHead = []byte("OpusHead")
	opusTags = []byte("OpusTags")
)

const (
	opusHeadSize = 19
	// opusRate is the decoder output rate; granule positions count it.
	opusRate = 48000
)

// parseOpusHead reads the identification header. It returns the audio
// properties and the pre-skip, the number of samples to drop from the
// start of the decoded stream.
//
// Layout: "OpusHead" version(1) channels(1) pre-skip(2) input rate(4)
// output gain(2) mapping family(1), all little-endian.
func parseOpusHead(p packet) (*types.AudioProperties, int64, error) {
	if len(p.Data) < opusHeadSize {
		return nil, 0, &types.Error{
			Kind:   types.KindMalformedHeader,
			Reason: fmt.Sprintf("OpusHead is %d bytes, want at least %d", len(p.Data), opusHeadSize),
			Offset: p.Offset,
		}
	}

	c := binutil.NewCursorAt(p.Data[len(opusHead):], p.Offset+int64(len(opusHead)))
	version, _ := c.Uint8("opus version")
	// The upper nibble is the major version; only 0 is defined.
	if version>>4 != 0 {
		return nil, 0, &types.Error{Kind: types.KindMalformedHeader, Reason: fmt.Sprintf("unsupported opus version %d", version), Offset: p.Offset}
	}
	channels, _ := c.Uint8("channels")
	preSkip, _ := binutil.ReadLE[uint16](c, "pre-skip")

	return &types.AudioProperties{
		Codec:        "Opus",
		SampleRateHz: opusRate,
		Channels:     int(channels),
		VBR:          true,
	}, int64(preSkip), nil
}

// parseOpusTags decodes the comment header. Bytes after the comment list
// are padding or private data and are ignored.
func parseOpusTags(p packet) (*vorbis.Block, error) {
	if !bytes.HasPrefix(p.Data, opusTags) {
		return nil, &types.Error{Kind: types.KindMalformedHeader, Reason: "second packet is not OpusTags", Offset: p.Offset}
	}
	n := len(opusTags)
	return vorbis.Decode(p.Data[n:], p.Offset+int64(n))
}
