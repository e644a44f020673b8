// Package flac implements the tag plugin for native FLAC streams, whose
// tags live in a Vorbis comment metadata block.
package flac

import (
	"bytes"
	"fmt"
	"time"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
	"github.com/simonhull/audiotag/internal/vorbis"
)

// Metadata block types
const (
	blockTypeStreamInfo    = 0
	blockTypePadding       = 1
	blockTypeVorbisComment = 4
	blockTypeInvalid       = 127
)

const (
	magic           = "fLaC"
	blockHeaderSize = 4
	streamInfoSize  = 34
	maxBlockLength  = 1<<24 - 1
)

// block is a raw metadata block.
type block struct {
	Type byte
	Data []byte
}

// state is what Encode needs from Decode: every block in file order and
// the position and vendor of the comment block.
type state struct {
	Blocks       []block
	CommentIndex int // -1 when the file has no comment block
	Vendor       string
}

// Options controls how the metadata region is rewritten.
type Options struct {
	// Vendor string for files that have no comment block yet.
	Vendor string
	// Padding block size used when the metadata grows past its old region.
	Padding int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{Vendor: "audiotag", Padding: 4096}
}

// Plugin handles FLAC files.
type Plugin struct {
	opts Options
}

// New creates the FLAC plugin.
func New(opts Options) *Plugin {
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	if opts.Padding > maxBlockLength {
		opts.Padding = maxBlockLength
	}
	return &Plugin{opts: opts}
}

func (p *Plugin) Name() string               { return "flac" }
func (p *Plugin) Format() types.Format       { return types.FormatFLAC }
func (p *Plugin) Placement() types.Placement { return types.Prepend }

func (p *Plugin) Signature() registry.Signature {
	return registry.Signature{
		Magic:      []byte(magic),
		MIME:       []string{"audio/flac"},
		Extensions: []string{".flac"},
	}
}

// Decode parses the metadata blocks. The tag location covers the whole
// metadata region, from the end of the magic to the first audio frame.
func (p *Plugin) Decode(data []byte) (*types.Decoded, error) {
	st := &state{CommentIndex: -1}
	var tags types.TagSet
	var audio *types.AudioProperties

	end, err := walkBlocks(data, func(off int64, b block) error {
		var err error
		switch {
		case b.Type == blockTypeStreamInfo && len(st.Blocks) == 0:
			audio, err = parseStreamInfo(b.Data, off+blockHeaderSize)
		case b.Type == blockTypeVorbisComment && st.CommentIndex < 0:
			var cb *vorbis.Block
			if cb, err = vorbis.Decode(b.Data, off+blockHeaderSize); err == nil {
				tags = cb.Tags
				st.Vendor = cb.Vendor
				st.CommentIndex = len(st.Blocks)
			}
		}
		st.Blocks = append(st.Blocks, b)
		return err
	})
	if err != nil {
		return nil, err
	}

	loc := &types.TagBlockLocation{Offset: int64(len(magic)), Length: end - int64(len(magic))}
	if audio != nil && audio.Duration > 0 {
		streamBytes := int64(len(data)) - loc.End()
		audio.BitrateKbps = int(float64(streamBytes*8) / audio.Duration.Seconds() / 1000)
	}

	return &types.Decoded{Tags: tags, Location: loc, State: st, Audio: audio}, nil
}

// walkBlocks validates the metadata blocks and calls fn for each in order
// with the offset of its header. It returns the offset of the first byte
// after the metadata.
func walkBlocks(data []byte, fn func(off int64, b block) error) (int64, error) {
	if !bytes.HasPrefix(data, []byte(magic)) {
		return 0, &types.Error{Kind: types.KindMalformedHeader, Reason: "invalid FLAC magic bytes"}
	}

	c := binutil.NewCursorAt(data[len(magic):], int64(len(magic)))
	for i := 0; ; i++ {
		start := c.Offset()
		header, err := c.Uint32BE("metadata block header")
		if err != nil {
			return 0, &types.Error{Kind: types.KindTruncatedFrame, Reason: "metadata ends without a last block", Offset: start}
		}
		isLast := header>>31 == 1
		blockType := byte((header >> 24) & 0x7F)
		length := int(header & 0x00FFFFFF)

		if blockType == blockTypeInvalid {
			return 0, &types.Error{Kind: types.KindMalformedHeader, Reason: "invalid metadata block type 127", Offset: start}
		}
		if i == 0 && blockType != blockTypeStreamInfo {
			return 0, &types.Error{Kind: types.KindMalformedHeader, Reason: "first metadata block is not STREAMINFO", Offset: start}
		}
		if length > c.Remaining() {
			return 0, &types.Error{
				Kind:   types.KindTruncatedFrame,
				Reason: fmt.Sprintf("metadata block type %d declares %d bytes but only %d remain", blockType, length, c.Remaining()),
				Offset: start,
			}
		}
		payload, _ := c.Bytes(length, "metadata block")

		if err := fn(start, block{Type: blockType, Data: payload}); err != nil {
			return 0, err
		}
		if isLast {
			return c.Offset(), nil
		}
	}
}

// parseStreamInfo extracts audio properties from the STREAMINFO block.
func parseStreamInfo(data []byte, offset int64) (*types.AudioProperties, error) {
	if len(data) != streamInfoSize {
		return nil, &types.Error{
			Kind:   types.KindMalformedHeader,
			Reason: fmt.Sprintf("invalid STREAMINFO size: %d (expected %d)", len(data), streamInfoSize),
			Offset: offset,
		}
	}

	// Bytes 0-9: block and frame size bounds
	// Bytes 10-17: sample rate (20 bits), channels (3 bits), bits per sample (5 bits), total samples (36 bits)
	c := binutil.NewCursorAt(data, offset)
	_ = c.Skip(10, "STREAMINFO block sizes")
	packed, err := binutil.ReadBE[uint64](c, "STREAMINFO packed fields")
	if err != nil {
		return nil, err
	}

	sampleRate := (packed >> 44) & 0xFFFFF       // Top 20 bits
	channels := ((packed >> 41) & 0x7) + 1       // Next 3 bits, stored as (channels - 1)
	bitsPerSample := ((packed >> 36) & 0x1F) + 1 // Next 5 bits, stored as (bits - 1)
	totalSamples := packed & 0xFFFFFFFFF         // Bottom 36 bits

	props := &types.AudioProperties{
		Codec:        "FLAC",
		SampleRateHz: int(sampleRate),
		Channels:     int(channels),
		BitDepth:     int(bitsPerSample),
	}
	if sampleRate > 0 {
		durationSeconds := float64(totalSamples) / float64(sampleRate)
		props.Duration = time.Duration(durationSeconds * float64(time.Second))
	}
	return props, nil
}

// Encode rebuilds the metadata region with a new comment block.
//
// STREAMINFO stays first and other blocks keep their order and bytes.
// Old padding is dropped and replaced by a single padding block that keeps
// the region at its old size when the new blocks fit.
func (p *Plugin) Encode(tags types.TagSet, prev *types.Decoded) ([]byte, error) {
	var st *state
	if prev != nil {
		st, _ = prev.State.(*state)
	}
	if st == nil || prev.Location == nil {
		return nil, &types.Error{Kind: types.KindMalformedHeader, Reason: "no FLAC metadata to rewrite"}
	}

	vendor := st.Vendor
	if st.CommentIndex < 0 {
		vendor = p.opts.Vendor
	}
	comment, err := vorbis.Encode(vendor, tags)
	if err != nil {
		return nil, err
	}
	if len(comment) > maxBlockLength {
		return nil, types.Errorf(types.KindMalformedEntry, "comment block of %d bytes exceeds the metadata block limit", len(comment))
	}

	var blocks []block
	for i, b := range st.Blocks {
		switch {
		case b.Type == blockTypePadding:
			continue
		case i == st.CommentIndex:
			blocks = append(blocks, block{Type: blockTypeVorbisComment, Data: comment})
		default:
			blocks = append(blocks, b)
		}
		if i == 0 && st.CommentIndex < 0 {
			blocks = append(blocks, block{Type: blockTypeVorbisComment, Data: comment})
		}
	}

	total := 0
	for _, b := range blocks {
		total += blockHeaderSize + len(b.Data)
	}
	if padding := p.padding(int64(total), prev.Location.Length); padding >= 0 {
		blocks = append(blocks, block{Type: blockTypePadding, Data: make([]byte, padding)})
	}

	w := binutil.NewWriter(int(max(prev.Location.Length, int64(total))) + p.opts.Padding + blockHeaderSize)
	for i, b := range blocks {
		t := b.Type
		if i == len(blocks)-1 {
			t |= 0x80
		}
		w.PutUint8(t)
		w.PutUint24BE(uint32(len(b.Data)))
		w.PutBytes(b.Data)
	}
	return w.Bytes(), nil
}

// padding returns the padding block length, or -1 for no padding block.
func (p *Plugin) padding(total, prevLen int64) int64 {
	switch {
	case total == prevLen:
		return -1
	case total+blockHeaderSize <= prevLen && prevLen-total-blockHeaderSize <= maxBlockLength:
		return prevLen - total - blockHeaderSize
	case p.opts.Padding > 0:
		return int64(p.opts.Padding)
	default:
		return -1
	}
}
