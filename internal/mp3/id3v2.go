package mp3

import (
	"bytes"
	"fmt"
	"strings"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

const (
	headerSize = 10
	footerSize = 10

	flagUnsync   = 0x80
	flagExtended = 0x40
	flagFooter   = 0x10
)

// Frame-level flags that make a payload opaque to us.
const (
	v23FrameCompressed = 0x0080
	v23FrameEncrypted  = 0x0040
	v23FrameGrouped    = 0x0020

	v24FrameGrouped    = 0x0040
	v24FrameCompressed = 0x0008
	v24FrameEncrypted  = 0x0004
	v24FrameUnsync     = 0x0002
	v24FrameDataLength = 0x0001
)

// header represents an ID3v2 tag header.
type header struct {
	Major    byte // 3 or 4
	Revision byte
	Flags    byte
	Size     uint32 // tag size excluding the header and footer
}

// frame is a raw ID3v2 frame kept for re-emission.
type frame struct {
	ID    string
	Flags uint16
	Data  []byte
}

// id3v2State carries what a decode must hand back to encode: the version
// of the existing tag and the frames that did not map to tag keys.
type id3v2State struct {
	Major  byte
	Frames []frame
	// Languages holds the language code of each COMM or USLT key.
	Languages map[string]string
}

// hasID3v2 reports whether data starts with an ID3v2 tag.
func hasID3v2(data []byte) bool {
	return bytes.HasPrefix(data, []byte("ID3"))
}

// parseHeader parses the 10-byte tag header.
func parseHeader(c *binutil.Cursor) (header, error) {
	cc := binutil.NewChainCursor(c)
	magic := cc.Bytes(3, "ID3v2 magic")
	h := header{
		Major:    binutil.ReadChained[uint8](cc, "ID3v2 major version"),
		Revision: binutil.ReadChained[uint8](cc, "ID3v2 revision"),
		Flags:    binutil.ReadChained[uint8](cc, "ID3v2 flags"),
	}
	if err := cc.Error(); err != nil {
		return header{}, err
	}
	if string(magic) != "ID3" {
		return header{}, &types.Error{Kind: types.KindMalformedHeader, Reason: "missing ID3 magic"}
	}
	if h.Major != 3 && h.Major != 4 {
		return header{}, types.Errorf(types.KindMalformedHeader, "unsupported ID3v2 version: 2.%d", h.Major)
	}
	size, err := c.SyncSafe(4, "ID3v2 tag size")
	if err != nil {
		return header{}, err
	}
	h.Size = size
	return h, nil
}

// parseID3v2 decodes an ID3v2 tag at the start of data.
func parseID3v2(data []byte) (types.TagSet, *types.TagBlockLocation, *id3v2State, error) {
	var tags types.TagSet
	state := &id3v2State{Languages: make(map[string]string)}

	h, loc, err := walkID3v2(data, func(h header, _ int64, f frame) error {
		keep, err := decodeFrame(f, h.Major, &tags, state.Languages)
		if err != nil {
			return err
		}
		if keep {
			state.Frames = append(state.Frames, f)
		}
		return nil
	})
	if err != nil {
		return types.TagSet{}, nil, nil, err
	}
	state.Major = h.Major
	return tags, loc, state, nil
}

// walkID3v2 parses the tag header and calls fn for each frame in order.
// off is the frame's offset within the tag after tag-level unsynchronisation
// has been reversed.
func walkID3v2(data []byte, fn func(h header, off int64, f frame) error) (header, *types.TagBlockLocation, error) {
	c := binutil.NewCursor(data)
	h, err := parseHeader(c)
	if err != nil {
		return h, nil, err
	}

	if int64(h.Size) > int64(c.Remaining()) {
		return h, nil, &types.Error{
			Kind:   types.KindTruncatedFrame,
			Reason: fmt.Sprintf("tag declares %d bytes but only %d remain", h.Size, c.Remaining()),
			Offset: headerSize,
		}
	}
	body, _ := c.Bytes(int(h.Size), "ID3v2 tag body")

	loc := &types.TagBlockLocation{Offset: 0, Length: headerSize + int64(h.Size)}
	if h.Major == 4 && h.Flags&flagFooter != 0 {
		loc.Length += footerSize
	}

	if h.Major == 3 && h.Flags&flagUnsync != 0 {
		body = resync(body)
	}

	bc := binutil.NewCursorAt(body, headerSize)
	if h.Flags&flagExtended != 0 {
		if err := skipExtendedHeader(bc, h.Major); err != nil {
			return h, nil, err
		}
	}

	for bc.Remaining() > 0 {
		first, _ := bc.Peek(1, "frame ID")
		if first[0] == 0 {
			break // padding
		}
		off := bc.Offset()
		f, err := readFrame(bc, h.Major)
		if err != nil {
			return h, nil, err
		}
		if err := fn(h, off, f); err != nil {
			return h, nil, err
		}
	}
	return h, loc, nil
}

// skipExtendedHeader skips the optional extended header.
func skipExtendedHeader(c *binutil.Cursor, major byte) error {
	if major == 4 {
		// v2.4: synchsafe size including the size field itself
		size, err := c.SyncSafe(4, "extended header size")
		if err != nil {
			return err
		}
		if size < 4 {
			return types.Errorf(types.KindMalformedHeader, "extended header size %d", size)
		}
		return c.Skip(int(size)-4, "extended header")
	}
	// v2.3: plain size excluding the size field
	size, err := c.Uint32BE("extended header size")
	if err != nil {
		return err
	}
	if int64(size) > int64(c.Remaining()) {
		return &types.Error{Kind: types.KindTruncatedFrame, Reason: "extended header exceeds tag", Offset: c.Offset()}
	}
	return c.Skip(int(size), "extended header")
}

// readFrame reads one frame header and payload.
func readFrame(c *binutil.Cursor, major byte) (frame, error) {
	start := c.Offset()
	if c.Remaining() < headerSize {
		return frame{}, &types.Error{
			Kind:   types.KindTruncatedFrame,
			Reason: fmt.Sprintf("frame header needs %d bytes, %d remain", headerSize, c.Remaining()),
			Offset: start,
		}
	}

	id, _ := c.String(4, "frame ID")
	if !validFrameID(id) {
		return frame{}, &types.Error{
			Kind:   types.KindMalformedHeader,
			Reason: fmt.Sprintf("invalid frame ID %q", id),
			Offset: start,
		}
	}

	var size uint32
	var err error
	if major == 4 {
		size, err = c.SyncSafe(4, "frame "+id+" size")
	} else {
		size, err = c.Uint32BE("frame " + id + " size")
	}
	if err != nil {
		return frame{}, err
	}
	flags, err := c.Uint16BE("frame " + id + " flags")
	if err != nil {
		return frame{}, err
	}

	if int64(size) > int64(c.Remaining()) {
		return frame{}, &types.Error{
			Kind:   types.KindTruncatedFrame,
			Reason: fmt.Sprintf("frame %s declares %d bytes but only %d remain", id, size, c.Remaining()),
			Offset: start,
		}
	}
	data, _ := c.Bytes(int(size), "frame "+id+" data")

	return frame{ID: id, Flags: flags, Data: data}, nil
}

// opaque reports whether a frame's payload cannot be interpreted.
func (f frame) opaque(major byte) bool {
	if major == 4 {
		return f.Flags&(v24FrameCompressed|v24FrameEncrypted|v24FrameGrouped) != 0
	}
	return f.Flags&(v23FrameCompressed|v23FrameEncrypted|v23FrameGrouped) != 0
}

// decodeFrame adds a frame's values to tags. It returns keep=true when the
// frame carries no tag values and must be preserved as-is. When langs is
// not nil it receives the language of COMM and USLT frames.
func decodeFrame(f frame, major byte, tags *types.TagSet, langs map[string]string) (keep bool, err error) {
	if f.opaque(major) {
		return true, nil
	}

	payload := f.Data
	if major == 4 && f.Flags&v24FrameUnsync != 0 {
		payload = resync(payload)
	}
	if major == 4 && f.Flags&v24FrameDataLength != 0 {
		if len(payload) < 4 {
			return false, types.Errorf(types.KindTruncatedFrame, "frame %s data length indicator", f.ID)
		}
		payload = payload[4:]
	}

	switch {
	case f.ID == "TXXX":
		return decodeUserText(f.ID, payload, tags)
	case f.ID == "COMM":
		return decodeDescribed(f.ID, keyComment, payload, tags, langs)
	case f.ID == "USLT":
		return decodeDescribed(f.ID, keyLyrics, payload, tags, langs)
	case f.ID[0] == 'T':
		return decodeTextFrame(f.ID, keyForTextFrame(f.ID, major), payload, tags)
	}
	return true, nil
}

func frameEncoding(id string, payload []byte) (TextEncoding, error) {
	enc := TextEncoding(payload[0])
	if enc > EncodingUTF8 {
		return 0, types.Errorf(types.KindMalformedEntry, "frame %s has unknown text encoding %d", id, enc)
	}
	return enc, nil
}

// decodeTextFrame handles T*** frames: [encoding][text{\0text}]
func decodeTextFrame(id, key string, payload []byte, tags *types.TagSet) (bool, error) {
	if len(payload) < 1 {
		return true, nil
	}
	enc, err := frameEncoding(id, payload)
	if err != nil {
		return false, err
	}
	values, err := splitText(payload[1:], enc)
	if err != nil {
		return false, err
	}
	if key == "GENRE" {
		for i, v := range values {
			values[i] = resolveGenre(v)
		}
	}
	tags.Add(key, values...)
	return false, nil
}

// decodeUserText handles TXXX frames: [encoding][description\0][text{\0text}]
func decodeUserText(id string, payload []byte, tags *types.TagSet) (bool, error) {
	if len(payload) < 1 {
		return true, nil
	}
	enc, err := frameEncoding(id, payload)
	if err != nil {
		return false, err
	}
	desc, rest, err := splitDescription(payload[1:], enc)
	if err != nil {
		return false, err
	}
	if desc == "" {
		return true, nil
	}
	values, err := splitText(rest, enc)
	if err != nil {
		return false, err
	}
	tags.Add(strings.ToUpper(desc), values...)
	return false, nil
}

// decodeDescribed handles COMM and USLT frames:
// [encoding][language(3)][description\0][text]
func decodeDescribed(id, base string, payload []byte, tags *types.TagSet, langs map[string]string) (bool, error) {
	if len(payload) < 4 {
		return true, nil
	}
	enc, err := frameEncoding(id, payload)
	if err != nil {
		return false, err
	}
	desc, rest, err := splitDescription(payload[4:], enc)
	if err != nil {
		return false, err
	}
	values, err := splitText(rest, enc)
	if err != nil {
		return false, err
	}
	key := describedKey(base, desc)
	if _, seen := langs[key]; langs != nil && !seen {
		langs[key] = string(payload[1:4])
	}
	tags.Add(key, values...)
	return false, nil
}

// resync reverses unsynchronisation: every 0xFF 0x00 becomes 0xFF.
func resync(b []byte) []byte {
	if !bytes.Contains(b, []byte{0xFF, 0x00}) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}

// encodeID3v2 builds a complete tag block.
func encodeID3v2(tags types.TagSet, state *id3v2State, prevLen int64, opts ID3v2Options) ([]byte, error) {
	major := opts.Version
	if state != nil && state.Major != 0 {
		major = state.Major
	}
	enc := opts.Encoding
	if !enc.validFor(major) {
		enc = EncodingUTF16
	}

	body := binutil.NewWriter(1024)
	for key, values := range tags.All() {
		var lang string
		if state != nil {
			lang = state.Languages[key]
		}
		if err := writeKey(body, key, values, lang, major, enc, opts.UnknownKeys); err != nil {
			return nil, err
		}
	}
	if state != nil {
		for _, f := range state.Frames {
			if tags.Has(f.ID) {
				continue
			}
			if err := writeFrame(body, major, f.ID, f.Flags, f.Data); err != nil {
				return nil, err
			}
		}
	}

	if body.Len() == 0 && prevLen == 0 {
		return nil, nil
	}

	padding := int64(opts.Padding)
	if total := int64(headerSize + body.Len()); prevLen > 0 && total <= prevLen {
		padding = prevLen - total
	}

	out := binutil.NewWriter(headerSize + body.Len() + int(padding))
	out.PutString("ID3")
	out.PutUint8(major)
	out.PutUint8(0)
	out.PutUint8(0)
	if err := out.PutSyncSafe(uint32(int64(body.Len()) + padding)); err != nil {
		return nil, err
	}
	out.PutBytes(body.Bytes())
	out.PutBytes(make([]byte, padding))
	return out.Bytes(), nil
}

// writeKey emits the frame that stores one tag key. lang is the language
// of an existing COMM or USLT frame for the key.
func writeKey(w *binutil.Writer, key string, values []string, lang string, major byte, enc TextEncoding, unknown UnknownKeyPolicy) error {
	if desc, ok := splitDescribedKey(key, keyComment); ok {
		return writeDescribed(w, major, "COMM", desc, lang, values, enc)
	}
	if desc, ok := splitDescribedKey(key, keyLyrics); ok {
		return writeDescribed(w, major, "USLT", desc, lang, values, enc)
	}

	if id := frameForKey(key, major); id != "" {
		enc = pickEncoding(enc, values...)
		text, err := joinText(values, enc)
		if err != nil {
			return err
		}
		return writeFrame(w, major, id, 0, append([]byte{byte(enc)}, text...))
	}

	if unknown == DropUnknownKeys {
		return nil
	}
	enc = pickEncoding(enc, append([]string{key}, values...)...)
	desc, err := encodeText(key, enc)
	if err != nil {
		return err
	}
	text, err := joinText(values, enc)
	if err != nil {
		return err
	}
	payload := append([]byte{byte(enc)}, desc...)
	payload = append(payload, enc.terminator()...)
	return writeFrame(w, major, "TXXX", 0, append(payload, text...))
}

func writeDescribed(w *binutil.Writer, major byte, id, desc, lang string, values []string, enc TextEncoding) error {
	if len(lang) != 3 {
		lang = "XXX"
	}
	enc = pickEncoding(enc, append([]string{desc}, values...)...)
	d, err := encodeText(desc, enc)
	if err != nil {
		return err
	}
	text, err := joinText(values, enc)
	if err != nil {
		return err
	}
	payload := append([]byte{byte(enc)}, lang...)
	payload = append(payload, d...)
	payload = append(payload, enc.terminator()...)
	return writeFrame(w, major, id, 0, append(payload, text...))
}

// pickEncoding falls back to UTF-16 when Latin-1 cannot hold the text.
func pickEncoding(enc TextEncoding, text ...string) TextEncoding {
	if enc == EncodingLatin1 && !representable(text) {
		return EncodingUTF16
	}
	return enc
}

func writeFrame(w *binutil.Writer, major byte, id string, flags uint16, data []byte) error {
	w.PutString(id)
	if major == 4 {
		if err := w.PutSyncSafe(uint32(len(data))); err != nil {
			return fmt.Errorf("frame %s: %w", id, err)
		}
	} else {
		w.PutUint32BE(uint32(len(data)))
	}
	w.PutUint16BE(flags)
	w.PutBytes(data)
	return nil
}
