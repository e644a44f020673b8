package mp3

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/bogem/id3v2/v2"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// mpegFrame is an MPEG-1 Layer III frame header: 128kbps, 44.1kHz, joint stereo.
var mpegFrame = []byte{0xFF, 0xFB, 0x90, 0x64}

// cbrLen is the byte length of one frame with that header.
const cbrLen = 417

// mpegStream creates n back-to-back CBR frames with zeroed payloads.
func mpegStream(n int) []byte {
	var buf bytes.Buffer
	for range n {
		buf.Write(mpegFrame)
		buf.Write(make([]byte, cbrLen-len(mpegFrame)))
	}
	return buf.Bytes()
}

// xingStream creates a stream whose first frame carries a Xing header
// declaring frames frames.
func xingStream(n int, frames uint32) []byte {
	data := mpegStream(n)
	off := 4 + 32 // frame header + MPEG-1 stereo side info
	copy(data[off:], "Xing")
	binary.BigEndian.PutUint32(data[off+4:], 0x1)
	binary.BigEndian.PutUint32(data[off+8:], frames)
	return data
}

// rawFrame builds an ID3v2 frame with a plain (v2.3) or synchsafe (v2.4) size.
func rawFrame(major byte, id string, flags uint16, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(id)
	size := make([]byte, 4)
	if major == 4 {
		s, _ := binutil.EncodeSyncSafe(uint32(len(payload)))
		copy(size, s[:])
	} else {
		binary.BigEndian.PutUint32(size, uint32(len(payload)))
	}
	buf.Write(size)
	binary.Write(&buf, binary.BigEndian, flags)
	buf.Write(payload)
	return buf.Bytes()
}

// rawTag wraps frames in an ID3v2 header with padding.
func rawTag(major, flags byte, padding int, frames ...[]byte) []byte {
	body := bytes.Join(frames, nil)
	body = append(body, make([]byte, padding)...)
	size, _ := binutil.EncodeSyncSafe(uint32(len(body)))
	h := []byte{'I', 'D', '3', major, 0, flags}
	h = append(h, size[:]...)
	return append(h, body...)
}

// latin1Text builds a Latin-1 text frame payload.
func latin1Text(s string) []byte {
	return append([]byte{0}, s...)
}

// bogemTag renders a tag built with an independent ID3v2 writer.
func bogemTag(t *testing.T, version byte, build func(tag *id3v2.Tag)) []byte {
	t.Helper()
	tag := id3v2.NewEmptyTag()
	tag.SetVersion(version)
	build(tag)
	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		t.Fatalf("bogem WriteTo: %v", err)
	}
	return buf.Bytes()
}

// bogemParse decodes a tag with the independent ID3v2 reader.
func bogemParse(t *testing.T, data []byte) *id3v2.Tag {
	t.Helper()
	tag, err := id3v2.ParseReader(bytes.NewReader(data), id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("bogem ParseReader: %v", err)
	}
	return tag
}

// rewrite decodes data, encodes tags over it and returns the new file.
func rewrite(t *testing.T, p *ID3v2, data []byte, tags types.TagSet) []byte {
	t.Helper()
	prev, err := p.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	block, err := p.Encode(tags, prev)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	start, end := int64(0), int64(0)
	if prev.Location != nil {
		start, end = prev.Location.Offset, prev.Location.End()
	}
	out := append([]byte{}, data[:start]...)
	out = append(out, block...)
	return append(out, data[end:]...)
}

func decodeTags(t *testing.T, p interface {
	Decode([]byte) (*types.Decoded, error)
}, data []byte) types.TagSet {
	t.Helper()
	d, err := p.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return d.Tags
}

func encodeSyncSafe(v uint32) ([4]byte, error) {
	return binutil.EncodeSyncSafe(v)
}
