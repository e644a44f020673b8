package audiotag_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"

	"github.com/simonhull/audiotag"
)

// mpegFrame is one MPEG-1 Layer III frame: 128 kbps, 44.1 kHz, stereo.
var mpegFrame = append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 417-4)...)

// mpegStream returns n consecutive frames.
func mpegStream(n int) []byte {
	return bytes.Repeat(mpegFrame, n)
}

// writeTemp stores data under name in a fresh directory.
func writeTemp(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// flacFile renders a FLAC file with a comment block holding comments.
func flacFile(t testing.TB, comments ...[2]string) []byte {
	t.Helper()
	si := make([]byte, 34)
	packed := uint64(44100)<<44 | uint64(1)<<41 | uint64(15)<<36 | 441000
	for i := range 8 {
		si[10+i] = byte(packed >> (56 - 8*i))
	}

	cmt := flacvorbis.New()
	for _, c := range comments {
		if err := cmt.Add(c[0], c[1]); err != nil {
			t.Fatal(err)
		}
	}
	block := cmt.Marshal()

	f := &goflac.File{
		Meta: []*goflac.MetaDataBlock{
			{Type: goflac.StreamInfo, Data: si},
			&block,
		},
		Frames: append([]byte{0xFF, 0xF8, 0x69, 0x08}, make([]byte, 2048)...),
	}
	return f.Marshal()
}

func newTagger(t testing.TB, opts ...audiotag.Option) *audiotag.Tagger {
	t.Helper()
	tg, err := audiotag.New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tg
}

func mustRead(t testing.TB, tg *audiotag.Tagger, path string) audiotag.TagSet {
	t.Helper()
	tags, err := tg.ReadTags(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadTags(%s) error = %v", path, err)
	}
	return tags
}

func mustWrite(t testing.TB, tg *audiotag.Tagger, path string, tags map[string][]string, opts ...audiotag.SaveOption) {
	t.Helper()
	ok, err := tg.WriteTags(context.Background(), path, tags, opts...)
	if err != nil || !ok {
		t.Fatalf("WriteTags(%s) = %v, %v", path, ok, err)
	}
}
