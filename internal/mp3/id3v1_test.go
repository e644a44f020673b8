package mp3

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dhowden/tag"

	"github.com/simonhull/audiotag/internal/types"
)

func TestID3v1_RoundTrip(t *testing.T) {
	var tags types.TagSet
	tags.Set("TITLE", "Hoppípolla")
	tags.Set("ARTIST", "Sigur Rós")
	tags.Set("ALBUM", "Takk...")
	tags.Set("DATE", "2005")
	tags.Set("COMMENT", "v1.1 comment")
	tags.Set("TRACKNUMBER", "4")
	tags.Set("GENRE", "post-rock is not in the table")

	audio := mpegStream(3)
	file := append(append([]byte{}, audio...), encodeID3v1(tags)...)

	p := NewID3v1()
	d, err := p.Decode(file)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Location == nil || d.Location.Offset != int64(len(audio)) || d.Location.Length != id3v1Size {
		t.Errorf("Location = %+v", d.Location)
	}

	want := tags.Clone()
	want.Delete("GENRE") // unknown genres have no ID3v1 index
	if !d.Tags.Equal(want) {
		t.Errorf("got %v, want %v", d.Tags.Map(), want.Map())
	}
	if d.Audio == nil || d.Audio.BitrateKbps != 128 {
		t.Errorf("audio properties = %+v", d.Audio)
	}
}

func TestID3v1_Genre(t *testing.T) {
	var tags types.TagSet
	tags.Set("GENRE", "hip-hop")

	got, _ := parseID3v1(encodeID3v1(tags))
	if got.GetFirst("GENRE") != "Hip-Hop" {
		t.Errorf("GENRE = %q, want Hip-Hop", got.GetFirst("GENRE"))
	}
}

func TestID3v1_Truncation(t *testing.T) {
	var tags types.TagSet
	tags.Set("TITLE", "This title is much longer than thirty bytes")
	tags.Set("ARTIST", "日本語")

	got, _ := parseID3v1(encodeID3v1(tags))
	if v := got.GetFirst("TITLE"); v != "This title is much longer than" {
		t.Errorf("TITLE = %q", v)
	}
	if v := got.GetFirst("ARTIST"); v != "???" {
		t.Errorf("ARTIST = %q, want unrepresentable runes replaced", v)
	}
}

func TestID3v1_NoTrailer(t *testing.T) {
	d, err := NewID3v1().Decode(mpegStream(2))
	if err != nil {
		t.Fatal(err)
	}
	if d.Location != nil || d.Tags.Len() != 0 {
		t.Errorf("decoded %v at %v from untagged stream", d.Tags.Map(), d.Location)
	}
}

func TestID3v1_CrossDecode(t *testing.T) {
	var tags types.TagSet
	tags.Set("TITLE", "Title")
	tags.Set("ARTIST", "Artist")
	tags.Set("ALBUM", "Album")
	tags.Set("DATE", "1999")
	tags.Set("GENRE", "Rock")

	file := append(mpegStream(2), encodeID3v1(tags)...)
	m, err := tag.ReadID3v1Tags(bytes.NewReader(file))
	if err != nil {
		t.Fatalf("dhowden ReadID3v1Tags: %v", err)
	}
	if m.Title() != "Title" || m.Artist() != "Artist" || m.Album() != "Album" {
		t.Errorf("dhowden read %q/%q/%q", m.Title(), m.Artist(), m.Album())
	}
	if m.Year() != 1999 || m.Genre() != "Rock" {
		t.Errorf("dhowden year/genre = %d/%q", m.Year(), m.Genre())
	}
}

func TestID3v2_DecodeSkipsTrailer(t *testing.T) {
	// Audio properties must not count the ID3v1 trailer as audio.
	var tags types.TagSet
	tags.Set("TITLE", "x")
	audio := mpegStream(10)
	withTrailer := append(append([]byte{}, audio...), encodeID3v1(tags)...)

	p := NewID3v2(DefaultID3v2Options())
	a, _ := p.Decode(audio)
	b, _ := p.Decode(withTrailer)
	if a.Audio.Duration != b.Audio.Duration {
		t.Errorf("trailer changed duration: %v vs %v", a.Audio.Duration, b.Audio.Duration)
	}
}

func TestID3v2_TrailerOnlyStream(t *testing.T) {
	var old types.TagSet
	old.Set("TITLE", "Old Title")
	old.Set("GENRE", "Rock")
	audio := mpegStream(10)
	trailer := encodeID3v1(old)
	file := append(append([]byte{}, audio...), trailer...)

	p := NewID3v2(DefaultID3v2Options())
	prev, err := p.Decode(file)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if prev.Location != nil || !prev.Tags.Equal(old) {
		t.Fatalf("Decode = %v at %v, want trailer tags and no ID3v2 block", prev.Tags.Map(), prev.Location)
	}

	tags := prev.Tags.Clone()
	tags.Set("ALBUMARTIST", "Various")
	tags.Set("ARTIST", "日本語 artist")
	out := rewrite(t, p, file, tags)

	if !bytes.HasPrefix(out, []byte("ID3")) || !bytes.HasSuffix(out, file) {
		t.Error("expected a fresh ID3v2 tag in front of the untouched stream and trailer")
	}
	if got := decodeTags(t, p, out); !got.Equal(tags) {
		t.Errorf("read back %v, want %v", got.Map(), tags.Map())
	}
}

func TestIsMPEGStream(t *testing.T) {
	var tags types.TagSet
	tags.Set("TITLE", "x")

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"stream", mpegStream(3), true},
		{"stream with trailer", append(mpegStream(3), encodeID3v1(tags)...), true},
		{"junk before sync", append([]byte("junk"), mpegStream(3)...), false},
		{"trailer only", append([]byte("random audio"), encodeID3v1(tags)...), false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMPEGStream(tt.data); got != tt.want {
				t.Errorf("isMPEGStream() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestID3v1_EncodeRejectsLoss(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		values []string
	}{
		{"no field", "ALBUMARTIST", []string{"Various"}},
		{"not latin1", "ARTIST", []string{"日本語 artist"}},
		{"several values", "ARTIST", []string{"A", "B"}},
		{"unknown genre", "GENRE", []string{"post-rock is not in the table"}},
		{"track out of range", "TRACKNUMBER", []string{"300"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags types.TagSet
			tags.Set("TITLE", "Hoppípolla")
			tags.Set(tt.key, tt.values...)
			if _, err := NewID3v1().Encode(tags, nil); !errors.Is(err, types.ErrUnsupportedWrite) {
				t.Errorf("Encode() error = %v, want UnsupportedWrite", err)
			}
		})
	}

	var ok types.TagSet
	ok.Set("TITLE", "This title is much longer than thirty bytes")
	ok.Set("ARTIST", "Sigur Rós")
	ok.Set("GENRE", "rock")
	ok.Set("TRACKNUMBER", "4/12")
	if _, err := NewID3v1().Encode(ok, nil); err != nil {
		t.Errorf("Encode(storable tags) error = %v", err)
	}
}
