package mp3

import (
	"strings"
	"testing"

	"github.com/simonhull/audiotag/internal/types"
)

func TestID3v2_List(t *testing.T) {
	priv := rawFrame(4, "PRIV", 0, []byte("owner\x00data"))
	tag := rawTag(4, 0, 16,
		rawFrame(4, "TIT2", 0, latin1Text("Glosoli")),
		priv,
		rawFrame(4, "TPE1", v24FrameCompressed|v24FrameDataLength, []byte{0, 0, 0, 9, 'x'}),
	)
	data := append(tag, mpegStream(2)...)

	elems, err := NewID3v2(DefaultID3v2Options()).List(data)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(elems) != 3 {
		t.Fatalf("got %d elements, want 3: %+v", len(elems), elems)
	}

	if elems[0].ID != "TIT2" || elems[0].Offset != headerSize || elems[0].Detail != "TITLE=Glosoli" {
		t.Errorf("first element = %+v", elems[0])
	}
	if elems[1].ID != "PRIV" || elems[1].Detail != "preserved" || elems[1].Size != len(priv)-headerSize {
		t.Errorf("second element = %+v", elems[1])
	}
	if elems[1].Offset != elems[0].Offset+headerSize+int64(elems[0].Size) {
		t.Errorf("PRIV offset = %d", elems[1].Offset)
	}
	if !strings.HasPrefix(elems[2].Detail, "opaque") {
		t.Errorf("compressed frame detail = %q", elems[2].Detail)
	}
}

func TestID3v2_ListBareStream(t *testing.T) {
	elems, err := NewID3v2(DefaultID3v2Options()).List(mpegStream(2))
	if err != nil || elems != nil {
		t.Errorf("List(bare) = %v, %v", elems, err)
	}
}

func TestID3v2_ListIncludesTrailer(t *testing.T) {
	var tags types.TagSet
	tags.Set("TITLE", "Untitled #1")
	data := append(mpegStream(2), encodeID3v1(tags)...)

	elems, err := NewID3v2(DefaultID3v2Options()).List(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(elems) != len(id3v1Fields) || elems[0].ID != "TAG" || elems[1].Detail != "Untitled #1" {
		t.Errorf("elements = %+v", elems)
	}
}

func TestID3v1_List(t *testing.T) {
	var tags types.TagSet
	tags.Set("TITLE", "Starálfur")
	tags.Set("GENRE", "Ambient")
	audio := mpegStream(1)
	data := append(append([]byte{}, audio...), encodeID3v1(tags)...)

	elems, err := NewID3v1().List(data)
	if err != nil {
		t.Fatal(err)
	}
	byID := map[string]string{}
	for _, e := range elems {
		byID[e.ID] = e.Detail
	}
	if byID["TITLE"] != "Starálfur" {
		t.Errorf("TITLE detail = %q", byID["TITLE"])
	}
	if byID["GENRE"] != "26 Ambient" {
		t.Errorf("GENRE detail = %q", byID["GENRE"])
	}
	if elems[0].ID != "TAG" || elems[0].Offset != int64(len(audio)) {
		t.Errorf("first element = %+v", elems[0])
	}
}
