package mp3

import (
	"slices"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		enc  TextEncoding
		want []string
	}{
		{"latin1 single", []byte("abc"), EncodingLatin1, []string{"abc"}},
		{"latin1 multi", []byte("a\x00b"), EncodingLatin1, []string{"a", "b"}},
		{"latin1 trailing terminator", []byte("a\x00"), EncodingLatin1, []string{"a"}},
		{"latin1 high bytes", []byte{0xE9, 't', 0xE9}, EncodingLatin1, []string{"été"}},
		{"utf8", []byte("日本\x00語"), EncodingUTF8, []string{"日本", "語"}},
		{"utf16 le bom", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, EncodingUTF16, []string{"hi"}},
		{"utf16 be bom", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, EncodingUTF16, []string{"hi"}},
		{"utf16 no bom", []byte{0, 'h', 0, 'i'}, EncodingUTF16, []string{"hi"}},
		{
			"utf16 multi",
			[]byte{0xFF, 0xFE, 'a', 0, 0, 0, 0xFF, 0xFE, 'b', 0},
			EncodingUTF16,
			[]string{"a", "b"},
		},
		{"utf16 odd terminator alignment", []byte{0xFF, 0xFE, 0, 1, 0, 0}, EncodingUTF16, []string{"Ā"}},
		{"utf16be", []byte{0, 'o', 0, 'k'}, EncodingUTF16BE, []string{"ok"}},
		{"empty", nil, EncodingLatin1, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitText(tt.data, tt.enc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("splitText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitDescription(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		enc      TextEncoding
		wantDesc string
		wantRest []byte
	}{
		{"latin1", []byte("desc\x00value"), EncodingLatin1, "desc", []byte("value")},
		{"no terminator", []byte("desc"), EncodingLatin1, "desc", nil},
		{
			"utf16",
			[]byte{0xFE, 0xFF, 0, 'd', 0, 0, 0xFE, 0xFF, 0, 'v'},
			EncodingUTF16, "d", []byte{0xFE, 0xFF, 0, 'v'},
		},
		{
			"utf16 stray NUL before value BOM",
			[]byte{0xFE, 0xFF, 0, 'd', 0, 0, 0, 0xFE, 0xFF, 0, 'v', 0},
			EncodingUTF16, "d", []byte{0xFE, 0xFF, 0, 'v', 0},
		},
		{
			"utf16 empty description with stray NUL",
			[]byte{0, 0, 0, 0xFF, 0xFE, 'v', 0},
			EncodingUTF16, "", []byte{0xFF, 0xFE, 'v', 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, rest, err := splitDescription(tt.data, tt.enc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if desc != tt.wantDesc || !slices.Equal(rest, tt.wantRest) {
				t.Errorf("splitDescription() = %q, % x; want %q, % x", desc, rest, tt.wantDesc, tt.wantRest)
			}
		})
	}
}

func TestJoinText_RoundTrip(t *testing.T) {
	values := []string{"Þórr", "", "Ødegaard"}
	for _, enc := range []TextEncoding{EncodingLatin1, EncodingUTF16, EncodingUTF16BE, EncodingUTF8} {
		t.Run(enc.String(), func(t *testing.T) {
			b, err := joinText(values, enc)
			if err != nil {
				t.Fatalf("joinText: %v", err)
			}
			got, err := splitText(b, enc)
			if err != nil {
				t.Fatalf("splitText: %v", err)
			}
			if !slices.Equal(got, values) {
				t.Errorf("round trip = %q, want %q", got, values)
			}
		})
	}
}

func TestEncodeText_Latin1Unrepresentable(t *testing.T) {
	if _, err := encodeText("日本", EncodingLatin1); err == nil {
		t.Error("expected error encoding CJK as Latin-1")
	}
	if representable([]string{"日本"}) {
		t.Error("CJK should not be representable in Latin-1")
	}
	if pickEncoding(EncodingLatin1, "café", "日本") != EncodingUTF16 {
		t.Error("pickEncoding should fall back to UTF-16")
	}
	if pickEncoding(EncodingLatin1, "café") != EncodingLatin1 {
		t.Error("pickEncoding should keep Latin-1 when possible")
	}
}

func TestParseTextEncoding(t *testing.T) {
	for _, enc := range []TextEncoding{EncodingLatin1, EncodingUTF16, EncodingUTF16BE, EncodingUTF8} {
		got, ok := ParseTextEncoding(enc.String())
		if !ok || got != enc {
			t.Errorf("ParseTextEncoding(%q) = %v, %v", enc.String(), got, ok)
		}
	}
	if _, ok := ParseTextEncoding("ebcdic"); ok {
		t.Error("unknown encoding accepted")
	}
}

func TestResolveGenre(t *testing.T) {
	tests := map[string]string{
		"17":             "Rock",
		"(17)":           "Rock",
		"(17)Rocksteady": "Rocksteady",
		"Shoegaze":       "Shoegaze",
		"(999)":          "(999)",
		"(oops":          "(oops",
	}
	for in, want := range tests {
		if got := resolveGenre(in); got != want {
			t.Errorf("resolveGenre(%q) = %q, want %q", in, got, want)
		}
	}
}
