package mp3

import "strings"

// textFrames maps ID3v2 text frame IDs to tag keys.
//
// Names follow the de facto property names shared with Vorbis comments so
// that the same key means the same thing in every format.
var textFrames = map[string]string{
	"TALB": "ALBUM",
	"TBPM": "BPM",
	"TCOM": "COMPOSER",
	"TCON": "GENRE",
	"TCOP": "COPYRIGHT",
	"TDEN": "ENCODINGTIME",
	"TDLY": "PLAYLISTDELAY",
	"TDOR": "ORIGINALDATE",
	"TDRC": "DATE",
	"TDRL": "RELEASEDATE",
	"TDTG": "TAGGINGDATE",
	"TENC": "ENCODEDBY",
	"TEXT": "LYRICIST",
	"TFLT": "FILETYPE",
	"TIT1": "CONTENTGROUP",
	"TIT2": "TITLE",
	"TIT3": "SUBTITLE",
	"TKEY": "INITIALKEY",
	"TLAN": "LANGUAGE",
	"TLEN": "LENGTH",
	"TMCL": "MUSICIANCREDITS",
	"TMED": "MEDIA",
	"TMOO": "MOOD",
	"TOAL": "ORIGINALALBUM",
	"TOFN": "ORIGINALFILENAME",
	"TOLY": "ORIGINALLYRICIST",
	"TOPE": "ORIGINALARTIST",
	"TOWN": "OWNER",
	"TPE1": "ARTIST",
	"TPE2": "ALBUMARTIST",
	"TPE3": "CONDUCTOR",
	"TPE4": "REMIXER",
	"TPOS": "DISCNUMBER",
	"TPRO": "PRODUCEDNOTICE",
	"TPUB": "LABEL",
	"TRCK": "TRACKNUMBER",
	"TRSN": "RADIOSTATION",
	"TRSO": "RADIOSTATIONOWNER",
	"TSO2": "ALBUMARTISTSORT",
	"TSOA": "ALBUMSORT",
	"TSOC": "COMPOSERSORT",
	"TSOP": "ARTISTSORT",
	"TSOT": "TITLESORT",
	"TSRC": "ISRC",
	"TSSE": "ENCODING",
	"TSST": "DISCSUBTITLE",
}

// v23Frames overrides textFrames for ID3v2.3, which predates the
// timestamp frames.
var v23Frames = map[string]string{
	"TYER": "DATE",
	"TORY": "ORIGINALDATE",
}

// keyFrames is the inverse of textFrames.
var keyFrames = invert(textFrames)

// v23KeyFrames is the inverse of v23Frames.
var v23KeyFrames = invert(v23Frames)

const (
	keyComment = "COMMENT"
	keyLyrics  = "LYRICS"
)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for id, key := range m {
		out[key] = id
	}
	return out
}

// keyForTextFrame returns the tag key for a text frame ID. Frames outside
// the table use their own ID as the key.
func keyForTextFrame(id string, major byte) string {
	if major == 3 {
		if key, ok := v23Frames[id]; ok {
			return key
		}
	}
	if key, ok := textFrames[id]; ok {
		return key
	}
	return id
}

// frameForKey returns the text frame ID that stores key, or "" if the key
// has no dedicated frame.
func frameForKey(key string, major byte) string {
	if major == 3 {
		if id, ok := v23KeyFrames[key]; ok {
			return id
		}
	}
	if id, ok := keyFrames[key]; ok {
		return id
	}
	if isTextFrameID(key) {
		return key
	}
	return ""
}

// isTextFrameID reports whether s looks like a plain text frame ID.
func isTextFrameID(s string) bool {
	return len(s) == 4 && s[0] == 'T' && s != "TXXX" && validFrameID(s)
}

// validFrameID reports whether id consists of four of A-Z and 0-9.
func validFrameID(id string) bool {
	if len(id) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// describedKey builds "BASE" or "BASE:DESCRIPTION" for COMM and USLT frames.
func describedKey(base, desc string) string {
	if desc == "" {
		return base
	}
	return base + ":" + strings.ToUpper(desc)
}

// splitDescribedKey is the inverse of describedKey. ok is false if key
// does not belong to base.
func splitDescribedKey(key, base string) (desc string, ok bool) {
	if key == base {
		return "", true
	}
	if rest, found := strings.CutPrefix(key, base+":"); found {
		return rest, true
	}
	return "", false
}
