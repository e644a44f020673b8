package types

// Format identifies the tag container family a plugin handles.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota
	// FormatID3v2 is an ID3v2 tag at the start of an MPEG stream.
	FormatID3v2
	// FormatID3v1 is the 128-byte ID3v1 trailer.
	FormatID3v1
	// FormatFLAC is a FLAC stream carrying a Vorbis comment block.
	FormatFLAC
	// FormatOgg is an Ogg Vorbis or Opus stream. Read only.
	FormatOgg
	// FormatMP4 is an MP4/M4A/M4B file with iTunes-style ilst atoms. Read only.
	FormatMP4
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatID3v2:
		return "ID3v2"
	case FormatID3v1:
		return "ID3v1"
	case FormatFLAC:
		return "FLAC"
	case FormatOgg:
		return "Ogg"
	case FormatMP4:
		return "MP4"
	default:
		return "Unknown"
	}
}

// Placement says where a new tag block goes when the file has none.
type Placement int

const (
	// Prepend puts the block before the audio payload (header formats).
	Prepend Placement = iota
	// Append puts the block after the audio payload (trailer formats).
	Append
)

// TagBlockLocation is the byte range of an existing tag block.
// A zero Length marks an insertion point.
type TagBlockLocation struct {
	Offset int64
	Length int64
}

// End returns the offset one past the block.
func (l TagBlockLocation) End() int64 {
	return l.Offset + l.Length
}

// Decoded is the result of decoding a file with a format plugin.
type Decoded struct {
	// State is plugin-owned data that must survive a decode/encode cycle,
	// such as unrecognized frames. Only the plugin that produced it reads it.
	State any

	// Location of the existing tag block, nil if the file has none.
	Location *TagBlockLocation

	// Audio properties, nil when the stream header could not be found.
	Audio *AudioProperties

	Tags TagSet
}
