package m4a

import (
	binutil "github.com/simonhull/audiotag/internal/binary"
)

// codecNames maps sample entry FourCCs to codec names.
var codecNames = map[string]string{
	"mp4a": "AAC",
	"mhm1": "xHE-AAC",
	"mhm2": "xHE-AAC",
	"ac-3": "AC-3",
	"ec-3": "E-AC-3",
	"ac-4": "AC-4",
	"alac": "ALAC",
	"fLaC": "FLAC",
	"Opus": "Opus",
	".mp3": "MP3",
}

// lossless sample entries report their sample size as bit depth.
var lossless = map[string]bool{"alac": true, "fLaC": true}

// aacProfiles maps MPEG-4 audio object types to profile names.
var aacProfiles = map[uint8]string{
	1:  "AAC Main",
	2:  "AAC",
	3:  "AAC SSR",
	4:  "AAC LTP",
	5:  "HE-AAC",
	6:  "AAC Scalable",
	29: "HE-AAC v2",
	42: "xHE-AAC",
}

// codecName returns the display name for a sample entry.
func codecName(fourCC string) string {
	if name, ok := codecNames[fourCC]; ok {
		return name
	}
	return fourCC
}

// esdsInfo is what the elementary stream descriptor tells about an AAC
// stream.
type esdsInfo struct {
	ObjectType uint8  // MPEG-4 audio object type, 0 if absent
	AvgBitrate uint32 // bits per second, 0 if unknown
}

// Descriptor tags inside esds.
const (
	tagESDescriptor     = 0x03
	tagDecoderConfig    = 0x04
	tagDecSpecificInfo  = 0x05
	esStreamDependence  = 0x80
	esURL               = 0x40
	esOCRStream         = 0x20
	decoderConfigFields = 13
)

// parseESDS walks the descriptors of an esds payload (after version and
// flags): ES_Descriptor, then DecoderConfigDescriptor with the average
// bitrate, then DecoderSpecificInfo whose first 5 bits are the audio
// object type.
func parseESDS(b []byte) esdsInfo {
	var info esdsInfo
	c := binutil.NewCursor(b)

	tag, _, ok := descriptor(c)
	if !ok || tag != tagESDescriptor {
		return info
	}
	_ = c.Skip(2, "ES_ID")
	flags, err := c.Uint8("ES flags")
	if err != nil {
		return info
	}
	if flags&esStreamDependence != 0 {
		_ = c.Skip(2, "depends on ES_ID")
	}
	if flags&esURL != 0 {
		n, _ := c.Uint8("URL length")
		_ = c.Skip(int(n), "URL")
	}
	if flags&esOCRStream != 0 {
		_ = c.Skip(2, "OCR ES_ID")
	}

	tag, size, ok := descriptor(c)
	if !ok || tag != tagDecoderConfig || size < decoderConfigFields {
		return info
	}
	fields, err := c.Bytes(decoderConfigFields, "decoder config")
	if err != nil {
		return info
	}
	fc := binutil.NewCursor(fields[9:])
	info.AvgBitrate, _ = fc.Uint32BE("average bitrate")

	if tag, _, ok = descriptor(c); ok && tag == tagDecSpecificInfo {
		if first, err := c.Uint8("audio specific config"); err == nil {
			info.ObjectType = first >> 3
			// 31 escapes to a 6-bit extension in the following bits.
			if info.ObjectType == 31 {
				if next, err := c.Uint8("audio object type extension"); err == nil {
					info.ObjectType = 32 + ((first&0x07)<<3 | next>>5)
				}
			}
		}
	}
	return info
}

// descriptor reads a descriptor tag and its variable-length size: up to
// four bytes of 7 bits each, high bit set on all but the last.
func descriptor(c *binutil.Cursor) (tag uint8, size int, ok bool) {
	tag, err := c.Uint8("descriptor tag")
	if err != nil {
		return 0, 0, false
	}
	for range 4 {
		b, err := c.Uint8("descriptor size")
		if err != nil {
			return 0, 0, false
		}
		size = size<<7 | int(b&0x7F)
		if b&0x80 == 0 {
			return tag, size, true
		}
	}
	return tag, size, true
}
