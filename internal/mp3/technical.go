package mp3

import (
	"encoding/binary"
	"time"

	"github.com/simonhull/audiotag/internal/types"
)

// MPEG version IDs from the frame header.
const (
	mpeg25 = 0
	mpeg2  = 2
	mpeg1  = 3
)

// Layer III bitrate tables in kbps.
var (
	bitrateTableV1 = []int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
	bitrateTableV2 = []int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}
)

// Sample rate tables in Hz, indexed by MPEG version ID.
var sampleRateTable = map[uint32][]int{
	mpeg1:  {44100, 48000, 32000, 0},
	mpeg2:  {22050, 24000, 16000, 0},
	mpeg25: {11025, 12000, 8000, 0},
}

// maxSyncScan bounds how far past the tag we look for the first frame.
const maxSyncScan = 1 << 20

// frameHeader is a decoded MPEG audio frame header.
type frameHeader struct {
	Version    uint32
	Bitrate    int // kbps
	SampleRate int
	Channels   int
	Padding    int
}

// samplesPerFrame returns the number of PCM samples in one Layer III frame.
func (h frameHeader) samplesPerFrame() int {
	if h.Version == mpeg1 {
		return 1152
	}
	return 576
}

// length returns the frame length in bytes.
func (h frameHeader) length() int {
	if h.SampleRate == 0 {
		return 0
	}
	return h.samplesPerFrame()/8*h.Bitrate*1000/h.SampleRate + h.Padding
}

// sideInfoSize returns the size of the Layer III side information, which
// sits between the frame header and a Xing/Info header.
func (h frameHeader) sideInfoSize() int {
	switch {
	case h.Version == mpeg1 && h.Channels == 1:
		return 17
	case h.Version == mpeg1:
		return 32
	case h.Channels == 1:
		return 9
	default:
		return 17
	}
}

// parseFrameHeader validates and decodes a 4-byte Layer III frame header.
func parseFrameHeader(b []byte) (frameHeader, bool) {
	if len(b) < 4 {
		return frameHeader{}, false
	}
	header := binary.BigEndian.Uint32(b)

	// Frame sync: 11 bits set
	if header&0xFFE00000 != 0xFFE00000 {
		return frameHeader{}, false
	}

	version := (header >> 19) & 0x3
	layer := (header >> 17) & 0x3
	if version == 1 || layer != 1 { // reserved version, not Layer III
		return frameHeader{}, false
	}

	bitrateIdx := (header >> 12) & 0xF
	sampleRateIdx := (header >> 10) & 0x3
	table := bitrateTableV2
	if version == mpeg1 {
		table = bitrateTableV1
	}
	h := frameHeader{
		Version:    version,
		Bitrate:    table[bitrateIdx],
		SampleRate: sampleRateTable[version][sampleRateIdx],
		Padding:    int((header >> 9) & 0x1),
		Channels:   2,
	}
	if (header>>6)&0x3 == 3 {
		h.Channels = 1
	}
	if h.Bitrate == 0 || h.SampleRate == 0 {
		return frameHeader{}, false
	}
	return h, true
}

// findFrame locates the first frame header at or after start. A candidate
// is accepted when the following frame also parses or the data ends first.
func findFrame(data []byte, start, end int) (int, frameHeader, bool) {
	limit := min(end-4, start+maxSyncScan)
	for off := start; off <= limit; off++ {
		if data[off] != 0xFF {
			continue
		}
		h, ok := parseFrameHeader(data[off:end])
		if !ok {
			continue
		}
		next := off + h.length()
		if next+4 <= end {
			if _, ok := parseFrameHeader(data[next:end]); !ok {
				continue
			}
		}
		return off, h, true
	}
	return 0, frameHeader{}, false
}

// isMPEGStream reports whether data starts with an MPEG Layer III frame,
// ignoring an ID3v1 trailer.
func isMPEGStream(data []byte) bool {
	end := len(data)
	if hasID3v1(data) {
		end -= id3v1Size
	}
	off, _, ok := findFrame(data, 0, end)
	return ok && off == 0
}

// parseAudio reads the stream properties of the MPEG audio between start
// and end. Returns nil when no frame is found.
func parseAudio(data []byte, start, end int) *types.AudioProperties {
	if start < 0 || end > len(data) || start >= end {
		return nil
	}
	off, h, ok := findFrame(data, start, end)
	if !ok {
		return nil
	}

	props := &types.AudioProperties{
		Codec:        "MP3",
		SampleRateHz: h.SampleRate,
		Channels:     h.Channels,
		BitrateKbps:  h.Bitrate,
	}

	audioBytes := int64(end - off)
	if frames, size, ok := parseVBRHeader(data[off:end], h); ok {
		samples := int64(frames) * int64(h.samplesPerFrame())
		props.Duration = time.Duration(float64(samples) / float64(h.SampleRate) * float64(time.Second))
		props.VBR = true
		if size > 0 {
			audioBytes = int64(size)
		}
		if props.Duration > 0 {
			props.BitrateKbps = int(float64(audioBytes*8) / props.Duration.Seconds() / 1000)
		}
		return props
	}

	props.Duration = estimateCBRDuration(h.Bitrate, audioBytes)
	return props
}

// parseVBRHeader checks for a Xing/Info or VBRI header in the first frame
// and returns the frame count and, if present, the stream size in bytes.
func parseVBRHeader(frameData []byte, h frameHeader) (frames, size uint32, ok bool) {
	xing := 4 + h.sideInfoSize()
	if len(frameData) >= xing+8 {
		tag := string(frameData[xing : xing+4])
		if tag == "Xing" || tag == "Info" {
			flags := binary.BigEndian.Uint32(frameData[xing+4:])
			pos := xing + 8
			if flags&0x1 == 0 || len(frameData) < pos+4 {
				return 0, 0, false
			}
			frames = binary.BigEndian.Uint32(frameData[pos:])
			pos += 4
			if flags&0x2 != 0 && len(frameData) >= pos+4 {
				size = binary.BigEndian.Uint32(frameData[pos:])
			}
			return frames, size, frames > 0
		}
	}

	// VBRI always sits 32 bytes after the frame header
	const vbri = 36
	if len(frameData) >= vbri+18 && string(frameData[vbri:vbri+4]) == "VBRI" {
		size = binary.BigEndian.Uint32(frameData[vbri+10:])
		frames = binary.BigEndian.Uint32(frameData[vbri+14:])
		return frames, size, frames > 0
	}
	return 0, 0, false
}

// estimateCBRDuration estimates duration for constant bitrate streams.
func estimateCBRDuration(bitrateKbps int, audioBytes int64) time.Duration {
	if bitrateKbps == 0 {
		return 0
	}
	// Duration = (audio size in bytes * 8 bits/byte) / bitrate
	durationSeconds := float64(audioBytes*8) / float64(bitrateKbps*1000)
	return time.Duration(durationSeconds * float64(time.Second))
}
