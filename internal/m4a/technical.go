package m4a

import (
	"time"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// parseAudio reads the duration from mvhd and the stream format from the
// first audio track's sample description. It returns nil when the movie
// has no audio track.
func parseAudio(moov atom, mdatSize int64) (*types.AudioProperties, error) {
	children, err := moov.children(0)
	if err != nil {
		return nil, err
	}

	var duration time.Duration
	if mvhd, ok := find(children, "mvhd"); ok {
		duration = parseMvhd(mvhd)
	}

	for _, trak := range children {
		if trak.Type != "trak" {
			continue
		}
		if !isSoundTrack(trak) {
			continue
		}
		stsd, ok, err := descend([]atom{trak}, "trak", "mdia", "minf", "stbl", "stsd")
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		props, ok := parseStsd(stsd)
		if !ok {
			continue
		}
		props.Duration = duration
		if props.BitrateKbps == 0 && duration > 0 && mdatSize > 0 {
			props.BitrateKbps = int(float64(mdatSize*8) / duration.Seconds() / 1000)
		}
		return props, nil
	}
	return nil, nil
}

// isSoundTrack reports whether the track's media handler is "soun".
// hdlr: version(1) flags(3) pre-defined(4) handler type(4) ...
func isSoundTrack(trak atom) bool {
	hdlr, ok, err := descend([]atom{trak}, "trak", "mdia", "hdlr")
	return err == nil && ok && len(hdlr.Data) >= 12 && string(hdlr.Data[8:12]) == "soun"
}

// parseMvhd returns the movie duration.
//
// Version 0: version(1) flags(3) created(4) modified(4) timescale(4) duration(4).
// Version 1 widens the times and duration to 8 bytes.
func parseMvhd(mvhd atom) time.Duration {
	c := binutil.NewChainCursor(binutil.NewCursorAt(mvhd.Data, mvhd.dataOffset()))
	version := binutil.ReadChained[uint8](c, "mvhd version")
	c.Bytes(3, "mvhd flags")

	var timescale uint32
	var duration uint64
	if version == 1 {
		c.Bytes(16, "mvhd times")
		timescale = binutil.ReadChained[uint32](c, "mvhd timescale")
		duration = binutil.ReadChained[uint64](c, "mvhd duration")
	} else {
		c.Bytes(8, "mvhd times")
		timescale = binutil.ReadChained[uint32](c, "mvhd timescale")
		duration = uint64(binutil.ReadChained[uint32](c, "mvhd duration"))
	}
	if c.Error() != nil || timescale == 0 {
		return 0
	}
	return time.Duration(float64(duration) / float64(timescale) * float64(time.Second))
}

// Sound sample entry layout after the 8-byte box header: reserved(6)
// data reference(2) version(2) revision(2) vendor(4) channels(2)
// sample size(2) compression(2) packet size(2) rate(4, 16.16 fixed).
const soundEntryFields = 28

// Extra fields in QuickTime sound description versions 1 and 2.
var soundEntryExtra = map[uint16]int{0: 0, 1: 16, 2: 36}

// parseStsd reads the first sample entry. ok is false for entries that
// are not sound descriptions.
func parseStsd(stsd atom) (*types.AudioProperties, bool) {
	// version(1) flags(3) entry count(4)
	entries, err := stsd.children(8)
	if err != nil || len(entries) == 0 {
		return nil, false
	}
	entry := entries[0]
	if len(entry.Data) < soundEntryFields {
		return nil, false
	}

	c := binutil.NewChainCursor(binutil.NewCursorAt(entry.Data, entry.dataOffset()))
	c.Bytes(8, "reserved and data reference")
	version := binutil.ReadChained[uint16](c, "sound version")
	c.Bytes(6, "revision and vendor")
	channels := binutil.ReadChained[uint16](c, "channels")
	sampleSize := binutil.ReadChained[uint16](c, "sample size")
	c.Bytes(4, "compression and packet size")
	rate := binutil.ReadChained[uint32](c, "sample rate")
	extra, known := soundEntryExtra[version]
	if c.Error() != nil || !known {
		return nil, false
	}

	props := &types.AudioProperties{
		Codec:        codecName(entry.Type),
		SampleRateHz: int(rate >> 16),
		Channels:     int(channels),
	}
	if lossless[entry.Type] {
		props.BitDepth = int(sampleSize)
	}

	if entry.Type == "mp4a" {
		boxes, _ := readAtoms(safeTail(entry.Data, soundEntryFields+extra), entry.dataOffset()+int64(soundEntryFields+extra))
		if esds, ok := find(boxes, "esds"); ok && len(esds.Data) > 4 {
			info := parseESDS(esds.Data[4:])
			if name, ok := aacProfiles[info.ObjectType]; ok {
				props.Codec = name
			}
			props.BitrateKbps = int(info.AvgBitrate / 1000)
		}
	}
	return props, true
}

func safeTail(b []byte, n int) []byte {
	if n > len(b) {
		return nil
	}
	return b[n:]
}
