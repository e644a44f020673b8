package ogg

import (
	"bytes"
	"fmt"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

const (
	capturePattern = "OggS"
	pageHeaderSize = 27
	flagContinued  = 0x01
	// lastPageWindow bounds the backward search for the final page.
	lastPageWindow = 65536
)

// page is one Ogg page.
type page struct {
	Offset   int64
	Flags    byte
	Granule  int64
	Serial   uint32
	Sequence uint32
	Segments []byte // lacing values
	Data     []byte
}

// packet is a logical packet reassembled from page segments. Offset is
// where its first byte sits in the file.
type packet struct {
	Offset int64
	Data   []byte
}

// readPage reads the page at the cursor position.
//
// Layout: "OggS" version(1) flags(1) granule(8) serial(4) sequence(4)
// checksum(4) segments(1) lacing[segments] data.
func readPage(c *binutil.Cursor) (*page, error) {
	start := c.Offset()
	hdr, err := c.Bytes(pageHeaderSize, "ogg page header")
	if err != nil {
		return nil, truncated(err)
	}
	if string(hdr[:4]) != capturePattern {
		return nil, &types.Error{Kind: types.KindMalformedHeader, Reason: "missing OggS capture pattern", Offset: start}
	}
	if hdr[4] != 0 {
		return nil, &types.Error{Kind: types.KindMalformedHeader, Reason: fmt.Sprintf("unsupported Ogg version %d", hdr[4]), Offset: start}
	}

	// The header is fully read, so these cannot fail.
	h := binutil.NewCursorAt(hdr[5:], start+5)
	flags, _ := h.Uint8("header type")
	granule, _ := binutil.ReadLE[uint64](h, "granule position")
	serial, _ := h.Uint32LE("serial number")
	sequence, _ := h.Uint32LE("sequence number")
	_ = h.Skip(4, "checksum")
	count, _ := h.Uint8("segment count")

	segments, err := c.Bytes(int(count), "segment table")
	if err != nil {
		return nil, truncated(err)
	}
	size := 0
	for _, s := range segments {
		size += int(s)
	}
	data, err := c.Bytes(size, "page data")
	if err != nil {
		return nil, truncated(err)
	}
	return &page{
		Offset:   start,
		Flags:    flags,
		Granule:  int64(granule),
		Serial:   serial,
		Sequence: sequence,
		Segments: segments,
		Data:     data,
	}, nil
}

// dataOffset is the file offset of the page payload.
func (p *page) dataOffset() int64 {
	return p.Offset + pageHeaderSize + int64(len(p.Segments))
}

// headerPackets reassembles the first n packets of the logical stream
// that opens the file. Pages of other multiplexed streams are skipped.
// A packet ends at the first lacing value below 255.
func headerPackets(data []byte, n int) ([]packet, []*page, error) {
	c := binutil.NewCursor(data)
	var packets []packet
	var pages []*page
	var cur *packet

	for len(packets) < n {
		if c.Remaining() == 0 {
			return nil, nil, &types.Error{
				Kind:   types.KindTruncatedFrame,
				Reason: fmt.Sprintf("stream ends after %d of %d header packets", len(packets), n),
				Offset: c.Offset(),
			}
		}
		p, err := readPage(c)
		if err != nil {
			return nil, nil, err
		}
		if len(pages) > 0 && p.Serial != pages[0].Serial {
			continue
		}
		if len(pages) == 0 && p.Flags&flagContinued != 0 {
			return nil, nil, &types.Error{Kind: types.KindMalformedHeader, Reason: "first page continues a packet", Offset: p.Offset}
		}
		pages = append(pages, p)

		pos := 0
		for _, lace := range p.Segments {
			if cur == nil {
				cur = &packet{Offset: p.dataOffset() + int64(pos)}
			}
			cur.Data = append(cur.Data, p.Data[pos:pos+int(lace)]...)
			pos += int(lace)
			if lace < 255 {
				packets = append(packets, *cur)
				cur = nil
				if len(packets) == n {
					break
				}
			}
		}
	}
	return packets, pages, nil
}

// lastGranule finds the granule position of the last page of the stream
// with the given serial, searching backwards from the end of data.
func lastGranule(data []byte, serial uint32) (int64, bool) {
	lo := max(0, len(data)-lastPageWindow)
	end := len(data)
	for end > lo {
		i := bytes.LastIndex(data[lo:end], []byte(capturePattern))
		if i < 0 {
			return 0, false
		}
		off := lo + i
		end = off
		if off+pageHeaderSize > len(data) || data[off+4] != 0 {
			continue
		}
		c := binutil.NewCursorAt(data[off+6:off+18], int64(off+6))
		granule, _ := binutil.ReadLE[uint64](c, "granule position")
		s, _ := c.Uint32LE("serial number")
		// -1 marks a page on which no packet ends.
		if s == serial && int64(granule) >= 0 {
			return int64(granule), true
		}
	}
	return 0, false
}

// truncated turns a short read into TruncatedFrame.
func truncated(err error) error {
	if types.KindOf(err) != types.KindOutOfBounds {
		return err
	}
	e := *err.(*types.Error)
	e.Kind = types.KindTruncatedFrame
	return &e
}
