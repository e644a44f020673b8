// Package binary provides bounds-checked binary reading and writing primitives
// over in-memory byte buffers.
package binary

import (
	"encoding/binary"

	"github.com/simonhull/audiotag/internal/types"
)

// Cursor reads sequentially from a byte slice.
//
// Every read is bounds-checked. A failed read returns an OutOfBounds error
// and leaves the position unchanged.
type Cursor struct {
	buf  []byte
	pos  int
	base int64 // offset of buf[0] in the enclosing file, for error messages
}

// NewCursor creates a Cursor over b starting at position 0.
func NewCursor(b []byte) *Cursor {
	return &Cursor{buf: b}
}

// NewCursorAt creates a Cursor over b whose error offsets are reported
// relative to base (the position of b within a larger file).
func NewCursorAt(b []byte, base int64) *Cursor {
	return &Cursor{buf: b, base: base}
}

// Pos returns the current position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Offset returns the current position in file coordinates.
func (c *Cursor) Offset() int64 {
	return c.base + int64(c.pos)
}

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int {
	return len(c.buf)
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// need checks that n bytes remain.
func (c *Cursor) need(n int, what string) error {
	if n < 0 || n > c.Remaining() {
		return &types.Error{
			Kind:   types.KindOutOfBounds,
			Reason: outOfBoundsReason(n, c.Offset(), c.base+int64(len(c.buf)), what),
			Offset: c.Offset(),
		}
	}
	return nil
}

// Bytes returns the next n bytes and advances. The result aliases the buffer.
func (c *Cursor) Bytes(n int, what string) ([]byte, error) {
	if err := c.need(n, what); err != nil {
		return nil, err
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Peek returns the next n bytes without advancing.
func (c *Cursor) Peek(n int, what string) ([]byte, error) {
	if err := c.need(n, what); err != nil {
		return nil, err
	}
	return c.buf[c.pos : c.pos+n], nil
}

// String reads n bytes as a string.
func (c *Cursor) String(n int, what string) (string, error) {
	b, err := c.Bytes(n, what)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Skip advances by n bytes.
func (c *Cursor) Skip(n int, what string) error {
	if err := c.need(n, what); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// Rest returns all unread bytes and moves to the end.
func (c *Cursor) Rest() []byte {
	b := c.buf[c.pos:]
	c.pos = len(c.buf)
	return b
}

// Uint8 reads one byte.
func (c *Cursor) Uint8(what string) (uint8, error) {
	return ReadBE[uint8](c, what)
}

// Uint16BE reads a big-endian uint16.
func (c *Cursor) Uint16BE(what string) (uint16, error) {
	return ReadBE[uint16](c, what)
}

// Uint24BE reads a 3-byte big-endian integer (FLAC block lengths).
func (c *Cursor) Uint24BE(what string) (uint32, error) {
	b, err := c.Bytes(3, what)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// Uint32BE reads a big-endian uint32.
func (c *Cursor) Uint32BE(what string) (uint32, error) {
	return ReadBE[uint32](c, what)
}

// Uint32LE reads a little-endian uint32.
func (c *Cursor) Uint32LE(what string) (uint32, error) {
	return ReadLE[uint32](c, what)
}

// SyncSafe reads an n-byte synchsafe integer (7 significant bits per byte).
//
// Fails with MalformedInteger if any byte has its top bit set; the position
// is unchanged in that case.
func (c *Cursor) SyncSafe(n int, what string) (uint32, error) {
	b, err := c.Peek(n, what)
	if err != nil {
		return 0, err
	}
	v, serr := DecodeSyncSafe(b)
	if serr != nil {
		serr.Offset = c.Offset()
		serr.Reason = what + ": " + serr.Reason
		return 0, serr
	}
	c.pos += n
	return v, nil
}

// DecodeSyncSafe decodes a synchsafe integer of up to 5 bytes.
func DecodeSyncSafe(b []byte) (uint32, *types.Error) {
	if len(b) > 5 {
		return 0, types.Errorf(types.KindMalformedInteger, "synchsafe integer of %d bytes", len(b))
	}
	var v uint32
	for _, x := range b {
		if x&0x80 != 0 {
			return 0, types.Errorf(types.KindMalformedInteger, "synchsafe byte 0x%02x has top bit set", x)
		}
		v = v<<7 | uint32(x)
	}
	return v, nil
}

// ChainCursor allows chaining multiple reads with deferred error checking.
// This avoids repetitive "if err != nil" checks.
type ChainCursor struct {
	*Cursor
	err error
}

// NewChainCursor creates a new ChainCursor.
func NewChainCursor(c *Cursor) *ChainCursor {
	return &ChainCursor{Cursor: c}
}

// ReadChained reads a big-endian value with deferred error checking.
// If a previous read failed, returns zero value without attempting read.
func ReadChained[T uint8 | uint16 | uint32 | uint64](cc *ChainCursor, what string) T {
	if cc.err != nil {
		var zero T
		return zero
	}
	val, err := ReadBE[T](cc.Cursor, what)
	if err != nil {
		cc.err = err
	}
	return val
}

// Bytes reads n bytes, accumulating any error.
func (cc *ChainCursor) Bytes(n int, what string) []byte {
	if cc.err != nil {
		return nil
	}
	b, err := cc.Cursor.Bytes(n, what)
	if err != nil {
		cc.err = err
	}
	return b
}

// Error returns the accumulated error, if any.
func (cc *ChainCursor) Error() error {
	return cc.err
}

// sizeOf returns the encoded width of T.
func sizeOf[T uint8 | uint16 | uint32 | uint64]() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}

// decode converts b to T using order.
func decode[T uint8 | uint16 | uint32 | uint64](b []byte, order binary.ByteOrder) T {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return T(b[0])
	case uint16:
		return T(order.Uint16(b))
	case uint32:
		return T(order.Uint32(b))
	default:
		return T(order.Uint64(b))
	}
}
