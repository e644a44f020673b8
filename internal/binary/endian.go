package binary

import (
	"encoding/binary"
	"fmt"
)

// ReadBE reads a numeric value of type T using big-endian byte order and
// advances the cursor.
//
// Used by ID3v2 frame headers and FLAC metadata block headers.
//
// Example:
//
//	size, err := binary.ReadBE[uint32](c, "frame size")
func ReadBE[T uint8 | uint16 | uint32 | uint64](c *Cursor, what string) (T, error) {
	return readEndian[T](c, what, binary.BigEndian)
}

// ReadLE reads a numeric value of type T using little-endian byte order and
// advances the cursor.
//
// Used by Vorbis comment length prefixes.
//
// Example:
//
//	length, err := binary.ReadLE[uint32](c, "vorbis comment length")
func ReadLE[T uint8 | uint16 | uint32 | uint64](c *Cursor, what string) (T, error) {
	return readEndian[T](c, what, binary.LittleEndian)
}

func readEndian[T uint8 | uint16 | uint32 | uint64](c *Cursor, what string, order binary.ByteOrder) (T, error) {
	b, err := c.Bytes(sizeOf[T](), what)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](b, order), nil
}

// outOfBoundsReason formats the message for a read past the end of a buffer.
func outOfBoundsReason(n int, off, size int64, what string) string {
	if off >= size {
		return fmt.Sprintf("offset %d out of bounds (size: %d) while reading %s", off, size, what)
	}
	return fmt.Sprintf("read of %d bytes at offset %d would exceed size %d while reading %s", n, off, size, what)
}
