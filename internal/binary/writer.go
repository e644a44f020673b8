package binary

import (
	"encoding/binary"

	"github.com/simonhull/audiotag/internal/types"
)

// maxSyncSafe is the largest value a 4-byte synchsafe integer can hold.
const maxSyncSafe = 1<<28 - 1

// Writer appends binary values to a growable buffer.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the written bytes. The slice aliases the buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// PutBytes appends raw bytes.
func (w *Writer) PutBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// PutString appends a string as bytes.
func (w *Writer) PutString(s string) {
	w.buf = append(w.buf, s...)
}

// PutUint8 appends one byte.
func (w *Writer) PutUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// PutUint16BE appends a big-endian uint16.
func (w *Writer) PutUint16BE(v uint16) {
	WriteBE(w, v)
}

// PutUint24BE appends the low 24 bits of v big-endian.
func (w *Writer) PutUint24BE(v uint32) {
	w.buf = append(w.buf, byte(v>>16), byte(v>>8), byte(v))
}

// PutUint32BE appends a big-endian uint32.
func (w *Writer) PutUint32BE(v uint32) {
	WriteBE(w, v)
}

// PutUint32LE appends a little-endian uint32.
func (w *Writer) PutUint32LE(v uint32) {
	WriteLE(w, v)
}

// PutSyncSafe appends v as a 4-byte synchsafe integer.
// Fails with MalformedInteger if v does not fit in 28 bits.
func (w *Writer) PutSyncSafe(v uint32) error {
	b, err := EncodeSyncSafe(v)
	if err != nil {
		return err
	}
	w.buf = append(w.buf, b[:]...)
	return nil
}

// SetUint32BE overwrites 4 bytes at off. Used to back-patch sizes.
func (w *Writer) SetUint32BE(off int, v uint32) {
	binary.BigEndian.PutUint32(w.buf[off:off+4], v)
}

// EncodeSyncSafe encodes v as a 4-byte synchsafe integer.
func EncodeSyncSafe(v uint32) ([4]byte, error) {
	if v > maxSyncSafe {
		return [4]byte{}, types.Errorf(types.KindMalformedInteger, "value %d does not fit in a synchsafe integer", v)
	}
	return [4]byte{
		byte(v>>21) & 0x7F,
		byte(v>>14) & 0x7F,
		byte(v>>7) & 0x7F,
		byte(v) & 0x7F,
	}, nil
}

// WriteBE appends a value of type T in big-endian byte order.
func WriteBE[T uint8 | uint16 | uint32 | uint64](w *Writer, val T) {
	writeEndian(w, val, binary.BigEndian)
}

// WriteLE appends a value of type T in little-endian byte order.
func WriteLE[T uint8 | uint16 | uint32 | uint64](w *Writer, val T) {
	writeEndian(w, val, binary.LittleEndian)
}

func writeEndian[T uint8 | uint16 | uint32 | uint64](w *Writer, val T, order binary.AppendByteOrder) {
	switch v := any(val).(type) {
	case uint8:
		w.buf = append(w.buf, v)
	case uint16:
		w.buf = order.AppendUint16(w.buf, v)
	case uint32:
		w.buf = order.AppendUint32(w.buf, v)
	case uint64:
		w.buf = order.AppendUint64(w.buf, v)
	}
}
