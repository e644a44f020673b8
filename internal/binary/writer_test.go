package binary

import (
	"bytes"
	"errors"
	"testing"

	"github.com/simonhull/audiotag/internal/types"
)

func TestWriter_Uint32BE(t *testing.T) {
	w := NewWriter(0)
	w.PutUint32BE(0x12345678)

	expected := []byte{0x12, 0x34, 0x56, 0x78}
	if !bytes.Equal(w.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, w.Bytes())
	}
}

func TestWriter_Uint32LE(t *testing.T) {
	w := NewWriter(0)
	w.PutUint32LE(0x12345678)

	expected := []byte{0x78, 0x56, 0x34, 0x12}
	if !bytes.Equal(w.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, w.Bytes())
	}
}

func TestWriter_Len(t *testing.T) {
	w := NewWriter(2)

	if w.Len() != 0 {
		t.Errorf("expected initial length 0, got %d", w.Len())
	}

	WriteBE[uint8](w, 0x01)
	if w.Len() != 1 {
		t.Errorf("expected length 1 after writing uint8, got %d", w.Len())
	}

	WriteBE[uint16](w, 0x0203)
	if w.Len() != 3 {
		t.Errorf("expected length 3 after writing uint16, got %d", w.Len())
	}

	w.PutUint24BE(0x040506)
	w.PutString("ab")
	w.PutBytes([]byte{0xFF})
	WriteLE[uint64](w, 1)
	if w.Len() != 17 {
		t.Errorf("expected length 17, got %d", w.Len())
	}
}

func TestWriter_SyncSafe(t *testing.T) {
	tests := []struct {
		name    string
		value   uint32
		want    []byte
		wantErr bool
	}{
		{"zero", 0, []byte{0, 0, 0, 0}, false},
		{"257", 257, []byte{0x00, 0x00, 0x02, 0x01}, false},
		{"max", 1<<28 - 1, []byte{0x7F, 0x7F, 0x7F, 0x7F}, false},
		{"too large", 1 << 28, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(4)
			err := w.PutSyncSafe(tt.value)
			if tt.wantErr {
				if !errors.Is(err, types.ErrMalformedInteger) {
					t.Fatalf("expected MalformedInteger, got %v", err)
				}
				if w.Len() != 0 {
					t.Errorf("failed write appended %d bytes", w.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(w.Bytes(), tt.want) {
				t.Errorf("expected %v, got %v", tt.want, w.Bytes())
			}
		})
	}
}

func TestWriter_SyncSafeRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 16383, 16384, 1 << 21, 1<<28 - 1} {
		w := NewWriter(4)
		if err := w.PutSyncSafe(v); err != nil {
			t.Fatalf("PutSyncSafe(%d): %v", v, err)
		}
		got, err := NewCursor(w.Bytes()).SyncSafe(4, "round trip")
		if err != nil {
			t.Fatalf("SyncSafe(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d -> %d", v, got)
		}
	}
}

func TestWriter_SetUint32BE(t *testing.T) {
	w := NewWriter(8)
	w.PutUint32BE(0)
	w.PutString("data")
	w.SetUint32BE(0, 4)

	expected := []byte{0, 0, 0, 4, 'd', 'a', 't', 'a'}
	if !bytes.Equal(w.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, w.Bytes())
	}
}
