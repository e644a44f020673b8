package m4a

import (
	"fmt"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// atom is an MP4 box held in memory.
type atom struct {
	Type   string
	Offset int64 // of the header
	Header int   // 8, or 16 with a 64-bit size
	Data   []byte
}

// dataOffset is the file offset of the payload.
func (a atom) dataOffset() int64 {
	return a.Offset + int64(a.Header)
}

// readAtom reads the atom at the cursor position. A size of 0 extends the
// atom to the end of the enclosing buffer.
func readAtom(c *binutil.Cursor) (atom, error) {
	start := c.Offset()
	size32, err := c.Uint32BE("atom size")
	if err != nil {
		return atom{}, truncated(err)
	}
	typ, err := c.String(4, "atom type")
	if err != nil {
		return atom{}, truncated(err)
	}

	a := atom{Type: typ, Offset: start, Header: 8}
	size := uint64(size32)
	switch size32 {
	case 0:
		size = uint64(a.Header + c.Remaining())
	case 1:
		if size, err = binutil.ReadBE[uint64](c, "extended atom size"); err != nil {
			return atom{}, truncated(err)
		}
		a.Header = 16
	}
	if size < uint64(a.Header) {
		return atom{}, &types.Error{
			Kind:   types.KindMalformedHeader,
			Reason: fmt.Sprintf("atom %q declares size %d, below its %d byte header", typ, size, a.Header),
			Offset: start,
		}
	}
	n := size - uint64(a.Header)
	if n > uint64(c.Remaining()) {
		return atom{}, &types.Error{
			Kind:   types.KindTruncatedFrame,
			Reason: fmt.Sprintf("atom %q declares %d bytes but only %d remain", typ, n, c.Remaining()),
			Offset: start,
		}
	}
	a.Data, _ = c.Bytes(int(n), "atom "+typ)
	return a, nil
}

// readAtoms reads consecutive atoms from b, which starts at file offset
// base. Fewer than 8 trailing bytes are treated as padding.
func readAtoms(b []byte, base int64) ([]atom, error) {
	c := binutil.NewCursorAt(b, base)
	var out []atom
	for c.Remaining() >= 8 {
		a, err := readAtom(c)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// children reads the atoms in a's payload after skip bytes of fixed fields.
func (a atom) children(skip int) ([]atom, error) {
	if skip > len(a.Data) {
		return nil, &types.Error{Kind: types.KindTruncatedFrame, Reason: fmt.Sprintf("atom %q is too short", a.Type), Offset: a.Offset}
	}
	return readAtoms(a.Data[skip:], a.dataOffset()+int64(skip))
}

// find returns the first atom of the given type.
func find(atoms []atom, typ string) (atom, bool) {
	for _, a := range atoms {
		if a.Type == typ {
			return a, true
		}
	}
	return atom{}, false
}

// descend follows a path of container types from atoms. ok is false when
// any step is missing.
func descend(atoms []atom, path ...string) (a atom, ok bool, err error) {
	for i, typ := range path {
		if i > 0 {
			if atoms, err = a.children(containerSkip(a)); err != nil {
				return atom{}, false, err
			}
		}
		if a, ok = find(atoms, typ); !ok {
			return atom{}, false, nil
		}
	}
	return a, true, nil
}

// containerSkip is the size of the fixed fields before a container's
// children. meta is a full box with version and flags, except in files
// written by older QuickTime versions where hdlr follows directly.
func containerSkip(a atom) int {
	if a.Type == "meta" && !(len(a.Data) >= 8 && string(a.Data[4:8]) == "hdlr") {
		return 4
	}
	return 0
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
