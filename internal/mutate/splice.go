// Package mutate rewrites audio files: it splices a new tag block into the
// file contents and replaces the file on disk atomically.
package mutate

import (
	"github.com/simonhull/audiotag/internal/types"
)

// Apply returns original with block substituted for the bytes at loc.
//
// When loc is nil the file has no tag block and block is inserted at the
// start or end according to placement. Bytes outside the replaced range are
// copied unchanged. original is never modified.
func Apply(original []byte, loc *types.TagBlockLocation, block []byte, placement types.Placement) ([]byte, error) {
	size := int64(len(original))

	if loc == nil {
		out := make([]byte, 0, len(original)+len(block))
		if placement == types.Append {
			out = append(out, original...)
			return append(out, block...), nil
		}
		out = append(out, block...)
		return append(out, original...), nil
	}

	if loc.Offset < 0 || loc.Length < 0 || loc.End() > size {
		return nil, &types.Error{
			Kind:   types.KindOutOfBounds,
			Reason: "tag block range exceeds file size",
			Offset: loc.Offset,
		}
	}

	out := make([]byte, 0, size-loc.Length+int64(len(block)))
	out = append(out, original[:loc.Offset]...)
	out = append(out, block...)
	return append(out, original[loc.End():]...), nil
}
