package audiotag

import (
	"github.com/simonhull/audiotag/internal/types"
)

// TagSet is an ordered, case-insensitive multimap of tag keys to values.
// Re-exported from internal/types.
type TagSet = types.TagSet

// NewTagSet returns an empty TagSet.
func NewTagSet() TagSet {
	return types.NewTagSet()
}

// TagSetFromMap builds a TagSet from a plain map, inserting keys in sorted
// order.
func TagSetFromMap(m map[string][]string) TagSet {
	return types.FromMap(m)
}
