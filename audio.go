package audiotag

import (
	"github.com/simonhull/audiotag/internal/types"
)

// AudioProperties are the technical properties of an audio stream.
// Re-exported from internal/types.
type AudioProperties = types.AudioProperties
