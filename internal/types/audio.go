package types

import (
	"fmt"
	"time"
)

// AudioProperties is a read-only snapshot of an audio stream's technical
// properties, taken from the container's stream header.
type AudioProperties struct {
	Codec        string
	Duration     time.Duration
	BitrateKbps  int
	SampleRateHz int
	Channels     int
	BitDepth     int
	VBR          bool
}

// LengthSeconds returns the duration rounded down to whole seconds.
func (a AudioProperties) LengthSeconds() int {
	return int(a.Duration / time.Second)
}

// String returns a human-readable representation.
// Example output: "MP3 44.1kHz stereo 128kbps".
func (a AudioProperties) String() string {
	parts := []string{a.Codec}
	if a.SampleRateHz > 0 {
		parts = append(parts, fmt.Sprintf("%.1fkHz", float64(a.SampleRateHz)/1000))
	}
	if a.BitDepth > 0 {
		parts = append(parts, fmt.Sprintf("%d-bit", a.BitDepth))
	}
	if ch := channelDescription(a.Channels); ch != "" {
		parts = append(parts, ch)
	}
	if a.BitrateKbps > 0 {
		q := fmt.Sprintf("%dkbps", a.BitrateKbps)
		if a.VBR {
			q += " VBR"
		}
		parts = append(parts, q)
	}
	return join(parts, " ")
}

// channelDescription returns a human-readable channel description.
func channelDescription(channels int) string {
	switch channels {
	case 0:
		return ""
	case 1:
		return "mono"
	case 2:
		return "stereo"
	case 6:
		return "5.1"
	case 8:
		return "7.1"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}

// join concatenates strings with a separator, skipping empty strings.
func join(parts []string, sep string) string {
	var result string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if result != "" {
			result += sep
		}
		result += part
	}
	return result
}
