package audiotag

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the semantic version of the audiotag library.
const Version = "0.1.0"

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	// Revision and Time come from the VCS stamp the Go toolchain embeds;
	// both are "unknown" for builds outside a checkout.
	Revision  string
	Time      string
	Modified  bool
	GoVersion string
}

// ReadBuildInfo returns the library version and the build's VCS stamp.
func ReadBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Revision:  "unknown",
		Time:      "unknown",
		GoVersion: runtime.Version(),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.time":
			info.Time = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String formats b on one line:
//
//	audiotag 0.1.0 (rev 3f2a9c1d0b7e, go1.23.4, built 2026-01-02T15:04:05Z)
func (b BuildInfo) String() string {
	rev := b.Revision
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if b.Modified {
		rev += "-dirty"
	}
	return fmt.Sprintf("audiotag %s (rev %s, %s, built %s)", b.Version, rev, b.GoVersion, b.Time)
}
