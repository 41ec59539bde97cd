// Package version exposes build metadata set via ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/mdpo/internal/version.Version=v0.3.0"
package version

import (
	"fmt"
	"runtime/debug"
)

var Version = "unknown"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Resolved returns Version, falling back to the module version recorded by
// the Go toolchain for `go install` builds.
func Resolved() string {
	if Version != "unknown" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// Generator is the X-Generator value written into PO headers.
func Generator() string {
	return "mdpo " + Resolved()
}

// String is the --version output.
func String() string {
	return fmt.Sprintf("mdpo %s (commit %s, built %s)", Resolved(), GitCommit, BuildTime)
}
