// Package buildinfo reports which tracegraph build is running.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/tracegraph/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/tracegraph/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/tracegraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with "go install ...@version" carry no ldflags; for those the
// module version and VCS stamp embedded by the Go toolchain are used instead.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Unstamped values.
const (
	devVersion  = "dev"
	noCommit    = "none"
	unknownDate = "unknown"
)

var (
	// Version is the semantic version. It also scopes cache keys, so graphs
	// cached by one release are never served by another.
	Version = devVersion

	// Commit is the git commit SHA.
	Commit = noCommit

	// Date is the build timestamp.
	Date = unknownDate
)

func init() {
	if bi, ok := debug.ReadBuildInfo(); ok {
		Version, Commit, Date = fromBuildInfo(bi, Version, Commit, Date)
	}
}

// fromBuildInfo fills unstamped values from the toolchain's build info.
func fromBuildInfo(bi *debug.BuildInfo, version, commit, date string) (string, string, string) {
	if version == devVersion && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == noCommit:
			commit = s.Value
		case s.Key == "vcs.time" && date == unknownDate:
			date = s.Value
		}
	}
	return version, commit, date
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\ngo: %s", Version, Commit, Date, runtime.Version())
}

// Template returns the version template for cobra.
func Template() string {
	return "{{.Name}} version " + Version + "\n" +
		"commit: " + Commit + "\n" +
		"built: " + Date + "\n" +
		"go: " + runtime.Version() + "\n"
}
