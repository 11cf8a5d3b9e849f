// Package version carries build metadata injected with -ldflags.
package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Normalize ensures version string has "v" prefix for semver compatibility.
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" || strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

// IsRelease reports whether the running binary was built from a semver tag.
func IsRelease() bool {
	v := Normalize(Version)
	return semver.IsValid(v) && semver.Prerelease(v) == ""
}

// String renders the version line shown by !info and the CLI.
func String() string {
	v := Version
	if IsRelease() {
		v = semver.Canonical(Normalize(Version))
	}
	return fmt.Sprintf("%s (commit %s, built %s)", v, Commit, BuildTime)
}
