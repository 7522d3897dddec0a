// Package version reports the build version of the service.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Current is set at build time:
//
//	go build -ldflags "-X github.com/helpdesk-inc/helpdesk/internal/shared/version.Current=1.4.0"
var Current = "dev"

// Normalize ensures version string has "v" prefix for semver compatibility.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// String is the reported version: the canonical semver of a release build, or the raw
// value for development builds.
func String() string {
	if v := Normalize(Current); semver.IsValid(v) {
		return semver.Canonical(v)
	}
	return Current
}

// IsRelease reports whether the binary was built with a semver version.
func IsRelease() bool {
	return semver.IsValid(Normalize(Current))
}
