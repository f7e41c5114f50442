package build

import (
	"fmt"
	"strings"
)

// Set via -ldflags "-X github.com/apoxy-dev/apoxy-static/build.BuildVersion=...".
var (
	devBuildVersion = "0.0.0-dev"
	BuildVersion    = "0.0.0-dev"
	BuildDate       = "n/a"
	CommitHash      = "n/a"
)

// IsDev returns true if the build is a development build.
func IsDev() bool {
	return strings.HasSuffix(BuildVersion, "-dev")
}

// Version returns the version string in the format of "vX.Y.Z (<commit>), built <date>".
func Version() string {
	if BuildVersion == devBuildVersion {
		return BuildVersion
	}
	return fmt.Sprintf("%s (%s), built %s", BuildVersion, CommitHash, BuildDate)
}

// Release returns the release name reported to Sentry.
func Release() string {
	if IsDev() {
		return "apoxy-static@" + BuildVersion
	}
	return fmt.Sprintf("apoxy-static@%s+%s", BuildVersion, CommitHash)
}
