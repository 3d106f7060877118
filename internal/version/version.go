// Package version carries build identification, overridden at link
// time via -ldflags "-X ...".
package version

import "fmt"

var (
	// Version is the release version of the converter.
	Version = "dev"
	// GitSHA is the git commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String formats the full build identification line.
func String() string {
	return fmt.Sprintf("plan2model %s (%s, built %s)", Version, GitSHA, BuildTime)
}
