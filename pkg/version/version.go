// Package version holds the build identity injected with
// -ldflags "-X github.com/simult/webdiag/pkg/version.version=... -X github.com/simult/webdiag/pkg/version.build=...".
package version

var (
	version string
	build   string
)

// Version returns version defined by -ldflags, "dev" if unset
func Version() string {
	if version == "" {
		return "dev"
	}
	return version
}

// Build returns build defined by -ldflags, "unknown" if unset
func Build() string {
	if build == "" {
		return "unknown"
	}
	return build
}

// String formats the build identity for the startup log line.
func String() string {
	return Version() + " (" + Build() + ")"
}
