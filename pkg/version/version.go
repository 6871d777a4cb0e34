package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Summary returns a human-friendly version string for CLI output.
// Release builds are normalized to "vMAJOR.MINOR.PATCH[-pre]"; anything else is printed as set.
func Summary() string {
	raw := strings.TrimSpace(Version)
	if raw == "" {
		return "dev"
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return raw
	}
	return "v" + v.String()
}

// UserAgent is sent with every GitHub API request.
func UserAgent() string {
	return "prflow/" + Summary()
}
