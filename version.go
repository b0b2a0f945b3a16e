package alticon

import (
	"runtime/debug"
	"strings"

	xstrings "github.com/frantjc/x/strings"
	"golang.org/x/mod/semver"
)

var (
	// Version is set at build time with
	// -ldflags "-X github.com/frantjc/alticon.Version=...".
	Version = "0.0.0"
	// Prerelease is set at build time with
	// -ldflags "-X github.com/frantjc/alticon.Prerelease=...".
	Prerelease = ""
)

// SemVer returns the semantic version of alticon, preferring the module
// version recorded by `go install` when none was set at build time.
func SemVer() string {
	v := Version
	if Prerelease != "" {
		v += "-" + Prerelease
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}

	if Version == "0.0.0" && Prerelease == "" && semver.IsValid(buildInfo.Main.Version) {
		v = strings.TrimPrefix(buildInfo.Main.Version, "v")
	}

	if !semver.IsValid(xstrings.EnsurePrefix(v, "v")) {
		return v
	}

	if semver.Build(xstrings.EnsurePrefix(v, "v")) == "" {
		for _, setting := range buildInfo.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
				v += "+" + setting.Value[:7]
				break
			}
		}
	}

	return v
}
