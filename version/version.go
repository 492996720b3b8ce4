package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var (
	// Set at build time using -ldflags.
	Version   = "dev"
	GitCommit = ""
)

// Product is the name sent in the default User-Agent header.
const Product = "apikit"

// Info represents version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	IsRelease bool   `json:"is_release"`
	IsDirty   bool   `json:"is_dirty"`
}

// GetVersionInfo returns version information, filling the commit from the
// embedded VCS build settings when it was not set with -ldflags.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = buildInfo.GoVersion
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = setting.Value
				}
			case "vcs.modified":
				info.IsDirty = setting.Value == "true"
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}

	return info
}

// GetShortVersion returns "<version>[-<commit>][-dirty]".
func GetShortVersion() string {
	info := GetVersionInfo()
	if info.GitCommit == "" {
		return info.Version
	}
	if info.IsDirty {
		return fmt.Sprintf("%s-%s-dirty", info.Version, info.GitCommit)
	}
	return fmt.Sprintf("%s-%s", info.Version, info.GitCommit)
}

// UserAgent returns the default User-Agent value, "apikit/<version>".
func UserAgent() string {
	return Product + "/" + Version
}
