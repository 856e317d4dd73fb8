// Package misc keeps build time program information.
package misc

import (
	"runtime/debug"
)

const appName = "itoc"

// set with -ldflags "-X itoc/misc.version=..." by the build
var (
	version = "dev"
	gitHash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns commit hash the binary was built from. When not set at
// link time the VCS stamp embedded by the go tool is used.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
