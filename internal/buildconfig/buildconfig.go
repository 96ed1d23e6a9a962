package buildconfig

import (
	"fmt"
	"runtime"
)

// Build-time variables injected via ldflags:
//
//	-X github.com/Harshitk-cp/sheetqa/internal/buildconfig.version=v0.3.0
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = ""
)

func Version() string {
	return version
}

func Commit() string {
	return commit
}

// String formats the build for the CLI version command.
func String() string {
	s := fmt.Sprintf("sheetqa %s (%s, %s)", version, commit, runtime.Version())
	if buildDate != "" {
		s += " built " + buildDate
	}
	return s
}

// VersionInfo returns build information for the /stats endpoint.
func VersionInfo() map[string]string {
	info := map[string]string{
		"version": version,
		"commit":  commit,
	}
	if buildDate != "" {
		info["build_date"] = buildDate
	}
	return info
}
