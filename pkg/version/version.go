// Package version exposes the application version derived from build
// metadata: -ldflags override > VCS info from debug.BuildInfo > "dev".
package version

import "runtime/debug"

const appName = "sentinel"

// commitOverride is set via -ldflags at build time for container builds
// where .git is unavailable.
var commitOverride string

// Full returns "sentinel/<short-commit>" for logging and health output,
// "sentinel/dev" when no build info is available.
func Full() string {
	return appName + "/" + commit()
}

func commit() string {
	if commitOverride != "" {
		return shortRev(commitOverride)
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return shortRev(s.Value)
			}
		}
	}
	return "dev"
}

func shortRev(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
