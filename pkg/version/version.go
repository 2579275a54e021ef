package version

import "runtime/debug"

// version is set with -ldflags "-X github.com/vinodismyname/hrpulse/pkg/version.version=v1.2.3".
var version = "dev"

// Version returns the linker-provided version, the module version of an
// installed binary, or "dev" with the short VCS revision for local builds.
func Version() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return version + "+" + s.Value[:7]
		}
	}
	return version
}
