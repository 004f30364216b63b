package version

import "runtime/debug"

// Version is set with -ldflags at release time.
var Version = "unknown"

// go install does not apply -ldflags, but it does stamp the module version
// into the build info.
func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		Version = v
	}
}
