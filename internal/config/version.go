package config

import (
	"os"
	"runtime/debug"
	"strings"
)

// Version is set at build time with -ldflags "-X tallychart/internal/config.Version=..."
var Version = ""

const fallbackVersion = "0.1.0"

// GetVersion returns the version from APP_VERSION, the linker flag or module build info
func GetVersion() string {
	if envVersion := strings.TrimSpace(os.Getenv("APP_VERSION")); envVersion != "" {
		return envVersion
	}
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return strings.TrimPrefix(v, "v")
		}
	}
	return fallbackVersion
}
