package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// Set at build time via -ldflags "-X github.com/fulmenhq/noticegen/pkg/buildinfo.BinaryVersion=...".
var (
	BinaryVersion = "dev"
	GitCommit     = ""
	BuildDate     = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Module    string `json:"moduleVersion,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// ModuleVersion returns the module version embedded by the Go toolchain (when available).
func ModuleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return ""
}

// Current collects build information for the version command.
func Current() Info {
	return Info{
		Version:   BinaryVersion,
		Module:    ModuleVersion(),
		Commit:    GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
