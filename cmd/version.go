package cmd

import (
	"runtime/debug"
)

type (
	// BuildInfo is the version control info of the running binary
	BuildInfo struct {
		GoVersion   string
		ModVersion  string
		VCS         string
		VCSRevision string
		VCSTime     string
		VCSModified bool
	}
)

// ReadVCSBuildInfo reads the build info embedded by the go toolchain
func ReadVCSBuildInfo() BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return BuildInfo{
			ModVersion: "dev",
		}
	}
	b := BuildInfo{
		GoVersion:  info.GoVersion,
		ModVersion: info.Main.Version,
	}
	for _, i := range info.Settings {
		switch i.Key {
		case "vcs":
			b.VCS = i.Value
		case "vcs.revision":
			b.VCSRevision = i.Value
		case "vcs.time":
			b.VCSTime = i.Value
		case "vcs.modified":
			b.VCSModified = i.Value == "true"
		}
	}
	if b.ModVersion == "" || b.ModVersion == "(devel)" {
		b.ModVersion = "dev"
		if b.VCSRevision != "" {
			b.ModVersion = "dev-" + b.VCSRevision
		}
	}
	return b
}
