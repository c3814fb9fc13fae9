// Command folio is a keyboard-driven terminal browser for a personal
// library of books and papers.
package main

import (
	"os"
	"runtime/debug"

	"github.com/zjrosen/folio/cmd"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = ""
	commit  = ""
)

func main() {
	cmd.SetVersion(buildVersion())
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildVersion prefers ldflags and falls back to the module version that
// `go install` records.
func buildVersion() string {
	v := version
	if v == "" {
		v = "dev"
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	if commit != "" {
		v += " (" + commit + ")"
	}
	return v
}
