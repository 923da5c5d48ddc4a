// Nerve Center coordinates AI coding agents working concurrently on the
// same project: a priority job board, a file-path lock registry, a shared
// notepad, a thin RAG search facility, and a session archiver, spoken over
// HTTP, MCP, and a CLI.
package main

import (
	"os"
	"runtime/debug"

	"github.com/nervecenter/nerve-center/internal/commands"
)

// version is set via ldflags (-X main.version=v1.0.0) or detected
// automatically from Go module info embedded by go install.
var version = "dev"

func main() {
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
	}
	if err := commands.Execute(version); err != nil {
		os.Exit(1)
	}
}
