// Package main is the entry point for farctl, a tool for .far save files.
//
// Usage:
//
//	farctl [flags] <command> [args]
//
// Commands:
//
//	inspect  - Show framing, size and version of save files
//	pack     - Encode a JSON document into a save file
//	unpack   - Decode a save file to JSON
//	list     - List save files below a directory
//	config   - Print the default service configuration
package main

import (
	"fmt"
	"os"

	"github.com/asger60/filehandler/cmd/farctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
