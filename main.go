/*
PSX DAT Hasher - Computes canonical identification hashes for PlayStation disc images.

Copyright © 2026 ArroyoCE
*/
package main

import (
	"fmt"
	"os"

	"github.com/ArroyoCE/psx-dart-hasher/cmd"
)

// Version information (injected at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Check for version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("PSX DAT Hasher %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		os.Exit(0)
	}

	cmd.Execute()
}
