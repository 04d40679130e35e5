// Package cmd provides command-line interface functionality for the PSX DAT
// Hasher, a utility that computes canonical identification hashes for
// PlayStation disc images in CHD and BIN/CUE format.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
// It provides the main entry point for the hasher application.
var rootCmd = &cobra.Command{
	Use:   "psxhasher",
	Short: "Compute identification hashes for PlayStation disc images",
	Long: `PSX DAT Hasher - Computes the canonical identification hash used by
game databases for PlayStation 1 disc images.

Given a CHD archive or a BIN/CUE raw dump, the tool locates the game's
primary executable on the embedded ISO9660 file system and computes an
MD5 digest over the canonical executable path and its sector data.

Examples:
  psxhasher hash game.chd
  psxhasher hash --lib /usr/lib/libchdr.so game.chd other.cue
  psxhasher hash -v game.cue

Use 'psxhasher [command] --help' for more information about a command.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
