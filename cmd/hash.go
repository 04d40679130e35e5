// Package cmd provides command-line interface for disc image hashing.
// This file contains the command that computes identification hashes for
// PlayStation disc images in CHD and BIN/CUE format.
package cmd

import (
	"fmt"

	"github.com/ArroyoCE/psx-dart-hasher/pkg"
	"github.com/ArroyoCE/psx-dart-hasher/pkg/common"
	"github.com/ArroyoCE/psx-dart-hasher/pkg/config"
	"github.com/spf13/cobra"
)

// hashCmd computes identification hashes for disc image files.
// It opens each image, locates the primary executable on the ISO9660 file
// system and prints the resulting MD5 together with executable details
// when verbose mode is enabled.
var hashCmd = &cobra.Command{
	Use:   "hash [image_file...]",
	Short: "Compute identification hashes for disc images",
	Long: `Compute identification hashes for PlayStation disc images.

This command reads disc images in CHD (.chd) or BIN/CUE (.cue) format,
locates the primary executable on the ISO9660 file system and computes
the canonical MD5 identification hash. When verbose mode is enabled (-v),
it displays detailed information about the executable including:
  - LBA (Logical Block Address)
  - MSF (Minutes:Seconds:Frames)
  - Size in bytes
  - Canonical executable path

When no image file is given, the configured scan directory is searched
for *.chd and *.cue files.

Example:
  psxhasher hash game.chd
  psxhasher hash -v game.cue
  psxhasher hash --lib /usr/lib/libchdr.so game.chd`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("error getting verbose flag: %w", err)
		}
		libPath, err := cmd.Flags().GetString("lib")
		if err != nil {
			return fmt.Errorf("error getting lib flag: %w", err)
		}
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return fmt.Errorf("error getting config flag: %w", err)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		common.SetVerboseMode(verbose || cfg.Verbose)
		if libPath == "" {
			libPath = cfg.CHDLibrary
		}

		files := args
		if len(files) == 0 {
			files, err = config.ScanImages(cfg.ScanDir)
			if err != nil {
				return fmt.Errorf("failed to scan directory %s: %w", cfg.ScanDir, err)
			}
			if len(files) == 0 {
				return fmt.Errorf("no disc images found in %s", cfg.ScanDir)
			}
		}

		processor := pkg.NewDiscProcessor(libPath)

		failed := 0
		for _, file := range files {
			info, err := processor.Process(file)
			if err != nil {
				common.LogError(common.ErrFailedToHashImage+" %s: %v", file, err)
				failed++
				continue
			}
			processor.PrintResult(file, info)
		}

		if failed > 0 {
			return fmt.Errorf("failed to hash %d of %d disc images", failed, len(files))
		}
		return nil
	},
}

// init initializes the hash command with its flags.
func init() {
	rootCmd.AddCommand(hashCmd)

	hashCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output with detailed executable information")
	hashCmd.Flags().String("lib", "", "Path to the CHD decompression library")
	hashCmd.Flags().String("config", "", "Path to the YAML configuration file")
}
