// Package common provides common utilities for CD-ROM operations.
// This file contains functions for MSF conversion and CD-ROM related utilities.
package common

import "fmt"

// LBAToMSF converts LBA (Logical Block Address) to MSF (Minutes:Seconds:Frames) format
// LBA to MSF conversion: LBA + 150 (pregap)
func LBAToMSF(lba uint32) string {
	totalFrames := lba + 150

	minutes := totalFrames / (60 * 75)
	seconds := (totalFrames % (60 * 75)) / 75
	frames := totalFrames % 75

	return fmt.Sprintf("%02d:%02d:%02d", minutes, seconds, frames)
}

// MSFToFrames converts an MSF timecode to an absolute frame count.
// 75 frames per second, 60 seconds per minute.
func MSFToFrames(minutes, seconds, frames uint32) uint32 {
	return minutes*60*75 + seconds*75 + frames
}

// GetSizeInSectors calculates the number of sectors needed for a given size in bytes
func GetSizeInSectors(sizeBytes uint32) uint32 {
	const sectorSize = 2048
	return (sizeBytes + sectorSize - 1) / sectorSize
}

// CleanFileName removes version numbers from ISO9660 file names
// (e.g., "FILE.EXT;1" -> "FILE.EXT")
func CleanFileName(fileName string) string {
	for i := 0; i < len(fileName); i++ {
		if fileName[i] == ';' {
			return fileName[:i]
		}
	}
	return fileName
}

// IsSpecialDirEntry checks if a directory entry is "." or ".."
// ISO9660 stores these as single-byte names 0x00 and 0x01.
func IsSpecialDirEntry(fileName string) bool {
	return fileName == "\x00" || fileName == "\x01"
}
