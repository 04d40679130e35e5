package common

import (
	"fmt"
	"log"
)

// Global variable to control debug output
var VerboseMode bool = false

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
}

// Error messages
const (
	ErrFailedToOpenArchive     = "failed to open disc archive"
	ErrFailedToReadHeader      = "failed to read archive header"
	ErrFailedToParseCueSheet   = "failed to parse cue sheet"
	ErrFailedToOpenBinFile     = "failed to open BIN file"
	ErrFailedToReadSector      = "failed to read sector"
	ErrFailedToReadDirectory   = "failed to read directory"
	ErrFailedToReadFile        = "failed to read file contents"
	ErrFailedToHashImage       = "failed to hash disc image"
	ErrFailedToLoadLibrary     = "failed to load CHD library"
	ErrFailedToReadConfig      = "failed to read configuration file"
	ErrFailedToParseConfig     = "failed to parse configuration YAML"
	ErrInvalidVolumeDescriptor = "invalid primary volume descriptor"
	ErrUnsupportedImageFormat  = "unsupported disc image format"
)

// Info messages
const (
	InfoProcessingImage = "Processing disc image"
	InfoExecutableFound = "Primary executable located"
	InfoHashComputed    = "Identification hash computed"
	InfoTracksFound     = "Tracks enumerated from archive"
)

// Debug messages
const (
	DebugTrackGeometry    = "Track %d: type=%s sector=%d offset=%d data=%d start=%d"
	DebugGeometryRefined  = "Geometry refined from sector 16: offset=%d data=%d"
	DebugBootPath         = "Boot path from SYSTEM.CNF: %s"
	DebugFallbackPath     = "Fallback executable: %s"
	DebugDirectoryEntry   = "Entry %s: LBA=%d size=%d dir=%t"
	DebugHunkRead         = "Hunk %d read (%d frames per hunk)"
	DebugMetadataPayload  = "Track metadata [%d]: %s"
	DebugExecutableTrunc  = "Executable truncated to %d bytes per PS-X EXE header"
	DebugSkippedBadTrack  = "Skipping malformed track metadata at index %d: %v"
	DebugLibraryLoaded    = "CHD library loaded from %s"
	DebugConfigLoaded     = "Configuration loaded from %s"
)

// Warning messages
const (
	WarnExecutableLarger  = "PS-X EXE header reports %d bytes but extent stores only %d"
	WarnFormTwoDataTrack  = "Data track refined to XA form 2 (%d byte payload); directory layout may misalign"
	WarnShortSectorRead   = "Short sector read at LBA %d, stopping"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[INFO] "+message, args...)
	} else {
		log.Printf("[INFO] %s", message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[WARN] "+message, args...)
	} else {
		log.Printf("[WARN] %s", message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[ERROR] "+message, args...)
	} else {
		log.Printf("[ERROR] %s", message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		log.Printf("[DEBUG] "+message, args...)
	} else {
		log.Printf("[DEBUG] %s", message)
	}
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}
