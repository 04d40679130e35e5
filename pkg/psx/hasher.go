// Package psx locates the primary executable of a PlayStation disc and
// computes the canonical identification hash: the MD5 of the canonical
// executable path concatenated with the executable's in-disc sector
// data.
package psx

import (
	"crypto/md5" //nolint:gosec // identification hash, not a security boundary
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/ArroyoCE/psx-dart-hasher/pkg/common"
	"github.com/ArroyoCE/psx-dart-hasher/pkg/disc"
	"github.com/ArroyoCE/psx-dart-hasher/pkg/iso9660"
)

// psxExeMagic opens every PlayStation executable. The header's size
// field at offset 28 excludes the 2048-byte header itself.
const (
	psxExeMagic   = "PS-X EXE"
	psxExeSizeOff = 28
	psxExeHeader  = 2048
)

// hashSliceSize is the per-sector contribution to the hash stream. The
// executable is re-read sector by sector in 2048-byte slices regardless
// of the track's declared user data size.
const hashSliceSize = 2048

// bootPathRe extracts the boot path from SYSTEM.CNF. The keyword and
// surrounding whitespace are matched case-insensitively; the path runs
// to the next whitespace so a trailing ";1" version suffix survives.
var bootPathRe = regexp.MustCompile(`(?i)BOOT\s*=\s*(\S+)`)

// serialPrefixes are the executable name prefixes scanned for in the
// root directory when neither SYSTEM.CNF nor PSX.EXE exists.
var serialPrefixes = []string{"SLUS", "SLES", "SCUS"}

// ExecutableInfo is the result of hashing one disc image.
type ExecutableInfo struct {
	MD5           string // lowercase hex digest
	LBA           uint32
	Size          uint32
	Name          string
	CanonicalPath string // the path string fed into the hash
}

// DiscoverExecutable returns the raw boot path of the disc's primary
// executable. Discovery order: the BOOT= entry of SYSTEM.CNF, then a
// root PSX.EXE, then the first root file named with a known serial
// prefix.
func DiscoverExecutable(r *iso9660.Reader) (string, error) {
	if entry, err := r.FindFile("SYSTEM.CNF"); err == nil {
		content, err := r.ReadFile(entry)
		if err != nil {
			return "", err
		}
		if m := bootPathRe.FindSubmatch(content); m != nil {
			raw := strings.TrimSpace(string(m[1]))
			common.LogDebug(common.DebugBootPath, raw)
			return raw, nil
		}
	}

	if _, err := r.FindFile("PSX.EXE"); err == nil {
		common.LogDebug(common.DebugFallbackPath, "PSX.EXE")
		return "PSX.EXE", nil
	}

	root, err := r.RootDirectory()
	if err != nil {
		return "", err
	}
	entries, err := r.ReadDirectory(root)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		for _, prefix := range serialPrefixes {
			if strings.HasPrefix(entry.Name, prefix) {
				common.LogDebug(common.DebugFallbackPath, entry.Name)
				return entry.Name, nil
			}
		}
	}

	return "", disc.ErrNoExecutable
}

// HashPath canonicalizes the raw boot path into the string fed to the
// hash: the "cdrom:" device prefix is stripped, separators become
// backslashes and leading backslashes are dropped. Case and any ";N"
// version suffix are preserved.
func HashPath(raw string) string {
	path := stripDevicePrefix(raw)
	path = strings.ReplaceAll(path, "/", "\\")
	return strings.TrimLeft(path, "\\")
}

// LookupPath canonicalizes the raw boot path for ISO traversal: device
// prefix stripped, separators normalized to "/", leading separators and
// the version suffix dropped. Segment comparison happens
// case-insensitively inside the reader.
func LookupPath(raw string) string {
	path := stripDevicePrefix(raw)
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimLeft(path, "/")
	return common.CleanFileName(path)
}

// stripDevicePrefix removes a leading "cdrom:" (any case).
func stripDevicePrefix(path string) string {
	const prefix = "cdrom:"
	if len(path) >= len(prefix) && strings.EqualFold(path[:len(prefix)], prefix) {
		return path[len(prefix):]
	}
	return path
}

// HashExecutable resolves the discovered boot path, applies the PS-X EXE
// truncation rule and computes the identification hash.
//
// The hash stream is the ASCII canonical path followed by the
// executable's sectors re-read in 2048-byte slices; a pre-read
// contiguous buffer is never hashed directly.
func HashExecutable(r *iso9660.Reader, rawPath string) (*ExecutableInfo, error) {
	hashPath := HashPath(rawPath)
	lookupPath := LookupPath(rawPath)

	entry, err := r.FindFile(lookupPath)
	if err != nil {
		return nil, err
	}

	content, err := r.ReadFile(entry)
	if err != nil {
		return nil, err
	}

	hashSize := truncatedSize(content)

	digest := md5.New() //nolint:gosec // identification hash
	digest.Write([]byte(hashPath))

	// Each sector contributes a full 2048-byte slice, including the
	// last one even when the file size leaves a remainder.
	sectors := (hashSize + hashSliceSize - 1) / hashSliceSize
	for i := uint32(0); i < sectors; i++ {
		slice, err := r.ReadUserDataN(entry.LBA+i, hashSliceSize)
		if err != nil || len(slice) == 0 {
			common.LogWarn(common.WarnShortSectorRead, entry.LBA+i)
			break
		}
		digest.Write(slice)
	}

	return &ExecutableInfo{
		MD5:           hex.EncodeToString(digest.Sum(nil)),
		LBA:           entry.LBA,
		Size:          entry.Size,
		Name:          entry.Name,
		CanonicalPath: hashPath,
	}, nil
}

// truncatedSize applies the PS-X EXE header rule: when the magic is
// present, the hashed size is the header's code/data size plus the
// 2048-byte header. A reported size beyond the stored extent keeps the
// extent size; the buffer is never padded.
func truncatedSize(content []byte) uint32 {
	size := uint32(len(content))
	if len(content) < psxExeSizeOff+4 || string(content[:len(psxExeMagic)]) != psxExeMagic {
		return size
	}

	adjusted := binary.LittleEndian.Uint32(content[psxExeSizeOff:psxExeSizeOff+4]) + psxExeHeader
	if adjusted < size {
		common.LogDebug(common.DebugExecutableTrunc, adjusted)
		return adjusted
	}
	if adjusted > size {
		common.LogWarn(common.WarnExecutableLarger, adjusted, size)
	}
	return size
}
