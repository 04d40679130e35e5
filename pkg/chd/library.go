// Package chd provides a disc.Backend over CHD (Compressed Hunks of Data)
// archives. Hunk decompression is delegated to the external CHD library,
// loaded at runtime and consumed through a narrow five-function surface:
// open, close, read, get_header and get_metadata.
package chd

import (
	"fmt"
	"unsafe"

	"github.com/ArroyoCE/psx-dart-hasher/pkg/common"
	"github.com/ArroyoCE/psx-dart-hasher/pkg/disc"
	"github.com/ebitengine/purego"
)

// DefaultLibraryName is the shared object loaded when no explicit
// library path is configured.
const DefaultLibraryName = "libchdr.so"

const (
	// chdOpenReadOnly is the library's read-only open mode.
	chdOpenReadOnly = 1

	// chdErrMetadataNotFound is returned by get_metadata when no entry
	// exists for the requested tag and index.
	chdErrMetadataNotFound = 19
)

// rawHeader mirrors the library's chd_header layout up to the unit size
// field. Only the fields consumed by the backend are named; the digest
// blocks exist to keep the offsets aligned with the C struct.
type rawHeader struct {
	Length       uint32
	Version      uint32
	Flags        uint32
	Compression  [4]uint32
	HunkBytes    uint32
	TotalHunks   uint32
	LogicalBytes uint64
	MapOffset    uint64
	MetaOffset   uint64
	MD5          [16]byte
	ParentMD5    [16]byte
	SHA1         [20]byte
	RawSHA1      [20]byte
	ParentSHA1   [20]byte
	UnitBytes    uint32
}

// Header carries the archive-level fields the backend needs.
// HunkBytes must be a whole multiple of UnitBytes.
type Header struct {
	Version      uint32
	HunkBytes    uint32
	TotalHunks   uint32
	LogicalBytes uint64
	UnitBytes    uint32
}

// Library is the loaded external CHD library. All archive handles opened
// through it borrow its function pointers, so it must outlive them.
type Library struct {
	open        func(path string, mode int32, parent uintptr, out *uintptr) int32
	close       func(handle uintptr)
	read        func(handle uintptr, hunk uint32, buf unsafe.Pointer) int32
	getHeader   func(handle uintptr) uintptr
	getMetadata func(handle uintptr, tag, index uint32, buf unsafe.Pointer, buflen uint32,
		outlen, outtag *uint32, outflags *uint8) int32
}

// LoadLibrary loads the CHD decompression library from path and resolves
// the consumed function surface. An empty path loads the default library
// name through the system loader search path.
func LoadLibrary(path string) (*Library, error) {
	if path == "" {
		path = DefaultLibraryName
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", disc.ErrArchiveOpen, err)
	}

	lib := &Library{}
	purego.RegisterLibFunc(&lib.open, handle, "chd_open")
	purego.RegisterLibFunc(&lib.close, handle, "chd_close")
	purego.RegisterLibFunc(&lib.read, handle, "chd_read")
	purego.RegisterLibFunc(&lib.getHeader, handle, "chd_get_header")
	purego.RegisterLibFunc(&lib.getMetadata, handle, "chd_get_metadata")

	common.LogDebug(common.DebugLibraryLoaded, path)
	return lib, nil
}

// openArchive opens a CHD file read-only and returns the native handle.
func (l *Library) openArchive(path string) (uintptr, error) {
	var handle uintptr
	if code := l.open(path, chdOpenReadOnly, 0, &handle); code != 0 {
		return 0, fmt.Errorf("%w: %s (error %d)", disc.ErrArchiveOpen, path, code)
	}
	return handle, nil
}

// header reads the archive header through the borrowed header pointer.
func (l *Library) header(handle uintptr) (Header, error) {
	ptr := l.getHeader(handle)
	if ptr == 0 {
		return Header{}, fmt.Errorf("%w: null header", disc.ErrHeaderInvalid)
	}
	raw := (*rawHeader)(unsafe.Pointer(ptr)) //nolint:govet // borrowed pointer owned by the library
	return Header{
		Version:      raw.Version,
		HunkBytes:    raw.HunkBytes,
		TotalHunks:   raw.TotalHunks,
		LogicalBytes: raw.LogicalBytes,
		UnitBytes:    raw.UnitBytes,
	}, nil
}

// metadata fetches the metadata payload for (tag, index). The second
// return value reports whether an entry existed.
func (l *Library) metadata(handle uintptr, tag uint32, index uint32) (string, bool, error) {
	buf := make([]byte, 256)
	var outLen, outTag uint32
	var outFlags uint8

	code := l.getMetadata(handle, tag, index, unsafe.Pointer(&buf[0]),
		uint32(len(buf)), &outLen, &outTag, &outFlags)
	switch code {
	case 0:
		if outLen > uint32(len(buf)) {
			outLen = uint32(len(buf))
		}
		// Payloads are NUL-terminated ASCII strings
		payload := buf[:outLen]
		for i, b := range payload {
			if b == 0 {
				payload = payload[:i]
				break
			}
		}
		return string(payload), true, nil
	case chdErrMetadataNotFound:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("%w: metadata query failed (error %d)", disc.ErrTrackMetadata, code)
	}
}

// metadataTag packs a four-character metadata tag into its big-endian
// ASCII quad representation.
func metadataTag(tag string) uint32 {
	return uint32(tag[0])<<24 | uint32(tag[1])<<16 | uint32(tag[2])<<8 | uint32(tag[3])
}
