// Package iso9660 traverses the ISO9660 file system embedded in the
// first data track of a PlayStation disc image. All access goes through
// the backend's physical sector reads; the reader slices the user data
// window out of each sector according to the track geometry.
package iso9660

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/ArroyoCE/psx-dart-hasher/pkg/common"
	"github.com/ArroyoCE/psx-dart-hasher/pkg/disc"
)

// Primary Volume Descriptor layout within its logical sector.
const (
	pvdSector        = 16
	pvdTypePrimary   = 1
	pvdRootRecordOff = 156
)

// Directory record field offsets.
const (
	recExtentOff  = 2  // extent LBA, little-endian u32
	recSizeOff    = 10 // data length, little-endian u32
	recFlagsOff   = 25
	recNameLenOff = 32
	recNameOff    = 33

	flagDirectory = 0x02
)

// DirEntry is one parsed directory record. Names are stored uppercased
// with the ";N" version suffix stripped.
type DirEntry struct {
	Name  string
	LBA   uint32
	Size  uint32
	IsDir bool
}

// Reader traverses the file system on one data track of a backend.
type Reader struct {
	backend disc.Backend
	track   disc.Track
}

// NewReader creates a reader over the given (already refined) data track.
func NewReader(backend disc.Backend, track disc.Track) *Reader {
	return &Reader{backend: backend, track: track}
}

// Track returns the track the reader traverses.
func (r *Reader) Track() disc.Track {
	return r.track
}

// ReadUserData reads one physical sector and returns its user data
// window of track.DataSize bytes.
func (r *Reader) ReadUserData(sector uint32) ([]byte, error) {
	return r.ReadUserDataN(sector, r.track.DataSize)
}

// ReadUserDataN reads one physical sector and returns n bytes of user
// data starting at the track's data offset, regardless of the declared
// user data size.
func (r *Reader) ReadUserDataN(sector uint32, n uint32) ([]byte, error) {
	raw, err := r.backend.ReadSector(r.track, sector)
	if err != nil {
		return nil, err
	}
	start := r.track.DataOffset
	if uint64(start)+uint64(n) > uint64(len(raw)) {
		return nil, fmt.Errorf("%w: sector %d holds %d bytes, need %d at offset %d",
			disc.ErrSectorRead, sector, len(raw), n, start)
	}
	return raw[start : start+n], nil
}

// RootDirectory locates the root directory by validating the Primary
// Volume Descriptor at sector 16 and parsing the root record embedded
// at offset 156.
func (r *Reader) RootDirectory() (DirEntry, error) {
	pvd, err := r.ReadUserData(pvdSector)
	if err != nil {
		return DirEntry{}, err
	}
	if len(pvd) < pvdRootRecordOff+recNameOff || pvd[0] != pvdTypePrimary || string(pvd[1:6]) != "CD001" {
		return DirEntry{}, fmt.Errorf("%w", disc.ErrNoFilesystem)
	}

	record := pvd[pvdRootRecordOff:]
	return DirEntry{
		Name:  "",
		LBA:   binary.LittleEndian.Uint32(record[recExtentOff : recExtentOff+4]),
		Size:  binary.LittleEndian.Uint32(record[recSizeOff : recSizeOff+4]),
		IsDir: true,
	}, nil
}

// ReadDirectory parses all records of a directory extent. The directory
// content stream is the concatenation of user-data slices from
// consecutive sectors; a zero length byte skips to the next sector
// because records never cross sector boundaries. Iteration consumes
// exactly dir.Size bytes of the stream, never more.
func (r *Reader) ReadDirectory(dir DirEntry) ([]DirEntry, error) {
	userDataSize := r.track.DataSize
	var entries []DirEntry

	sector := dir.LBA
	consumed := uint32(0)
	var buf []byte
	offset := uint32(0)

	for consumed < dir.Size {
		if buf == nil || offset >= userDataSize {
			var err error
			buf, err = r.ReadUserData(sector)
			if err != nil {
				return nil, err
			}
			sector++
			offset = 0
		}

		recordLen := uint32(buf[offset])
		if recordLen == 0 {
			// Padding fills the rest of the sector
			consumed += userDataSize - offset
			buf = nil
			continue
		}
		if offset+recordLen > userDataSize {
			return nil, fmt.Errorf("%w: directory record crosses sector boundary", disc.ErrSectorRead)
		}

		record := buf[offset : offset+recordLen]
		offset += recordLen
		consumed += recordLen

		entry, ok := parseRecord(record)
		if !ok {
			continue
		}
		common.LogDebug(common.DebugDirectoryEntry, entry.Name, entry.LBA, entry.Size, entry.IsDir)
		entries = append(entries, entry)
	}

	return entries, nil
}

// parseRecord decodes one directory record. The "." and ".." entries,
// stored as single-byte names 0x00 and 0x01, are dropped before any
// name interpretation happens.
func parseRecord(record []byte) (DirEntry, bool) {
	if len(record) < recNameOff {
		return DirEntry{}, false
	}
	nameLen := uint32(record[recNameLenOff])
	if recNameOff+nameLen > uint32(len(record)) {
		return DirEntry{}, false
	}

	name := string(record[recNameOff : recNameOff+nameLen])
	if common.IsSpecialDirEntry(name) {
		return DirEntry{}, false
	}
	name = strings.ToUpper(common.CleanFileName(name))

	return DirEntry{
		Name:  name,
		LBA:   binary.LittleEndian.Uint32(record[recExtentOff : recExtentOff+4]),
		Size:  binary.LittleEndian.Uint32(record[recSizeOff : recSizeOff+4]),
		IsDir: record[recFlagsOff]&flagDirectory != 0,
	}, true
}

// FindFile resolves a "/"-separated path from the root directory down
// to a file entry. Comparison is case-insensitive with version suffixes
// stripped on both sides.
func (r *Reader) FindFile(path string) (DirEntry, error) {
	current, err := r.RootDirectory()
	if err != nil {
		return DirEntry{}, err
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		want := strings.ToUpper(common.CleanFileName(segment))
		last := i == len(segments)-1

		entries, err := r.ReadDirectory(current)
		if err != nil {
			return DirEntry{}, err
		}

		found := false
		for _, entry := range entries {
			if entry.Name != want {
				continue
			}
			if !last && !entry.IsDir {
				continue
			}
			current = entry
			found = true
			break
		}
		if !found {
			return DirEntry{}, fmt.Errorf("%w: %s", disc.ErrNoExecutable, path)
		}
	}

	return current, nil
}

// ReadFile returns the file contents as one contiguous buffer, copying
// user-data slices from consecutive sectors starting at the file's
// extent until exactly entry.Size bytes are read.
func (r *Reader) ReadFile(entry DirEntry) ([]byte, error) {
	out := make([]byte, 0, entry.Size)
	remaining := entry.Size
	sector := entry.LBA

	for remaining > 0 {
		slice, err := r.ReadUserData(sector)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", disc.ErrExecutableRead, err)
		}
		n := uint32(len(slice))
		if n > remaining {
			n = remaining
		}
		out = append(out, slice[:n]...)
		remaining -= n
		sector++
	}

	return out, nil
}
