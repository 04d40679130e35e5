package chd

import (
	"fmt"
	"unsafe"

	"github.com/ArroyoCE/psx-dart-hasher/pkg/common"
	"github.com/ArroyoCE/psx-dart-hasher/pkg/disc"
)

// Backend reads physical sectors out of a CHD archive. The native handle
// stays open for the session lifetime and is released by Close. Sector
// reads share a single hunk buffer, so the backend is not safe for
// concurrent use.
type Backend struct {
	lib           *Library
	handle        uintptr
	header        Header
	framesPerHunk uint32
	hunkBuf       []byte
	tracks        []disc.Track
}

// Open opens the CHD archive at path through the loaded library, reads
// its header and enumerates the track table from the metadata chain.
func Open(lib *Library, path string) (*Backend, error) {
	handle, err := lib.openArchive(path)
	if err != nil {
		return nil, err
	}

	b := &Backend{lib: lib, handle: handle}
	if err := b.init(); err != nil {
		lib.close(handle)
		return nil, err
	}
	return b, nil
}

// init validates the header and builds the track table.
func (b *Backend) init() error {
	header, err := b.lib.header(b.handle)
	if err != nil {
		return err
	}

	// CD-mastered CHDs have been observed reporting a zero unit size;
	// the CD layout unit is a 2352-byte sector plus 96 subchannel bytes.
	if header.UnitBytes == 0 {
		header.UnitBytes = 2448
	}
	if header.HunkBytes == 0 || header.HunkBytes%header.UnitBytes != 0 {
		return fmt.Errorf("%w: hunk size %d is not a multiple of unit size %d",
			disc.ErrHeaderInvalid, header.HunkBytes, header.UnitBytes)
	}

	b.header = header
	b.framesPerHunk = header.HunkBytes / header.UnitBytes
	b.hunkBuf = make([]byte, header.HunkBytes)

	tracks, err := b.enumerateTracks()
	if err != nil {
		return err
	}
	b.tracks = assembleTracks(tracks)

	common.LogDebug(common.InfoTracksFound+": %d", len(b.tracks))
	for _, t := range b.tracks {
		common.LogDebug(common.DebugTrackGeometry, t.Number, t.Type,
			t.SectorSize, t.DataOffset, t.DataSize, t.StartFrame)
	}
	return nil
}

// enumerateTracks walks metadata indexes 0, 1, ... trying each track tag
// until no tag yields an entry. A malformed payload is skipped only when
// a later index still yields tracks; a malformed final entry is fatal.
func (b *Backend) enumerateTracks() ([]disc.Track, error) {
	var tracks []disc.Track
	var pendingErr error
	pendingIdx := uint32(0)

	for index := uint32(0); ; index++ {
		payload, found, err := b.metadataAt(index)
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		common.LogDebug(common.DebugMetadataPayload, index, payload)

		track, err := parseTrackMetadata(payload)
		if err != nil {
			pendingErr = err
			pendingIdx = index
			continue
		}
		if pendingErr != nil {
			common.LogDebug(common.DebugSkippedBadTrack, pendingIdx, pendingErr)
			pendingErr = nil
		}
		tracks = append(tracks, track)
	}

	if pendingErr != nil {
		return nil, pendingErr
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: archive carries no track metadata", disc.ErrTrackMetadata)
	}
	return tracks, nil
}

// metadataAt queries one metadata index under each known track tag.
func (b *Backend) metadataAt(index uint32) (string, bool, error) {
	for _, tag := range trackMetadataTags {
		payload, found, err := b.lib.metadata(b.handle, metadataTag(tag), index)
		if err != nil {
			return "", false, err
		}
		if found {
			return payload, true, nil
		}
	}
	return "", false, nil
}

// Header returns the archive header read at open.
func (b *Backend) Header() Header {
	return b.header
}

// Tracks returns the track table enumerated at open.
func (b *Backend) Tracks() []disc.Track {
	return b.tracks
}

// ReadSector decompresses the hunk containing the addressed frame and
// copies out one physical sector.
func (b *Backend) ReadSector(track disc.Track, sector uint32) ([]byte, error) {
	frame := uint64(track.StartFrame) + uint64(sector)
	hunk := frame / uint64(b.framesPerHunk)
	inHunk := (frame % uint64(b.framesPerHunk)) * uint64(b.header.UnitBytes)

	if hunk >= uint64(b.header.TotalHunks) {
		return nil, fmt.Errorf("%w: hunk %d beyond archive end (%d)",
			disc.ErrSectorRead, hunk, b.header.TotalHunks)
	}
	if code := b.lib.read(b.handle, uint32(hunk), unsafe.Pointer(&b.hunkBuf[0])); code != 0 {
		return nil, fmt.Errorf("%w: hunk %d (error %d)", disc.ErrSectorRead, hunk, code)
	}

	out := make([]byte, track.SectorSize)
	copy(out, b.hunkBuf[inHunk:inHunk+uint64(track.SectorSize)])
	return out, nil
}

// Close releases the native archive handle.
func (b *Backend) Close() error {
	if b.handle != 0 {
		b.lib.close(b.handle)
		b.handle = 0
	}
	return nil
}
