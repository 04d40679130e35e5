package disc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ArroyoCE/psx-dart-hasher/pkg/common"
)

// Cue sheets are parsed line by line with case-insensitive regexes, one
// per statement kind. Surrounding whitespace and unknown statements are
// ignored.
var (
	cueFileRe  = regexp.MustCompile(`(?i)FILE\s+"([^"]+)"\s+BINARY`)
	cueTrackRe = regexp.MustCompile(`(?i)TRACK\s+(\d+)\s+(\w+(?:/\d+)?)`)
	cueIndexRe = regexp.MustCompile(`(?i)INDEX\s+01\s+(\d+):(\d+):(\d+)`)
)

// BinCueBackend reads physical sectors out of a raw BIN dump described
// by a cue sheet. The file cursor is shared across reads, so sector
// reads must stay sequential.
type BinCueBackend struct {
	file   *os.File
	tracks []Track
}

// OpenCue parses the cue sheet at path and opens the BIN file it names.
// The BIN filename is resolved relative to the cue sheet's directory.
func OpenCue(path string) (*BinCueBackend, error) {
	cue, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveOpen, err)
	}
	defer cue.Close()

	binName, tracks, err := parseCueSheet(cue)
	if err != nil {
		return nil, err
	}
	if binName == "" {
		return nil, fmt.Errorf("%w: cue sheet names no BINARY file", ErrTrackMetadata)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: cue sheet defines no tracks", ErrTrackMetadata)
	}

	binPath := filepath.Join(filepath.Dir(path), binName)
	bin, err := os.Open(binPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveOpen, err)
	}

	return &BinCueBackend{file: bin, tracks: tracks}, nil
}

// parseCueSheet extracts the BIN filename and the track table from a cue
// sheet. Each TRACK statement opens a new track; the following INDEX 01
// statement fixes its start frame from the MSF timecode.
func parseCueSheet(r io.Reader) (string, []Track, error) {
	var binName string
	var tracks []Track

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if m := cueFileRe.FindStringSubmatch(line); m != nil {
			binName = m[1]
			continue
		}

		if m := cueTrackRe.FindStringSubmatch(line); m != nil {
			number, err := strconv.Atoi(m[1])
			if err != nil {
				return "", nil, fmt.Errorf("%w: bad track number %q", ErrTrackMetadata, m[1])
			}
			num, err := common.SafeIntToUint32(number)
			if err != nil {
				return "", nil, fmt.Errorf("%w: %v", ErrTrackMetadata, err)
			}
			track := Track{Number: num}
			applyCueTrackType(&track, m[2])
			tracks = append(tracks, track)
			continue
		}

		if m := cueIndexRe.FindStringSubmatch(line); m != nil && len(tracks) > 0 {
			minutes, _ := strconv.Atoi(m[1])
			seconds, _ := strconv.Atoi(m[2])
			frames, _ := strconv.Atoi(m[3])
			start := common.MSFToFrames(uint32(minutes), uint32(seconds), uint32(frames))
			tracks[len(tracks)-1].StartFrame = start
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTrackMetadata, err)
	}

	return binName, tracks, nil
}

// applyCueTrackType maps the cue sheet type tag onto the track's type
// and geometry. Unknown data tags fall back to a raw 2352-byte sector
// with a 2048-byte payload.
func applyCueTrackType(t *Track, tag string) {
	switch strings.ToUpper(tag) {
	case "MODE1/2048":
		t.Type = TrackMode1
		t.SectorSize, t.DataOffset, t.DataSize = 2048, 0, 2048
	case "MODE1/2352":
		t.Type = TrackMode1Raw
		t.SectorSize, t.DataOffset, t.DataSize = 2352, 16, 2048
	case "MODE2/2048":
		t.Type = TrackMode2
		t.SectorSize, t.DataOffset, t.DataSize = 2048, 0, 2048
	case "MODE2/2352":
		t.Type = TrackMode2Raw
		t.SectorSize, t.DataOffset, t.DataSize = 2352, 24, 2048
	case "AUDIO":
		t.Type = TrackAudio
		t.SectorSize, t.DataOffset, t.DataSize = 2352, 0, 2352
	default:
		t.Type = TrackMode2Raw
		t.SectorSize, t.DataOffset, t.DataSize = 2352, 0, 2048
	}
}

// Tracks returns the track table parsed from the cue sheet.
func (b *BinCueBackend) Tracks() []Track {
	return b.tracks
}

// ReadSector reads one physical sector from the BIN file. The absolute
// frame is the track start plus the sector index; the byte offset is the
// frame times the track's physical sector size.
func (b *BinCueBackend) ReadSector(track Track, sector uint32) ([]byte, error) {
	frame := uint64(track.StartFrame) + uint64(sector)
	offset := int64(frame) * int64(track.SectorSize)

	if _, err := b.file.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek to frame %d: %v", ErrSectorRead, frame, err)
	}

	buf := make([]byte, track.SectorSize)
	if _, err := io.ReadFull(b.file, buf); err != nil {
		return nil, fmt.Errorf("%w: frame %d: %v", ErrSectorRead, frame, err)
	}
	return buf, nil
}

// Close closes the underlying BIN file.
func (b *BinCueBackend) Close() error {
	if b.file != nil {
		return b.file.Close()
	}
	return nil
}
