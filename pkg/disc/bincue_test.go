// Package disc provides tests for cue sheet parsing and BIN sector reads
package disc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCueSheet(t *testing.T) {
	cue := `FILE "game.bin" BINARY
  TRACK 01 MODE2/2352
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    INDEX 00 02:00:00
    INDEX 01 02:02:00
`
	binName, tracks, err := parseCueSheet(strings.NewReader(cue))
	if err != nil {
		t.Fatalf("parseCueSheet failed: %v", err)
	}
	if binName != "game.bin" {
		t.Errorf("bin name = %q, expected \"game.bin\"", binName)
	}
	if len(tracks) != 2 {
		t.Fatalf("parsed %d tracks, expected 2", len(tracks))
	}

	if tracks[0].Type != TrackMode2Raw || tracks[0].StartFrame != 0 {
		t.Errorf("track 1 = type %v start %d, expected MODE2_RAW at 0", tracks[0].Type, tracks[0].StartFrame)
	}
	if tracks[0].SectorSize != 2352 || tracks[0].DataOffset != 24 || tracks[0].DataSize != 2048 {
		t.Errorf("track 1 geometry = (%d,%d,%d), expected (2352,24,2048)",
			tracks[0].SectorSize, tracks[0].DataOffset, tracks[0].DataSize)
	}

	// INDEX 00 is ignored; INDEX 01 at 02:02:00 = 2*60*75 + 2*75
	if tracks[1].Type != TrackAudio || tracks[1].StartFrame != 9150 {
		t.Errorf("track 2 = type %v start %d, expected AUDIO at 9150", tracks[1].Type, tracks[1].StartFrame)
	}
}

func TestParseCueSheetCaseInsensitive(t *testing.T) {
	cue := `file "Game.BIN" binary
  track 01 mode1/2352
    index 01 00:02:00
`
	binName, tracks, err := parseCueSheet(strings.NewReader(cue))
	if err != nil {
		t.Fatalf("parseCueSheet failed: %v", err)
	}
	if binName != "Game.BIN" {
		t.Errorf("bin name = %q, expected \"Game.BIN\"", binName)
	}
	if len(tracks) != 1 || tracks[0].Type != TrackMode1Raw || tracks[0].StartFrame != 150 {
		t.Fatalf("tracks = %+v, expected one MODE1_RAW track at 150", tracks)
	}
}

func TestApplyCueTrackType(t *testing.T) {
	testCases := []struct {
		tag        string
		ttype      TrackType
		sectorSize uint32
		offset     uint32
		dataSize   uint32
	}{
		{"MODE1/2048", TrackMode1, 2048, 0, 2048},
		{"MODE1/2352", TrackMode1Raw, 2352, 16, 2048},
		{"MODE2/2048", TrackMode2, 2048, 0, 2048},
		{"MODE2/2352", TrackMode2Raw, 2352, 24, 2048},
		{"AUDIO", TrackAudio, 2352, 0, 2352},
		{"MODE2/2336", TrackMode2Raw, 2352, 0, 2048},
	}

	for _, tc := range testCases {
		t.Run(tc.tag, func(t *testing.T) {
			track := Track{}
			applyCueTrackType(&track, tc.tag)
			if track.Type != tc.ttype {
				t.Errorf("type = %v, expected %v", track.Type, tc.ttype)
			}
			if track.SectorSize != tc.sectorSize || track.DataOffset != tc.offset || track.DataSize != tc.dataSize {
				t.Errorf("geometry = (%d,%d,%d), expected (%d,%d,%d)",
					track.SectorSize, track.DataOffset, track.DataSize,
					tc.sectorSize, tc.offset, tc.dataSize)
			}
		})
	}
}

func TestOpenCueAndReadSector(t *testing.T) {
	dir := t.TempDir()

	// Two sectors of recognizable content
	bin := make([]byte, 2*2352)
	for i := 0; i < 2352; i++ {
		bin[i] = 0xAA
	}
	for i := 2352; i < len(bin); i++ {
		bin[i] = 0xBB
	}
	if err := os.WriteFile(filepath.Join(dir, "game.bin"), bin, 0o644); err != nil {
		t.Fatal(err)
	}

	cue := "FILE \"game.bin\" BINARY\n  TRACK 01 MODE2/2352\n    INDEX 01 00:00:00\n"
	cuePath := filepath.Join(dir, "game.cue")
	if err := os.WriteFile(cuePath, []byte(cue), 0o644); err != nil {
		t.Fatal(err)
	}

	backend, err := OpenCue(cuePath)
	if err != nil {
		t.Fatalf("OpenCue failed: %v", err)
	}
	defer backend.Close()

	tracks := backend.Tracks()
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, expected 1", len(tracks))
	}

	sector, err := backend.ReadSector(tracks[0], 1)
	if err != nil {
		t.Fatalf("ReadSector failed: %v", err)
	}
	if len(sector) != 2352 {
		t.Fatalf("sector length = %d, expected 2352", len(sector))
	}
	for i, b := range sector {
		if b != 0xBB {
			t.Fatalf("sector byte %d = 0x%02X, expected 0xBB", i, b)
		}
	}

	// Reading past the end of the BIN is a permanent failure
	if _, err := backend.ReadSector(tracks[0], 2); err == nil {
		t.Error("ReadSector past EOF should fail")
	}
}

func TestOpenCueMissingBin(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "game.cue")
	cue := "FILE \"missing.bin\" BINARY\n  TRACK 01 MODE2/2352\n    INDEX 01 00:00:00\n"
	if err := os.WriteFile(cuePath, []byte(cue), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := OpenCue(cuePath); err == nil {
		t.Error("OpenCue should fail when the BIN file is missing")
	}
}
