// Package pkg provides an end-to-end test of the hashing pipeline over
// a BIN/CUE image written to disk.
package pkg

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// testImage assembles a raw Mode 2 BIN image: PVD at sector 16, a
// one-sector root directory at 18, SYSTEM.CNF at 20 and the executable
// at 24.
func testImage() []byte {
	const sectorSize = 2352
	const frames = 26
	image := make([]byte, frames*sectorSize)

	putUserData := func(lba uint32, data []byte) {
		copy(image[int(lba)*sectorSize+24:], data)
	}
	dirRecord := func(name string, lba, size uint32, isDir bool) []byte {
		recLen := 33 + len(name)
		if recLen%2 == 1 {
			recLen++
		}
		rec := make([]byte, recLen)
		rec[0] = byte(recLen)
		binary.LittleEndian.PutUint32(rec[2:], lba)
		binary.BigEndian.PutUint32(rec[6:], lba)
		binary.LittleEndian.PutUint32(rec[10:], size)
		binary.BigEndian.PutUint32(rec[14:], size)
		if isDir {
			rec[25] = 0x02
		}
		rec[32] = byte(len(name))
		copy(rec[33:], name)
		return rec
	}

	pvd := make([]byte, 2048)
	pvd[0] = 1
	copy(pvd[1:], "CD001")
	copy(pvd[156:], dirRecord("\x00", 18, 2048, true))
	putUserData(16, pvd)

	dir := make([]byte, 2048)
	offset := 0
	for _, rec := range [][]byte{
		dirRecord("\x00", 18, 2048, true),
		dirRecord("\x01", 18, 2048, true),
		dirRecord("SYSTEM.CNF;1", 20, 36, false),
		dirRecord("SLUS_012.34;1", 24, 2560, false),
	} {
		copy(dir[offset:], rec)
		offset += len(rec)
	}
	putUserData(18, dir)

	putUserData(20, []byte("BOOT = cdrom:\\SLUS_012.34;1\r\nTCB = 4"))
	putUserData(24, bytes.Repeat([]byte{0x41}, 2048))
	putUserData(25, bytes.Repeat([]byte{0x41}, 2048))

	return image
}

func TestProcessBinCue(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "game.bin"), testImage(), 0o644); err != nil {
		t.Fatal(err)
	}
	cue := "FILE \"game.bin\" BINARY\n  TRACK 01 MODE2/2352\n    INDEX 01 00:00:00\n"
	cuePath := filepath.Join(dir, "game.cue")
	if err := os.WriteFile(cuePath, []byte(cue), 0o644); err != nil {
		t.Fatal(err)
	}

	processor := NewDiscProcessor("")
	info, err := processor.Process(cuePath)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	const frozen = "a2611e3b57eab3c743db1943521c4238"
	if info.MD5 != frozen {
		t.Errorf("MD5 = %s, expected %s", info.MD5, frozen)
	}
	if info.CanonicalPath != "SLUS_012.34;1" {
		t.Errorf("canonical path = %q", info.CanonicalPath)
	}
	if info.LBA != 24 || info.Size != 2560 {
		t.Errorf("LBA/size = %d/%d, expected 24/2560", info.LBA, info.Size)
	}

	// Hashing the same image in a fresh session is byte-identical
	again, err := NewDiscProcessor("").Process(cuePath)
	if err != nil {
		t.Fatal(err)
	}
	if again.MD5 != info.MD5 {
		t.Errorf("hash differs across sessions: %s vs %s", again.MD5, info.MD5)
	}
}

func TestProcessUnsupportedExtension(t *testing.T) {
	processor := NewDiscProcessor("")
	if _, err := processor.Process("image.iso"); err == nil {
		t.Error("Process should reject unsupported extensions")
	}
}
