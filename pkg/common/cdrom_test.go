// Package common provides tests for CD-ROM utility functions
package common

import "testing"

func TestLBAToMSF(t *testing.T) {
	testCases := []struct {
		name     string
		lba      uint32
		expected string
	}{
		{"zero includes pregap", 0, "00:02:00"},
		{"sector 16", 16, "00:02:16"},
		{"one minute", 4350, "01:00:00"},
		{"arbitrary", 24, "00:02:24"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LBAToMSF(tc.lba); got != tc.expected {
				t.Errorf("LBAToMSF(%d) = %q, expected %q", tc.lba, got, tc.expected)
			}
		})
	}
}

func TestMSFToFrames(t *testing.T) {
	testCases := []struct {
		name     string
		m, s, f  uint32
		expected uint32
	}{
		{"zero", 0, 0, 0, 0},
		{"two seconds", 0, 2, 0, 150},
		{"one minute", 1, 0, 0, 4500},
		{"mixed", 1, 2, 3, 4653},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MSFToFrames(tc.m, tc.s, tc.f); got != tc.expected {
				t.Errorf("MSFToFrames(%d,%d,%d) = %d, expected %d", tc.m, tc.s, tc.f, got, tc.expected)
			}
		})
	}
}

func TestCleanFileName(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"version suffix", "SLUS_012.34;1", "SLUS_012.34"},
		{"no suffix", "PSX.EXE", "PSX.EXE"},
		{"multi digit version", "GAME.EXE;12", "GAME.EXE"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanFileName(tc.input); got != tc.expected {
				t.Errorf("CleanFileName(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestIsSpecialDirEntry(t *testing.T) {
	if !IsSpecialDirEntry("\x00") {
		t.Error("IsSpecialDirEntry should accept the 0x00 self entry")
	}
	if !IsSpecialDirEntry("\x01") {
		t.Error("IsSpecialDirEntry should accept the 0x01 parent entry")
	}
	if IsSpecialDirEntry("SYSTEM.CNF") {
		t.Error("IsSpecialDirEntry should reject ordinary names")
	}
}

func TestGetSizeInSectors(t *testing.T) {
	testCases := []struct {
		name     string
		size     uint32
		expected uint32
	}{
		{"zero", 0, 0},
		{"one byte", 1, 1},
		{"exact sector", 2048, 1},
		{"sector plus one", 2049, 2},
		{"partial second sector", 2560, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GetSizeInSectors(tc.size); got != tc.expected {
				t.Errorf("GetSizeInSectors(%d) = %d, expected %d", tc.size, got, tc.expected)
			}
		})
	}
}
