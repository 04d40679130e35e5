package disc

import (
	"bytes"

	"github.com/ArroyoCE/psx-dart-hasher/pkg/common"
)

// cd001 is the ISO9660 standard identifier that follows the volume
// descriptor type byte.
var cd001 = []byte("CD001")

// syncPattern is the 12-byte sync mark that opens every raw CD sector.
var syncPattern = []byte{
	0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00,
}

// NominalGeometry fills SectorSize, DataOffset and DataSize from the
// declared track type. The values are refined later by probing sector 16
// of the first data track.
func NominalGeometry(t *Track) {
	switch t.Type {
	case TrackMode1Raw:
		t.SectorSize, t.DataOffset, t.DataSize = 2352, 16, 2048
	case TrackMode2Raw:
		t.SectorSize, t.DataOffset, t.DataSize = 2352, 16, 2336
	case TrackMode1:
		t.SectorSize, t.DataOffset, t.DataSize = 2352, 0, 2048
	case TrackMode2:
		t.SectorSize, t.DataOffset, t.DataSize = 2352, 0, 2336
	case TrackAudio:
		t.SectorSize, t.DataOffset, t.DataSize = 2352, 0, 2352
	}
}

// RefineGeometry reads sector 16 of the track and adjusts DataOffset and
// DataSize based on where the volume descriptor signature actually sits.
// The probe patterns are tested in order and the first match wins; when
// none match the nominal geometry is retained. Only the first data track
// (the one carrying the file system) is ever refined.
func RefineGeometry(b Backend, t *Track) {
	sector, err := b.ReadSector(*t, 16)
	if err != nil || len(sector) < 30 {
		return
	}

	switch {
	case bytes.Equal(sector[25:30], cd001):
		// CD-ROM XA: 24-byte header, form decided by the subheader submode
		t.DataOffset = 24
		if sector[18]&0x20 != 0 {
			t.DataSize = 2324
			common.LogWarn(common.WarnFormTwoDataTrack, t.DataSize)
		} else {
			t.DataSize = 2048
		}
	case bytes.Equal(sector[17:22], cd001):
		// MODE2 form 1 behind a 16-byte sync header
		t.DataOffset = 16
		t.DataSize = 2336
	case bytes.Equal(sector[1:6], cd001):
		// Raw 2048-byte data sectors
		t.DataOffset = 0
		t.DataSize = 2048
	case bytes.Equal(sector[0:12], syncPattern):
		t.DataOffset = 16
		if sector[15]&3 == 1 {
			t.DataSize = 2048
		} else {
			t.DataSize = 2336
		}
	default:
		return
	}

	common.LogDebug(common.DebugGeometryRefined, t.DataOffset, t.DataSize)
}

// FirstDataTrack returns the first track able to carry a file system,
// with its geometry refined from the sector 16 probe.
func FirstDataTrack(b Backend) (Track, error) {
	for _, t := range b.Tracks() {
		if t.Type.IsData() {
			RefineGeometry(b, &t)
			return t, nil
		}
	}
	return Track{}, ErrNotDataDisc
}
