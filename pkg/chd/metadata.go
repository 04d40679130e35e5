package chd

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ArroyoCE/psx-dart-hasher/pkg/disc"
)

// trackMetadataTags are tried in order at each metadata index. CHT2 is
// the current CD track format, CHTR the legacy one and CHGD the GD-ROM
// variant.
var trackMetadataTags = []string{"CHT2", "CHTR", "CHGD"}

// Track metadata payloads are ASCII key-value strings of the form
//
//	TRACK:1 TYPE:MODE2_RAW SUBTYPE:NONE FRAMES:318063 PREGAP:0 ...
//
// All numeric fields are decimal. Fields beyond the ones matched here
// (PGTYPE, PGSUB, POSTGAP, PAD) are ignored.
var (
	metaTrackRe  = regexp.MustCompile(`(?i)TRACK:(\d+)`)
	metaTypeRe   = regexp.MustCompile(`(?i)TYPE:(\S+)`)
	metaFramesRe = regexp.MustCompile(`(?i)FRAMES:(\d+)`)
	metaPregapRe = regexp.MustCompile(`(?i)PREGAP:(\d+)`)
)

// parseTrackMetadata decodes one metadata payload into a track with its
// nominal geometry. StartFrame is assigned later during assembly.
func parseTrackMetadata(payload string) (disc.Track, error) {
	trackMatch := metaTrackRe.FindStringSubmatch(payload)
	typeMatch := metaTypeRe.FindStringSubmatch(payload)
	framesMatch := metaFramesRe.FindStringSubmatch(payload)
	if trackMatch == nil || typeMatch == nil || framesMatch == nil {
		return disc.Track{}, fmt.Errorf("%w: %q", disc.ErrTrackMetadata, payload)
	}

	number, err := strconv.ParseUint(trackMatch[1], 10, 32)
	if err != nil {
		return disc.Track{}, fmt.Errorf("%w: track number in %q", disc.ErrTrackMetadata, payload)
	}
	frames, err := strconv.ParseUint(framesMatch[1], 10, 32)
	if err != nil {
		return disc.Track{}, fmt.Errorf("%w: frame count in %q", disc.ErrTrackMetadata, payload)
	}

	track := disc.Track{
		Number:      uint32(number),
		Type:        trackTypeFromTag(typeMatch[1]),
		TotalFrames: uint32(frames),
	}

	if m := metaPregapRe.FindStringSubmatch(payload); m != nil {
		pregap, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			return disc.Track{}, fmt.Errorf("%w: pregap in %q", disc.ErrTrackMetadata, payload)
		}
		track.PregapFrames = uint32(pregap)
	}

	disc.NominalGeometry(&track)
	return track, nil
}

// trackTypeFromTag maps a CHD metadata TYPE value onto the track type.
// The MODE2 form variants all share the raw 2352-byte layout.
func trackTypeFromTag(tag string) disc.TrackType {
	switch tag := strings.ToUpper(tag); {
	case tag == "MODE1_RAW":
		return disc.TrackMode1Raw
	case tag == "MODE1":
		return disc.TrackMode1
	case tag == "MODE2":
		return disc.TrackMode2
	case tag == "AUDIO":
		return disc.TrackAudio
	case strings.HasPrefix(tag, "MODE2"):
		return disc.TrackMode2Raw
	default:
		return disc.TrackMode2Raw
	}
}

// assembleTracks assigns start frames across the track table. Each track
// starts where the previous one's pregap, content and alignment padding
// end; CD hunks are padded to a multiple of 4 frames per track whether
// or not the metadata carried an explicit PAD field.
func assembleTracks(tracks []disc.Track) []disc.Track {
	frameOffset := uint32(0)
	for i := range tracks {
		tracks[i].StartFrame = frameOffset
		frameOffset += tracks[i].PregapFrames
		frameOffset += tracks[i].TotalFrames
		frameOffset += padToFour(tracks[i].TotalFrames)
	}
	return tracks
}

// padToFour returns the frame padding that rounds n up to a multiple of 4.
func padToFour(n uint32) uint32 {
	return ((n + 3) &^ 3) - n
}
