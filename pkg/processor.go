// Package pkg provides the per-image orchestration for the PSX DAT
// Hasher: backend selection, track geometry resolution, ISO9660
// traversal and hash computation.
package pkg

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ArroyoCE/psx-dart-hasher/pkg/chd"
	"github.com/ArroyoCE/psx-dart-hasher/pkg/common"
	"github.com/ArroyoCE/psx-dart-hasher/pkg/disc"
	"github.com/ArroyoCE/psx-dart-hasher/pkg/iso9660"
	"github.com/ArroyoCE/psx-dart-hasher/pkg/psx"
)

// DiscProcessor computes identification hashes for disc images. The CHD
// library is loaded lazily on the first .chd input so BIN/CUE-only runs
// never touch the native loader.
type DiscProcessor struct {
	libPath string
	lib     *chd.Library
}

// NewDiscProcessor creates a new disc processor instance. libPath names
// the CHD decompression library; empty selects the default library name.
func NewDiscProcessor(libPath string) *DiscProcessor {
	return &DiscProcessor{libPath: libPath}
}

// Process opens the disc image, locates its primary executable and
// computes the identification hash. The backend session is closed
// before returning.
func (p *DiscProcessor) Process(inputFile string) (*psx.ExecutableInfo, error) {
	common.LogDebug(common.InfoProcessingImage + ": " + inputFile)

	backend, err := p.openBackend(inputFile)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	track, err := disc.FirstDataTrack(backend)
	if err != nil {
		return nil, err
	}

	reader := iso9660.NewReader(backend, track)
	rawPath, err := psx.DiscoverExecutable(reader)
	if err != nil {
		return nil, err
	}

	info, err := psx.HashExecutable(reader, rawPath)
	if err != nil {
		return nil, err
	}
	common.LogDebug(common.InfoExecutableFound + ": " + info.CanonicalPath)
	return info, nil
}

// openBackend selects the backend variant by file extension.
func (p *DiscProcessor) openBackend(inputFile string) (disc.Backend, error) {
	switch strings.ToLower(filepath.Ext(inputFile)) {
	case ".chd":
		if p.lib == nil {
			lib, err := chd.LoadLibrary(p.libPath)
			if err != nil {
				return nil, err
			}
			p.lib = lib
		}
		return chd.Open(p.lib, inputFile)
	case ".cue":
		return disc.OpenCue(inputFile)
	default:
		return nil, fmt.Errorf("%s: %s", common.ErrUnsupportedImageFormat, inputFile)
	}
}

// PrintResult prints the hash for one image, with executable details in
// verbose mode.
func (p *DiscProcessor) PrintResult(file string, info *psx.ExecutableInfo) {
	fmt.Printf("%s  %s\n", info.MD5, file)
	if common.VerboseMode {
		fmt.Printf("  Executable: %s\n", info.Name)
		fmt.Printf("  Path:       %s\n", info.CanonicalPath)
		fmt.Printf("  LBA:        %d (MSF %s)\n", info.LBA, common.LBAToMSF(info.LBA))
		fmt.Printf("  Size:       %d bytes\n", info.Size)
	}
}
