// Package config loads the hasher's YAML configuration file. The file
// is optional; a missing default-named file yields the defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ArroyoCE/psx-dart-hasher/pkg/common"
	"gopkg.in/yaml.v3"
)

// DefaultConfigName is the configuration file looked up in the working
// directory when no explicit path is given.
const DefaultConfigName = "psxhasher.yaml"

// Config holds the tool configuration.
type Config struct {
	ScanDir    string `yaml:"scan_dir"`    // directory scanned when no files are given
	CHDLibrary string `yaml:"chd_library"` // path to the CHD decompression library
	Verbose    bool   `yaml:"verbose"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{ScanDir: "."}
}

// Load reads the configuration from path. An empty path falls back to
// the default config name, and a missing default file is not an error
// and yields the defaults. A missing file at an explicit path is an
// error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, common.FormatError(common.ErrFailedToReadConfig, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, common.FormatError(common.ErrFailedToParseConfig, err)
	}
	common.LogDebug(common.DebugConfigLoaded, path)
	return cfg, nil
}

// ScanImages lists the disc images (*.chd and *.cue) in dir, sorted by
// name.
func ScanImages(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.chd", "*.cue"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("bad scan pattern %q: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}
