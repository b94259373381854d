// Package config handles application configuration via a TOML file.
// Configuration lives at ~/.config/usbutler/config.toml and covers the
// source folder, the extension filters, and transfer tuning.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds application configuration.
type Config struct {
	Source   SourceConfig   `toml:"source"`
	Transfer TransferConfig `toml:"transfer"`
}

// SourceConfig describes where media is picked up from.
type SourceConfig struct {
	// Folder is the default folder offered for selection and watched
	// when Monitor is on.
	Folder string `toml:"folder"`

	// Monitor auto-queues new videos appearing under Folder. Off by
	// default.
	Monitor bool `toml:"monitor"`
}

// TransferConfig tunes the copy queue.
type TransferConfig struct {
	// MovieDir is the drive subfolder movies are filed under.
	MovieDir string `toml:"movie_dir"`

	// VideoExtensions are the file extensions treated as media when
	// expanding folders.
	VideoExtensions []string `toml:"video_extensions"`

	// ArchiveExtensions are extracted and their contained videos
	// queued.
	ArchiveExtensions []string `toml:"archive_extensions"`

	// BufferSize is the copy chunk size in bytes.
	BufferSize int `toml:"buffer_size"`

	// StateDir holds the transfer ledger.
	StateDir string `toml:"state_dir"`
}

// Default returns the default configuration.
func Default() Config {
	home, _ := os.UserHomeDir()

	return Config{
		Source: SourceConfig{
			Folder:  filepath.Join(home, "Downloads"),
			Monitor: false,
		},
		Transfer: TransferConfig{
			MovieDir:          "Movies",
			VideoExtensions:   []string{".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".ts", ".mpeg"},
			ArchiveExtensions: []string{".zip"},
			BufferSize:        1 * 1024 * 1024,
			StateDir:          filepath.Join(home, ".local", "share", "usbutler"),
		},
	}
}

// Path returns the path to the config file.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "usbutler", "config.toml")
}

// Load reads config from disk, or returns defaults when no config file
// exists yet.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads config from an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		// No config file, defaults apply.
		return cfg, nil
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config, creating the directory as needed.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}
