package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	// Logging
	Log LogConfig `json:"log" mapstructure:"log"`

	// Where to look for browser storage
	Locator LocatorConfig `json:"locator" mapstructure:"locator"`

	// How storage files are read
	Storage StorageConfig `json:"storage" mapstructure:"storage"`

	// Recovery behavior
	Recovery RecoveryConfig `json:"recovery" mapstructure:"recovery"`
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `json:"format" mapstructure:"format"` // text, json
	File   string `json:"file" mapstructure:"file"`     // Log file path (empty = stderr)
	Color  bool   `json:"color" mapstructure:"color"`   // Enable colored output
}

// LocatorConfig selects the browser profiles and extensions to search.
type LocatorConfig struct {
	Browsers     []string `json:"browsers" mapstructure:"browsers"`
	ExtensionIDs []string `json:"extension_ids" mapstructure:"extension_ids"`
	Extensions   []string `json:"extensions" mapstructure:"extensions"` // File suffixes, e.g. .log
	ExtraPaths   []string `json:"extra_paths" mapstructure:"extra_paths"`
	MaxDepth     int      `json:"max_depth" mapstructure:"max_depth"`
}

// StorageConfig for reading storage files.
type StorageConfig struct {
	MaxFileSize int64  `json:"max_file_size" mapstructure:"max_file_size"` // Max file size in bytes
	UseLevelDB  bool   `json:"use_leveldb" mapstructure:"use_leveldb"`     // Read records through a LevelDB reader
	UseSQLite   bool   `json:"use_sqlite" mapstructure:"use_sqlite"`       // Dump SQLite cells
	TempDir     string `json:"temp_dir" mapstructure:"temp_dir"`           // Scratch copies of locked databases
}

// RecoveryConfig for the decryption pipeline.
type RecoveryConfig struct {
	ValidateChecksum bool `json:"validate_checksum" mapstructure:"validate_checksum"` // Warn on BIP-39 checksum failure
	AllCandidates    bool `json:"all_candidates" mapstructure:"all_candidates"`       // Try every vault in a blob, not just the first
}

// Known browser names.
var Browsers = []string{"chrome", "chromium", "brave", "edge", "opera", "vivaldi"}

// MetaMask extension IDs.
const (
	ChromeStoreID = "nkbihfbeogaeaoehlefnkodbefgpgknn"
	EdgeStoreID   = "ejbalbakoplchlghecdalmeeeajnimhm"
)

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Color:  true,
		},
		Locator: LocatorConfig{
			Browsers:     append([]string(nil), Browsers...),
			ExtensionIDs: []string{ChromeStoreID, EdgeStoreID},
			Extensions:   []string{".log", ".ldb"},
			MaxDepth:     6,
		},
		Storage: StorageConfig{
			MaxFileSize: 256 * 1024 * 1024, // 256MB
			UseLevelDB:  true,
			UseSQLite:   true,
			TempDir:     os.TempDir(),
		},
		Recovery: RecoveryConfig{
			ValidateChecksum: true,
		},
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	if c.Storage.MaxFileSize <= 0 {
		return errors.New("storage.max_file_size must be positive")
	}

	if c.Locator.MaxDepth < 0 {
		return errors.New("locator.max_depth cannot be negative")
	}

	known := make(map[string]bool, len(Browsers))
	for _, b := range Browsers {
		known[b] = true
	}
	for _, b := range c.Locator.Browsers {
		if !known[strings.ToLower(b)] {
			return fmt.Errorf("unknown browser: %s", b)
		}
	}

	for _, ext := range c.Locator.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("file extension must start with a dot: %s", ext)
		}
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Storage.TempDir}

	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
