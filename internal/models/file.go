package models

import (
	"path/filepath"
	"strings"
	"time"
)

// Candidate is a browser storage file that may hold a vault.
type Candidate struct {
	Path         string       `json:"path"`
	Size         int64        `json:"size"`
	ModifiedTime time.Time    `json:"modified_time"`
	Browser      string       `json:"browser,omitempty"`
	ExtensionID  string       `json:"extension_id,omitempty"`
	Format       SourceFormat `json:"format"`
}

// NormalizedPath returns the cleaned, forward-slash path.
func (c *Candidate) NormalizedPath() string {
	return strings.ReplaceAll(filepath.Clean(c.Path), "\\", "/")
}

// SourceFormat is the on-disk layout a blob is read from.
type SourceFormat string

const (
	FormatRaw     SourceFormat = "raw"
	FormatLevelDB SourceFormat = "leveldb"
	FormatSQLite  SourceFormat = "sqlite"
	FormatUnknown SourceFormat = "unknown"
)
