package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/TheMichaelB/seedrecover/internal/models"
)

var sqliteMagic = []byte("SQLite format 3\x00")

// DetectFormat classifies path by layout and header bytes.
func DetectFormat(path string) (models.SourceFormat, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return models.FormatUnknown, fmt.Errorf("stat %s: %w", path, err)
	}

	if stat.IsDir() {
		if IsLevelDBDir(path) {
			return models.FormatLevelDB, nil
		}
		return models.FormatUnknown, nil
	}

	if !stat.Mode().IsRegular() {
		return models.FormatUnknown, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return models.FormatUnknown, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return models.FormatUnknown, fmt.Errorf("read header: %w", err)
	}

	if n == len(sqliteMagic) && bytes.Equal(header, sqliteMagic) {
		return models.FormatSQLite, nil
	}
	return models.FormatRaw, nil
}

// IsLevelDBDir reports whether dir holds a LevelDB database.
func IsLevelDBDir(dir string) bool {
	stat, err := os.Stat(filepath.Join(dir, "CURRENT"))
	return err == nil && stat.Mode().IsRegular()
}
