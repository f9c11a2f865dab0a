package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/TheMichaelB/seedrecover/internal/events"
	"github.com/TheMichaelB/seedrecover/internal/models"
)

// FileSource reads a whole file as a single raw blob.
type FileSource struct {
	maxFileSize int64
	logger      *events.Logger
}

// NewFileSource creates a raw file source.
func NewFileSource(maxFileSize int64, logger *events.Logger) *FileSource {
	return &FileSource{
		maxFileSize: maxFileSize,
		logger:      logger.WithField("component", "file_source"),
	}
}

// Format implements BlobSource.
func (s *FileSource) Format() models.SourceFormat {
	return models.FormatRaw
}

// ReadBlobs implements BlobSource.
func (s *FileSource) ReadBlobs(ctx context.Context, path string) ([]Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.ContainsRune(path, 0) {
		return nil, fmt.Errorf("path contains null bytes")
	}

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !stat.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", path)
	}
	if stat.Size() > s.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d)", stat.Size(), s.maxFileSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	// The file may grow between stat and read.
	limited := &io.LimitedReader{R: f, N: s.maxFileSize + 1}
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if limited.N <= 0 {
		return nil, fmt.Errorf("file too large: exceeds %d bytes", s.maxFileSize)
	}

	s.logger.WithFields(map[string]interface{}{
		"path": path,
		"size": len(data),
	}).Debug("Read file")

	return []Blob{{Origin: path, Format: models.FormatRaw, Data: data}}, nil
}
