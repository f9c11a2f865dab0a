package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/TheMichaelB/seedrecover/internal/config"
	"github.com/TheMichaelB/seedrecover/internal/events"
	"github.com/TheMichaelB/seedrecover/internal/models"
)

// Reader turns candidate paths into blobs, picking a source per path.
//
// A raw file inside a LevelDB directory is read as-is first; the directory's
// decoded values follow once per Reader.
type Reader struct {
	cfg     *config.StorageConfig
	logger  *events.Logger
	file    BlobSource
	leveldb BlobSource
	sqlite  BlobSource

	mu   sync.Mutex
	seen map[string]bool
}

// NewReader creates a reader configured from cfg.
func NewReader(cfg *config.StorageConfig, logger *events.Logger) *Reader {
	return &Reader{
		cfg:     cfg,
		logger:  logger.WithField("component", "storage_reader"),
		file:    NewFileSource(cfg.MaxFileSize, logger),
		leveldb: NewLevelDBSource(cfg.TempDir, cfg.MaxFileSize, logger),
		sqlite:  NewSQLiteSource(logger),
		seen:    make(map[string]bool),
	}
}

// Read returns the blobs of path. Unreadable or unsupported inputs are
// reported as NotFound so callers move on to the next candidate.
func (r *Reader) Read(ctx context.Context, path string) ([]Blob, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, notFound(path, err)
	}

	switch format {
	case models.FormatLevelDB:
		if !r.cfg.UseLevelDB {
			return nil, notFound(path, fmt.Errorf("leveldb reading disabled"))
		}
		if !r.markSeen(path) {
			return nil, notFound(path, fmt.Errorf("leveldb directory already read"))
		}
		blobs, err := r.leveldb.ReadBlobs(ctx, path)
		if err != nil {
			return nil, notFound(path, err)
		}
		return blobs, nil

	case models.FormatSQLite:
		if r.cfg.UseSQLite {
			blobs, err := r.sqlite.ReadBlobs(ctx, path)
			if err == nil {
				return blobs, nil
			}
			r.logger.WithError(err).WithField("path", path).Warn("SQLite read failed, scanning raw bytes")
		}

	case models.FormatUnknown:
		return nil, notFound(path, fmt.Errorf("unsupported input"))
	}

	blobs, err := r.file.ReadBlobs(ctx, path)
	if err != nil {
		return nil, notFound(path, err)
	}

	dir := filepath.Dir(path)
	if r.cfg.UseLevelDB && IsLevelDBDir(dir) && r.markSeen(dir) {
		more, err := r.leveldb.ReadBlobs(ctx, dir)
		if err != nil {
			r.logger.WithError(err).WithField("dir", dir).Warn("LevelDB read failed")
		} else {
			blobs = append(blobs, more...)
		}
	}

	return blobs, nil
}

func (r *Reader) markSeen(dir string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := filepath.Clean(dir)
	if r.seen[key] {
		return false
	}
	r.seen[key] = true
	return true
}

func notFound(path string, err error) error {
	return models.NewError(models.KindNotFound, "storage.read", err).WithOrigin(path)
}
