package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/TheMichaelB/seedrecover/internal/events"
	"github.com/TheMichaelB/seedrecover/internal/models"
)

// LevelDBSource reads every value of a LevelDB directory.
//
// The browser may hold the database lock, so the directory is copied to a
// scratch dir and opened there. A corrupted copy is repaired before reading.
type LevelDBSource struct {
	tempDir     string
	maxFileSize int64
	logger      *events.Logger
}

// NewLevelDBSource creates a LevelDB source using tempDir for scratch copies.
func NewLevelDBSource(tempDir string, maxFileSize int64, logger *events.Logger) *LevelDBSource {
	return &LevelDBSource{
		tempDir:     tempDir,
		maxFileSize: maxFileSize,
		logger:      logger.WithField("component", "leveldb_source"),
	}
}

// Format implements BlobSource.
func (s *LevelDBSource) Format() models.SourceFormat {
	return models.FormatLevelDB
}

// ReadBlobs implements BlobSource.
func (s *LevelDBSource) ReadBlobs(ctx context.Context, dir string) ([]Blob, error) {
	if !IsLevelDBDir(dir) {
		return nil, fmt.Errorf("not a leveldb directory: %s", dir)
	}

	scratch, err := os.MkdirTemp(s.tempDir, "seedrecover-leveldb-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	if err := s.copyDir(dir, scratch); err != nil {
		return nil, err
	}

	db, err := s.open(scratch)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	iter := db.NewIterator(nil, nil)
	defer iter.Release()

	var blobs []Blob
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		value := iter.Value()
		if len(value) == 0 {
			continue
		}

		// Iterator buffers are reused between steps.
		data := make([]byte, len(value))
		copy(data, value)

		blobs = append(blobs, Blob{
			Origin: dir + "#" + string(iter.Key()),
			Format: models.FormatLevelDB,
			Data:   data,
		})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate leveldb: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"dir":    dir,
		"values": len(blobs),
	}).Debug("Read leveldb")

	return blobs, nil
}

func (s *LevelDBSource) open(dir string) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{
		ReadOnly:       true,
		ErrorIfMissing: true,
	})
	if err == nil {
		return db, nil
	}

	if !lerrors.IsCorrupted(err) {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}

	s.logger.WithError(err).Warn("LevelDB copy corrupted, recovering")

	db, err = leveldb.RecoverFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("recover leveldb: %w", err)
	}
	return db, nil
}

// copyDir copies the regular files of src into dst, replacing LOCK with an
// empty file.
func (s *LevelDBSource) copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() || entry.Name() == "LOCK" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() > s.maxFileSize {
			s.logger.WithField("file", entry.Name()).Warn("Skipping oversized leveldb file")
			continue
		}

		if err := copyFile(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}

	lock, err := os.OpenFile(filepath.Join(dst, "LOCK"), os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("create lock file: %w", err)
	}
	return lock.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
