package storage

import (
	"context"

	"github.com/TheMichaelB/seedrecover/internal/models"
)

// Blob is one chunk of stored bytes handed to the extractor.
type Blob struct {
	// Origin names where the bytes came from: a file path, or
	// path#key for values read out of a database.
	Origin string
	Format models.SourceFormat
	Data   []byte
}

// Size returns the blob length in bytes.
func (b Blob) Size() int {
	return len(b.Data)
}

// BlobSource reads blobs from one kind of browser storage.
type BlobSource interface {
	// Format returns the on-disk layout the source understands.
	Format() models.SourceFormat

	// ReadBlobs returns every blob found under path.
	ReadBlobs(ctx context.Context, path string) ([]Blob, error)
}
