package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/TheMichaelB/seedrecover/internal/events"
	"github.com/TheMichaelB/seedrecover/internal/models"
)

// Cells shorter than this cannot hold a vault.
const minCellSize = 32

// SQLiteSource reads every text or blob cell of a SQLite database.
type SQLiteSource struct {
	logger *events.Logger
}

// NewSQLiteSource creates a SQLite source.
func NewSQLiteSource(logger *events.Logger) *SQLiteSource {
	return &SQLiteSource{
		logger: logger.WithField("component", "sqlite_source"),
	}
}

// Format implements BlobSource.
func (s *SQLiteSource) Format() models.SourceFormat {
	return models.FormatSQLite
}

// ReadBlobs implements BlobSource.
func (s *SQLiteSource) ReadBlobs(ctx context.Context, path string) ([]Blob, error) {
	// immutable skips locking so a running browser does not block the read
	db, err := sql.Open("sqlite3", "file:"+filepath.ToSlash(path)+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	tables, err := s.tables(ctx, db)
	if err != nil {
		return nil, err
	}

	var blobs []Blob
	for _, table := range tables {
		found, err := s.readTable(ctx, db, path, table)
		if err != nil {
			s.logger.WithError(err).WithField("table", table).Warn("Skipping unreadable table")
			continue
		}
		blobs = append(blobs, found...)
	}

	s.logger.WithFields(map[string]interface{}{
		"path":   path,
		"tables": len(tables),
		"cells":  len(blobs),
	}).Debug("Read sqlite")

	return blobs, nil
}

func (s *SQLiteSource) tables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (s *SQLiteSource) readTable(ctx context.Context, db *sql.DB, path, table string) ([]Blob, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("query table: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	var blobs []Blob
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		for i, v := range values {
			var data []byte
			switch x := v.(type) {
			case []byte:
				data = make([]byte, len(x))
				copy(data, x)
			case string:
				data = []byte(x)
			default:
				continue
			}
			if len(data) < minCellSize {
				continue
			}

			blobs = append(blobs, Blob{
				Origin: fmt.Sprintf("%s#%s.%s", path, table, cols[i]),
				Format: models.FormatSQLite,
				Data:   data,
			})
		}
	}
	return blobs, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
