// Package locator finds browser storage files that may hold a wallet vault.
package locator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TheMichaelB/seedrecover/internal/config"
	"github.com/TheMichaelB/seedrecover/internal/events"
	"github.com/TheMichaelB/seedrecover/internal/models"
	"github.com/TheMichaelB/seedrecover/internal/storage"
)

const extensionSettings = "Local Extension Settings"

// Locator discovers candidate files.
type Locator struct {
	cfg    *config.LocatorConfig
	roots  []BrowserRoot
	logger *events.Logger
}

// New creates a locator over the current user's browser roots.
func New(cfg *config.LocatorConfig, logger *events.Logger) *Locator {
	return NewWithRoots(cfg, DefaultRoots(), logger)
}

// NewWithRoots creates a locator over explicit browser roots.
func NewWithRoots(cfg *config.LocatorConfig, roots []BrowserRoot, logger *events.Logger) *Locator {
	return &Locator{
		cfg:    cfg,
		roots:  roots,
		logger: logger.WithField("component", "locator"),
	}
}

// Locate returns candidates from every enabled browser profile and from the
// configured extra paths. Within a directory the newest file comes first.
func (l *Locator) Locate(ctx context.Context) ([]models.Candidate, error) {
	enabled := make(map[string]bool, len(l.cfg.Browsers))
	for _, b := range l.cfg.Browsers {
		enabled[b] = true
	}

	var out []models.Candidate
	for _, root := range l.roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(enabled) > 0 && !enabled[root.Browser] {
			continue
		}
		if !isDir(root.Dir) {
			continue
		}

		for _, profile := range profileDirs(root.Dir) {
			for _, id := range l.cfg.ExtensionIDs {
				dir := filepath.Join(profile, extensionSettings, id)
				if !isDir(dir) {
					continue
				}

				found, err := l.listDir(dir)
				if err != nil {
					l.logger.WithError(err).WithField("dir", dir).Warn("Cannot list extension directory")
					continue
				}
				for i := range found {
					found[i].Browser = root.Browser
					found[i].ExtensionID = id
				}

				l.logger.WithFields(map[string]interface{}{
					"browser": root.Browser,
					"dir":     dir,
					"files":   len(found),
				}).Debug("Found extension storage")

				out = append(out, found...)
			}
		}
	}

	extra, err := l.Expand(ctx, l.cfg.ExtraPaths)
	if err != nil {
		return nil, err
	}
	out = append(out, extra...)

	return dedupe(out), nil
}

// Expand turns user-supplied paths into candidates. Files are taken as-is;
// directories are walked up to the configured depth for matching files.
func (l *Locator) Expand(ctx context.Context, paths []string) ([]models.Candidate, error) {
	var out []models.Candidate
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stat, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}

		if !stat.IsDir() {
			out = append(out, newCandidate(p, stat))
			continue
		}

		found, err := l.walk(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return dedupe(out), nil
}

func (l *Locator) walk(ctx context.Context, root string) ([]models.Candidate, error) {
	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			l.logger.WithError(err).WithField("path", path).Debug("Skipping unreadable path")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.Count(filepath.Clean(path), string(filepath.Separator))-rootDepth > l.cfg.MaxDepth {
			return fs.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	var out []models.Candidate
	for _, dir := range dirs {
		found, err := l.listDir(dir)
		if err != nil {
			continue
		}
		out = append(out, found...)
	}
	return out, nil
}

// listDir returns the matching regular files of dir, newest first.
func (l *Locator) listDir(dir string) ([]models.Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var out []models.Candidate
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !l.matches(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, newCandidate(filepath.Join(dir, entry.Name()), info))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ModifiedTime.Equal(out[j].ModifiedTime) {
			return out[i].Path < out[j].Path
		}
		return out[i].ModifiedTime.After(out[j].ModifiedTime)
	})
	return out, nil
}

func (l *Locator) matches(name string) bool {
	if len(l.cfg.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range l.cfg.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

func newCandidate(path string, info fs.FileInfo) models.Candidate {
	format, err := storage.DetectFormat(path)
	if err != nil {
		format = models.FormatUnknown
	}
	return models.Candidate{
		Path:         path,
		Size:         info.Size(),
		ModifiedTime: info.ModTime(),
		Format:       format,
	}
}

func dedupe(in []models.Candidate) []models.Candidate {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, c := range in {
		key := c.NormalizedPath()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
