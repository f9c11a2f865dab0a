package recovery

import (
	"context"

	"github.com/TheMichaelB/seedrecover/internal/events"
	"github.com/TheMichaelB/seedrecover/internal/extract"
	"github.com/TheMichaelB/seedrecover/internal/models"
	"github.com/TheMichaelB/seedrecover/internal/storage"
)

// Finding is a vault located without decrypting it.
type Finding struct {
	Origin    string                 `json:"origin"`
	Format    models.SourceFormat    `json:"format"`
	Strategy  models.Strategy        `json:"strategy"`
	Encrypted bool                   `json:"encrypted"`
	Vault     *models.EncryptedVault `json:"vault"`
}

// Scan lists every distinct vault in paths. Unreadable inputs and malformed
// matches are logged and skipped.
func (s *Service) Scan(ctx context.Context, paths []string) ([]Finding, error) {
	reader := storage.NewReader(&s.cfg.Storage, s.logger)
	ctx = events.WithLogger(ctx, events.FromContextOr(ctx, s.logger))

	var (
		findings []Finding
		seen     = make(map[string]bool)
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, models.NewError(models.KindFatal, "scan", err)
		}

		pctx := events.WithOrigin(ctx, path)
		logger := events.FromContext(pctx)

		blobs, err := reader.Read(pctx, path)
		if err != nil {
			logger.WithError(err).Debug("Skipping input")
			continue
		}

		for _, blob := range blobs {
			vaults, err := extract.ExtractAll(blob.Data)
			if err != nil {
				if !models.IsNotFound(err) {
					logger.WithError(err).Warn("Malformed vault")
				}
				continue
			}

			for _, v := range vaults {
				n := v.Normalized()
				if seen[n.Key()] {
					continue
				}
				seen[n.Key()] = true

				findings = append(findings, Finding{
					Origin:    blob.Origin,
					Format:    blob.Format,
					Strategy:  v.Strategy,
					Encrypted: !n.IsCleartext(),
					Vault:     n,
				})
			}
		}
	}

	s.logger.WithField("vaults", len(findings)).Debug("Scan complete")
	return findings, nil
}
