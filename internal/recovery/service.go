// Package recovery ties extraction, key derivation, decryption and keyring
// parsing together over browser storage inputs.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TheMichaelB/seedrecover/internal/config"
	"github.com/TheMichaelB/seedrecover/internal/crypto"
	"github.com/TheMichaelB/seedrecover/internal/events"
	"github.com/TheMichaelB/seedrecover/internal/extract"
	"github.com/TheMichaelB/seedrecover/internal/keyring"
	"github.com/TheMichaelB/seedrecover/internal/models"
	"github.com/TheMichaelB/seedrecover/internal/storage"
)

// Service recovers seed phrases from vaults.
type Service struct {
	crypto crypto.Provider
	cfg    *config.Config
	logger *events.Logger
}

// NewService creates a recovery service.
func NewService(cfg *config.Config, provider crypto.Provider, logger *events.Logger) *Service {
	return &Service{
		crypto: provider,
		cfg:    cfg,
		logger: logger.WithField("service", "recovery"),
	}
}

// ExtractVault returns the first vault found in data.
func (s *Service) ExtractVault(data []byte) (*models.EncryptedVault, error) {
	return extract.Extract(data)
}

// DeriveKey derives the 32-byte vault key for password and salt.
func (s *Service) DeriveKey(password string, salt []byte) ([]byte, error) {
	return s.crypto.DeriveKey(password, salt)
}

// DecryptVault opens vault with password and returns its first HD seed
// keyring. Cleartext vaults and vaults whose data already reads as a
// mnemonic are returned without decryption.
func (s *Service) DecryptVault(vault *models.EncryptedVault, password string) (*models.DecryptedVault, error) {
	if vault == nil {
		return nil, models.NewError(models.KindFatal, "decrypt vault", fmt.Errorf("nil vault"))
	}

	v := vault.Normalized()

	var (
		entry *models.KeyringEntry
		err   error
	)
	if v.IsCleartext() || keyring.IsMnemonicShaped(v.Data) {
		entry, err = keyring.Synthesize(strings.TrimSpace(v.Data))
		if err != nil {
			return nil, models.NewError(models.KindFatal, "decrypt vault", err)
		}
	} else {
		plaintext, err := s.open(v, password)
		if err != nil {
			return nil, err
		}
		defer crypto.Wipe(plaintext)

		entry, err = keyring.ParsePlaintext(plaintext)
		if err != nil {
			return nil, err
		}
	}
	defer crypto.Wipe(entry.Data)

	out, err := keyring.Decode(entry)
	if err != nil {
		return nil, err
	}
	out.Strategy = vault.Strategy

	return out, nil
}

// open decodes, derives and decrypts. The caller wipes the plaintext.
func (s *Service) open(v *models.EncryptedVault, password string) ([]byte, error) {
	decoded, err := crypto.DecodeVault(v)
	if err != nil {
		return nil, models.NewError(models.KindMalformedBlob, "decode vault", err)
	}

	key, err := s.crypto.DeriveKey(password, decoded.Salt)
	if err != nil {
		return nil, models.NewError(models.KindFatal, "derive key", err)
	}
	defer crypto.Wipe(key)

	plaintext, err := s.crypto.DecryptData(decoded.Ciphertext, decoded.Nonce, key)
	if err != nil {
		switch {
		case errors.Is(err, crypto.ErrDecryptionFailed):
			return nil, models.NewError(models.KindDecryptFailed, "decrypt vault", err)
		case errors.Is(err, crypto.ErrInvalidNonce), errors.Is(err, crypto.ErrInvalidCiphertext):
			return nil, models.NewError(models.KindMalformedBlob, "decrypt vault", err)
		default:
			return nil, models.NewError(models.KindFatal, "decrypt vault", err)
		}
	}

	return plaintext, nil
}

// RecoverBlob extracts and decrypts the vault of one blob. With
// AllCandidates set, every vault in the blob is tried in order.
func (s *Service) RecoverBlob(ctx context.Context, blob storage.Blob, password string) (*models.DecryptedVault, error) {
	logger := events.FromContextOr(ctx, s.logger)

	var vaults []*models.EncryptedVault
	if s.cfg.Recovery.AllCandidates {
		found, err := extract.ExtractAll(blob.Data)
		if err != nil {
			return nil, withOrigin(err, blob.Origin)
		}
		vaults = found
	} else {
		vault, err := extract.Extract(blob.Data)
		if err != nil {
			return nil, withOrigin(err, blob.Origin)
		}
		vaults = []*models.EncryptedVault{vault}
	}

	var firstErr error
	for _, vault := range vaults {
		logger.WithFields(map[string]interface{}{
			"strategy":  vault.Strategy,
			"cleartext": vault.IsCleartext(),
		}).Debug("Vault extracted")

		out, err := s.DecryptVault(vault, password)
		if err == nil {
			out.Origin = blob.Origin
			s.checkPhrase(logger, out)
			return out, nil
		}
		if firstErr == nil {
			firstErr = withOrigin(err, blob.Origin)
		}
	}
	return nil, firstErr
}

// RecoverPaths reads each path and returns the first vault that decrypts.
// Inputs without a vault are skipped; the first other error is returned when
// nothing succeeds. Cancellation is checked between inputs.
func (s *Service) RecoverPaths(ctx context.Context, paths []string, password string) (*models.DecryptedVault, error) {
	reader := storage.NewReader(&s.cfg.Storage, s.logger)
	ctx = events.WithLogger(ctx, events.FromContextOr(ctx, s.logger))

	var firstErr error
	remember := func(logger *events.Logger, err error) {
		if models.IsNotFound(err) {
			logger.WithError(err).Debug("No vault in input")
			return
		}
		logger.WithError(err).Warn("Vault recovery failed")
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, models.NewError(models.KindFatal, "recover", err)
		}

		pctx := events.WithOrigin(ctx, path)
		logger := events.FromContext(pctx)

		blobs, err := reader.Read(pctx, path)
		if err != nil {
			remember(logger, err)
			continue
		}

		for _, blob := range blobs {
			out, err := s.RecoverBlob(pctx, blob, password)
			if err == nil {
				logger.WithField("strategy", out.Strategy).Info("Vault recovered")
				return out, nil
			}
			remember(logger, err)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return nil, models.NewError(models.KindNotFound, "recover", fmt.Errorf("no vault in %d inputs", len(paths)))
}

func (s *Service) checkPhrase(logger *events.Logger, out *models.DecryptedVault) {
	if !s.cfg.Recovery.ValidateChecksum {
		return
	}
	if err := keyring.Validate(out.Phrase()); err != nil {
		logger.WithFields(map[string]interface{}{
			"words": keyring.WordCount(out.Phrase()),
		}).Warn("Recovered phrase fails BIP-39 validation")
	}
}

func withOrigin(err error, origin string) error {
	var re *models.RecoveryError
	if errors.As(err, &re) && re.Origin == "" {
		return re.WithOrigin(origin)
	}
	return err
}
