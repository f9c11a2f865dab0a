package crypto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/TheMichaelB/seedrecover/internal/models"
)

// ErrInvalidEncoding is returned when a vault field is not valid base64.
var ErrInvalidEncoding = errors.New("invalid vault field encoding")

// Encrypt seals plaintext under a key derived from password and a fresh salt.
// The result marshals to {"data","iv","salt"}.
func Encrypt(p Provider, password string, plaintext []byte) (*models.EncryptedVault, error) {
	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}
	return EncryptWithSalt(p, password, salt, plaintext)
}

// EncryptWithSalt is Encrypt with a caller supplied salt.
func EncryptWithSalt(p Provider, password string, salt, plaintext []byte) (*models.EncryptedVault, error) {
	if len(salt) == 0 {
		return nil, ErrMissingSalt
	}

	key, err := p.DeriveKey(password, salt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer Wipe(key)

	nonce, ciphertext, err := p.EncryptData(plaintext, key)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	return &models.EncryptedVault{
		Data:     base64.StdEncoding.EncodeToString(ciphertext),
		IV:       base64.StdEncoding.EncodeToString(nonce),
		Salt:     base64.StdEncoding.EncodeToString(salt),
		Strategy: models.StrategyDirectJSON,
	}, nil
}

// DecodedVault holds the binary fields of an encrypted vault.
type DecodedVault struct {
	Ciphertext []byte
	Nonce      []byte
	Salt       []byte
}

// DecodeVault base64-decodes the fields of a normalized vault.
func DecodeVault(v *models.EncryptedVault) (*DecodedVault, error) {
	if v.IsCleartext() {
		return nil, ErrMissingSalt
	}

	ciphertext, err := base64.StdEncoding.DecodeString(v.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrInvalidEncoding, err)
	}

	nonce, err := base64.StdEncoding.DecodeString(v.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: iv: %v", ErrInvalidEncoding, err)
	}

	salt, err := base64.StdEncoding.DecodeString(v.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrInvalidEncoding, err)
	}

	return &DecodedVault{Ciphertext: ciphertext, Nonce: nonce, Salt: salt}, nil
}

// Decrypt opens a normalized vault with password. The caller owns the
// returned plaintext and should Wipe it.
func Decrypt(p Provider, password string, v *models.EncryptedVault) ([]byte, error) {
	decoded, err := DecodeVault(v)
	if err != nil {
		return nil, err
	}

	key, err := p.DeriveKey(password, decoded.Salt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer Wipe(key)

	return p.DecryptData(decoded.Ciphertext, decoded.Nonce, key)
}

// Marshal renders a vault in its {"data","iv","salt"} wire form.
func Marshal(v *models.EncryptedVault) ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
