package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Key sizes
	KeySize   = 32 // AES-256
	NonceSize = 12 // GCM standard
	TagSize   = 16 // GCM tag

	// LegacyNonceSize is the IV length written by browser-passworder.
	LegacyNonceSize = 16

	// PBKDF2 parameters, fixed by the vault format
	DefaultIterations = 10000
	SaltSize          = 32
)

// Errors
var (
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	ErrInvalidKey        = errors.New("invalid key size")
	ErrInvalidNonce      = errors.New("invalid nonce size")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrMissingSalt       = errors.New("vault has no salt")
)

// CryptoProvider handles all cryptographic operations.
type CryptoProvider struct {
	iterations int
}

// NewProvider creates a crypto provider.
func NewProvider() Provider {
	return &CryptoProvider{
		iterations: DefaultIterations,
	}
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives a 256-bit key with PBKDF2-HMAC-SHA256. An empty salt is
// replaced by a random one, which only makes sense when encrypting.
func (p *CryptoProvider) DeriveKey(password string, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		var err error
		if salt, err = NewSalt(); err != nil {
			return nil, err
		}
	}

	secret := []byte(password)
	defer Wipe(secret)

	return pbkdf2.Key(secret, salt, p.iterations, KeySize, sha256.New), nil
}

// EncryptData encrypts plaintext using AES-GCM.
func (p *CryptoProvider) EncryptData(plaintext, key []byte) ([]byte, []byte, error) {
	aead, err := newGCM(key, NonceSize)
	if err != nil {
		return nil, nil, err
	}

	// Generate random nonce
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("generate nonce: %w", err)
	}

	return nonce, aead.Seal(nil, nonce, plaintext, nil), nil
}

// DecryptData decrypts ciphertext using AES-GCM.
func (p *CryptoProvider) DecryptData(ciphertext, nonce, key []byte) ([]byte, error) {
	if len(nonce) != NonceSize && len(nonce) != LegacyNonceSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidNonce, len(nonce))
	}

	if len(ciphertext) < TagSize {
		return nil, ErrInvalidCiphertext
	}

	aead, err := newGCM(key, len(nonce))
	if err != nil {
		return nil, err
	}

	// aead.Open expects ciphertext+tag combined
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}
