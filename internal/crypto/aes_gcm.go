package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/awnumar/memguard"
)

// newGCM builds an AES-256-GCM AEAD for the given nonce size.
func newGCM(key []byte, nonceSize int) (cipher.AEAD, error) {
	if err := ValidateKeySize(key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	var aead cipher.AEAD
	if nonceSize == NonceSize {
		aead, err = cipher.NewGCM(block)
	} else {
		aead, err = cipher.NewGCMWithNonceSize(block, nonceSize)
	}
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return aead, nil
}

// ValidateKeySize checks if the key is the correct size.
func ValidateKeySize(key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidKey, KeySize, len(key))
	}
	return nil
}

// Wipe overwrites a secret buffer with zeros.
func Wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	memguard.WipeBytes(b)
}
