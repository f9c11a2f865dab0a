package crypto

// Provider defines the interface for cryptographic operations.
type Provider interface {
	// DeriveKey derives a vault key from the password and salt.
	DeriveKey(password string, salt []byte) ([]byte, error)

	// EncryptData encrypts plaintext using AES-GCM with a fresh nonce.
	EncryptData(plaintext, key []byte) (nonce, ciphertext []byte, err error)

	// DecryptData decrypts ciphertext (tag appended) using AES-GCM.
	DecryptData(ciphertext, nonce, key []byte) ([]byte, error)
}
