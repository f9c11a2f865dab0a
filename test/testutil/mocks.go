package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/TheMichaelB/seedrecover/internal/crypto"
)

// MockProvider mocks crypto.Provider.
type MockProvider struct {
	mock.Mock
}

var _ crypto.Provider = (*MockProvider)(nil)

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) DeriveKey(password string, salt []byte) ([]byte, error) {
	args := m.Called(password, salt)
	if key := args.Get(0); key != nil {
		return key.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) EncryptData(plaintext, key []byte) ([]byte, []byte, error) {
	args := m.Called(plaintext, key)
	var nonce, ciphertext []byte
	if v := args.Get(0); v != nil {
		nonce = v.([]byte)
	}
	if v := args.Get(1); v != nil {
		ciphertext = v.([]byte)
	}
	return nonce, ciphertext, args.Error(2)
}

func (m *MockProvider) DecryptData(ciphertext, nonce, key []byte) ([]byte, error) {
	args := m.Called(ciphertext, nonce, key)
	if plaintext := args.Get(0); plaintext != nil {
		return plaintext.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}
