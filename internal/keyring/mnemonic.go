package keyring

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"github.com/TheMichaelB/seedrecover/internal/models"
)

// ErrInvalidChecksum is returned by Validate for phrases that fail the
// BIP-39 word list or checksum test.
var ErrInvalidChecksum = errors.New("mnemonic fails BIP-39 validation")

// Twelve or more words of at least three word characters.
var mnemonicShape = regexp.MustCompile(`^(?:\w{3,}\s+){11,}\w{3,}$`)

// IsMnemonicShaped reports whether s already looks like a cleartext phrase.
func IsMnemonicShaped(s string) bool {
	return mnemonicShape.MatchString(s)
}

// Synthesize builds the HD seed entry for a cleartext mnemonic.
func Synthesize(mnemonic string) (*models.KeyringEntry, error) {
	data, err := json.Marshal(models.HDKeyringData{Mnemonic: models.TextMnemonic(mnemonic)})
	if err != nil {
		return nil, fmt.Errorf("encode keyring data: %w", err)
	}
	return &models.KeyringEntry{Type: models.HDKeyTreeType, Data: data}, nil
}

// Validate checks the phrase against the English BIP-39 word list and its
// checksum. Callers treat a failure as a warning.
func Validate(phrase string) error {
	phrase = strings.Join(strings.Fields(phrase), " ")
	entropy, err := bip39.EntropyFromMnemonic(phrase)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidChecksum, err)
	}
	for i := range entropy {
		entropy[i] = 0
	}
	return nil
}

// WordCount returns the number of words in the phrase.
func WordCount(phrase string) int {
	return len(strings.Fields(phrase))
}
