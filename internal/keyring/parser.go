package keyring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/TheMichaelB/seedrecover/internal/models"
)

// shardDelimiter separates keyring entries in a plaintext that is not
// valid JSON as a whole.
const shardDelimiter = "}},"

// ParsePlaintext returns the first HD seed keyring of a decrypted vault.
// Well formed JSON is tried first, then the shard heuristic.
func ParsePlaintext(plaintext []byte) (*models.KeyringEntry, error) {
	text := strings.TrimSpace(string(plaintext))

	if gjson.Valid(text) {
		if entry := firstHDEntry(gjson.Parse(text)); entry != nil {
			return entry, nil
		}
		return nil, models.NewError(models.KindUnexpectedPlaintext, "parse plaintext",
			fmt.Errorf("no keyring holds a mnemonic"))
	}

	if entry := parseShards(text); entry != nil {
		return entry, nil
	}

	return nil, models.NewError(models.KindUnexpectedPlaintext, "parse plaintext",
		fmt.Errorf("plaintext is not a keyring list"))
}

func firstHDEntry(doc gjson.Result) *models.KeyringEntry {
	if doc.IsObject() {
		return decodeEntry(doc.Raw)
	}
	if !doc.IsArray() {
		return nil
	}

	var found *models.KeyringEntry
	doc.ForEach(func(_, value gjson.Result) bool {
		found = decodeEntry(value.Raw)
		return found == nil
	})
	return found
}

// parseShards strips the list brackets and splits the remaining text on the
// entry delimiter, restoring the braces the split removed.
func parseShards(text string) *models.KeyringEntry {
	inner := text
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}

	if entry := decodeEntry(inner); entry != nil {
		return entry
	}

	for _, shard := range strings.Split(inner, shardDelimiter) {
		if entry := decodeEntry(shard + "}}"); entry != nil {
			return entry
		}
	}
	return nil
}

// decodeEntry returns the entry encoded in raw when it is an HD seed keyring.
func decodeEntry(raw string) *models.KeyringEntry {
	raw = strings.TrimSpace(raw)
	if !gjson.Valid(raw) {
		return nil
	}
	if mnemonic := gjson.Get(raw, "data.mnemonic"); !mnemonic.Exists() || mnemonic.Type == gjson.Null {
		return nil
	}

	var entry models.KeyringEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil
	}
	if _, err := entry.HD(); err != nil {
		return nil
	}
	return &entry
}

// Decode turns an HD seed entry into the recovered vault.
func Decode(entry *models.KeyringEntry) (*models.DecryptedVault, error) {
	hd, err := entry.HD()
	if err != nil {
		return nil, models.NewError(models.KindUnexpectedPlaintext, "decode keyring", err)
	}

	defer hd.Mnemonic.Wipe()

	kind := entry.Type
	if kind == "" {
		kind = models.HDKeyTreeType
	}

	return &models.DecryptedVault{
		Type: kind,
		Data: models.HDKeyringData{
			Mnemonic:         models.TextMnemonic(hd.Mnemonic.String()),
			NumberOfAccounts: hd.NumberOfAccounts,
			HDPath:           hd.HDPath,
		},
	}, nil
}
