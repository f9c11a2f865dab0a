package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/encoding/unicode"

	"github.com/TheMichaelB/seedrecover/internal/models"
)

// keyringPrefix is the length of `"KeyringController":{"vault":`.
const keyringPrefix = 29

type strategy func(text string) ([]*models.EncryptedVault, error)

// strategies in precedence order.
var strategies = []strategy{
	directJSON,
	walletSeed,
	keyringController,
	fragmented,
}

// DecodeText turns raw storage bytes into text, replacing invalid UTF-8
// sequences with U+FFFD.
func DecodeText(data []byte) string {
	text, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(text)
}

// Extract returns the first vault found in data. Strategies run in order and
// the first one that matches wins.
func Extract(data []byte) (*models.EncryptedVault, error) {
	text := DecodeText(data)

	var malformed error
	for _, find := range strategies {
		found, err := find(text)
		if err != nil {
			if malformed == nil {
				malformed = err
			}
			continue
		}
		if len(found) > 0 {
			return found[0], nil
		}
	}

	if malformed != nil {
		return nil, malformed
	}
	return nil, models.NewError(models.KindNotFound, "extract", nil)
}

// ExtractAll returns every distinct vault found by any strategy, in
// precedence order.
func ExtractAll(data []byte) ([]*models.EncryptedVault, error) {
	text := DecodeText(data)

	var (
		out       []*models.EncryptedVault
		seen      = make(map[string]bool)
		malformed error
	)
	for _, find := range strategies {
		found, err := find(text)
		if err != nil && malformed == nil {
			malformed = err
		}
		for _, v := range found {
			if seen[v.Key()] {
				continue
			}
			seen[v.Key()] = true
			out = append(out, v)
		}
	}

	if len(out) > 0 {
		return out, nil
	}
	if malformed != nil {
		return nil, malformed
	}
	return nil, models.NewError(models.KindNotFound, "extract", nil)
}

// directJSON handles a file that is the vault object itself.
func directJSON(text string) ([]*models.EncryptedVault, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return nil, nil
	}

	var raw struct {
		Data *string `json:"data"`
		IV   *string `json:"iv"`
		Salt *string `json:"salt"`
	}
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, nil
	}
	if raw.Data == nil || raw.IV == nil {
		return nil, nil
	}

	v := &models.EncryptedVault{Data: *raw.Data, IV: *raw.IV, Strategy: models.StrategyDirectJSON}
	if raw.Salt != nil {
		v.Salt = *raw.Salt
	}
	return []*models.EncryptedVault{v}, nil
}

// walletSeed handles pre-v3 stores that kept the mnemonic in cleartext,
// optionally next to a version 2 encrypted wallet.
func walletSeed(text string) ([]*models.EncryptedVault, error) {
	m := patterns[PatternWalletSeed].FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	mnemonic := strings.ReplaceAll(m[1], `\n`, "")

	if v2 := patterns[PatternWalletV2].FindStringSubmatch(text); v2 != nil {
		if v, err := decodeWalletV2(v2[1]); err == nil {
			return []*models.EncryptedVault{v}, nil
		}
	}

	return []*models.EncryptedVault{{Data: mnemonic, Strategy: models.StrategyWalletSeed}}, nil
}

// decodeWalletV2 decodes a JSON string literal that holds a JSON vault.
func decodeWalletV2(literal string) (*models.EncryptedVault, error) {
	var inner string
	if err := json.Unmarshal([]byte(literal), &inner); err != nil {
		return nil, err
	}

	var v models.EncryptedVault
	if err := json.Unmarshal([]byte(inner), &v); err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	v.Strategy = models.StrategyWalletV2
	return &v, nil
}

// keyringController handles a contiguous KeyringController.vault entry.
// Fields keep their JSON quotes.
func keyringController(text string) ([]*models.EncryptedVault, error) {
	matches := patterns[PatternKeyring].FindAllString(text, -1)
	if len(matches) == 0 {
		return nestedKeyringController(text)
	}

	var (
		out      []*models.EncryptedVault
		firstErr error
	)
	for _, m := range matches {
		body := strings.ReplaceAll(m[keyringPrefix:], `\"`, `"`)
		body = stripOuter(body)

		v, err := keyringFields(body)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, v)
	}

	if len(out) == 0 {
		return nil, firstErr
	}
	return out, nil
}

// nestedKeyringController handles a whole state document that the
// contiguous pattern misses, e.g. one written with indentation.
func nestedKeyringController(text string) ([]*models.EncryptedVault, error) {
	trimmed := strings.TrimSpace(text)
	if !gjson.Valid(trimmed) {
		return nil, nil
	}

	for _, path := range []string{"KeyringController.vault", "data.KeyringController.vault"} {
		vault := gjson.Get(trimmed, path)
		if vault.Type != gjson.String {
			continue
		}
		v, err := keyringFields(vault.String())
		if err != nil {
			return nil, err
		}
		return []*models.EncryptedVault{v}, nil
	}
	return nil, nil
}

func keyringFields(body string) (*models.EncryptedVault, error) {
	if !gjson.Valid(body) {
		return nil, models.NewError(models.KindMalformedBlob, "keyring controller", fmt.Errorf("vault body is not JSON"))
	}

	fields := gjson.GetMany(body, "data", "iv", "salt")
	for i, name := range []string{"data", "iv"} {
		if fields[i].Type != gjson.String {
			return nil, models.NewError(models.KindMalformedBlob, "keyring controller", fmt.Errorf("vault %s is not a string", name))
		}
	}

	v := &models.EncryptedVault{
		Data:     fields[0].Raw,
		IV:       fields[1].Raw,
		Strategy: models.StrategyKeyringController,
	}
	if fields[2].Type == gjson.String {
		v.Salt = fields[2].Raw
	}
	return v, nil
}

// fragmented handles vault fragments interleaved with other records of a
// log-structured store. Fields are wrapped in quotes so that every
// quote-carrying strategy normalizes the same way.
func fragmented(text string) ([]*models.EncryptedVault, error) {
	var (
		out  []*models.EncryptedVault
		seen = make(map[string]bool)
	)

	for _, outer := range patterns[PatternMatch].FindAllString(text, -1) {
		capture := patterns[PatternCapture].FindStringSubmatch(outer)
		if capture == nil {
			continue
		}
		fragment := capture[1]

		data := patterns[PatternData].FindStringSubmatch(fragment)
		iv := patterns[PatternIV].FindStringSubmatch(fragment)
		salt := patterns[PatternSalt].FindStringSubmatch(fragment)
		if data == nil || iv == nil || salt == nil {
			continue
		}

		v := &models.EncryptedVault{
			Data:     quote(data[1]),
			IV:       quote(iv[1]),
			Salt:     quote(salt[1]),
			Strategy: models.StrategyFragmented,
		}
		if seen[v.Key()] {
			continue
		}
		seen[v.Key()] = true
		out = append(out, v)
	}

	return out, nil
}

func quote(s string) string {
	return `"` + s + `"`
}

func stripOuter(s string) string {
	if len(s) < 2 {
		return s
	}
	return s[1 : len(s)-1]
}
