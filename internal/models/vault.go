package models

import (
	"encoding/json"
	"fmt"
)

// Strategy records which extraction strategy produced an EncryptedVault.
type Strategy string

const (
	StrategyDirectJSON        Strategy = "direct_json"
	StrategyWalletSeed        Strategy = "wallet_seed"
	StrategyWalletV2          Strategy = "wallet_v2"
	StrategyKeyringController Strategy = "keyring_controller"
	StrategyFragmented        Strategy = "fragmented"
)

// HDKeyTreeType is the keyring type of a BIP-39 seeded HD keyring.
const HDKeyTreeType = "HD Key Tree"

// EncryptedVault is a vault blob as found in browser storage.
type EncryptedVault struct {
	Data string `json:"data"`
	IV   string `json:"iv"`
	Salt string `json:"salt,omitempty"` // Empty for pre-v3 cleartext vaults

	Strategy Strategy `json:"-"`
}

// IsCleartext reports whether the vault carries an unencrypted mnemonic.
func (v *EncryptedVault) IsCleartext() bool {
	return v.Salt == ""
}

// NeedsNormalization reports whether the fields still carry the quotes of
// the JSON string literal they were cut from.
func (v *EncryptedVault) NeedsNormalization() bool {
	switch v.Strategy {
	case StrategyKeyringController, StrategyFragmented:
		return true
	default:
		return false
	}
}

// Normalized returns a copy whose fields are ready for base64 decoding.
func (v *EncryptedVault) Normalized() *EncryptedVault {
	out := *v
	if !v.NeedsNormalization() {
		return &out
	}

	out.Data = stripOuter(v.Data)
	out.IV = stripOuter(v.IV)
	out.Salt = stripOuter(v.Salt)
	return &out
}

// Key identifies a vault for deduplication.
func (v *EncryptedVault) Key() string {
	return v.IV + "\x00" + v.Data + "\x00" + v.Salt
}

// Validate checks the fields required by the strategy.
func (v *EncryptedVault) Validate() error {
	if v.Data == "" {
		return fmt.Errorf("vault data is required")
	}
	if !v.IsCleartext() && v.IV == "" {
		return fmt.Errorf("vault iv is required")
	}
	return nil
}

func stripOuter(s string) string {
	if len(s) < 2 {
		return s
	}
	return s[1 : len(s)-1]
}

// KeyringEntry is one keyring record of a decrypted vault. Data is kept raw
// so that keyring kinds other than HD seeds pass through untouched.
type KeyringEntry struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HDKeyringData is the data object of an HD seed keyring.
type HDKeyringData struct {
	Mnemonic         Mnemonic `json:"mnemonic"`
	NumberOfAccounts *uint32  `json:"numberOfAccounts,omitempty"`
	HDPath           string   `json:"hdPath,omitempty"`
}

// IsHDSeed reports whether the entry's data holds a mnemonic.
func (e *KeyringEntry) IsHDSeed() bool {
	if len(e.Data) == 0 {
		return false
	}
	var probe struct {
		Mnemonic json.RawMessage `json:"mnemonic"`
	}
	if err := json.Unmarshal(e.Data, &probe); err != nil {
		return false
	}
	return len(probe.Mnemonic) > 0 && string(probe.Mnemonic) != "null"
}

// HD decodes the entry's data as an HD keyring.
func (e *KeyringEntry) HD() (*HDKeyringData, error) {
	var data HDKeyringData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, fmt.Errorf("decode %q keyring data: %w", e.Type, err)
	}
	if data.Mnemonic.IsZero() {
		return nil, fmt.Errorf("keyring %q has no mnemonic", e.Type)
	}
	return &data, nil
}

// DecryptedVault is the first HD seed keyring recovered from a vault.
type DecryptedVault struct {
	Type     string        `json:"type"`
	Data     HDKeyringData `json:"data"`
	Strategy Strategy      `json:"strategy,omitempty"`
	Origin   string        `json:"origin,omitempty"`
}

// Phrase returns the mnemonic in its canonical string form.
func (d *DecryptedVault) Phrase() string {
	return d.Data.Mnemonic.String()
}

// Wipe clears the mnemonic held by the vault.
func (d *DecryptedVault) Wipe() {
	d.Data.Mnemonic.Wipe()
}
