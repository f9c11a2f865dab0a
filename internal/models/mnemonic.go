package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MnemonicKind tells which representation a Mnemonic was stored in.
type MnemonicKind int

const (
	// MnemonicKindText is a space separated word string.
	MnemonicKindText MnemonicKind = iota + 1

	// MnemonicKindBytes is an array of byte code points, one per character.
	MnemonicKindBytes
)

func (k MnemonicKind) String() string {
	switch k {
	case MnemonicKindText:
		return "text"
	case MnemonicKindBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Mnemonic is a seed phrase in either of its stored representations.
type Mnemonic struct {
	kind  MnemonicKind
	text  string
	bytes []byte
}

// TextMnemonic wraps a phrase stored as a string.
func TextMnemonic(phrase string) Mnemonic {
	return Mnemonic{kind: MnemonicKindText, text: phrase}
}

// BytesMnemonic wraps a phrase stored as byte code points.
func BytesMnemonic(b []byte) Mnemonic {
	return Mnemonic{kind: MnemonicKindBytes, bytes: append([]byte(nil), b...)}
}

// Kind returns the stored representation.
func (m Mnemonic) Kind() MnemonicKind {
	return m.kind
}

// IsZero reports whether no mnemonic was set.
func (m Mnemonic) IsZero() bool {
	return m.kind == 0
}

// String returns the canonical phrase.
func (m Mnemonic) String() string {
	switch m.kind {
	case MnemonicKindText:
		return m.text
	case MnemonicKindBytes:
		return string(m.bytes)
	default:
		return ""
	}
}

// Wipe zeroes the byte representation and drops the phrase.
func (m *Mnemonic) Wipe() {
	for i := range m.bytes {
		m.bytes[i] = 0
	}
	m.bytes = nil
	m.text = ""
}

// UnmarshalJSON accepts a JSON string or an array of integers in 0..255.
func (m *Mnemonic) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode mnemonic string: %w", err)
		}
		*m = TextMnemonic(s)
		return nil

	case '[':
		var points []int
		if err := json.Unmarshal(data, &points); err != nil {
			return fmt.Errorf("decode mnemonic bytes: %w", err)
		}
		b := make([]byte, len(points))
		for i, p := range points {
			if p < 0 || p > 255 {
				return fmt.Errorf("mnemonic byte %d out of range: %d", i, p)
			}
			b[i] = byte(p)
		}
		*m = Mnemonic{kind: MnemonicKindBytes, bytes: b}
		return nil

	default:
		return fmt.Errorf("mnemonic must be a string or byte array")
	}
}

// MarshalJSON always emits the canonical string form.
func (m Mnemonic) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}
