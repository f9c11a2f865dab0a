package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every error the recovery pipeline returns.
type ErrorKind int

const (
	// KindNotFound means no strategy found a vault; try the next input.
	KindNotFound ErrorKind = iota + 1

	// KindMalformedBlob means a strategy matched but its fields did not decode.
	KindMalformedBlob

	// KindDecryptFailed means the authentication tag did not verify.
	KindDecryptFailed

	// KindUnexpectedPlaintext means the plaintext held no HD seed keyring.
	KindUnexpectedPlaintext

	// KindFatal is a programmer or environment error.
	KindFatal
)

// Error codes for structured error handling.
const (
	ErrCodeNotFound            = "VAULT_NOT_FOUND"
	ErrCodeMalformedBlob       = "MALFORMED_BLOB"
	ErrCodeDecryptFailed       = "DECRYPTION_ERROR"
	ErrCodeUnexpectedPlaintext = "UNEXPECTED_PLAINTEXT"
	ErrCodeFatal               = "FATAL_ERROR"
)

// Sentinel errors, one per kind.
var (
	ErrNotFound            = errors.New("vault not found")
	ErrMalformedBlob       = errors.New("malformed vault blob")
	ErrDecryptFailed       = errors.New("decryption failed")
	ErrUnexpectedPlaintext = errors.New("unexpected plaintext")
	ErrFatal               = errors.New("fatal error")
)

// Code returns the error code of the kind.
func (k ErrorKind) Code() string {
	switch k {
	case KindNotFound:
		return ErrCodeNotFound
	case KindMalformedBlob:
		return ErrCodeMalformedBlob
	case KindDecryptFailed:
		return ErrCodeDecryptFailed
	case KindUnexpectedPlaintext:
		return ErrCodeUnexpectedPlaintext
	default:
		return ErrCodeFatal
	}
}

// Sentinel returns the sentinel error matching the kind.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindMalformedBlob:
		return ErrMalformedBlob
	case KindDecryptFailed:
		return ErrDecryptFailed
	case KindUnexpectedPlaintext:
		return ErrUnexpectedPlaintext
	default:
		return ErrFatal
	}
}

func (k ErrorKind) String() string {
	return k.Sentinel().Error()
}

// RecoveryError carries the kind, the failing operation and the input origin.
type RecoveryError struct {
	Kind   ErrorKind
	Op     string
	Origin string
	Err    error
}

// NewError builds a RecoveryError.
func NewError(kind ErrorKind, op string, err error) *RecoveryError {
	return &RecoveryError{Kind: kind, Op: op, Err: err}
}

func (e *RecoveryError) Error() string {
	msg := fmt.Sprintf("%s [%s]", e.Op, e.Kind.Code())
	if e.Origin != "" {
		msg += ": " + e.Origin
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", msg, e.Kind)
}

func (e *RecoveryError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *RecoveryError) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

// WithOrigin returns a copy tagged with the input the error came from.
func (e *RecoveryError) WithOrigin(origin string) *RecoveryError {
	out := *e
	out.Origin = origin
	return &out
}

// KindOf classifies err. Errors outside the pipeline count as fatal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return 0
	}
	var re *RecoveryError
	if errors.As(err, &re) {
		return re.Kind
	}
	for _, k := range []ErrorKind{KindNotFound, KindMalformedBlob, KindDecryptFailed, KindUnexpectedPlaintext} {
		if errors.Is(err, k.Sentinel()) {
			return k
		}
	}
	return KindFatal
}

// IsNotFound reports whether err only means "no vault in this input".
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
