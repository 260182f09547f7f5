package hx

import (
	"errors"

	"github.com/pthm/cyphergo/internal/hx/encoding"
)

// Sentinel errors for component operations.
var (
	ErrNotFound         = errors.New("hx: resource not found")
	ErrDecryptFailed    = errors.New("hx: parameter decryption failed")
	ErrSignatureInvalid = errors.New("hx: signature verification failed")
	ErrInvalidFormat    = errors.New("hx: invalid parameter format")
	ErrHydrationFailed  = errors.New("hx: hydration failed")
)

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDecodeError checks if err came from decoding props: a bad format,
// a bad signature or a failed decryption.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) ||
		errors.Is(err, ErrSignatureInvalid) ||
		errors.Is(err, ErrInvalidFormat)
}

// wrapEncodingError maps encoding package errors onto hx sentinels.
func wrapEncodingError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, encoding.ErrSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, encoding.ErrDecryptFailed):
		return ErrDecryptFailed
	default:
		return ErrInvalidFormat
	}
}
