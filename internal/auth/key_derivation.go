package auth

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// DerivedKeyLength is 32 bytes, the natural key size for HMAC-SHA256.
	DerivedKeyLength = 32

	purposeAccessToken = "eventlink-access-token-v1"
)

var ErrInvalidMasterSecret = errors.New("master secret cannot be empty")

// DeriveKey derives a 32-byte key from masterSecret with HKDF-SHA256. The
// purpose string is the HKDF info parameter, so keys for different purposes
// are independent even when they share a master secret.
func DeriveKey(masterSecret []byte, purpose string) ([]byte, error) {
	if len(masterSecret) == 0 {
		return nil, ErrInvalidMasterSecret
	}

	reader := hkdf.New(sha256.New, masterSecret, nil, []byte(purpose))

	derivedKey := make([]byte, DerivedKeyLength)
	if _, err := io.ReadFull(reader, derivedKey); err != nil {
		return nil, err
	}
	return derivedKey, nil
}

// DeriveAccessTokenKey derives the key that signs bearer tokens.
func DeriveAccessTokenKey(masterSecret []byte) ([]byte, error) {
	return DeriveKey(masterSecret, purposeAccessToken)
}
