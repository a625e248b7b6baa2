package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the length of generated secret keys (AES-256).
	KeySize = 32

	pbkdf2Iterations = 100000
	pbkdf2SaltLength = 16
)

// DecodeKey decodes a base64-encoded secret key and checks that the
// decoded material is a valid AES key length.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyOrData, err)
	}

	switch len(key) {
	case 16, 24, 32:
		return key, nil
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidKeySize, len(key))
	}
}

// EncodeKey encodes raw key material for storage or transfer.
func EncodeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// GenerateKey produces a new random 32-byte secret key, base64 encoded.
// The server never sees this key; losing it makes stored records
// permanently unreadable.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return EncodeKey(key), nil
}

// GenerateSalt produces a random PBKDF2 salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, pbkdf2SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives a 32-byte secret key from a passphrase with
// PBKDF2-SHA256, for users who prefer a memorable passphrase over a
// stored random key. The same passphrase and salt always yield the same
// key.
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, KeySize, sha256.New)
}
