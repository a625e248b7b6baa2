// Package crypto implements the symmetric cipher used for record fields.
//
// The wire format for an encrypted value is base64(IV || ciphertext),
// where IV is a fresh random 16-byte block and the ciphertext is
// AES-CBC with PKCS#7 padding. All functions are pure over (key, data)
// and safe for concurrent use.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrInvalidKeySize is returned when a key is not 16, 24 or 32 bytes.
	ErrInvalidKeySize = errors.New("crypto: invalid AES key size")

	// ErrInvalidKeyOrData is returned when a ciphertext cannot be
	// decrypted: truncated blob, wrong key or corrupted padding.
	ErrInvalidKeyOrData = errors.New("crypto: invalid key or ciphertext")
)

// Encrypt encrypts plaintext with AES-CBC and PKCS#7 padding. The result
// is IV || ciphertext with a fresh random IV per call, so encrypting the
// same plaintext twice never yields the same output. Empty plaintext
// encrypts to nil.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, nil
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidKeySize, len(key))
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)

	out := make([]byte, aes.BlockSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return out, nil
}

// Decrypt reverses Encrypt: the first 16 bytes of blob are taken as the
// IV, the remainder is decrypted and the PKCS#7 padding is verified and
// stripped. Empty blob decrypts to nil.
func Decrypt(key, blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	if len(blob) < aes.BlockSize {
		return nil, fmt.Errorf("%w: blob shorter than IV", ErrInvalidKeyOrData)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidKeySize, len(key))
	}

	iv, ct := blob[:aes.BlockSize], blob[aes.BlockSize:]
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d", ErrInvalidKeyOrData, len(ct))
	}

	padded := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ct)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return nil, err
	}

	return plaintext, nil
}

// EncryptString encrypts s and encodes the result as base64. Empty input
// stays empty.
func EncryptString(key []byte, s string) (string, error) {
	if s == "" {
		return "", nil
	}

	blob, err := Encrypt(key, []byte(s))
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptString decodes s from base64 and decrypts it. Empty input stays
// empty.
func DecryptString(key []byte, s string) (string, error) {
	if s == "" {
		return "", nil
	}

	blob, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKeyOrData, err)
	}

	plaintext, err := Decrypt(key, blob)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: unaligned data", ErrInvalidKeyOrData)
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: bad padding", ErrInvalidKeyOrData)
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrInvalidKeyOrData)
		}
	}

	return data[:len(data)-n], nil
}
