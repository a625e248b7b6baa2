package crypto

import (
	"bytes"
	"crypto/aes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		keyLen    int
		plaintext string
	}{
		{"aes-128 short", 16, "secret"},
		{"aes-192 short", 24, "secret"},
		{"aes-256 short", 32, "secret"},
		{"exact block", 32, "0123456789abcdef"},
		{"multi block", 32, "a longer plaintext spanning several cipher blocks, with unicode: пароль"},
		{"single byte", 32, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := bytes.Repeat([]byte{0x42}, tt.keyLen)

			blob, err := Encrypt(key, []byte(tt.plaintext))
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(blob), 2*aes.BlockSize)

			got, err := Decrypt(key, blob)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, string(got))
		})
	}
}

func TestEncryptEmptyPlaintext(t *testing.T) {
	blob, err := Encrypt(testKey(1), nil)
	require.NoError(t, err)
	assert.Nil(t, blob)

	blob, err = Encrypt(testKey(1), []byte{})
	require.NoError(t, err)
	assert.Nil(t, blob)
}

func TestEncryptFreshIVPerCall(t *testing.T) {
	key := testKey(7)
	plaintext := []byte("same plaintext, same key")

	first, err := Encrypt(key, plaintext)
	require.NoError(t, err)
	second, err := Encrypt(key, plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two encryptions must not share an IV")
	assert.NotEqual(t, first[:aes.BlockSize], second[:aes.BlockSize])
}

func TestDecryptWrongKey(t *testing.T) {
	blob, err := Encrypt(testKey(1), []byte("top secret"))
	require.NoError(t, err)

	got, err := Decrypt(testKey(2), blob)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidKeyOrData)
	assert.NotEqual(t, "top secret", string(got))
}

func TestDecryptInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
		blob []byte
		want error
	}{
		{"short blob", testKey(1), []byte("tiny"), ErrInvalidKeyOrData},
		{"bad key size", bytes.Repeat([]byte{1}, 15), bytes.Repeat([]byte{0}, 32), ErrInvalidKeySize},
		{"unaligned ciphertext", testKey(1), bytes.Repeat([]byte{0}, aes.BlockSize+5), ErrInvalidKeyOrData},
		{"iv only", testKey(1), bytes.Repeat([]byte{0}, aes.BlockSize), ErrInvalidKeyOrData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(tt.key, tt.blob)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncryptBadKeySize(t *testing.T) {
	_, err := Encrypt([]byte("short"), []byte("data"))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestStringRoundTrip(t *testing.T) {
	key := testKey(9)

	encoded, err := EncryptString(key, "github.com password")
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	got, err := DecryptString(key, encoded)
	require.NoError(t, err)
	assert.Equal(t, "github.com password", got)
}

func TestStringEmptyValues(t *testing.T) {
	key := testKey(9)

	encoded, err := EncryptString(key, "")
	require.NoError(t, err)
	assert.Empty(t, encoded)

	got, err := DecryptString(key, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecryptStringNotBase64(t *testing.T) {
	_, err := DecryptString(testKey(9), "%%% not base64 %%%")
	assert.ErrorIs(t, err, ErrInvalidKeyOrData)
}
