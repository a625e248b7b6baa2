package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	first, err := GenerateKey()
	require.NoError(t, err)
	second, err := GenerateKey()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	key, err := DecodeKey(first)
	require.NoError(t, err)
	assert.Len(t, key, KeySize)
}

func TestDecodeKey(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		wantErr error
	}{
		{"aes-128", EncodeKey(make([]byte, 16)), nil},
		{"aes-192", EncodeKey(make([]byte, 24)), nil},
		{"aes-256", EncodeKey(make([]byte, 32)), nil},
		{"too short", EncodeKey(make([]byte, 8)), ErrInvalidKeySize},
		{"odd length", EncodeKey(make([]byte, 20)), ErrInvalidKeySize},
		{"not base64", "###", ErrInvalidKeyOrData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeKey(tt.encoded)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	first := DeriveKey("correct horse battery staple", salt)
	second := DeriveKey("correct horse battery staple", salt)
	assert.Equal(t, first, second)
	assert.Len(t, first, KeySize)

	other := DeriveKey("different passphrase", salt)
	assert.NotEqual(t, first, other)
}
