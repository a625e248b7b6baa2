package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLastOnEmptyStore(t *testing.T) {
	s := testStore(t)

	_, err := s.Last()
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestSaveAndLast(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Save(Entry{
		Username:    "alice",
		Password:    "pw",
		SecretKey:   "a2V5a2V5a2V5",
		Host:        "vault.example.com",
		Port:        8443,
		Token:       "tok-1",
		Saved:       true,
		SilentLogin: true,
	}))
	require.NoError(t, s.Save(Entry{
		Username: "bob",
		Host:     "vault.example.com",
		Port:     8443,
		Token:    "tok-2",
	}))

	last, err := s.Last()
	require.NoError(t, err)
	assert.Equal(t, "bob", last.Username)
	assert.Equal(t, "tok-2", last.Token)
	assert.False(t, last.SilentLogin)
	assert.False(t, last.CreatedAt.IsZero())
}

func TestClear(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Save(Entry{Username: "alice", Token: "tok"}))
	require.NoError(t, s.Clear())

	_, err := s.Last()
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(Entry{Username: "alice", SecretKey: "key", SilentLogin: true}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	last, err := s.Last()
	require.NoError(t, err)
	assert.Equal(t, "alice", last.Username)
	assert.True(t, last.SilentLogin)
}
