package keystore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sealbox/sealbox/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreatesOnceAndReuses(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "wrap-phrase")
	require.NoError(t, err)

	salt1, err := s.DatabaseSalt()
	require.NoError(t, err)
	require.Len(t, salt1, cryptox.SaltSize)

	chain1, err := s.ChainKey()
	require.NoError(t, err)
	require.Len(t, chain1, 32)

	token1, err := s.TokenKey()
	require.NoError(t, err)
	require.Len(t, token1, 32)

	// A second store over the same directory sees identical material.
	s2, err := New(dir, "wrap-phrase")
	require.NoError(t, err)

	salt2, err := s2.DatabaseSalt()
	require.NoError(t, err)
	chain2, err := s2.ChainKey()
	require.NoError(t, err)
	token2, err := s2.TokenKey()
	require.NoError(t, err)

	assert.Equal(t, salt1, salt2)
	assert.Equal(t, chain1, chain2)
	assert.Equal(t, token1, token2)
}

func TestStore_WrappingKeyStable(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "wrap-phrase")
	require.NoError(t, err)

	k1, err := s.WrappingKey()
	require.NoError(t, err)
	require.Len(t, k1, cryptox.KeySize)

	k2, err := s.WrappingKey()
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	// A different phrase over the same salt yields a different key.
	other, err := New(dir, "another-phrase")
	require.NoError(t, err)
	k3, err := other.WrappingKey()
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}

func TestStore_RejectsCorruptKeyFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "wrap-phrase")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "chain.key"), []byte("short"), 0o600))

	_, err = s.ChainKey()
	require.Error(t, err)
}

func TestStore_KeyFilePermissions(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "wrap-phrase")
	require.NoError(t, err)

	_, err = s.TokenKey()
	require.NoError(t, err)

	fi, err := os.Stat(filepath.Join(dir, "token.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}
