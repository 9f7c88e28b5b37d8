// Package keystore manages the per-install local secrets that live outside
// the encrypted stores: the database salt, the audit-chain signing key, and
// the token MAC key. Each is generated once on first need and reused
// thereafter. The files are plaintext on disk by design; their integrity
// guarantee is filesystem confidentiality, not a user secret. Components
// receive these keys at construction time rather than reading ambient
// globals, so deployments can supply distinct per-install material.
package keystore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sealbox/sealbox/internal/common"
	"github.com/sealbox/sealbox/internal/cryptox"
)

const (
	dbSaltFile   = "db.salt"
	chainKeyFile = "chain.key"
	tokenKeyFile = "token.key"

	chainKeySize = 32
	tokenKeySize = 32
)

// Store loads and lazily creates the per-install key material under a
// single directory. A failure to read or create a key file is the one
// unrecoverable error class in sealbox; callers decide whether to halt.
type Store struct {
	dir        string
	wrapPhrase string
}

// New returns a Store rooted at dir. wrapPhrase is the institutional
// string fed into the wrapping-key derivation together with the per-install
// database salt; it is configuration, not a user secret.
func New(dir, wrapPhrase string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("keystore dir %s: %w", dir, err)
	}
	return &Store{dir: dir, wrapPhrase: wrapPhrase}, nil
}

// Dir returns the directory holding the key files.
func (s *Store) Dir() string {
	return s.dir
}

// DatabaseSalt returns the per-install salt used to derive the wrapping
// key, creating it on first use.
func (s *Store) DatabaseSalt() ([]byte, error) {
	return s.loadOrCreate(dbSaltFile, cryptox.SaltSize)
}

// ChainKey returns the audit-chain MAC key, creating it on first use.
func (s *Store) ChainKey() ([]byte, error) {
	return s.loadOrCreate(chainKeyFile, chainKeySize)
}

// TokenKey returns the MAC key for time-locked password tokens and session
// resume tokens, creating it on first use.
func (s *Store) TokenKey() ([]byte, error) {
	return s.loadOrCreate(tokenKeyFile, tokenKeySize)
}

// WrappingKey derives the AES key that encrypts the vault and audit-log
// blobs at rest: scrypt(wrapPhrase, databaseSalt). No user secret is
// involved, so this wrap is obfuscation against a casual file browse, not
// confidentiality against a local attacker with filesystem access.
func (s *Store) WrappingKey() ([]byte, error) {
	salt, err := s.DatabaseSalt()
	if err != nil {
		return nil, err
	}
	return cryptox.DeriveKey(s.wrapPhrase, salt)
}

func (s *Store) loadOrCreate(name string, size int) ([]byte, error) {
	path := filepath.Join(s.dir, name)

	b, err := os.ReadFile(path)
	if err == nil {
		if len(b) != size {
			return nil, fmt.Errorf("key file %s: expected %d bytes, got %d", path, size, len(b))
		}
		return b, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("key file %s: %w", path, err)
	}

	b = common.GenerateRandByteArray(size)
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return nil, fmt.Errorf("key file %s: %w", path, err)
	}
	return b, nil
}
