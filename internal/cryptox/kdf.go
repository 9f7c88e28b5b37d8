// Package cryptox implements the shared cryptographic primitives of
// sealbox: scrypt key derivation, salted password hashing and verification,
// PKCS#7 padding, and the AES-256-CBC encrypted-blob format used to wrap
// the credential vault and the audit log at rest.
package cryptox

import (
	"crypto/subtle"
	"fmt"

	"github.com/sealbox/sealbox/internal/common"
	"golang.org/x/crypto/scrypt"
)

const (
	// SaltSize is the length of every salt in the on-disk formats.
	SaltSize = 16
	// IVSize is the AES-CBC initialization vector length.
	IVSize = 16
	// KeySize is the derived AES-256 key length.
	KeySize = 32

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// DeriveKey derives a 32-byte AES key from a passphrase and a 16-byte salt
// via scrypt (N=2^15, r=8, p=1). Deterministic: the same inputs always
// yield the same key. The only error condition is an invalid salt length.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("derive key: salt must be %d bytes, got %d", SaltSize, len(salt))
	}
	return scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, KeySize)
}

// HashPassword returns a salt(16)||derivedKey(32) blob for credential
// storage, using a freshly generated random salt.
func HashPassword(password string) ([]byte, error) {
	salt := common.GenerateRandByteArray(SaltSize)
	key, err := DeriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	return append(salt, key...), nil
}

// VerifyPassword re-derives the key from the blob's salt and compares it
// to the stored key in constant time. Malformed blobs verify as false.
func VerifyPassword(password string, blob []byte) bool {
	if len(blob) != SaltSize+KeySize {
		return false
	}
	key, err := DeriveKey(password, blob[:SaltSize])
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(key, blob[SaltSize:]) == 1
}
