// Package timelock implements time-bounded password tokens: a bearer
// credential that embeds a plaintext password and an expiry, authenticated
// by an HMAC-SHA256 signature.
//
// Wire format: base64url(JSON{"p":password,"e":expiryUnix}) "." base64url(MAC).
// Whoever holds the token string can redeem it until expiry.
package timelock

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	// ErrMalformed covers anything that is not a two-part base64 token.
	ErrMalformed = errors.New("malformed token")
	// ErrTampered indicates a signature mismatch. It is reported distinctly
	// from ErrMalformed: no secret is at risk from this distinction.
	ErrTampered = errors.New("signature mismatch, token tampered")
	// ErrExpired indicates a valid signature past its expiry.
	ErrExpired = errors.New("token expired")
)

type payload struct {
	Password string `json:"p"`
	Expiry   int64  `json:"e"`
}

// Signer creates and validates tokens under an injected MAC key, so
// deployments can supply distinct per-install secrets.
type Signer struct {
	key []byte
	now func() time.Time
}

// NewSigner returns a Signer using key for HMAC-SHA256.
func NewSigner(key []byte) *Signer {
	return &Signer{key: key, now: time.Now}
}

// Create wraps password into a signed token valid for ttl. It returns the
// token and its expiry as unix seconds.
func (s *Signer) Create(password string, ttl time.Duration) (string, int64, error) {
	expiry := s.now().Add(ttl).Unix()
	raw, err := json.Marshal(payload{Password: password, Expiry: expiry})
	if err != nil {
		return "", 0, err
	}
	b64 := base64.URLEncoding.EncodeToString(raw)
	sig := s.mac(b64)
	return b64 + "." + base64.URLEncoding.EncodeToString(sig), expiry, nil
}

// Validate checks token and returns the embedded password. It is a pure
// function of its input and the signing key: the signature is verified in
// constant time before the payload is even decoded, then the expiry is
// checked against the current clock.
func (s *Signer) Validate(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return "", ErrMalformed
	}

	provided, err := base64.URLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrMalformed
	}
	if !hmac.Equal(s.mac(parts[0]), provided) {
		return "", ErrTampered
	}

	raw, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrMalformed
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", ErrMalformed
	}

	if s.now().Unix() > p.Expiry {
		return "", ErrExpired
	}
	return p.Password, nil
}

func (s *Signer) mac(b64Payload string) []byte {
	m := hmac.New(sha256.New, s.key)
	m.Write([]byte(b64Payload))
	return m.Sum(nil)
}
