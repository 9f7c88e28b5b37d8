// Package vault implements the credential store: user records persisted as
// a single JSON document wrapped in the encrypted-blob format, plus
// in-memory login-lockout and one-time-password state owned by the Vault
// instance. Lockout and OTP state deliberately reset on process restart.
//
// The Vault has no internal locking; concurrent mutation must be
// serialized by the caller.
package vault

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sealbox/sealbox/internal/common"
	"github.com/sealbox/sealbox/internal/cryptox"
	"github.com/sealbox/sealbox/internal/logging"
)

const (
	// MinUsernameLen is the shortest accepted username.
	MinUsernameLen = 3
	// MinPasswordLen is the shortest accepted password.
	MinPasswordLen = 8
	// MinMobileLen is the shortest accepted mobile number.
	MinMobileLen = 7

	// MaxLoginAttempts failed logins in a row trigger a lockout.
	MaxLoginAttempts = 3
	// LockoutDuration is how long a locked account stays locked.
	LockoutDuration = 120 * time.Second
)

// Record is one stored user. Records are never hard-deleted.
type Record struct {
	// PasswordHash is hex(salt(16)||derivedKey(32)).
	PasswordHash string `json:"password_hash"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	FullName     string `json:"fullname"`
	CreatedAt    string `json:"created_at"`
	LastLogin    string `json:"last_login,omitempty"`
}

// AuthResult reports an authentication outcome with whatever capacity
// information applies: remaining lockout or remaining attempts.
type AuthResult struct {
	OK           bool
	Message      string
	LockedFor    time.Duration // >0 when the account is locked
	AttemptsLeft int           // meaningful only on a plain failure
}

// Vault is the in-memory credential store bound to one encrypted file.
type Vault struct {
	path string
	key  []byte
	log  logging.Logger
	now  func() time.Time

	users        map[string]*Record
	attempts     map[string]int
	lockoutUntil map[string]time.Time
	pendingOTPs  map[string]*OTP
}

// Open loads the vault at path under wrappingKey. A missing or corrupt
// store degrades to an empty vault: first run and corruption are
// indistinguishable by design, so callers must treat an empty vault after
// a fresh install as normal.
func Open(path string, wrappingKey []byte, log logging.Logger) *Vault {
	if log == nil {
		log = logging.NewNop()
	}
	v := &Vault{
		path:         path,
		key:          wrappingKey,
		log:          log,
		now:          time.Now,
		users:        make(map[string]*Record),
		attempts:     make(map[string]int),
		lockoutUntil: make(map[string]time.Time),
		pendingOTPs:  make(map[string]*OTP),
	}
	v.load()
	return v
}

func (v *Vault) load() {
	raw, err := os.ReadFile(v.path)
	if err != nil {
		if !os.IsNotExist(err) {
			v.log.Warn(context.Background(), "vault load failed, starting fresh", "error", err)
		}
		return
	}
	plain, err := cryptox.DecryptBlob(raw, v.key)
	if err != nil {
		v.log.Warn(context.Background(), "vault decrypt failed, starting fresh", "error", err)
		return
	}
	users := make(map[string]*Record)
	if err := json.Unmarshal(plain, &users); err != nil {
		v.log.Warn(context.Background(), "vault parse failed, starting fresh", "error", err)
		return
	}
	v.users = users
}

func (v *Vault) save() error {
	plain, err := json.Marshal(v.users)
	if err != nil {
		return fmt.Errorf("vault save: %w", err)
	}
	blob, err := cryptox.EncryptBlob(plain, v.key)
	if err != nil {
		return fmt.Errorf("vault save: %w", err)
	}
	if err := os.WriteFile(v.path, blob, 0o600); err != nil {
		return fmt.Errorf("vault save: %w", err)
	}
	return nil
}

// Register creates a new user record and persists immediately.
func (v *Vault) Register(username, password, email, mobile, fullName string) error {
	if _, taken := v.users[username]; taken {
		return fmt.Errorf("username already taken: %w", common.ErrorAlreadyExists)
	}
	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters: %w", MinUsernameLen, common.ErrorValidation)
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", MinPasswordLen, common.ErrorValidation)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("enter a valid email: %w", common.ErrorValidation)
	}
	if len(mobile) < MinMobileLen {
		return fmt.Errorf("enter a valid mobile number: %w", common.ErrorValidation)
	}

	blob, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	v.users[username] = &Record{
		PasswordHash: hex.EncodeToString(blob),
		Email:        email,
		Mobile:       mobile,
		FullName:     fullName,
		CreatedAt:    v.now().Format(time.RFC3339),
	}
	if err := v.save(); err != nil {
		delete(v.users, username)
		return err
	}

	v.log.Info(context.Background(), "registered user", "username", username)
	return nil
}

// Authenticate verifies a login. An active lockout short-circuits with the
// remaining time, without checking the password and without extending the
// window. Three consecutive failures set a 120-second lockout. Any success
// resets the attempt counter and records last-login.
func (v *Vault) Authenticate(username, password string) AuthResult {
	if until, locked := v.lockoutUntil[username]; locked {
		if v.now().Before(until) {
			rem := until.Sub(v.now()).Round(time.Second)
			return AuthResult{
				Message:   fmt.Sprintf("account locked, try again in %ds", int(rem.Seconds())),
				LockedFor: rem,
			}
		}
		delete(v.lockoutUntil, username)
		v.attempts[username] = 0
	}

	rec, found := v.users[username]
	if !found {
		return AuthResult{Message: "invalid username or password"}
	}

	blob, err := hex.DecodeString(rec.PasswordHash)
	if err == nil && cryptox.VerifyPassword(password, blob) {
		v.attempts[username] = 0
		rec.LastLogin = v.now().Format(time.RFC3339)
		if err := v.save(); err != nil {
			v.log.Error(context.Background(), "recording last login failed", "error", err)
		}
		return AuthResult{OK: true, Message: "login successful"}
	}

	v.attempts[username]++
	if v.attempts[username] >= MaxLoginAttempts {
		v.lockoutUntil[username] = v.now().Add(LockoutDuration)
		v.log.Warn(context.Background(), "account locked", "username", username)
		return AuthResult{
			Message:   fmt.Sprintf("too many failed attempts, locked for %ds", int(LockoutDuration.Seconds())),
			LockedFor: LockoutDuration,
		}
	}
	left := MaxLoginAttempts - v.attempts[username]
	return AuthResult{
		Message:      fmt.Sprintf("invalid credentials, %d attempt(s) left", left),
		AttemptsLeft: left,
	}
}

// ResetPassword replaces the password hash and clears any lockout and
// attempt state. The caller is responsible for having redeemed an OTP
// before invoking it.
func (v *Vault) ResetPassword(username, newPassword string) error {
	rec, found := v.users[username]
	if !found {
		return fmt.Errorf("user %s: %w", username, common.ErrorNotFound)
	}
	if len(newPassword) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", MinPasswordLen, common.ErrorValidation)
	}

	blob, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	old := rec.PasswordHash
	rec.PasswordHash = hex.EncodeToString(blob)
	if err := v.save(); err != nil {
		rec.PasswordHash = old
		return err
	}

	delete(v.attempts, username)
	delete(v.lockoutUntil, username)
	v.log.Info(context.Background(), "password reset", "username", username)
	return nil
}

// Exists reports whether a username is registered.
func (v *Vault) Exists(username string) bool {
	_, found := v.users[username]
	return found
}

// MobileByUsername returns the mobile number stored for username.
func (v *Vault) MobileByUsername(username string) (string, error) {
	rec, found := v.users[username]
	if !found {
		return "", fmt.Errorf("user %s: %w", username, common.ErrorNotFound)
	}
	return rec.Mobile, nil
}

// UsernameByMobile returns the first user registered with mobile.
// Uniqueness of mobile numbers is assumed, not enforced.
func (v *Vault) UsernameByMobile(mobile string) (string, error) {
	for username, rec := range v.users {
		if rec.Mobile == mobile {
			return username, nil
		}
	}
	return "", fmt.Errorf("mobile %s: %w", mobile, common.ErrorNotFound)
}
