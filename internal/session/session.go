// Package session tracks login and lock state for the calling layer. The
// tracker only manages state: it never spawns timers or touches the UI, so
// the consumer polls CheckTimeout from its own loop and reacts to the
// lock-requested flag. All methods must be called from a single goroutine
// or serialized by the caller.
package session

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sealbox/sealbox/internal/logging"
	"github.com/sealbox/sealbox/internal/wipe"
)

// DefaultTimeout is the inactivity window before auto-lock.
const DefaultTimeout = 300 * time.Second

// Session is the login/lock state machine.
type Session struct {
	id            string
	username      string
	locked        bool
	lastActivity  time.Time
	lockRequested bool
	timeout       time.Duration
	log           logging.Logger
	now           func() time.Time
}

// New returns a locked session with the given inactivity timeout.
// A non-positive timeout falls back to DefaultTimeout.
func New(timeout time.Duration, log logging.Logger) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Session{locked: true, timeout: timeout, log: log, now: time.Now}
}

// Login starts a new session for username.
func (s *Session) Login(username string) {
	s.id = uuid.NewString()
	s.username = username
	s.locked = false
	s.lockRequested = false
	s.lastActivity = s.now()
	s.log.Info(context.Background(), "session started", "session_id", s.id, "username", username)
}

// Logout ends the current session.
func (s *Session) Logout() {
	s.log.Info(context.Background(), "session ended", "session_id", s.id)
	s.id = ""
	s.username = ""
	s.locked = true
	s.lockRequested = false
}

// Touch resets the inactivity clock. Called on any user interaction.
func (s *Session) Touch() {
	if !s.locked {
		s.lastActivity = s.now()
		s.lockRequested = false
	}
}

// Username returns the logged-in user, empty when locked out.
func (s *Session) Username() string {
	return s.username
}

// ID returns the current session identifier, empty when logged out.
func (s *Session) ID() string {
	return s.id
}

// IsLocked reports whether the session is currently locked.
func (s *Session) IsLocked() bool {
	return s.locked
}

// CheckTimeout reports whether the inactivity window elapsed, locking the
// session when it has. Designed to be called periodically by the
// consumer's polling loop.
func (s *Session) CheckTimeout() bool {
	if s.locked {
		return false
	}
	if s.now().Sub(s.lastActivity) >= s.timeout && !s.lockRequested {
		s.log.Info(context.Background(), "auto-lock after inactivity", "timeout", s.timeout)
		s.locked = true
		s.lockRequested = true
		return true
	}
	return false
}

// LockRequested reports whether a lock (auto or panic) is pending for the
// consumer to process.
func (s *Session) LockRequested() bool {
	return s.lockRequested
}

// ClearLockRequest acknowledges a processed lock request.
func (s *Session) ClearLockRequest() {
	s.lockRequested = false
}

// PanicLock locks immediately and wipes tempDir, recreating it empty.
// The wipe error is reported but the lock always takes effect.
func (s *Session) PanicLock(tempDir string) error {
	s.locked = true
	s.lockRequested = true

	err := wipe.WipeTree(tempDir)
	if mkErr := os.MkdirAll(tempDir, 0o700); err == nil {
		err = mkErr
	}
	if err != nil {
		s.log.Error(context.Background(), "panic lock cleanup failed", "error", err)
		return err
	}
	s.log.Warn(context.Background(), "panic lock triggered, temp files wiped", "dir", tempDir)
	return nil
}
