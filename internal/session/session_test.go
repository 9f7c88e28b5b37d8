package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sealbox/sealbox/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLogout(t *testing.T) {
	s := New(0, nil)
	assert.True(t, s.IsLocked())
	assert.Empty(t, s.Username())

	s.Login("alice")
	assert.False(t, s.IsLocked())
	assert.Equal(t, "alice", s.Username())
	assert.NotEmpty(t, s.ID())

	first := s.ID()
	s.Login("alice")
	assert.NotEqual(t, first, s.ID(), "every login gets a fresh session id")

	s.Logout()
	assert.True(t, s.IsLocked())
	assert.Empty(t, s.Username())
	assert.Empty(t, s.ID())
}

func TestCheckTimeout(t *testing.T) {
	s := New(5*time.Minute, nil)
	base := time.Now()
	s.now = func() time.Time { return base }

	s.Login("alice")

	assert.False(t, s.CheckTimeout())
	assert.False(t, s.LockRequested())

	s.now = func() time.Time { return base.Add(5*time.Minute - time.Second) }
	assert.False(t, s.CheckTimeout())

	s.now = func() time.Time { return base.Add(5 * time.Minute) }
	assert.True(t, s.CheckTimeout())
	assert.True(t, s.IsLocked())
	assert.True(t, s.LockRequested())

	// Already locked; no repeated notification.
	assert.False(t, s.CheckTimeout())

	s.ClearLockRequest()
	assert.False(t, s.LockRequested())
}

func TestTouch_ResetsClock(t *testing.T) {
	s := New(5*time.Minute, nil)
	base := time.Now()
	s.now = func() time.Time { return base }

	s.Login("alice")

	s.now = func() time.Time { return base.Add(4 * time.Minute) }
	s.Touch()

	s.now = func() time.Time { return base.Add(8 * time.Minute) }
	assert.False(t, s.CheckTimeout(), "activity at t=4m keeps the session alive until t=9m")

	s.now = func() time.Time { return base.Add(9 * time.Minute) }
	assert.True(t, s.CheckTimeout())
}

func TestTouch_IgnoredWhenLocked(t *testing.T) {
	s := New(time.Minute, nil)
	s.Touch()
	assert.True(t, s.IsLocked())
}

func TestCheckTimeout_NeverFiresWhenLoggedOut(t *testing.T) {
	s := New(time.Nanosecond, nil)
	assert.False(t, s.CheckTimeout())
}

func TestPanicLock(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "scratch")
	require.NoError(t, os.MkdirAll(filepath.Join(tmp, "sub"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "a.dec"), []byte("secret"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "sub", "b.dec"), []byte("secret"), 0o600))

	s := New(time.Minute, nil)
	s.Login("alice")

	require.NoError(t, s.PanicLock(tmp))

	assert.True(t, s.IsLocked())
	assert.True(t, s.LockRequested())

	// Directory exists again but is empty.
	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPanicLock_MissingDirStillLocks(t *testing.T) {
	s := New(time.Minute, nil)
	s.Login("alice")

	require.NoError(t, s.PanicLock(filepath.Join(t.TempDir(), "nope")))
	assert.True(t, s.IsLocked())
}

func TestResumeToken_RoundTrip(t *testing.T) {
	key := common.GenerateRandByteArray(32)

	token, err := IssueResumeToken("alice", key, time.Hour)
	require.NoError(t, err)

	username, err := ParseResumeToken(token, key)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestResumeToken_Expired(t *testing.T) {
	key := common.GenerateRandByteArray(32)

	token, err := IssueResumeToken("alice", key, -time.Minute)
	require.NoError(t, err)

	_, err = ParseResumeToken(token, key)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestResumeToken_WrongKey(t *testing.T) {
	token, err := IssueResumeToken("alice", common.GenerateRandByteArray(32), time.Hour)
	require.NoError(t, err)

	_, err = ParseResumeToken(token, common.GenerateRandByteArray(32))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestResumeToken_Garbage(t *testing.T) {
	_, err := ParseResumeToken("not.a.token", common.GenerateRandByteArray(32))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
