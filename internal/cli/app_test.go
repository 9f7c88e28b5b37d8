package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sealbox/sealbox/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	base := t.TempDir()
	cfg := &config.Config{
		DataDir:               filepath.Join(base, "data"),
		TempDir:               filepath.Join(base, "tmp"),
		WrapPhrase:            "test-wrap-phrase",
		SessionTimeout:        300 * time.Second,
		WipePasses:            1,
		TokenValidityDuration: time.Hour,
	}
	app, err := NewApp(cfg, nil)
	require.NoError(t, err)
	return app
}

func TestNewApp_CreatesDirsAndKeys(t *testing.T) {
	app := newTestApp(t)

	for _, dir := range []string{app.config.DataDir, app.config.TempDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	for _, name := range []string{"db.salt", "chain.key", "token.key"} {
		_, err := os.Stat(filepath.Join(app.config.DataDir, name))
		assert.NoError(t, err, name)
	}
}

func TestResumeLogin_RoundTrip(t *testing.T) {
	app := newTestApp(t)
	assert.Empty(t, app.currentUser())

	require.NoError(t, app.saveLogin("alice"))
	assert.Equal(t, "alice", app.currentUser())
	assert.Equal(t, "alice", app.auditUser())

	app.clearLogin()
	assert.Empty(t, app.currentUser())
	assert.Equal(t, "anonymous", app.auditUser())
}

func TestCurrentUser_GarbageTokenRemoved(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, os.WriteFile(app.tokenPath(), []byte("not.a.token"), 0o600))

	assert.Empty(t, app.currentUser())
	_, err := os.Stat(app.tokenPath())
	assert.True(t, os.IsNotExist(err), "stale token file must be removed")
}

func TestRecordAudit_Appends(t *testing.T) {
	app := newTestApp(t)

	app.recordAudit("ENCRYPT", "/some/dir/doc.txt", "Success", nil)

	entries := app.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.txt", entries[0].Filename, "only the base name is recorded")
	assert.Equal(t, "anonymous", entries[0].User)

	ok, report := app.audit.Verify()
	assert.True(t, ok, report)
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	app := newTestApp(t)
	root := NewRootCmd(app)

	want := []string{
		"encrypt", "decrypt", "peek", "wipe", "register", "login",
		"logout", "lock", "otp", "reset", "history", "token", "version",
	}
	have := make(map[string]bool)
	for _, c := range root.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, have[name], name)
	}
}
