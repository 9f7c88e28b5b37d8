// Package cli implements the sealbox command-line front-end. It wires the
// install keys, credential vault, audit log and session tracker together
// and exposes them as cobra commands. The core packages stay UI-free; all
// prompting, spinners and colored output live here.
package cli

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sealbox/sealbox/internal/auditlog"
	"github.com/sealbox/sealbox/internal/config"
	"github.com/sealbox/sealbox/internal/keystore"
	"github.com/sealbox/sealbox/internal/logging"
	"github.com/sealbox/sealbox/internal/session"
	"github.com/sealbox/sealbox/internal/timelock"
	"github.com/sealbox/sealbox/internal/vault"
)

// resumeTokenFile keeps the login alive between CLI invocations.
const resumeTokenFile = "session.token"

// App holds the wired components behind every command.
type App struct {
	config *config.Config
	log    logging.Logger
	keys   *keystore.Store
	vault  *vault.Vault
	audit  *auditlog.Log
	signer *timelock.Signer
	sess   *session.Session
	reader *bufio.Reader
}

// NewApp creates the data directories, loads the install keys and opens
// the vault and audit log. An unreadable key file is the one error class
// that aborts startup.
func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.NewNop()
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.TempDir, 0o700); err != nil {
		return nil, err
	}

	keys, err := keystore.New(cfg.DataDir, cfg.WrapPhrase)
	if err != nil {
		return nil, err
	}

	wrappingKey, err := keys.WrappingKey()
	if err != nil {
		return nil, err
	}
	chainKey, err := keys.ChainKey()
	if err != nil {
		return nil, err
	}
	tokenKey, err := keys.TokenKey()
	if err != nil {
		return nil, err
	}

	return &App{
		config: cfg,
		log:    log,
		keys:   keys,
		vault:  vault.Open(filepath.Join(cfg.DataDir, "vault.sbx"), wrappingKey, log),
		audit:  auditlog.Open(filepath.Join(cfg.DataDir, "history.sbx"), wrappingKey, chainKey, log),
		signer: timelock.NewSigner(tokenKey),
		sess:   session.New(cfg.SessionTimeout, log),
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// currentUser resolves the logged-in username from the resume token file.
// Returns "" when nobody is logged in or the token is stale.
func (a *App) currentUser() string {
	raw, err := os.ReadFile(a.tokenPath())
	if err != nil {
		return ""
	}
	tokenKey, err := a.keys.TokenKey()
	if err != nil {
		return ""
	}
	username, err := session.ParseResumeToken(strings.TrimSpace(string(raw)), tokenKey)
	if err != nil {
		_ = os.Remove(a.tokenPath())
		return ""
	}
	return username
}

// saveLogin issues a resume token for username and persists it.
func (a *App) saveLogin(username string) error {
	tokenKey, err := a.keys.TokenKey()
	if err != nil {
		return err
	}
	token, err := session.IssueResumeToken(username, tokenKey, a.config.TokenValidityDuration)
	if err != nil {
		return err
	}
	return os.WriteFile(a.tokenPath(), []byte(token), 0o600)
}

// clearLogin drops the persisted resume token.
func (a *App) clearLogin() {
	_ = os.Remove(a.tokenPath())
}

func (a *App) tokenPath() string {
	return filepath.Join(a.config.DataDir, resumeTokenFile)
}

// auditUser is the identity recorded in audit entries.
func (a *App) auditUser() string {
	if u := a.currentUser(); u != "" {
		return u
	}
	return "anonymous"
}

// recordAudit appends an entry, logging instead of failing the command
// when persistence has problems.
func (a *App) recordAudit(action, filename, status string, extra map[string]string) {
	err := a.audit.Append(action, filepath.Base(filename), status, auditlog.DefaultAlgorithm, a.auditUser(), extra)
	if err != nil {
		a.log.Warn(context.Background(), "audit append failed", "error", err)
	}
}
