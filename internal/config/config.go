// Package config loads runtime configuration for the sealbox CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally seeded from a .env file.
//  3. Optional JSON file selected via the -c or -config flags.
//  4. Command-line flags, which override everything earlier.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the sealbox CLI.
//
// Fields:
//   - DataDir: directory holding the key material, vault and audit log.
//   - TempDir: scratch directory for one-time decrypts, wiped on panic lock.
//   - WrapPhrase: passphrase the at-rest wrapping key is derived from.
//     The default is only suitable for evaluation; override it per install.
//   - SessionTimeout: inactivity window before auto-lock.
//   - WipePasses: overwrite passes used by secure erase.
//   - TokenValidityDuration: lifetime of login resume tokens.
type Config struct {
	DataDir               string
	TempDir               string
	WrapPhrase            string
	SessionTimeout        time.Duration
	WipePasses            int
	TokenValidityDuration time.Duration
}

// LoadDefaults populates c with sensible defaults rooted in the user's
// home directory.
func (c *Config) LoadDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.DataDir = filepath.Join(home, ".sealbox")
	c.TempDir = filepath.Join(c.DataDir, "tmp")
	c.WrapPhrase = "sealbox-default-wrap-phrase"
	c.SessionTimeout = 300 * time.Second
	c.WipePasses = 7
	c.TokenValidityDuration = 24 * time.Hour
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional JSON file and finally command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
