package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the environment. A .env file
// in the working directory is loaded first when present; real environment
// variables win over .env entries.
//
// Recognized variables:
//
//	SEALBOX_DATA_DIR        string
//	SEALBOX_TEMP_DIR        string
//	SEALBOX_WRAP_PHRASE     string
//	SEALBOX_SESSION_TIMEOUT duration ("5m", "300s")
//	SEALBOX_WIPE_PASSES     int
//	SEALBOX_TOKEN_VALIDITY  duration ("24h")
//
// Malformed values are ignored and the previous value is kept.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("SEALBOX_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SEALBOX_TEMP_DIR"); v != "" {
		cfg.TempDir = v
	}
	if v := os.Getenv("SEALBOX_WRAP_PHRASE"); v != "" {
		cfg.WrapPhrase = v
	}
	if v := os.Getenv("SEALBOX_SESSION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionTimeout = d
		}
	}
	if v := os.Getenv("SEALBOX_WIPE_PASSES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WipePasses = n
		}
	}
	if v := os.Getenv("SEALBOX_TOKEN_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TokenValidityDuration = d
		}
	}
}
