package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/sealbox/sealbox/internal/flagx"
	"github.com/sealbox/sealbox/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so intervals can be given either as strings like "5m"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	DataDir               string         `json:"data_dir"`
	TempDir               string         `json:"temp_dir"`
	WrapPhrase            string         `json:"wrap_phrase"`
	SessionTimeout        timex.Duration `json:"session_timeout"`
	WipePasses            int            `json:"wipe_passes"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config flags via
// flagx.JsonConfigFlags(); when neither is set, nothing is loaded. Fields
// absent from the file keep their previous value. Read or unmarshal
// errors panic, matching flag parsing behavior.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DataDir != "" {
		cfg.DataDir = c.DataDir
	}
	if c.TempDir != "" {
		cfg.TempDir = c.TempDir
	}
	if c.WrapPhrase != "" {
		cfg.WrapPhrase = c.WrapPhrase
	}
	if c.SessionTimeout.Duration != 0 {
		cfg.SessionTimeout = time.Duration(c.SessionTimeout.Duration)
	}
	if c.WipePasses != 0 {
		cfg.WipePasses = c.WipePasses
	}
	if c.TokenValidityDuration.Duration != 0 {
		cfg.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	}
}
