package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.NotEmpty(t, c.DataDir)
	assert.NotEmpty(t, c.TempDir)
	assert.Equal(t, 300*time.Second, c.SessionTimeout)
	assert.Equal(t, 7, c.WipePasses)
	assert.Equal(t, 24*time.Hour, c.TokenValidityDuration)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, 300*time.Second, cfg.SessionTimeout)
	assert.Equal(t, 7, cfg.WipePasses)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("SEALBOX_DATA_DIR", "/var/lib/sealbox")
	t.Setenv("SEALBOX_SESSION_TIMEOUT", "10m")
	t.Setenv("SEALBOX_WIPE_PASSES", "3")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "/var/lib/sealbox", c.DataDir)
	assert.Equal(t, 10*time.Minute, c.SessionTimeout)
	assert.Equal(t, 3, c.WipePasses)
}

func TestParseEnv_MalformedValuesIgnored(t *testing.T) {
	t.Setenv("SEALBOX_SESSION_TIMEOUT", "soon")
	t.Setenv("SEALBOX_WIPE_PASSES", "-1")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, 300*time.Second, c.SessionTimeout)
	assert.Equal(t, 7, c.WipePasses)
}
