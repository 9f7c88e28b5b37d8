package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestParseJson(t *testing.T) {
	path := writeConfigFile(t, `{
		"data_dir": "/srv/sealbox",
		"wrap_phrase": "install-phrase",
		"session_timeout": "15m",
		"wipe_passes": 5,
		"token_validity_duration": "48h"
	}`)

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-c", path}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, "/srv/sealbox", c.DataDir)
	assert.Equal(t, "install-phrase", c.WrapPhrase)
	assert.Equal(t, 15*time.Minute, c.SessionTimeout)
	assert.Equal(t, 5, c.WipePasses)
	assert.Equal(t, 48*time.Hour, c.TokenValidityDuration)
}

func TestParseJson_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, `{"wipe_passes": 1}`)

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-config", path}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, 1, c.WipePasses)
	assert.Equal(t, 300*time.Second, c.SessionTimeout)
}

func TestParseJson_NoFlagLoadsNothing(t *testing.T) {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd"}

	var c Config
	c.LoadDefaults()
	before := c
	parseJson(&c)

	assert.Equal(t, before, c)
}

func TestParseJson_BadFilePanics(t *testing.T) {
	path := writeConfigFile(t, `{not json`)

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-c", path}

	var c Config
	c.LoadDefaults()
	require.Panics(t, func() { parseJson(&c) })
}
