package config

import (
	"flag"
	"os"
	"time"

	"github.com/sealbox/sealbox/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   data directory for keys, vault and audit log
//	-m string   scratch directory for one-time decrypts
//	-t int      session inactivity timeout, seconds
//	-p int      secure erase overwrite passes
//	-r int      resume token validity, minutes
//
// The function filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, so cobra subcommand flags pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-m", "-t", "-p", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.TempDir, "m", cfg.TempDir, "scratch directory")
	sessionTimeout := fs.Int("t", int(cfg.SessionTimeout.Seconds()), "session timeout (in seconds)")
	fs.IntVar(&cfg.WipePasses, "p", cfg.WipePasses, "secure erase passes")
	tokenValidity := fs.Int("r", int(cfg.TokenValidityDuration.Minutes()), "resume token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SessionTimeout = time.Duration(*sessionTimeout) * time.Second
	cfg.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
}
