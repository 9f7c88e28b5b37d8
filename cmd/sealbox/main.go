package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/sealbox/sealbox/internal/cli"
	"github.com/sealbox/sealbox/internal/config"
	"github.com/sealbox/sealbox/internal/logging"
)

func main() {
	cfg := config.LoadConfig()

	logger := logging.NewNop()
	if os.Getenv("SEALBOX_DEBUG") != "" {
		logger = logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := cli.NewRootCmd(app).Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
