package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/prefs"
	"taskdeck/internal/ui"
)

func main() {
	cfg, err := config.LoadOrCreate(config.DefaultConfigFileName)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogPath)
	if err != nil {
		fmt.Printf("failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := prefs.Open(cfg.PrefsDBPath)
	if err != nil {
		fmt.Printf("failed to open preference store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	client := api.NewClient(cfg.APIBaseURL, cfg.Timeout(), logger)

	if err := ui.Run(client, store, cfg, logger); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes structured logs to a file: the terminal belongs to
// the TUI while the program runs.
func newLogger(path string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}
