package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/soocke/photo3d-go/app"
	"github.com/soocke/photo3d-go/config"
)

func main() {
	cfgPath := flag.String("config", "", "path to a JSON, YAML or TOML config file")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	history := flag.Int("history", 0, "print the newest N journal entries and exit")
	flag.Parse()

	// Defaults when no file is given or it does not exist yet.
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		NewLogger(slog.LevelInfo).Error("config load failed", "path", *cfgPath, "error", err)
		os.Exit(1)
	}
	if *debugFlag {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)

	if *history > 0 {
		if err := printHistory(context.Background(), cfg, *history, os.Stdout, logger); err != nil {
			logger.Error("history failed", "error", err)
			os.Exit(1)
		}
		return
	}

	c, err := app.BuildContainer(cfg, *cfgPath, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	application := app.NewApp("Photo3D", 1000, 720, c)
	if err := application.Start(); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
