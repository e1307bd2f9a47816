// Package main is the entry point for the globe viewer.
package main

import (
	"fmt"
	"os"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/globe/internal/app"
	"github.com/Faultbox/globe/internal/assets"
	"github.com/Faultbox/globe/internal/config"
	"github.com/Faultbox/globe/internal/logger"
	"github.com/Faultbox/globe/internal/scene"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Globe ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.PickAssets() {
		dir, err := dialog.Directory().Title("Select asset folder").SetStartDir(cfg.Assets.Root).Browse()
		switch {
		case err == nil:
			cfg.Assets.Root = dir
		case err == dialog.ErrCancelled:
			logger.Info("asset folder selection cancelled, keeping configured root", zap.String("root", cfg.Assets.Root))
		default:
			logger.Warn("asset folder dialog failed", zap.Error(err))
		}
	}

	variant, err := scene.FromConfig(cfg)
	if err != nil {
		logger.Error("invalid scene variant", zap.Error(err))
		os.Exit(1)
	}

	server := assets.NewServer(cfg.Assets.Root)
	defer server.Close()

	a, err := app.New(cfg, variant, server)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	hits, misses := server.Stats()
	logger.Info("viewer closed normally", zap.Int("asset_hits", hits), zap.Int("asset_misses", misses))
}
