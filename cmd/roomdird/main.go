package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/config"
	"github.com/roomdir-dev/roomdir/internal/daemon"
	"github.com/roomdir-dev/roomdir/internal/logging"
)

var (
	version = "0.3.0"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	projectRoot := pflag.StringP("project", "p", ".", "Project root directory")
	logLevel := pflag.String("log-level", "", "Override daemon.log_level")
	showVersion := pflag.Bool("version", false, "Show version")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("roomdird %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := loadConfig(*projectRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "roomdird: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Daemon.LogLevel = *logLevel
	}

	logger, err := logging.New(cfg.Daemon.LogLevel, cfg.Daemon.LogFormat, "roomdird")
	if err != nil {
		fmt.Fprintf(os.Stderr, "roomdird: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	d, err := daemon.New(*projectRoot, cfg, logger)
	if err != nil {
		logger.Error("failed to create daemon", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("starting roomdird", zap.String("version", version), zap.String("project", *projectRoot))
	if err := d.Run(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("daemon error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("roomdird stopped")
}

// loadConfig merges the global and project configuration.
func loadConfig(projectRoot string) (*config.Config, error) {
	global, err := config.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load global config: %w", err)
	}
	project, err := config.NewLoader(projectRoot).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.MergeConfigs(global, project)
	if err := config.ValidateOrError(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
