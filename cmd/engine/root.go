package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobtier-engine/internal/config"
	"jobtier-engine/internal/logger"
	"jobtier-engine/internal/store"
)

type rootFlags struct {
	dataDir       string
	defaultConfig string
	logLevel      string
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:           "jobtier",
		Short:         "Aggregate ATS job postings for tiered sponsor companies",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&f.dataDir, "data-dir", "", "engine data directory (default $JOBTIER_DATA_DIR or .)")
	root.PersistentFlags().StringVar(&f.defaultConfig, "default-config", filepath.Join("config", "config.yml"), "config copied into the data dir on first run")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(
		newServeCmd(&f),
		newScrapeCmd(&f),
		newBuildTiersCmd(&f),
		newDataCmd(&f),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jobtier %s\n", version)
		},
	}
}

// app is the wiring shared by every subcommand.
type app struct {
	dataDir     string
	userCfgPath string
	cfg         config.Config
	log         *zap.Logger
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return cfg, err
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	if !vr.OK() {
		return cfg, vr
	}
	return cfg, nil
}

func setup(f *rootFlags) (*app, error) {
	if err := config.LoadDotEnv("."); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	dataDir := f.dataDir
	if dataDir == "" {
		dataDir = os.Getenv("JOBTIER_DATA_DIR")
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}

	userCfgPath, err := config.EnsureUserConfig(dataDir, f.defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := loadConfig(userCfgPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		return nil, err
	}
	return &app{dataDir: dataDir, userCfgPath: userCfgPath, cfg: cfg, log: log}, nil
}

func (a *app) openGateway(ctx context.Context) (*store.Gateway, error) {
	b, err := store.Open(ctx, a.cfg.Store, a.dataDir, a.log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store.NewGateway(b), nil
}

func (a *app) close() {
	_ = a.log.Sync()
}
