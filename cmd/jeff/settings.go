package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jeff/internal/config"
	"jeff/internal/driver"
	"jeff/internal/validate"
)

// loadSettings merges defaults, the project file, JEFF_* variables and the
// flags the user actually set on cmd.
func loadSettings(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(cfgPath, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.File != "" {
		logger.Debug("loaded config", zap.String("file", cfg.File))
	}
	return cfg, logger, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func validateOptions(cfg *config.Config) validate.Options {
	return validate.Options{
		Jobs:           cfg.Jobs,
		CollectAll:     cfg.CollectAll,
		Lints:          cfg.Lints,
		MaxDiagnostics: cfg.MaxDiagnostics,
	}
}

func driverOptions(cfg *config.Config, logger *zap.Logger) (driver.Options, error) {
	opts := driver.Options{
		Validate: validateOptions(cfg),
		Jobs:     cfg.Jobs,
		Logger:   logger,
	}
	if !cfg.Cache {
		return opts, nil
	}
	var (
		cache *driver.DiskCache
		err   error
	)
	if cfg.CacheDir != "" {
		cache, err = driver.OpenDiskCacheAt(cfg.CacheDir)
	} else {
		cache, err = driver.OpenDiskCache("jeff")
	}
	if err != nil {
		return opts, fmt.Errorf("failed to open verdict cache: %w", err)
	}
	logger.Debug("verdict cache", zap.String("dir", cache.Dir()))
	opts.Cache = cache
	return opts, nil
}

// switchMode is the auto|on|off value shared by --color and --ui.
type switchMode string

const (
	modeAuto switchMode = "auto"
	modeOn   switchMode = "on"
	modeOff  switchMode = "off"
)

func parseSwitch(name, value string) (switchMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return modeAuto, nil
	case "on":
		return modeOn, nil
	case "off":
		return modeOff, nil
	default:
		return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", name, value)
	}
}

// resolve turns auto into "f is a terminal".
func (m switchMode) resolve(f *os.File) bool {
	switch m {
	case modeOn:
		return true
	case modeOff:
		return false
	default:
		return isTerminal(f)
	}
}

func switchFlag(cmd *cobra.Command, name string, f *os.File) (bool, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return false, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	mode, err := parseSwitch(name, value)
	if err != nil {
		return false, err
	}
	return mode.resolve(f), nil
}

// useColor reads --color for output going to f.
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	return switchFlag(cmd, "color", f)
}

// useProgressUI reads --ui; the progress view always draws on stdout.
func useProgressUI(cmd *cobra.Command) (bool, error) {
	return switchFlag(cmd, "ui", os.Stdout)
}
