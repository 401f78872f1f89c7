// Package config loads jeff settings from defaults, a project file,
// JEFF_* environment variables and explicitly set command-line flags,
// in that order of increasing priority.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
)

const (
	EnvPrefix = "JEFF_"

	DefaultMaxDiagnostics = 100
	DefaultFormat         = FormatPretty
	DefaultLogLevel       = "warn"
)

// Output formats understood by the CLI.
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// FileNames lists the project files probed when no explicit path is given.
var FileNames = []string{"jeff.toml", "jeff.yaml", "jeff.yml"}

// Config is the merged configuration.
type Config struct {
	Jobs           int    `koanf:"jobs"`
	MaxDiagnostics int    `koanf:"max_diagnostics"`
	CollectAll     bool   `koanf:"collect_all"`
	Lints          bool   `koanf:"lints"`
	Cache          bool   `koanf:"cache"`
	CacheDir       string `koanf:"cache_dir"`
	Format         string `koanf:"format"`
	LogLevel       string `koanf:"log_level"`

	// File is the project file that was loaded, if any.
	File string `koanf:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"jobs":            0,
		"max_diagnostics": DefaultMaxDiagnostics,
		"collect_all":     true,
		"lints":           true,
		"cache":           false,
		"cache_dir":       "",
		"format":          DefaultFormat,
		"log_level":       DefaultLogLevel,
	}
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		MaxDiagnostics: DefaultMaxDiagnostics,
		CollectAll:     true,
		Lints:          true,
		Format:         DefaultFormat,
		LogLevel:       DefaultLogLevel,
	}
}

// Load reads configuration relative to the working directory.
func Load(explicit string, flags *pflag.FlagSet) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return LoadFrom(cwd, explicit, flags)
}

// LoadFrom reads configuration with dir as the place to look for a project
// file. An explicit path must exist; a discovered one is optional.
func LoadFrom(dir, explicit string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. project file
	path := explicit
	if path == "" {
		path = findFile(dir)
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}

	// 3. JEFF_MAX_DIAGNOSTICS -> max_diagnostics
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. flags, только явно заданные
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findFile(dir string) string {
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func loadFile(k *koanf.Koanf, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var raw map[string]any
		if _, err := toml.DecodeFile(path, &raw); err != nil {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
		if err := k.Load(confmap.Provider(raw, "."), nil); err != nil {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
		return nil
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return nil
}

// flagKey maps CLI flag names onto config keys. Negative switches
// (--first-error, --no-lints) flip the positive key they shadow.
func flagKey(flags *pflag.FlagSet) func(f *pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		if !f.Changed {
			return "", nil
		}
		switch f.Name {
		case "config", "ui", "color":
			return "", nil
		case "first-error":
			v, err := flags.GetBool(f.Name)
			if err != nil {
				return "", nil
			}
			return "collect_all", !v
		case "no-lints":
			v, err := flags.GetBool(f.Name)
			if err != nil {
				return "", nil
			}
			return "lints", !v
		}
		return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
	}
}

// Validate checks value ranges after merging.
func (c *Config) Validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be >= 0, got %d", c.Jobs)
	}
	if c.MaxDiagnostics < 1 {
		return fmt.Errorf("max_diagnostics must be >= 1, got %d", c.MaxDiagnostics)
	}
	switch c.Format {
	case FormatPretty, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q (expected %s|%s)", c.Format, FormatPretty, FormatJSON)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
