package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func checkFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("check", pflag.ContinueOnError)
	fs.Int("jobs", 0, "")
	fs.Int("max-diagnostics", DefaultMaxDiagnostics, "")
	fs.Bool("first-error", false, "")
	fs.Bool("no-lints", false, "")
	fs.Bool("cache", false, "")
	fs.String("format", DefaultFormat, "")
	fs.String("log-level", DefaultLogLevel, "")
	fs.String("config", "", "")
	return fs
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir(), "", nil)
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.MaxDiagnostics, cfg.MaxDiagnostics)
	assert.True(t, cfg.CollectAll)
	assert.True(t, cfg.Lints)
	assert.False(t, cfg.Cache)
	assert.Equal(t, FormatPretty, cfg.Format)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.File)
}

func TestTOMLFile(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "jeff.toml", "jobs = 3\nmax_diagnostics = 7\nlints = false\nformat = \"json\"\n")

	cfg, err := LoadFrom(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, p, cfg.File)
	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, 7, cfg.MaxDiagnostics)
	assert.False(t, cfg.Lints)
	assert.Equal(t, FormatJSON, cfg.Format)
}

func TestYAMLFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "jeff.yaml", "collect_all: false\ncache: true\ncache_dir: /tmp/jeff\n")

	cfg, err := LoadFrom(dir, "", nil)
	require.NoError(t, err)
	assert.False(t, cfg.CollectAll)
	assert.True(t, cfg.Cache)
	assert.Equal(t, "/tmp/jeff", cfg.CacheDir)
}

func TestTOMLWinsDiscovery(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "jeff.toml", "jobs = 1\n")
	writeFile(t, dir, "jeff.yaml", "jobs: 2\n")

	cfg, err := LoadFrom(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Jobs)
}

func TestExplicitFileMustExist(t *testing.T) {
	_, err := LoadFrom(t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "jeff.yaml", "jobs: 2\nmax_diagnostics: 10\nformat: json\n")
	t.Setenv("JEFF_JOBS", "4")
	t.Setenv("JEFF_MAX_DIAGNOSTICS", "20")

	fs := checkFlags()
	require.NoError(t, fs.Parse([]string{"--max-diagnostics", "30", "--first-error", "--no-lints"}))

	cfg, err := LoadFrom(dir, "", fs)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Jobs, "env overrides file")
	assert.Equal(t, 30, cfg.MaxDiagnostics, "flag overrides env")
	assert.Equal(t, FormatJSON, cfg.Format, "unset flag keeps file value")
	assert.False(t, cfg.CollectAll)
	assert.False(t, cfg.Lints)
}

func TestUnchangedFlagsIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "jeff.yaml", "lints: false\n")

	fs := checkFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := LoadFrom(dir, "", fs)
	require.NoError(t, err)
	assert.False(t, cfg.Lints)
	assert.True(t, cfg.CollectAll)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{"negative jobs", func(c *Config) { c.Jobs = -1 }, "jobs"},
		{"zero limit", func(c *Config) { c.MaxDiagnostics = 0 }, "max_diagnostics"},
		{"unknown format", func(c *Config) { c.Format = "sarif" }, "unknown format"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
	require.NoError(t, Default().Validate())
}

func TestLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)
}

func TestEnvRejectedByValidation(t *testing.T) {
	t.Setenv("JEFF_FORMAT", "xml")
	_, err := LoadFrom(t.TempDir(), "", nil)
	require.Error(t, err)
}
