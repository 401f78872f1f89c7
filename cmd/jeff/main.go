package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jeff/internal/config"
	"jeff/internal/version"
)

// errInvalid signals that findings were already printed; only the exit
// status is left to report.
var errInvalid = errors.New("invalid module")

var rootCmd = &cobra.Command{
	Use:           "jeff",
	Short:         "Validate and convert jeff quantum-classical modules",
	Long:          `jeff checks modules in the binary (.jeff) and text (.jeff.yaml) encodings and converts between them`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// init registers subcommands and persistent flags.
func init() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "config file (default: jeff.toml or jeff.yaml in the working directory)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().Int("max-diagnostics", config.DefaultMaxDiagnostics, "maximum number of diagnostics per file")
}

// main executes the root command. Any error exits with status 1.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
