package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jeff/internal/config"
	"jeff/internal/diagfmt"
	"jeff/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file|directory>...",
	Short: "Validate modules",
	Long:  `Decode and validate jeff modules. Directories are searched recursively for .jeff, .jeff.yaml and .jeff.yml files`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

// init registers the check flags. Everything except --ui can also come
// from the config file or JEFF_* variables.
func init() {
	checkCmd.Flags().String("format", config.DefaultFormat, "output format (pretty|json)")
	checkCmd.Flags().Int("jobs", 0, "max files checked in parallel (0=auto)")
	checkCmd.Flags().Bool("first-error", false, "stop each file at its first error")
	checkCmd.Flags().Bool("no-lints", false, "skip precondition warnings")
	checkCmd.Flags().Bool("with-notes", true, "include secondary locations in output")
	checkCmd.Flags().Bool("quiet", false, "hide valid files without findings")
	checkCmd.Flags().Bool("cache", false, "reuse verdicts of unchanged files from the disk cache")
	checkCmd.Flags().String("cache-dir", "", "verdict cache directory (default: $XDG_CACHE_HOME/jeff)")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

// runCheck validates every module named by args and prints the findings.
// It returns errInvalid when any file is rejected.
func runCheck(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	progressUI, err := useProgressUI(cmd)
	if err != nil {
		return err
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	color, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}

	files, err := driver.ExpandPaths(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no module files found in %v", args)
	}

	opts, err := driverOptions(cfg, logger)
	if err != nil {
		return err
	}
	logger.Debug("check",
		zap.Int("files", len(files)),
		zap.Bool("collect_all", cfg.CollectAll),
		zap.Bool("lints", cfg.Lints),
	)

	ctx := cmd.Context()
	var results []*driver.Result
	if cfg.Format == config.FormatPretty && len(files) > 1 && progressUI {
		results, err = runCheckWithUI(ctx, "checking modules", files, opts)
	} else {
		results, err = driver.CheckFiles(ctx, files, opts)
	}
	if err != nil {
		return err
	}

	reports := make([]diagfmt.Report, len(results))
	invalid := false
	for i, res := range results {
		if res.Bag != nil {
			res.Bag.Sort()
		}
		reports[i] = diagfmt.Report{Path: res.Path, Bag: res.Bag, Err: res.Err, Cached: res.Cached}
		if !res.Valid() {
			invalid = true
		}
	}

	out := cmd.OutOrStdout()
	switch cfg.Format {
	case config.FormatJSON:
		if err := diagfmt.JSON(out, reports, diagfmt.JSONOpts{IncludeNotes: withNotes}); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	default:
		prettyOpts := diagfmt.PrettyOpts{Color: color, ShowNotes: withNotes, Quiet: quiet}
		for _, r := range reports {
			diagfmt.Pretty(out, r, prettyOpts)
		}
		diagfmt.Summary(out, reports, prettyOpts)
	}

	if invalid {
		return errInvalid
	}
	return nil
}
