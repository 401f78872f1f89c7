package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jeff/internal/diagfmt"
	"jeff/internal/driver"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <in> <out>",
	Short: "Re-encode a module between binary and text",
	Long:  `Convert a module between .jeff (binary) and .jeff.yaml/.jeff.yml (text). The module is validated first; nothing is written when it is invalid`,
	Args:  cobra.ExactArgs(2),
	RunE:  runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts, err := driverOptions(cfg, logger)
	if err != nil {
		return err
	}
	// кэш вердиктов здесь не нужен: модуль всё равно декодируется целиком
	opts.Cache = nil

	in, out := args[0], args[1]
	res, err := driver.Convert(cmd.Context(), in, out, opts)
	if errors.Is(err, driver.ErrInvalid) {
		color, cerr := useColor(cmd, os.Stderr)
		if cerr != nil {
			return cerr
		}
		res.Bag.Sort()
		diagfmt.Pretty(cmd.ErrOrStderr(), diagfmt.Report{Path: in, Bag: res.Bag}, diagfmt.PrettyOpts{Color: color, ShowNotes: true})
		return errInvalid
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s -> %s)\n", out, res.From, res.To)
	return nil
}
