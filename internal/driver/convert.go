package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"jeff/internal/codec"
	"jeff/internal/diag"
	"jeff/internal/validate"
)

// ErrInvalid is returned by Convert when the input fails validation.
var ErrInvalid = errors.New("module is invalid")

// ConvertResult describes a finished conversion.
type ConvertResult struct {
	From, To codec.Format
	Bag      *diag.Bag
}

// Convert re-encodes in into out, picking both encodings by extension.
// The module is validated first and nothing is written when it is invalid.
func Convert(ctx context.Context, in, out string, opts Options) (*ConvertResult, error) {
	toFormat, err := codec.FormatForPath(out)
	if err != nil {
		return nil, err
	}
	m, fromFormat, err := LoadFile(in)
	if err != nil {
		var de *diag.Error
		if errors.As(err, &de) {
			bag := diag.NewBag(1)
			bag.Add(de)
			return &ConvertResult{From: fromFormat, To: toFormat, Bag: bag}, fmt.Errorf("%s: %w", in, ErrInvalid)
		}
		return nil, err
	}

	res := &ConvertResult{From: fromFormat, To: toFormat}
	res.Bag = validate.Module(ctx, m, opts.Validate)
	if res.Bag.HasErrors() {
		return res, fmt.Errorf("%s: %w", in, ErrInvalid)
	}

	dir := filepath.Dir(out)
	f, err := os.CreateTemp(dir, ".jeff-convert-*")
	if err != nil {
		return res, err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if err := codec.Encode(f, m, toFormat); err != nil {
		_ = f.Close()
		return res, err
	}
	if err := f.Close(); err != nil {
		return res, err
	}
	if err := os.Rename(tmp, out); err != nil {
		return res, err
	}
	opts.logger().Debug("converted",
		zap.String("in", in),
		zap.String("out", out),
		zap.Stringer("from", fromFormat),
		zap.Stringer("to", toFormat),
	)
	return res, nil
}
