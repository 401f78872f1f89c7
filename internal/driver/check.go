package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"jeff/internal/codec"
	"jeff/internal/diag"
	"jeff/internal/ir"
	"jeff/internal/validate"
)

// Options configure a check run.
type Options struct {
	Validate validate.Options
	// Jobs bounds how many files are checked at once; 0 = GOMAXPROCS.
	Jobs     int
	Cache    *DiskCache
	Progress ProgressSink
	Logger   *zap.Logger
}

func (o *Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Result is the outcome of checking one file.
type Result struct {
	Path   string
	Format codec.Format
	// Module is nil when decoding failed or the verdict came from the cache.
	Module *ir.Module
	Bag    *diag.Bag
	// Err holds read and decode failures; validation findings go to Bag.
	Err     error
	Cached  bool
	Elapsed time.Duration
}

// Valid reports whether the file decoded and passed validation.
func (r *Result) Valid() bool {
	return r != nil && r.Err == nil && (r.Bag == nil || !r.Bag.HasErrors())
}

// LoadFile decodes a module, choosing the encoding from the file extension.
// It does not validate.
func LoadFile(path string) (*ir.Module, codec.Format, error) {
	f, err := codec.FormatForPath(path)
	if err != nil {
		return nil, f, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, f, fmt.Errorf("failed to read %s: %w", path, err)
	}
	m, err := codec.Decode(bytes.NewReader(data), f)
	if err != nil {
		return nil, f, fmt.Errorf("%s: %w", path, err)
	}
	return m, f, nil
}

// CheckFile decodes and validates one file.
func CheckFile(ctx context.Context, path string, opts Options) *Result {
	log := opts.logger().With(zap.String("path", path))
	start := time.Now()
	res := &Result{Path: path, Bag: diag.NewBag(limitOf(opts.Validate))}
	defer func() { res.Elapsed = time.Since(start) }()

	emit(opts.Progress, Event{File: path, Stage: StageDecode, Status: StatusWorking})
	format, err := codec.FormatForPath(path)
	res.Format = format
	if err != nil {
		return fail(opts, res, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fail(opts, res, fmt.Errorf("failed to read %s: %w", path, err))
	}

	var key Digest
	if opts.Cache != nil {
		key = VerdictKey(data, opts.Validate)
		var v Verdict
		hit, err := opts.Cache.Get(key, &v)
		switch {
		case err != nil:
			log.Warn("verdict cache read failed", zap.Error(err))
		case hit:
			log.Debug("verdict cache hit", zap.Stringer("key", key))
			for _, d := range v.Findings {
				res.Bag.Add(d)
			}
			res.Cached = true
			return finish(opts, res, time.Since(start))
		default:
			log.Debug("verdict cache miss", zap.Stringer("key", key))
		}
	}

	decodeStart := time.Now()
	m, err := codec.Decode(bytes.NewReader(data), format)
	if err != nil {
		// несовместимая версия это находка, а не сбой чтения
		var de *diag.Error
		if errors.As(err, &de) {
			res.Bag.Add(de)
			return finish(opts, res, time.Since(start))
		}
		return fail(opts, res, fmt.Errorf("%s: %w", path, err))
	}
	res.Module = m
	log.Debug("decoded", zap.Stringer("format", format), zap.Duration("elapsed", time.Since(decodeStart)))

	emit(opts.Progress, Event{File: path, Stage: StageValidate, Status: StatusWorking})
	validateStart := time.Now()
	bag := validate.Module(ctx, m, opts.Validate)
	if err := ctx.Err(); err != nil {
		return fail(opts, res, err)
	}
	res.Bag = bag
	log.Debug("validated",
		zap.Int("functions", len(m.Functions)),
		zap.Int("findings", bag.Len()),
		zap.Duration("elapsed", time.Since(validateStart)),
	)

	if opts.Cache != nil {
		v := &Verdict{Valid: !bag.HasErrors(), Findings: bag.Items()}
		if err := opts.Cache.Put(key, v); err != nil {
			log.Warn("verdict cache write failed", zap.Error(err))
		}
	}
	return finish(opts, res, time.Since(start))
}

func limitOf(o validate.Options) int {
	if o.MaxDiagnostics <= 0 {
		return validate.DefaultOptions().MaxDiagnostics
	}
	return o.MaxDiagnostics
}

func fail(opts Options, res *Result, err error) *Result {
	res.Err = err
	opts.logger().Debug("check failed", zap.String("path", res.Path), zap.Error(err))
	emit(opts.Progress, Event{File: res.Path, Stage: StageDecode, Status: StatusError, Err: err})
	return res
}

func finish(opts Options, res *Result, elapsed time.Duration) *Result {
	status := StatusDone
	if !res.Valid() {
		status = StatusInvalid
	}
	emit(opts.Progress, Event{
		File:    res.Path,
		Stage:   StageValidate,
		Status:  status,
		Cached:  res.Cached,
		Elapsed: elapsed,
	})
	return res
}
