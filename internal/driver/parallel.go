package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jeff/internal/codec"
)

// ListModuleFiles возвращает отсортированный список всех файлов модулей
// (.jeff, .jeff.yaml, .jeff.yml) в директории, рекурсивно.
func ListModuleFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && codec.IsModulePath(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// ExpandPaths turns each argument into the module files it names: a
// directory contributes every module file below it, a file names itself.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := ListModuleFiles(p)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", p, err)
		}
		out = append(out, files...)
	}
	return out, nil
}

// CheckFiles checks files in parallel. Results come back in input order.
// A per-file failure lands in its Result; the returned error is only set
// when the run itself was cancelled.
func CheckFiles(ctx context.Context, files []string, opts Options) ([]*Result, error) {
	results := make([]*Result, len(files))
	if len(files) == 0 {
		return results, nil
	}

	for _, path := range files {
		emit(opts.Progress, Event{File: path, Status: StatusQueued})
	}

	// Настраиваем параллелизм
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	// файлы уже проверяются параллельно, функции внутри по одной
	fileOpts := opts
	if len(files) > 1 {
		fileOpts.Validate.Jobs = 1
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// индекс i уникален, мьютекс не нужен
			results[i] = CheckFile(gctx, path, fileOpts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	opts.logger().Debug("checked files",
		zap.Int("files", len(files)),
		zap.Int("jobs", jobs),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

// CheckDir checks every module file below dir.
func CheckDir(ctx context.Context, dir string, opts Options) ([]*Result, error) {
	files, err := ListModuleFiles(dir)
	if err != nil {
		return nil, err
	}
	return CheckFiles(ctx, files, opts)
}
