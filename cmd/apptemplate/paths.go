package main

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/kbukum/apptemplate/errors"
	"github.com/kbukum/apptemplate/pipeline"
	"github.com/kbukum/apptemplate/resilience"
)

// PathEntry is one file system entry found by checkPaths.
type PathEntry struct {
	Path string
	Dir  bool
}

// checkPaths stats every distinct path concurrently. A file yields itself,
// a directory yields its entries, and a missing path fails the whole check.
// Only retryable failures are retried. Results are sorted by path.
func checkPaths(ctx context.Context, paths []string, concurrency, retries int, retryDelay time.Duration) ([]PathEntry, error) {
	unique := lo.Uniq(lo.Filter(paths, func(p string, _ int) bool {
		return strings.TrimSpace(p) != ""
	}))

	source := pipeline.FromSlice(unique).Iter(ctx)
	defer source.Close()

	entries, err := pipeline.MapConcurrent(ctx, source, func(ctx context.Context, path string) ([]PathEntry, error) {
		return resilience.ManagedCallIf(ctx, func(context.Context) ([]PathEntry, error) {
			return statPath(path)
		}, retries, retryDelay, errors.IsRetryable)
	}, concurrency)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entries, func(a, b PathEntry) int { return strings.Compare(a.Path, b.Path) })
	return entries, nil
}

func statPath(path string) ([]PathEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NotFound("path", path).WithCause(err)
		}
		return nil, errors.Internal(err).WithDetail("path", path)
	}
	if !info.IsDir() {
		return []PathEntry{{Path: path}}, nil
	}

	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Internal(err).WithDetail("path", path)
	}
	return lo.Map(dirEntries, func(e os.DirEntry, _ int) PathEntry {
		return PathEntry{Path: filepath.Join(path, e.Name()), Dir: e.IsDir()}
	}), nil
}
