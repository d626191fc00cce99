package ingest

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"apexrun/internal/session"
)

// DefaultWorkers bounds concurrent file decoding
const DefaultWorkers = 4

// Result is the outcome of parsing one file
type Result struct {
	Path   string
	Record session.Record
	Err    error
}

// ParseFiles decodes paths concurrently. Results keep the input order and a
// failed file never stops the others; only ctx cancellation aborts the batch.
func ParseFiles(ctx context.Context, paths []string, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := ParseFile(path)
			results[i] = Result{Path: path, Record: rec, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FindFiles lists supported activity files under root, sorted
func FindFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !d.IsDir() && Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}
