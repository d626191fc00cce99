package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"apexrun/internal/ingest"
	"apexrun/internal/session"
	"apexrun/internal/store"
)

// ImportService parses activity files and merges them into the store
type ImportService struct {
	store   *store.Store
	logger  *slog.Logger
	workers int
}

// NewImportService creates an import service. workers bounds concurrent parsing.
func NewImportService(store *store.Store, logger *slog.Logger, workers int) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{store: store, logger: logger, workers: workers}
}

// FileError is a file that could not be imported
type FileError struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ImportResult summarizes one import run
type ImportResult struct {
	Files    int
	Inserted int
	Skipped  int // already stored
	Failed   []FileError
}

// Import parses the given files and directories and stores new sessions.
// Directories are searched recursively for supported files. Unreadable or
// malformed files are reported in Failed and never abort the run.
func (s *ImportService) Import(ctx context.Context, paths []string) (*ImportResult, error) {
	files, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}
	result := &ImportResult{Files: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	parsed, err := ingest.ParseFiles(ctx, files, s.workers)
	if err != nil {
		return nil, fmt.Errorf("parsing files: %w", err)
	}

	var records []session.Record
	for _, r := range parsed {
		if r.Err != nil {
			s.logger.Warn("skipping file", "path", r.Path, "err", r.Err)
			result.Failed = append(result.Failed, FileError{Path: r.Path, Err: r.Err})
			continue
		}
		records = append(records, r.Record)
	}

	saved, err := s.store.SaveSessions(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("saving sessions: %w", err)
	}
	result.Inserted = saved.Inserted
	result.Skipped = saved.Skipped

	if err := s.store.SetSyncTime(ctx, store.SyncKeyLastImport, time.Now()); err != nil {
		return nil, fmt.Errorf("recording import time: %w", err)
	}

	s.logger.Info("import finished",
		"files", result.Files,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"failed", len(result.Failed))
	return result, nil
}

// expandPaths replaces directories with the supported files inside them
func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := ingest.FindFiles(p)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
		files = append(files, found...)
	}
	return files, nil
}
