package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/logger"
)

// LogStore manages the per-analysis logs/ directory. Log files are opaque
// run output written by the external process supervisor; every operation is
// open-write-close, no handles are held between calls.
type LogStore struct {
	layout Layout
	now    func() time.Time
	log    *zap.Logger
}

// NewLogStore builds a log store rooted at the storage directory.
func NewLogStore(root string) *LogStore {
	return &LogStore{
		layout: Layout{Root: root},
		now:    time.Now,
		log:    logger.WithModule("log-store"),
	}
}

// WithNow overrides the clock, for tests.
func (s *LogStore) WithNow(now func() time.Time) *LogStore {
	if now != nil {
		s.now = now
	}
	return s
}

// Append writes one line to the analysis's daily log file.
func (s *LogStore) Append(analysisID, line string) error {
	dir := s.layout.LogsDir(analysisID)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("log store: create logs dir: %w", err)
	}

	name := s.now().UTC().Format("2006-01-02") + ".log"
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, fileMode)
	if err != nil {
		return fmt.Errorf("log store: open log file: %w", err)
	}

	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	_, writeErr := f.WriteString(line)
	return multierr.Append(writeErr, f.Close())
}

// List returns the analysis's log file names, oldest first. A missing logs
// directory yields an empty list, not an error.
func (s *LogStore) List(analysisID string) ([]string, error) {
	entries, err := os.ReadDir(s.layout.LogsDir(analysisID))
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("log store: list logs: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the content of one named log file.
func (s *LogStore) Read(analysisID, name string) (string, error) {
	if name != filepath.Base(name) {
		return "", fmt.Errorf("log store: invalid log name %q", name)
	}

	data, err := os.ReadFile(filepath.Join(s.layout.LogsDir(analysisID), name))
	if err != nil {
		return "", fmt.Errorf("log store: read log %s: %w", name, err)
	}
	return string(data), nil
}

// Clear removes every log file for the analysis.
func (s *LogStore) Clear(analysisID string) error {
	return clearLogs(s.layout.LogsDir(analysisID))
}

// PruneOlderThan removes log files last modified before cutoff and reports
// how many were deleted.
func (s *LogStore) PruneOlderThan(analysisID string, cutoff time.Time) (int, error) {
	dir := s.layout.LogsDir(analysisID)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("log store: list logs: %w", err)
	}

	removed := 0
	var errs error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}
	return removed, errs
}

// clearLogs removes all *.log files in dir; a missing directory is a no-op.
// Shared with the version store, which clears logs on rollback.
func clearLogs(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("clear logs: %w", err)
	}

	var errs error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
