package sweeper

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultInterval  = 2 * time.Hour
	DefaultRetention = 24 * time.Hour
)

// Sweeper periodically deletes ingested source files older than the
// retention window. It walks the subject/unit/lecture directory tree under
// root and never touches persisted embedding bundles, so a swept lecture can
// still answer from its cache but needs re-ingestion to rebuild.
type Sweeper struct {
	root      string
	interval  time.Duration
	retention time.Duration
}

func New(root string, interval, retention time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Sweeper{root: root, interval: interval, retention: retention}
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("sweeper started", "root", s.root, "interval", s.interval, "retention", s.retention)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(time.Now())
		}
	}
}

// Sweep performs one pass. A missing root directory skips the cycle.
func (s *Sweeper) Sweep(now time.Time) {
	if _, err := os.Stat(s.root); err != nil {
		slog.Warn("sweep root missing, skipping cycle", "root", s.root)
		return
	}
	cutoff := now.Add(-s.retention)

	for _, subject := range subdirs(s.root) {
		for _, unit := range subdirs(subject) {
			for _, lecture := range subdirs(unit) {
				s.sweepLecture(lecture, cutoff)
			}
		}
	}
	slog.Info("sweep complete", "root", s.root)
}

// sweepLecture deletes entries in one lecture directory whose mtime is
// before the cutoff. Per-entry failures are logged, not fatal.
func (s *Sweeper) sweepLecture(dir string, cutoff time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Error("failed to read lecture directory", "dir", dir, "error", err)
		return
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			slog.Error("failed to stat entry", "dir", dir, "name", e.Name(), "error", err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			slog.Error("failed to delete old entry", "path", path, "error", err)
			continue
		}
		slog.Info("deleted old entry", "path", path)
	}
}

func subdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Error("failed to read directory", "dir", dir, "error", err)
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}
