package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lectureDir(t *testing.T, root string) string {
	t.Helper()
	dir := filepath.Join(root, "physics", "unit1", "lec42")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func writeAged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestSweep(t *testing.T) {
	t.Run("Old Files Deleted New Files Survive", func(t *testing.T) {
		root := t.TempDir()
		dir := lectureDir(t, root)
		old := writeAged(t, dir, "old.pdf", 48*time.Hour)
		fresh := writeAged(t, dir, "fresh.pdf", time.Hour)

		New(root, time.Hour, 24*time.Hour).Sweep(time.Now())

		_, err := os.Stat(old)
		assert.True(t, os.IsNotExist(err), "old file should be gone")
		_, err = os.Stat(fresh)
		assert.NoError(t, err, "fresh file should survive")
	})

	t.Run("Old Subdirectory Deleted", func(t *testing.T) {
		root := t.TempDir()
		dir := lectureDir(t, root)
		sub := filepath.Join(dir, "extracted")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		mtime := time.Now().Add(-48 * time.Hour)
		require.NoError(t, os.Chtimes(sub, mtime, mtime))

		New(root, time.Hour, 24*time.Hour).Sweep(time.Now())

		_, err := os.Stat(sub)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Missing Root Skips Cycle", func(t *testing.T) {
		s := New(filepath.Join(t.TempDir(), "never-created"), time.Hour, 24*time.Hour)
		assert.NotPanics(t, func() { s.Sweep(time.Now()) })
	})

	t.Run("Files Above Lecture Level Untouched", func(t *testing.T) {
		root := t.TempDir()
		lectureDir(t, root)
		stray := writeAged(t, filepath.Join(root, "physics"), "stray.txt", 48*time.Hour)

		New(root, time.Hour, 24*time.Hour).Sweep(time.Now())

		_, err := os.Stat(stray)
		assert.NoError(t, err, "only lecture directory contents are swept")
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(t.TempDir(), 10*time.Millisecond, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}
