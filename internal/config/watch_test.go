package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func startWatcher(t *testing.T, dir string, log *zap.Logger) *Watcher {
	t.Helper()
	w, err := NewWatcher(dir, log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, nil)

	cfg := Default(dir)
	cfg.Analysis.ArticleCount = 7
	require.NoError(t, Save(filepath.Join(dir, FileName), cfg))

	select {
	case got := <-w.Changes():
		assert.Equal(t, 7, got.ArticleCount())
	case <-time.After(5 * time.Second):
		t.Fatal("no config change delivered")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, nil)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))

	select {
	case <-w.Changes():
		t.Fatal("unexpected config change")
	case <-time.After(600 * time.Millisecond):
	}
}

func TestWatcherSkipsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zapcore.WarnLevel)
	w := startWatcher(t, dir, zap.New(core))

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("backend:\n  base_url: localhost\n"), 0644))

	select {
	case <-w.Changes():
		t.Fatal("invalid config delivered")
	case <-time.After(time.Second):
	}
	assert.GreaterOrEqual(t, logs.FilterMessage("ignoring invalid config change").Len(), 1)
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}
