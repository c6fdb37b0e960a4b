package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/f3rmion/moodlog/internal/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Watcher reloads the config file of a directory whenever it changes.
// Flags are not re-applied; environment variables are.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	changes  chan *Config
	debounce time.Duration
	log      *zap.Logger
}

// NewWatcher watches dir for changes to its config file. The directory
// must exist.
func NewWatcher(dir string, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	// Editors replace files on save, so watch the directory, not the file.
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		watcher:  fw,
		changes:  make(chan *Config),
		debounce: 250 * time.Millisecond,
		log:      logging.OrNop(log),
	}, nil
}

// Changes delivers each successfully reloaded configuration.
func (w *Watcher) Changes() <-chan *Config {
	return w.changes
}

// Run watches until ctx ends, then closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != FileName {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))

		case <-timer.C:
			cfg, err := Load(viper.New(), w.dir)
			if err != nil {
				w.log.Warn("ignoring invalid config change", zap.Error(err))
				continue
			}
			w.log.Info("config reloaded", zap.String("dir", w.dir))
			select {
			case w.changes <- cfg:
			case <-ctx.Done():
				return
			}
		}
	}
}
