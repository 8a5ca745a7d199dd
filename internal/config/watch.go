package config

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads path into val whenever the file changes. Reloads that fail
// to parse or validate are logged and the previous config stays in place.
// It blocks until ctx is done.
func Watch(ctx context.Context, path string, val *atomic.Value, load func(string) (Config, error), log *zap.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// watch the directory: editors and SaveAtomic replace the file via rename
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	var debounce *time.Timer
	reload := func() {
		cfg, err := load(path)
		if err != nil {
			log.Warn("config reload failed", zap.String("path", path), zap.Error(err))
			return
		}
		cfg, res := NormalizeAndValidate(cfg)
		if !res.OK() {
			log.Warn("config reload rejected", zap.Strings("errors", res.Errors))
			return
		}
		val.Store(cfg)
		log.Info("config reloaded", zap.String("path", path))
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(150*time.Millisecond, reload)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", zap.Error(err))
		}
	}
}
