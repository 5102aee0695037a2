package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch signals on the returned channel whenever the file at path is
// written. The channel is closed when ctx is done or the watcher fails.
//
// The directory is watched rather than the file so editors that replace the
// file on save are still noticed.
func Watch(ctx context.Context, path string, log *zap.Logger) <-chan struct{} {
	var change = make(chan struct{})

	go func() {
		defer close(change)
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Warn("config watcher unavailable", zap.Error(err))
			return
		}
		defer watcher.Close()

		if err := watcher.Add(filepath.Dir(path)); err != nil {
			log.Warn("config watcher unavailable", zap.String("path", path), zap.Error(err))
			return
		}
		target := filepath.Clean(path)

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher", zap.Error(err))
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				log.Info("config change detected", zap.String("path", event.Name))
				select {
				case change <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return change
}
