package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchDebounce is how long Watch waits for writes to settle.
const WatchDebounce = 200 * time.Millisecond

// Watch reloads the config file whenever it changes and delivers every
// valid result on the returned channel. Invalid files are logged and
// skipped. The channel holds only the newest config and is closed when ctx
// is done.
func Watch(ctx context.Context, path string, logger *zap.Logger) (<-chan Config, error) {
	if path == "" {
		return nil, ErrNoConfigPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// editors often replace the file, so watch its directory
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	out := make(chan Config, 1)

	debounce := time.NewTimer(WatchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				logger.Debug("config file changed",
					zap.String("file", event.Name),
					zap.String("op", event.Op.String()))
				debounce.Reset(WatchDebounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("config watcher error", zap.Error(err))

			case <-debounce.C:
				cfg, err := Load(abs)
				if err != nil {
					logger.Warn("ignoring invalid config", zap.String("path", abs), zap.Error(err))
					continue
				}
				// keep only the newest
				select {
				case <-out:
				default:
				}
				out <- cfg
				logger.Info("config reloaded",
					zap.String("path", abs),
					zap.String("clearColor", ColorToString(cfg.ClearColor)),
					zap.String("text", cfg.Text))

			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
