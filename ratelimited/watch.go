package ratelimited

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig follows a config file and sends each valid new Config on
// the returned channel. Versions that fail to parse or validate are
// skipped. The channel closes when ctx is cancelled.
//
// Uses fsnotify for efficient file watching with a polling fallback.
// Pair it with Client.ApplyConfig to adjust rate budgets at runtime:
//
//	for cfg := range ratelimited.WatchConfig(ctx, path) {
//	    _ = client.ApplyConfig(cfg)
//	}
func WatchConfig(ctx context.Context, path string) <-chan Config {
	ch := make(chan Config, 1)

	go func() {
		defer close(ch)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			pollConfig(ctx, path, ch)
			return
		}
		defer watcher.Close()

		// Watch the directory (more reliable than watching the file
		// directly; editors often replace the file on save).
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			pollConfig(ctx, path, ch)
			return
		}

		baseName := filepath.Base(path)
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != baseName {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				emitConfig(ctx, path, ch)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Usually recoverable, keep watching
				_ = err
			}
		}
	}()

	return ch
}

// pollConfig re-reads the file on a ticker when fsnotify is
// unavailable, emitting only when the modification time changes.
func pollConfig(ctx context.Context, path string, ch chan<- Config) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastMod time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			lastMod = info.ModTime()
			emitConfig(ctx, path, ch)
		}
	}
}

func emitConfig(ctx context.Context, path string, ch chan<- Config) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return
	}
	select {
	case ch <- cfg:
	case <-ctx.Done():
	}
}
