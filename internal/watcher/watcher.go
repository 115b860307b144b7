// Package watcher observes the content root for post files written outside
// the admin API (the CMS/git path writes the same markdown files directly)
// and schedules a site rebuild when they change.
package watcher

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/halvard/skald/internal/builder"
)

// DefaultDebounce is how long the watcher waits after the last change
// before triggering a rebuild. Bulk writes (a git pull touching many files)
// collapse into one build.
const DefaultDebounce = 2 * time.Second

// Watch runs an fsnotify watcher on root until ctx is cancelled. Each burst
// of .md changes schedules one rebuild; a busy builder simply drops the
// attempt (the next change will try again).
func Watch(ctx context.Context, root string, build builder.Runner, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	slog.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			slog.Info("watcher: stopped")
			return nil

		case <-timerCh:
			res := build.Build(context.Background())
			if !res.Success {
				slog.Warn("watcher: rebuild failed", slog.String("error", res.Error))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			// Skip our own atomic-write temp files.
			if strings.Contains(ev.Name, ".skald-tmp-") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				slog.Debug("watcher: content changed",
					slog.String("path", ev.Name),
					slog.String("op", ev.Op.String()))
				schedule()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}
