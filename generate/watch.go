package generate

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/openactive/models-lib/config"
	"github.com/openactive/models-lib/logger"
)

// WatchPaths lists the vocabulary paths a watcher should observe. fsnotify
// is not recursive, so the table subdirectories are listed separately.
func WatchPaths(cfg *config.Config) []string {
	var paths []string
	for _, p := range []string{
		cfg.Vocabulary.Dir,
		filepath.Join(cfg.Vocabulary.Dir, "models"),
		filepath.Join(cfg.Vocabulary.Dir, "enums"),
	} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			paths = append(paths, p)
		}
	}
	return paths
}

// Watch runs a generation, then regenerates whenever the config file or the
// base vocabulary changes, until ctx is cancelled. Failed runs are reported
// and watching continues.
func Watch(ctx context.Context, cfg *config.Config, configPath string, opts Options, log *zap.SugaredLogger) error {
	ctx = logger.WithComponent(ctx, "watch")
	wlog := contextLogger(ctx, log)
	progress := opts.Progress
	if progress == nil {
		progress = nopEmitter{}
	}

	w, err := config.NewWatcher(configPath, WatchPaths(cfg), wlog)
	if err != nil {
		return err
	}
	defer w.Stop()

	pending := newReloadQueue()
	w.OnReload(func(next *config.Config) error {
		pending.push(next)
		return nil
	})
	w.Start()

	run := func(c *config.Config) {
		if _, err := Run(ctx, c, opts, log); err != nil {
			wlog.Errorw("Generation failed", logger.FieldError, err)
		}
	}

	run(cfg)
	progress.EmitInfo("Watching for changes (Ctrl+C to stop)")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pending.ready:
			if next := pending.take(); next != nil {
				progress.EmitStage("reload", "regenerating")
				run(next)
			}
		}
	}
}

// reloadQueue holds the latest reloaded config. Reload callbacks may run
// concurrently; push never blocks and a newer config replaces an older one.
type reloadQueue struct {
	mu     sync.Mutex
	latest *config.Config
	ready  chan struct{}
}

func newReloadQueue() *reloadQueue {
	return &reloadQueue{ready: make(chan struct{}, 1)}
}

func (q *reloadQueue) push(c *config.Config) {
	q.mu.Lock()
	q.latest = c
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// take returns the pending config, or nil when a previous take consumed it.
func (q *reloadQueue) take() *config.Config {
	q.mu.Lock()
	defer q.mu.Unlock()
	c := q.latest
	q.latest = nil
	return c
}
