package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/logger"
)

// DefaultDebounce collapses the bursts of events editors produce on save.
const DefaultDebounce = 500 * time.Millisecond

// ReloadCallback is called with the freshly loaded config.
type ReloadCallback func(*Config) error

// Watcher watches config and vocabulary paths and reloads the config after
// changes settle.
type Watcher struct {
	configPath string
	watcher    *fsnotify.Watcher
	callbacks  []ReloadCallback
	log        *zap.SugaredLogger

	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	isOwnWrite     bool
}

// NewWatcher watches configPath plus any extra paths (files or directories).
// An empty configPath reloads defaults only.
func NewWatcher(configPath string, extra []string, log *zap.SugaredLogger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	paths := append([]string(nil), extra...)
	if configPath != "" {
		paths = append(paths, configPath)
	}
	for _, p := range paths {
		if err := fw.Add(p); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", p)
		}
	}

	return &Watcher{
		configPath:     configPath,
		watcher:        fw,
		log:            log,
		debouncePeriod: DefaultDebounce,
	}, nil
}

// OnReload registers a callback to be called when config is reloaded
func (w *Watcher) OnReload(callback ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// MarkOwnWrite makes the watcher ignore the next change, e.g. a Save.
func (w *Watcher) MarkOwnWrite() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.isOwnWrite = true
}

func (w *Watcher) checkOwnWrite() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	own := w.isOwnWrite
	w.isOwnWrite = false
	return own
}

// Start begins watching in the background until Stop.
func (w *Watcher) Start() {
	go w.watchLoop()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			if isBackupFile(event.Name) {
				continue
			}
			if w.checkOwnWrite() {
				w.log.Debugw("Watcher ignoring own write", logger.FieldFile, event.Name)
				continue
			}
			w.log.Infow("Watcher detected change",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		if err := w.reload(); err != nil {
			w.log.Errorw("Config reload failed", logger.FieldError, err)
		}
	})
}

func (w *Watcher) reload() error {
	var (
		cfg *Config
		err error
	)
	if w.configPath != "" {
		cfg, err = LoadFromFile(w.configPath)
	} else {
		Reset()
		cfg, err = Load()
	}
	if err != nil {
		return err
	}

	w.mu.Lock()
	callbacks := append([]ReloadCallback(nil), w.callbacks...)
	w.mu.Unlock()

	for _, callback := range callbacks {
		if err := callback(cfg); err != nil {
			w.log.Warnw("Config reload callback error", logger.FieldError, err)
		}
	}
	return nil
}

// Stop stops watching for changes
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

// isBackupFile reports whether path is a rotated backup written by Save.
func isBackupFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".back1" || ext == ".back2" || ext == ".back3"
}
