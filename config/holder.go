package config

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"recordcast/record"
)

// ChangeFunc is called with the previous and the new instance after a reload.
type ChangeFunc func(old, new *record.Instance)

// Holder provides thread-safe access to a config instance with hot reload support.
type Holder struct {
	mu       sync.RWMutex
	reloadMu sync.Mutex // serializes Reload from load to listener calls
	current  *record.Instance
	schema   *record.Schema
	loader   *Loader
	path     string
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []ChangeFunc
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder loads the initial instance of schema from path and the environment.
func NewHolder(path string, schema *record.Schema, loader *Loader) (*Holder, error) {
	if loader == nil {
		loader = NewLoader()
	}

	inst, err := loader.Load(path, schema)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if path != "" {
		path, err = filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("absolute path: %w", err)
		}
	}

	return &Holder{
		current: inst,
		schema:  schema,
		loader:  loader,
		path:    path,
		logger:  loader.logger.With().Str("schema", schema.Name()).Logger(),
		stopCh:  make(chan struct{}),
	}, nil
}

// Get returns the current instance (thread-safe).
func (h *Holder) Get() *record.Instance {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.current
}

// Reload loads the configuration again.
// Returns error if loading fails (keeps old instance).
// Concurrent reloads run one at a time, so the last one started is the one
// installed. Listeners must not call Reload.
func (h *Holder) Reload() error {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	h.logger.Info().Str("path", h.path).Msg("reloading configuration")

	next, err := h.loader.Load(h.path, h.schema)
	h.loader.metrics.ObserveReload(time.Now(), err)

	if err != nil {
		h.logger.Error().Err(err).Msg("config reload failed, keeping old config")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	prev := h.current
	h.current = next
	listeners := append([]ChangeFunc(nil), h.onChange...)
	h.mu.Unlock()

	h.logChanges(prev, next)

	for _, fn := range listeners {
		fn(prev, next)
	}

	h.logger.Info().Msg("configuration reloaded successfully")

	return nil
}

// OnChange registers a callback called after every successful reload.
func (h *Holder) OnChange(fn ChangeFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.onChange = append(h.onChange, fn)
}

// WatchFile starts watching the config file for changes.
// Changes trigger automatic reload.
func (h *Holder) WatchFile() error {
	if h.path == "" {
		return fmt.Errorf("watch config: no file configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory, editors often replace the file on save
	dir := filepath.Dir(h.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	h.watcher = watcher

	go h.watchLoop()

	h.logger.Info().Str("path", h.path).Msg("watching config file for changes")

	return nil
}

// WatchSignals reloads on SIGHUP until Close.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("received SIGHUP, reloading config")

				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("SIGHUP reload failed")
				}
			case <-h.stopCh:
				signal.Stop(sigCh)
				return
			}
		}
	}()
}

// Close stops watching for file changes and signals. It is safe to call
// more than once.
func (h *Holder) Close() error {
	var err error

	h.stopOnce.Do(func() {
		close(h.stopCh)

		if h.watcher != nil {
			err = h.watcher.Close()
		}
	})

	return err
}

func (h *Holder) watchLoop() {
	filename := filepath.Base(h.path)

	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filename {
				continue
			}

			// atomic saves show up as create
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				h.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("config file changed")

				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("file watch reload failed")
				}
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}

			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}

func (h *Holder) logChanges(prev, next *record.Instance) {
	changes, err := record.Diff(prev, next)
	if err != nil {
		h.logger.Warn().Err(err).Msg("cannot compare configurations")
		return
	}

	for _, c := range changes {
		h.logger.Info().
			Str("field", c.Path).
			Interface("old", c.Old).
			Interface("new", c.New).
			Msg("config value changed")
	}
}
