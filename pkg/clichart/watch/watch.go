package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// DefaultDebounce batches the writes of a single save.
const DefaultDebounce = 250 * time.Millisecond

// Config controls a Watcher.
type Config struct {
	// Debounce is the quiet period after the last change before Regenerate
	// runs. Zero means DefaultDebounce.
	Debounce time.Duration
	Logger   *log.Entry
}

// Watcher reruns a chart generation whenever its input file changes.
type Watcher struct {
	path       string
	regenerate func(ctx context.Context) error
	debounce   time.Duration
	log        *log.Entry
}

func New(path string, regenerate func(ctx context.Context) error, cfg Config) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watch: input file path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Watcher{
		path:       abs,
		regenerate: regenerate,
		debounce:   debounce,
		log:        logger.WithField("input", abs),
	}, nil
}

// Run generates once, then again after every change to the input, until ctx
// is done. The directory is watched rather than the file so that editors
// replacing the file are seen. Generation errors are logged, not returned.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}
	w.log.Info("watching for changes")
	w.run(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.log.WithField("op", event.Op.String()).Debug("input changed")
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")

		case <-timer.C:
			w.run(ctx)
		}
	}
}

func (w *Watcher) run(ctx context.Context) {
	if err := w.regenerate(ctx); err != nil {
		w.log.WithError(err).Warn("chart generation failed")
		return
	}
	w.log.Debug("chart regenerated")
}
