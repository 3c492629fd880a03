// Package watch re-runs an analysis when PHP files under a directory change.
// Changes are debounced, and a newer batch cancels the pass still running
// for an older one.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"phphint/internal/config"
	"phphint/internal/driver"
	"phphint/internal/observ"
)

// ErrNoCallback is returned by New without an OnChange function.
var ErrNoCallback = errors.New("watch: OnChange is required")

// ChangeFunc analyses a batch of changed paths. ctx is cancelled as soon as
// a newer batch is ready.
type ChangeFunc func(ctx context.Context, paths []string)

type Options struct {
	Config   *config.Config
	Log      zerolog.Logger
	Debounce time.Duration
	OnChange ChangeFunc
}

type Watcher struct {
	fsw      *fsnotify.Watcher
	cfg      *config.Config
	log      zerolog.Logger
	debounce time.Duration
	onChange ChangeFunc

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	cancel  context.CancelFunc
	baseCtx context.Context
	stopped bool

	// serialises callbacks so a superseded pass finishes before the next starts
	runMu sync.Mutex
	wg    sync.WaitGroup
}

func New(opts Options) (*Watcher, error) {
	if opts.OnChange == nil {
		return nil, ErrNoCallback
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = opts.Config.Debounce()
	}
	return &Watcher{
		fsw:      fsw,
		cfg:      opts.Config,
		log:      opts.Log.With().Str("component", "watch").Logger(),
		debounce: debounce,
		onChange: opts.OnChange,
		pending:  make(map[string]struct{}),
	}, nil
}

// Run watches roots recursively until ctx is done.
func (w *Watcher) Run(ctx context.Context, roots ...string) error {
	w.mu.Lock()
	w.baseCtx = ctx
	w.mu.Unlock()

	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			_ = w.fsw.Close()
			return err
		}
	}
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			observ.WatcherEventsTotal.Inc()
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.cfg.Excluded(ev.Name) {
				return
			}
			if err := w.addRecursive(ev.Name); err != nil {
				w.log.Warn().Err(err).Str("path", ev.Name).Msg("failed to watch new directory")
			}
			return
		}
	}
	if !driver.IsPHPFile(ev.Name) || w.cfg.Excluded(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.schedule(ev.Name)
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.cfg.Excluded(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// flush hands the pending paths to onChange under a fresh context and
// cancels the pass of the previous batch.
func (w *Watcher) flush() {
	w.mu.Lock()
	if w.stopped || len(w.pending) == 0 || w.baseCtx == nil || w.baseCtx.Err() != nil {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(paths)
	if w.cancel != nil {
		w.cancel()
	}
	ctx, cancel := context.WithCancel(w.baseCtx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	defer w.wg.Done()
	w.runMu.Lock()
	defer w.runMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	w.log.Debug().Strs("paths", paths).Msg("change batch")
	w.onChange(ctx, paths)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()
	w.wg.Wait()
	if err := w.fsw.Close(); err != nil {
		w.log.Debug().Err(err).Msg("close watcher")
	}
}
