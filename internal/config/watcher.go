package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/sarifnav/internal/debug"
)

// DefaultWatchDebounce coalesces the editor write-rename-chmod bursts that
// follow a single save of the roots file.
const DefaultWatchDebounce = 200 * time.Millisecond

// RootWatcher watches the persisted root-path file and delivers the fresh
// list whenever it changes, so a running session picks up new roots without
// restarting.
type RootWatcher struct {
	watcher  *fsnotify.Watcher
	store    *RootStore
	debounce time.Duration
	onChange func(roots []string)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRootWatcher creates a watcher for the given store. onChange is invoked
// from the watcher goroutine with the re-loaded root list.
func NewRootWatcher(store *RootStore, onChange func(roots []string)) (*RootWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RootWatcher{
		watcher:  watcher,
		store:    store,
		debounce: DefaultWatchDebounce,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching. The parent directory is watched rather than the
// file itself because atomic saves replace the file by rename.
func (w *RootWatcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.store.Path())); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop halts the watcher and waits for its goroutine to exit.
func (w *RootWatcher) Stop() {
	w.cancel()
	w.watcher.Close()
	w.wg.Wait()
}

func (w *RootWatcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time
	target := w.store.Path()

	for {
		select {
		case <-w.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(target) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			roots, err := w.store.Load()
			if err != nil {
				debug.Printf("config: reload of %s failed: %v", target, err)
				continue
			}
			debug.Printf("config: root paths changed (%d entries)", len(roots))
			w.onChange(roots)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			debug.Printf("config: watcher error: %v", err)
		}
	}
}
