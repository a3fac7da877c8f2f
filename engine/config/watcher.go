package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	onLoad  func(*Config)
	onError func(error)

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	logger *log.Logger
}

// Watch starts watching a config file. The file's directory is watched so editors that replace the file
// on save are still seen. onLoad runs on the watcher goroutine with every successfully reloaded config;
// failed reloads are logged and the previous config stays in effect.
//
// Parameters:
//   - path: the config file
//   - onLoad: called with each reloaded config, must not be nil
//   - options: functional options to configure the watcher
//
// Returns:
//   - *Watcher: the running watcher
//   - error: the error from creating the underlying file watcher
func Watch(path string, onLoad func(*Config), options ...WatcherBuilderOption) (*Watcher, error) {
	if onLoad == nil {
		panic("config: Watch requires an onLoad callback")
	}
	if _, err := FormatOf(path); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	w := &Watcher{
		path:    abs,
		watcher: fw,
		onLoad:  onLoad,
		done:    make(chan struct{}),
		logger:  log.Default(),
	}
	for _, option := range options {
		option(w)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit. Safe to call more than once.
//
// Returns:
//   - error: the error from closing the underlying file watcher
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.fail(err)
		}
	}
}

func (w *Watcher) reload() {
	c, err := Load(w.path)
	if err != nil {
		w.fail(err)
		return
	}
	w.logger.Printf("[Config] reloaded %s", w.path)
	w.onLoad(c)
}

func (w *Watcher) fail(err error) {
	w.logger.Printf("[Config] watch %s: %v", w.path, err)
	if w.onError != nil {
		w.onError(err)
	}
}
