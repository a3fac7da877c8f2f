package config

import "log"

type WatcherBuilderOption func(*Watcher)

// WithErrorHandler sets a callback for reload and watch errors, in addition to logging them.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - WatcherBuilderOption: a function that sets the callback
func WithErrorHandler(fn func(error)) WatcherBuilderOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithLogger sets the watcher's logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - WatcherBuilderOption: a function that sets the logger
func WithLogger(l *log.Logger) WatcherBuilderOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}
