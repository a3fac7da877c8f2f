package command_router

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
)

// Bounds of the delay between starting a seat focus and switching the drive mode.
const (
	MinModeSwitchDelay = 0.5
	MaxModeSwitchDelay = 1.0
)

type RouterBuilderOption func(*routerImpl)

// WithModeSwitchDelay sets the delay before a command's mode switch, clamped to [0.5, 1] seconds.
//
// Parameters:
//   - seconds: the delay
//
// Returns:
//   - RouterBuilderOption: a function that sets the delay
func WithModeSwitchDelay(seconds float32) RouterBuilderOption {
	return func(r *routerImpl) {
		r.modeSwitchDelay = mgl32.Clamp(seconds, MinModeSwitchDelay, MaxModeSwitchDelay)
	}
}

// WithLogger sets the router's logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - RouterBuilderOption: a function that sets the logger
func WithLogger(l *log.Logger) RouterBuilderOption {
	return func(r *routerImpl) {
		if l != nil {
			r.logger = l
		}
	}
}
