package drive_mode

import (
	"log"

	"github.com/marroen/ImmersiveSeating/engine/rotation_driver"
	"github.com/marroen/ImmersiveSeating/engine/status"
)

type SwitcherBuilderOption func(*switcherImpl)

// WithModeChangedHook registers a callback run after a handoff has settled, for UI affordances.
//
// Parameters:
//   - fn: receives the new mode
//
// Returns:
//   - SwitcherBuilderOption: a function that sets the hook
func WithModeChangedHook(fn func(rotation_driver.Mode)) SwitcherBuilderOption {
	return func(s *switcherImpl) {
		s.onModeChanged = fn
	}
}

// WithStatusSink sets where switch messages go.
//
// Parameters:
//   - sink: the status sink
//
// Returns:
//   - SwitcherBuilderOption: a function that sets the sink
func WithStatusSink(sink status.Sink) SwitcherBuilderOption {
	return func(s *switcherImpl) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithLogger sets the switcher's logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - SwitcherBuilderOption: a function that sets the logger
func WithLogger(l *log.Logger) SwitcherBuilderOption {
	return func(s *switcherImpl) {
		if l != nil {
			s.logger = l
		}
	}
}
