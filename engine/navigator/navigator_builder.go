package navigator

import (
	"log"

	"github.com/marroen/ImmersiveSeating/engine/scheduler"
)

type NavigatorBuilderOption func(*navigatorImpl)

// WithZoomDuration sets how long section and return animations last.
//
// Parameters:
//   - seconds: the duration
//
// Returns:
//   - NavigatorBuilderOption: a function that sets the duration
func WithZoomDuration(seconds float32) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		n.zoomDuration = seconds
	}
}

// WithEasing sets the animation curve.
//
// Parameters:
//   - e: the easing curve
//
// Returns:
//   - NavigatorBuilderOption: a function that sets the curve
func WithEasing(e scheduler.Easing) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		if e != nil {
			n.easing = e
		}
	}
}

// WithSeatView configures the seat view.
//
// Parameters:
//   - settle: seconds to wait after placing the camera before re-anchoring the drivers
//   - size: orthographic size of the seat view
//   - height: how far above the seat the camera sits
//
// Returns:
//   - NavigatorBuilderOption: a function that sets the seat view
func WithSeatView(settle, size, height float32) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		n.seatSettle = settle
		n.seatSize = size
		n.seatHeight = height
	}
}

// WithSeatViewStart makes Start assume the viewer was launched directly into a seat view.
//
// Parameters:
//   - enabled: true to start in seat view
//
// Returns:
//   - NavigatorBuilderOption: a function that sets the start mode
func WithSeatViewStart(enabled bool) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		n.seatStart = enabled
	}
}

// WithUI sets the display collaborator.
//
// Parameters:
//   - ui: the UI
//
// Returns:
//   - NavigatorBuilderOption: a function that sets the UI
func WithUI(ui UI) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		if ui != nil {
			n.ui = ui
		}
	}
}

// WithLogger sets the navigator's logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - NavigatorBuilderOption: a function that sets the logger
func WithLogger(l *log.Logger) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		if l != nil {
			n.logger = l
		}
	}
}
