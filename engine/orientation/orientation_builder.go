package orientation

import (
	"log"

	"github.com/marroen/ImmersiveSeating/engine/status"
)

type ProviderBuilderOption func(*providerImpl)

// WithProviderLogger sets the logger used for sensor selection messages.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - ProviderBuilderOption: a function that sets the logger
func WithProviderLogger(l *log.Logger) ProviderBuilderOption {
	return func(p *providerImpl) {
		if l != nil {
			p.logger = l
		}
	}
}

type PointerBuilderOption func(*pointerImpl)

// WithSensitivity sets the drag sensitivity multiplier.
//
// Parameters:
//   - s: the sensitivity
//
// Returns:
//   - PointerBuilderOption: a function that sets the sensitivity
func WithSensitivity(s float32) PointerBuilderOption {
	return func(p *pointerImpl) {
		p.sensitivity = s
	}
}

// WithInversion flips the horizontal and/or vertical drag direction.
//
// Parameters:
//   - horizontal: invert horizontal drags
//   - vertical: invert vertical drags
//
// Returns:
//   - PointerBuilderOption: a function that sets the inversion flags
func WithInversion(horizontal, vertical bool) PointerBuilderOption {
	return func(p *pointerImpl) {
		p.invertHorizontal = horizontal
		p.invertVertical = vertical
	}
}

// WithVerticalLimits enables the vertical clamp with the given range.
//
// Parameters:
//   - minDeg: lowest pitch
//   - maxDeg: highest pitch
//
// Returns:
//   - PointerBuilderOption: a function that sets the vertical limits
func WithVerticalLimits(minDeg, maxDeg float32) PointerBuilderOption {
	return func(p *pointerImpl) {
		p.limitVertical = true
		p.minVertical = minDeg
		p.maxVertical = maxDeg
	}
}

// WithoutVerticalLimits lets the pitch accumulate freely.
//
// Returns:
//   - PointerBuilderOption: a function that disables the vertical clamp
func WithoutVerticalLimits() PointerBuilderOption {
	return func(p *pointerImpl) {
		p.limitVertical = false
	}
}

// WithHorizontalLimits clamps the yaw to the given range instead of wrapping it.
//
// Parameters:
//   - minDeg: lowest yaw
//   - maxDeg: highest yaw
//
// Returns:
//   - PointerBuilderOption: a function that sets the horizontal limits
func WithHorizontalLimits(minDeg, maxDeg float32) PointerBuilderOption {
	return func(p *pointerImpl) {
		p.limitHorizontal = true
		p.minHorizontal = minDeg
		p.maxHorizontal = maxDeg
	}
}

// WithDoubleTap configures double-tap detection.
//
// Parameters:
//   - enabled: whether double taps are detected
//   - window: maximum seconds between the two presses
//
// Returns:
//   - PointerBuilderOption: a function that sets the double-tap settings
func WithDoubleTap(enabled bool, window float64) PointerBuilderOption {
	return func(p *pointerImpl) {
		p.doubleTap = enabled
		if window > 0 {
			p.doubleTapWindow = window
		}
	}
}

type PermissionPollerBuilderOption func(*PermissionPoller)

// WithPollTiming sets the poll interval and timeout in seconds.
//
// Parameters:
//   - interval: seconds between checks
//   - timeout: seconds before giving up
//
// Returns:
//   - PermissionPollerBuilderOption: a function that sets the timing
func WithPollTiming(interval, timeout float32) PermissionPollerBuilderOption {
	return func(p *PermissionPoller) {
		p.interval = interval
		p.timeout = timeout
	}
}

// WithPermissionStatus sets the sink that receives the denial message.
//
// Parameters:
//   - sink: the status sink
//
// Returns:
//   - PermissionPollerBuilderOption: a function that sets the sink
func WithPermissionStatus(sink status.Sink) PermissionPollerBuilderOption {
	return func(p *PermissionPoller) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithPermissionLogger sets the poller's logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - PermissionPollerBuilderOption: a function that sets the logger
func WithPermissionLogger(l *log.Logger) PermissionPollerBuilderOption {
	return func(p *PermissionPoller) {
		if l != nil {
			p.logger = l
		}
	}
}
