package rotation_driver

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/engine/calibration"
	"github.com/marroen/ImmersiveSeating/engine/orientation"
	"github.com/marroen/ImmersiveSeating/engine/scheduler"
	"github.com/marroen/ImmersiveSeating/engine/status"
)

// driverConfig collects construction settings for both driver variants. Settings that do not apply
// to a variant are ignored by it.
type driverConfig struct {
	smoothing float32
	initial   *mgl32.Quat
	enabled   bool
	calib     calibration.Engine
	sink      status.Sink
	logger    *log.Logger

	deviceRotation   bool
	calibrateOnStart bool
	limitVertical    bool
	minVertical      float32
	maxVertical      float32

	pointer       orientation.Pointer
	touchRotation bool

	sched         *scheduler.Scheduler
	focusDuration float32
	focusDistance float32
	focusOffset   mgl32.Vec3
}

func defaultDriverConfig() *driverConfig {
	return &driverConfig{
		smoothing:        0.1,
		sink:             status.Nop{},
		logger:           log.Default(),
		deviceRotation:   true,
		calibrateOnStart: true,
		minVertical:      -80,
		maxVertical:      80,
		touchRotation:    true,
		focusDuration:    1.5,
		focusDistance:    2,
	}
}

type DriverBuilderOption func(*driverConfig)

// WithSmoothing sets the per-tick slerp factor from the current camera rotation towards the target.
//
// Parameters:
//   - factor: blend factor in (0, 1]; 1 disables smoothing
//
// Returns:
//   - DriverBuilderOption: a function that sets the smoothing factor
func WithSmoothing(factor float32) DriverBuilderOption {
	return func(c *driverConfig) {
		c.smoothing = factor
	}
}

// WithInitialRotation overrides the initial rotation, which otherwise is the camera's rotation at construction.
//
// Parameters:
//   - q: the initial rotation
//
// Returns:
//   - DriverBuilderOption: a function that sets the initial rotation
func WithInitialRotation(q mgl32.Quat) DriverBuilderOption {
	return func(c *driverConfig) {
		c.initial = &q
	}
}

// WithEnabled sets whether the driver starts enabled. Drivers start disabled so that the mode switcher
// decides which one runs.
//
// Parameters:
//   - enabled: the starting state
//
// Returns:
//   - DriverBuilderOption: a function that sets the enabled state
func WithEnabled(enabled bool) DriverBuilderOption {
	return func(c *driverConfig) {
		c.enabled = enabled
	}
}

// WithCalibrationEngine supplies the calibration engine instead of a fresh one.
//
// Parameters:
//   - e: the engine
//
// Returns:
//   - DriverBuilderOption: a function that sets the engine
func WithCalibrationEngine(e calibration.Engine) DriverBuilderOption {
	return func(c *driverConfig) {
		c.calib = e
	}
}

// WithStatusSink sets where user-facing feedback goes.
//
// Parameters:
//   - sink: the status sink
//
// Returns:
//   - DriverBuilderOption: a function that sets the sink
func WithStatusSink(sink status.Sink) DriverBuilderOption {
	return func(c *driverConfig) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithLogger sets the driver's logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - DriverBuilderOption: a function that sets the logger
func WithLogger(l *log.Logger) DriverBuilderOption {
	return func(c *driverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDeviceRotation sets whether the gyro driver applies motion input.
//
// Parameters:
//   - enabled: the starting state
//
// Returns:
//   - DriverBuilderOption: a function that sets the toggle
func WithDeviceRotation(enabled bool) DriverBuilderOption {
	return func(c *driverConfig) {
		c.deviceRotation = enabled
	}
}

// WithCalibrateOnStart sets whether the gyro driver calibrates as soon as motion data is available.
//
// Parameters:
//   - calibrate: true to calibrate on start
//
// Returns:
//   - DriverBuilderOption: a function that sets the toggle
func WithCalibrateOnStart(calibrate bool) DriverBuilderOption {
	return func(c *driverConfig) {
		c.calibrateOnStart = calibrate
	}
}

// WithVerticalLimit enables the gyro driver's pitch clamp.
//
// Parameters:
//   - minDeg: lowest pitch in degrees
//   - maxDeg: highest pitch in degrees
//
// Returns:
//   - DriverBuilderOption: a function that sets the limit
func WithVerticalLimit(minDeg, maxDeg float32) DriverBuilderOption {
	return func(c *driverConfig) {
		c.limitVertical = true
		c.minVertical = minDeg
		c.maxVertical = maxDeg
	}
}

// WithPointer supplies the swipe driver's drag accumulator.
//
// Parameters:
//   - p: the pointer
//
// Returns:
//   - DriverBuilderOption: a function that sets the pointer
func WithPointer(p orientation.Pointer) DriverBuilderOption {
	return func(c *driverConfig) {
		c.pointer = p
	}
}

// WithTouchRotation sets whether the swipe driver starts with touch rotation on.
//
// Parameters:
//   - enabled: the starting state
//
// Returns:
//   - DriverBuilderOption: a function that sets the toggle
func WithTouchRotation(enabled bool) DriverBuilderOption {
	return func(c *driverConfig) {
		c.touchRotation = enabled
	}
}

// WithScheduler sets the frame scheduler that runs the swipe driver's focus transition.
// Without one, FocusOnTarget is rejected.
//
// Parameters:
//   - s: the frame scheduler
//
// Returns:
//   - DriverBuilderOption: a function that sets the scheduler
func WithScheduler(s *scheduler.Scheduler) DriverBuilderOption {
	return func(c *driverConfig) {
		c.sched = s
	}
}

// WithFocusTransition configures the swipe driver's focus transition.
//
// Parameters:
//   - duration: seconds the transition takes
//   - distance: how far from the target the camera stops
//   - offset: added to the target position before aiming
//
// Returns:
//   - DriverBuilderOption: a function that sets the focus transition
func WithFocusTransition(duration, distance float32, offset mgl32.Vec3) DriverBuilderOption {
	return func(c *driverConfig) {
		c.focusDuration = duration
		c.focusDistance = distance
		c.focusOffset = offset
	}
}
