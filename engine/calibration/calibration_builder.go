package calibration

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
)

type EngineBuilderOption func(*engineImpl)

// WithBase sets the starting base rotation.
//
// Parameters:
//   - q: the base rotation
//
// Returns:
//   - EngineBuilderOption: a function that sets the base rotation
func WithBase(q mgl32.Quat) EngineBuilderOption {
	return func(e *engineImpl) {
		e.base = q.Normalize()
	}
}

// WithApplyCalibration sets whether Apply uses the calibration offset.
//
// Parameters:
//   - apply: true to apply the offset
//
// Returns:
//   - EngineBuilderOption: a function that sets the toggle
func WithApplyCalibration(apply bool) EngineBuilderOption {
	return func(e *engineImpl) {
		e.apply = apply
	}
}

// WithLogger sets the logger used to report rejected samples.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - EngineBuilderOption: a function that sets the logger
func WithLogger(l *log.Logger) EngineBuilderOption {
	return func(e *engineImpl) {
		if l != nil {
			e.logger = l
		}
	}
}
