// Package calibration holds the offset that zeroes an arbitrary device heading against a reference pose.
package calibration

import (
	"errors"
	"log"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/common"
)

// ErrCalibrationFailed is returned when a raw sample cannot be inverted. The previous offset stays in place.
var ErrCalibrationFailed = errors.New("calibration: degenerate orientation sample")

type engineImpl struct {
	mu *sync.Mutex

	calibration mgl32.Quat
	base        mgl32.Quat
	apply       bool

	calibrations int

	logger *log.Logger
}

// Engine converts raw orientation samples into world-facing camera rotations.
type Engine interface {
	// Calibrate stores inverse(raw) so that raw maps to the initial rotation.
	//
	// Parameters:
	//   - raw: the current raw orientation sample
	//
	// Returns:
	//   - error: ErrCalibrationFailed for a zero-length or non-finite sample
	Calibrate(raw mgl32.Quat) error

	// Apply returns initial ⊗ base ⊗ calibration ⊗ raw. The calibration term is skipped when
	// calibration application is switched off.
	//
	// Parameters:
	//   - raw: the raw orientation sample
	//   - initial: the driver's initial rotation
	//
	// Returns:
	//   - mgl32.Quat: the world rotation
	Apply(raw, initial mgl32.Quat) mgl32.Quat

	// Reset restores the identity offset.
	Reset()

	// Offset returns the calibration offset.
	//
	// Returns:
	//   - mgl32.Quat: the offset
	Offset() mgl32.Quat

	// Base returns the base rotation.
	//
	// Returns:
	//   - mgl32.Quat: the base rotation
	Base() mgl32.Quat

	// SetBase replaces the base rotation.
	//
	// Parameters:
	//   - q: the new base rotation
	SetBase(q mgl32.Quat)

	// ApplyCalibration reports whether Apply uses the offset.
	//
	// Returns:
	//   - bool: true if the offset is applied
	ApplyCalibration() bool

	// SetApplyCalibration toggles whether Apply uses the offset.
	//
	// Parameters:
	//   - apply: true to apply the offset
	SetApplyCalibration(apply bool)

	// Calibrations returns how many calibrations have succeeded.
	//
	// Returns:
	//   - int: the count
	Calibrations() int
}

var _ Engine = &engineImpl{}

// NewEngine creates an Engine with identity offset and base.
//
// Parameters:
//   - options: functional options to configure the engine
//
// Returns:
//   - Engine: the new engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engineImpl{
		mu:          &sync.Mutex{},
		calibration: mgl32.QuatIdent(),
		base:        mgl32.QuatIdent(),
		apply:       true,
		logger:      log.Default(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *engineImpl) Calibrate(raw mgl32.Quat) error {
	if common.IsDegenerate(raw) {
		e.logger.Printf("[Calibration] rejected degenerate sample %v, keeping previous offset", raw)
		return ErrCalibrationFailed
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.calibration = raw.Normalize().Inverse()
	e.calibrations++
	return nil
}

func (e *engineImpl) Apply(raw, initial mgl32.Quat) mgl32.Quat {
	e.mu.Lock()
	defer e.mu.Unlock()
	q := initial.Mul(e.base)
	if e.apply {
		q = q.Mul(e.calibration)
	}
	return q.Mul(raw).Normalize()
}

func (e *engineImpl) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calibration = mgl32.QuatIdent()
}

func (e *engineImpl) Offset() mgl32.Quat {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calibration
}

func (e *engineImpl) Base() mgl32.Quat {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.base
}

func (e *engineImpl) SetBase(q mgl32.Quat) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.base = q.Normalize()
}

func (e *engineImpl) ApplyCalibration() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply
}

func (e *engineImpl) SetApplyCalibration(apply bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.apply = apply
}

func (e *engineImpl) Calibrations() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calibrations
}
