package rotation_driver

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/common"
	"github.com/marroen/ImmersiveSeating/engine/camera"
	"github.com/marroen/ImmersiveSeating/engine/orientation"
	"github.com/marroen/ImmersiveSeating/engine/scheduler"
	"github.com/marroen/ImmersiveSeating/engine/status"
)

// FocusOwner is the lease owner held by the swipe driver during a focus transition.
const FocusOwner = "swipe:focus"

// ErrFocusRejected is returned when a focus transition cannot start.
var ErrFocusRejected = errors.New("rotation_driver: focus rejected")

// Status texts shown by the swipe driver.
const (
	RotationResetText         = "Camera rotation reset"
	TouchRotationEnabledText  = "Touch rotation enabled"
	TouchRotationDisabledText = "Touch rotation disabled"
)

type swipeImpl struct {
	*driverCore

	smu *sync.Mutex

	pointer       orientation.Pointer
	touchRotation bool

	sched         *scheduler.Scheduler
	focusDuration float32
	focusDistance float32
	focusOffset   mgl32.Vec3
	focusing      bool
}

var _ RotationDriver = &swipeImpl{}

// Swipe is the RotationDriver fed by pointer drags.
// Its raw sample is Euler(vertical, horizontal, 0) of the accumulated drag angles, so calibrating
// zeroes those angles and the calibrated view equals the initial rotation.
type Swipe interface {
	RotationDriver

	// Press starts a drag. A press that completes a double tap resets the rotation.
	// Input is ignored while the driver is disabled, locked or has touch rotation turned off.
	//
	// Parameters:
	//   - pos: screen position in pixels, bottom-left origin
	//   - now: frame clock in seconds
	Press(pos mgl32.Vec2, now float64)

	// Drag continues the active drag.
	//
	// Parameters:
	//   - pos: screen position in pixels, bottom-left origin
	Drag(pos mgl32.Vec2)

	// Release ends the active drag. Always accepted.
	Release()

	// SetTouchSensitivity changes the drag sensitivity.
	//
	// Parameters:
	//   - sensitivity: the sensitivity multiplier
	SetTouchSensitivity(sensitivity float32)

	// TouchSensitivity returns the drag sensitivity.
	//
	// Returns:
	//   - float32: the sensitivity multiplier
	TouchSensitivity() float32

	// ToggleTouchRotation flips whether drags rotate the camera.
	//
	// Returns:
	//   - bool: the new state
	ToggleTouchRotation() bool

	// TouchRotation reports whether drags rotate the camera.
	//
	// Returns:
	//   - bool: true if enabled
	TouchRotation() bool

	// FocusOnTarget eases the camera to focus distance in front of target, facing it, then hands the
	// view back to the drags. The driver is locked for the duration of the transition.
	//
	// Parameters:
	//   - target: world position to focus on
	//
	// Returns:
	//   - error: ErrFocusRejected while disabled, locked, already focusing, without a scheduler, or when
	//     the camera already sits on the target
	FocusOnTarget(target mgl32.Vec3) error

	// Focusing reports whether a focus transition is in flight.
	//
	// Returns:
	//   - bool: true while transitioning
	Focusing() bool

	// Pointer returns the drag accumulator.
	//
	// Returns:
	//   - orientation.Pointer: the pointer
	Pointer() orientation.Pointer
}

// NewSwipe creates a swipe driver. The initial rotation defaults to the camera's rotation at construction.
//
// Parameters:
//   - cam: the camera to drive, must not be nil
//   - options: functional options to configure the driver
//
// Returns:
//   - Swipe: the new driver
func NewSwipe(cam camera.Camera, options ...DriverBuilderOption) Swipe {
	if cam == nil {
		panic("rotation_driver: NewSwipe requires a camera")
	}
	cfg := defaultDriverConfig()
	for _, option := range options {
		option(cfg)
	}
	pointer := cfg.pointer
	if pointer == nil {
		pointer = orientation.NewPointer()
	}
	return &swipeImpl{
		driverCore:    newDriverCore(ModeSwipe, cam, cfg),
		smu:           &sync.Mutex{},
		pointer:       pointer,
		touchRotation: cfg.touchRotation,
		sched:         cfg.sched,
		focusDuration: cfg.focusDuration,
		focusDistance: cfg.focusDistance,
		focusOffset:   cfg.focusOffset,
	}
}

func (s *swipeImpl) Tick(dt float32) {
	if !s.active() || !s.TouchRotation() {
		return
	}
	s.write(s.calib.Apply(s.pointer.Sample(), s.InitialRotation()))
}

func (s *swipeImpl) Press(pos mgl32.Vec2, now float64) {
	if !s.accepting() {
		return
	}
	if s.pointer.Press(pos, now) {
		s.logger.Printf("%s double-tap detected: resetting rotation", s.tag)
		s.ResetRotation()
	}
}

func (s *swipeImpl) Drag(pos mgl32.Vec2) {
	if !s.accepting() {
		return
	}
	s.pointer.Drag(pos)
}

func (s *swipeImpl) Release() {
	s.pointer.Release()
}

// Calibrate zeroes the accumulated angles. The raw sample is then identity, so the stored offset is too.
func (s *swipeImpl) Calibrate() error {
	s.pointer.Zero()
	return s.calib.Calibrate(s.pointer.Sample())
}

func (s *swipeImpl) SetNewInitialRotation(q mgl32.Quat) error {
	s.setInitial(q)
	x, y, z := common.EulerAngles(q)
	s.logger.Printf("%s set new initial rotation to (%.1f, %.1f, %.1f)", s.tag, x, y, z)
	return s.Calibrate()
}

func (s *swipeImpl) ResetRotation() {
	s.logger.Printf("%s resetting camera rotation", s.tag)
	if err := s.Calibrate(); err != nil {
		s.logger.Printf("%s reset failed: %v", s.tag, err)
		return
	}
	s.mu.Lock()
	s.target = s.initial
	s.mu.Unlock()
	s.sink.Show(status.Info, RotationResetText)
}

func (s *swipeImpl) SetTouchSensitivity(sensitivity float32) {
	s.pointer.SetSensitivity(sensitivity)
	s.logger.Printf("%s touch sensitivity set to: %.2f", s.tag, sensitivity)
}

func (s *swipeImpl) TouchSensitivity() float32 {
	return s.pointer.Sensitivity()
}

func (s *swipeImpl) ToggleTouchRotation() bool {
	s.smu.Lock()
	s.touchRotation = !s.touchRotation
	enabled := s.touchRotation
	s.smu.Unlock()

	s.logger.Printf("%s touch rotation enabled: %t", s.tag, enabled)
	if enabled {
		s.sink.Show(status.Info, TouchRotationEnabledText)
	} else {
		s.sink.Show(status.Info, TouchRotationDisabledText)
	}
	return enabled
}

func (s *swipeImpl) TouchRotation() bool {
	s.smu.Lock()
	defer s.smu.Unlock()
	return s.touchRotation
}

func (s *swipeImpl) FocusOnTarget(target mgl32.Vec3) error {
	s.smu.Lock()
	defer s.smu.Unlock()

	switch {
	case s.sched == nil:
		return s.rejectFocus("no scheduler")
	case s.focusing:
		return s.rejectFocus("transition in flight")
	case !s.Enabled():
		return s.rejectFocus("driver disabled")
	case s.ExternalControl():
		return s.rejectFocus(fmt.Sprintf("locked by %v", s.ExternalOwners()))
	}

	start := s.cam.Pose()
	aim := target.Add(s.focusOffset)
	dir := aim.Sub(start.Position)
	if dir.Len() < 1e-6 {
		return s.rejectFocus("camera is at the target")
	}
	dir = dir.Normalize()
	endPosition := aim.Sub(dir.Mul(s.focusDistance))
	endRotation := common.LookRotation(dir, common.AxisY)

	s.focusing = true
	lease := s.AcquireExternalControl(FocusOwner)
	s.logger.Printf("%s focusing on (%.2f, %.2f, %.2f)", s.tag, aim[0], aim[1], aim[2])

	seq := scheduler.NewSequence("swipe-focus").
		Tween(s.focusDuration, scheduler.EaseInOut, func(t float32) {
			s.cam.SetPosition(s.writer, common.LerpVec3(start.Position, endPosition, t))
			s.cam.SetRotation(s.writer, common.Slerp(start.Rotation, endRotation, t))
		}).
		Do(func() {
			s.syncAngles(endRotation)
			lease.Release()

			s.smu.Lock()
			s.focusing = false
			s.smu.Unlock()
			s.logger.Printf("%s focus transition complete", s.tag)
		})
	s.sched.Start(seq)
	return nil
}

func (s *swipeImpl) Focusing() bool {
	s.smu.Lock()
	defer s.smu.Unlock()
	return s.focusing
}

// syncAngles sets the drag angles so the pipeline reproduces q, folded into (-180, 180].
func (s *swipeImpl) syncAngles(q mgl32.Quat) {
	frame := s.calib.Apply(mgl32.QuatIdent(), s.InitialRotation())
	x, y, _ := common.EulerAngles(frame.Inverse().Mul(q))
	s.pointer.SetAngles(common.SignedAngle(x), common.SignedAngle(y))

	s.mu.Lock()
	s.target = q
	s.mu.Unlock()
}

// rejectFocus logs and returns a rejected focus request. Caller must hold smu.
func (s *swipeImpl) rejectFocus(reason string) error {
	s.logger.Printf("%s focus rejected: %s", s.tag, reason)
	return fmt.Errorf("%w: %s", ErrFocusRejected, reason)
}

func (s *swipeImpl) Pointer() orientation.Pointer {
	return s.pointer
}

// accepting reports whether pointer input should be integrated.
func (s *swipeImpl) accepting() bool {
	return s.active() && s.TouchRotation()
}
