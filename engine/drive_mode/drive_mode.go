// Package drive_mode keeps exactly one rotation driver enabled and performs the ordered handoff between them.
package drive_mode

import (
	"log"
	"sync"

	"github.com/marroen/ImmersiveSeating/engine/rotation_driver"
	"github.com/marroen/ImmersiveSeating/engine/scheduler"
	"github.com/marroen/ImmersiveSeating/engine/status"
)

// Status texts shown on a mode switch.
const (
	SwitchedToGyroText  = "Switched to Gyro Control"
	SwitchedToSwipeText = "Switched to Touch Control"
)

type switcherImpl struct {
	mu *sync.Mutex

	gyro  rotation_driver.Gyro
	swipe rotation_driver.Swipe
	sched *scheduler.Scheduler

	current rotation_driver.Mode
	pending *scheduler.Sequence

	onModeChanged func(rotation_driver.Mode)
	sink          status.Sink
	logger        *log.Logger
}

// Switcher selects which RotationDriver owns the camera rotation.
//
// A switch disables both drivers immediately, enables the target one frame later and runs its settle action
// (Calibrate for gyro, ResetRotation for swipe) one frame after that. The old driver therefore never writes
// after the new one is enabled, and the new one never calibrates before it is enabled.
type Switcher interface {
	// SwitchTo starts a handoff to mode. A handoff still in flight is cancelled before it enables its driver.
	//
	// Parameters:
	//   - mode: the target mode
	SwitchTo(mode rotation_driver.Mode)

	// SwitchToGyro switches to gyro mode and shows a status message.
	SwitchToGyro()

	// SwitchToSwipe switches to swipe mode and shows a status message.
	SwitchToSwipe()

	// ToggleMode switches to whichever mode is not current.
	ToggleMode()

	// CurrentMode returns the most recently requested mode.
	//
	// Returns:
	//   - rotation_driver.Mode: the mode
	CurrentMode() rotation_driver.Mode

	// Switching reports whether a handoff is still in flight.
	//
	// Returns:
	//   - bool: true until the settle action has run
	Switching() bool

	// Active returns the driver of the current mode.
	//
	// Returns:
	//   - rotation_driver.RotationDriver: the driver
	Active() rotation_driver.RotationDriver

	// Drivers returns both drivers, gyro first.
	//
	// Returns:
	//   - []rotation_driver.RotationDriver: the drivers
	Drivers() []rotation_driver.RotationDriver

	// Gyro returns the gyro driver.
	//
	// Returns:
	//   - rotation_driver.Gyro: the driver
	Gyro() rotation_driver.Gyro

	// Swipe returns the swipe driver.
	//
	// Returns:
	//   - rotation_driver.Swipe: the driver
	Swipe() rotation_driver.Swipe

	// IsGyroAvailable reports whether the device has a gyroscope.
	//
	// Returns:
	//   - bool: true if a gyroscope is present
	IsGyroAvailable() bool
}

var _ Switcher = &switcherImpl{}

// NewSwitcher creates a Switcher. No driver is enabled until the first SwitchTo.
//
// Parameters:
//   - gyro: the gyro driver, must not be nil
//   - swipe: the swipe driver, must not be nil
//   - sched: the frame scheduler, must not be nil
//   - options: functional options to configure the switcher
//
// Returns:
//   - Switcher: the new switcher
func NewSwitcher(gyro rotation_driver.Gyro, swipe rotation_driver.Swipe, sched *scheduler.Scheduler, options ...SwitcherBuilderOption) Switcher {
	if gyro == nil || swipe == nil || sched == nil {
		panic("drive_mode: NewSwitcher requires both drivers and a scheduler")
	}
	s := &switcherImpl{
		mu:     &sync.Mutex{},
		gyro:   gyro,
		swipe:  swipe,
		sched:  sched,
		sink:   status.Nop{},
		logger: log.Default(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *switcherImpl) SwitchTo(mode rotation_driver.Mode) {
	s.logger.Printf("[DriveMode] attempting to set rotation mode to: %s", mode)

	seq := scheduler.NewSequence("drive-mode:" + mode.String())
	seq.Yield().
		Do(func() { s.enable(mode) }).
		Yield().
		Do(func() { s.settle(mode) }).
		Do(func() { s.finish(mode) })

	s.mu.Lock()
	if s.pending != nil && !s.pending.Done() {
		s.pending.Cancel()
		s.logger.Printf("[DriveMode] superseded pending switch %s", s.pending.Name())
	}
	s.current = mode
	s.pending = seq
	s.mu.Unlock()

	s.gyro.SetEnabled(false)
	s.swipe.SetEnabled(false)

	s.sched.Start(seq)
}

func (s *switcherImpl) SwitchToGyro() {
	s.logger.Printf("[DriveMode] switching to gyro rotation mode")
	s.SwitchTo(rotation_driver.ModeGyro)
	s.sink.Show(status.Info, SwitchedToGyroText)
}

func (s *switcherImpl) SwitchToSwipe() {
	s.logger.Printf("[DriveMode] switching to swipe rotation mode")
	s.SwitchTo(rotation_driver.ModeSwipe)
	s.sink.Show(status.Info, SwitchedToSwipeText)
}

func (s *switcherImpl) ToggleMode() {
	if s.CurrentMode() == rotation_driver.ModeGyro {
		s.SwitchTo(rotation_driver.ModeSwipe)
	} else {
		s.SwitchTo(rotation_driver.ModeGyro)
	}
}

func (s *switcherImpl) CurrentMode() rotation_driver.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *switcherImpl) Switching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil && !s.pending.Done()
}

func (s *switcherImpl) Active() rotation_driver.RotationDriver {
	return s.driver(s.CurrentMode())
}

func (s *switcherImpl) Drivers() []rotation_driver.RotationDriver {
	return []rotation_driver.RotationDriver{s.gyro, s.swipe}
}

func (s *switcherImpl) Gyro() rotation_driver.Gyro {
	return s.gyro
}

func (s *switcherImpl) Swipe() rotation_driver.Swipe {
	return s.swipe
}

func (s *switcherImpl) IsGyroAvailable() bool {
	return s.gyro.Provider().Source().SupportsGyroscope()
}

func (s *switcherImpl) driver(mode rotation_driver.Mode) rotation_driver.RotationDriver {
	if mode == rotation_driver.ModeSwipe {
		return s.swipe
	}
	return s.gyro
}

func (s *switcherImpl) enable(mode rotation_driver.Mode) {
	s.driver(mode).SetEnabled(true)
}

// settle runs the target driver's settle action. Failures are logged and never stop the handoff.
func (s *switcherImpl) settle(mode rotation_driver.Mode) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("[DriveMode] %s settle failed: %v", mode, r)
		}
	}()

	var err error
	switch mode {
	case rotation_driver.ModeSwipe:
		s.swipe.ResetRotation()
		s.logger.Printf("[DriveMode] swipe driver reset")
	default:
		if err = s.gyro.Calibrate(); err == nil {
			s.logger.Printf("[DriveMode] gyro driver calibrated")
		}
	}
	if err != nil {
		s.logger.Printf("[DriveMode] %s settle failed: %v", mode, err)
	}
}

func (s *switcherImpl) finish(mode rotation_driver.Mode) {
	s.logger.Printf("[DriveMode] rotation mode successfully set to: %s", mode)
	if s.onModeChanged != nil {
		s.onModeChanged(mode)
	}
}
