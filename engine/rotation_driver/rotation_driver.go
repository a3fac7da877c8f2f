// Package rotation_driver turns orientation samples into per-frame camera rotation writes.
// Both variants share the same pipeline (lock check, sample, calibrate, limit, smooth, write) and differ
// only in where the raw sample comes from.
package rotation_driver

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/common"
	"github.com/marroen/ImmersiveSeating/engine/calibration"
	"github.com/marroen/ImmersiveSeating/engine/camera"
	"github.com/marroen/ImmersiveSeating/engine/status"
)

// Mode identifies which input source owns the camera rotation.
type Mode int

const (
	ModeGyro Mode = iota
	ModeSwipe
)

func (m Mode) String() string {
	if m == ModeSwipe {
		return "swipe"
	}
	return "gyro"
}

// ManualOwner is the lease owner used by SetAllowExternalRotationControl.
const ManualOwner = "manual"

// RotationDriver writes the camera rotation once per frame from an input source, unless it is disabled
// or locked by an external-control lease.
type RotationDriver interface {
	// Tick runs one frame of the driver pipeline. Nothing is written while disabled or locked.
	//
	// Parameters:
	//   - dt: seconds since the previous frame
	Tick(dt float32)

	// Calibrate zeroes the current input so that it maps to the initial rotation.
	//
	// Returns:
	//   - error: orientation.ErrSensorUnavailable or calibration.ErrCalibrationFailed, both non-fatal
	Calibrate() error

	// SetNewInitialRotation replaces the initial rotation and recalibrates once.
	//
	// Parameters:
	//   - q: the new initial rotation
	//
	// Returns:
	//   - error: the recalibration error, if any
	SetNewInitialRotation(q mgl32.Quat) error

	// InitialRotation returns the rotation the driver maps a calibrated input to.
	//
	// Returns:
	//   - mgl32.Quat: the initial rotation
	InitialRotation() mgl32.Quat

	// TargetRotation returns the unsmoothed rotation computed by the last Tick that got past the lock check.
	//
	// Returns:
	//   - mgl32.Quat: the target rotation
	TargetRotation() mgl32.Quat

	// AcquireExternalControl locks the driver until the returned lease is released.
	//
	// Parameters:
	//   - owner: a name for logs and diagnostics
	//
	// Returns:
	//   - *Lease: the lease to release
	AcquireExternalControl(owner string) *Lease

	// ExternalControl reports whether any lease is outstanding.
	//
	// Returns:
	//   - bool: true while locked
	ExternalControl() bool

	// ExternalOwners lists the owners of outstanding leases, sorted.
	//
	// Returns:
	//   - []string: the owners
	ExternalOwners() []string

	// SetAllowExternalRotationControl acquires or releases the manual lease. Other owners' leases are unaffected.
	//
	// Parameters:
	//   - allow: true to hold the manual lease
	SetAllowExternalRotationControl(allow bool)

	// Enabled reports whether the driver is enabled.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled enables or disables the driver.
	//
	// Parameters:
	//   - enabled: the new state
	SetEnabled(enabled bool)

	// ResetRotation returns the view to the initial rotation and recalibrates.
	ResetRotation()

	// Mode returns which input source the driver reads.
	//
	// Returns:
	//   - Mode: ModeGyro or ModeSwipe
	Mode() Mode

	// Calibrations returns how many calibrations have succeeded.
	//
	// Returns:
	//   - int: the count
	Calibrations() int
}

// driverCore holds the state and pipeline steps shared by both variants.
type driverCore struct {
	mu *sync.Mutex

	mode   Mode
	tag    string
	writer camera.Writer

	cam   camera.Camera
	calib calibration.Engine

	enabled atomic.Bool
	leases  *leaseSet
	manual  *Lease

	initial   mgl32.Quat
	target    mgl32.Quat
	smoothing float32

	sink   status.Sink
	logger *log.Logger
}

func newDriverCore(mode Mode, cam camera.Camera, cfg *driverConfig) *driverCore {
	c := &driverCore{
		mu:        &sync.Mutex{},
		mode:      mode,
		cam:       cam,
		calib:     cfg.calib,
		leases:    newLeaseSet(),
		smoothing: cfg.smoothing,
		sink:      cfg.sink,
		logger:    cfg.logger,
	}
	switch mode {
	case ModeSwipe:
		c.tag = "[Swipe]"
		c.writer = camera.WriterSwipe
	default:
		c.tag = "[Gyro]"
		c.writer = camera.WriterGyro
	}
	if c.calib == nil {
		c.calib = calibration.NewEngine(calibration.WithLogger(cfg.logger))
	}
	c.initial = cam.Rotation()
	if cfg.initial != nil {
		c.initial = cfg.initial.Normalize()
	}
	c.target = c.initial
	c.enabled.Store(cfg.enabled)
	return c
}

func (c *driverCore) InitialRotation() mgl32.Quat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initial
}

func (c *driverCore) TargetRotation() mgl32.Quat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *driverCore) AcquireExternalControl(owner string) *Lease {
	return c.leases.acquire(owner)
}

func (c *driverCore) ExternalControl() bool {
	return c.leases.locked()
}

func (c *driverCore) ExternalOwners() []string {
	return c.leases.owners()
}

func (c *driverCore) SetAllowExternalRotationControl(allow bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if allow && c.manual == nil {
		c.manual = c.leases.acquire(ManualOwner)
	} else if !allow && c.manual != nil {
		c.manual.Release()
		c.manual = nil
	}
	c.logger.Printf("%s AllowExternalRotationControl: %t", c.tag, allow)
}

func (c *driverCore) Enabled() bool {
	return c.enabled.Load()
}

func (c *driverCore) SetEnabled(enabled bool) {
	if c.enabled.Swap(enabled) != enabled {
		if enabled {
			c.logger.Printf("%s driver enabled", c.tag)
		} else {
			c.logger.Printf("%s driver disabled", c.tag)
		}
	}
}

func (c *driverCore) Mode() Mode {
	return c.mode
}

func (c *driverCore) Calibrations() int {
	return c.calib.Calibrations()
}

// active reports whether the driver may run its pipeline this frame.
func (c *driverCore) active() bool {
	return c.enabled.Load() && !c.leases.locked()
}

// setInitial stores a new initial rotation.
func (c *driverCore) setInitial(q mgl32.Quat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initial = q.Normalize()
}

// write smooths from the camera's current rotation towards target and writes the result.
// Smoothing is a fixed blend per tick, so a driver resuming after a lock continues from wherever the camera is.
func (c *driverCore) write(target mgl32.Quat) {
	c.mu.Lock()
	c.target = target
	smoothing := c.smoothing
	c.mu.Unlock()

	c.cam.SetRotation(c.writer, common.Slerp(c.cam.Rotation(), target, smoothing))
}
