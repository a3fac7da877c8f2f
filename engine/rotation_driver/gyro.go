package rotation_driver

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/common"
	"github.com/marroen/ImmersiveSeating/engine/camera"
	"github.com/marroen/ImmersiveSeating/engine/orientation"
	"github.com/marroen/ImmersiveSeating/engine/status"
)

// Status texts shown by the gyro driver.
const (
	CalibratedText        = "Calibrated!"
	CalibrationFailedText = "Calibration failed"
)

// recalibrateTouches is the number of simultaneous touches that recalibrates the gyro.
const recalibrateTouches = 3

type gyroImpl struct {
	*driverCore

	gmu *sync.Mutex

	provider orientation.Provider

	deviceRotation bool

	limitVertical bool
	minVertical   float32
	maxVertical   float32

	startCalibration bool
	lastTouches      int
	badSample        bool
}

var _ RotationDriver = &gyroImpl{}

// Gyro is the RotationDriver fed by the device's motion sensors.
type Gyro interface {
	RotationDriver

	// DeviceRotation reports whether motion input is applied.
	//
	// Returns:
	//   - bool: true if enabled
	DeviceRotation() bool

	// SetDeviceRotation toggles whether motion input is applied, independently of the driver's enabled state.
	//
	// Parameters:
	//   - enabled: the new state
	SetDeviceRotation(enabled bool)

	// Provider returns the orientation provider the driver samples.
	//
	// Returns:
	//   - orientation.Provider: the provider
	Provider() orientation.Provider
}

// NewGyro creates a gyro driver. The initial rotation defaults to the camera's rotation at construction.
// With calibrate-on-start (the default) the first calibration happens as soon as motion data is available,
// which may be later than construction on platforms with a permission prompt.
//
// Parameters:
//   - cam: the camera to drive, must not be nil
//   - provider: the orientation provider, must not be nil
//   - options: functional options to configure the driver
//
// Returns:
//   - Gyro: the new driver
func NewGyro(cam camera.Camera, provider orientation.Provider, options ...DriverBuilderOption) Gyro {
	if cam == nil || provider == nil {
		panic("rotation_driver: NewGyro requires a camera and an orientation provider")
	}
	cfg := defaultDriverConfig()
	for _, option := range options {
		option(cfg)
	}
	g := &gyroImpl{
		driverCore:       newDriverCore(ModeGyro, cam, cfg),
		gmu:              &sync.Mutex{},
		provider:         provider,
		deviceRotation:   cfg.deviceRotation,
		limitVertical:    cfg.limitVertical,
		minVertical:      cfg.minVertical,
		maxVertical:      cfg.maxVertical,
		startCalibration: cfg.calibrateOnStart,
	}
	g.calibrateOnStart()
	return g
}

func (g *gyroImpl) Tick(dt float32) {
	if !g.active() {
		return
	}
	g.gmu.Lock()
	deviceRotation := g.deviceRotation
	g.gmu.Unlock()
	if !deviceRotation || !g.provider.Available() {
		return
	}
	g.calibrateOnStart()

	touches := g.provider.TouchCount()
	g.gmu.Lock()
	gesture := touches == recalibrateTouches && g.lastTouches != recalibrateTouches
	g.lastTouches = touches
	g.gmu.Unlock()
	if gesture {
		g.logger.Printf("%s three-finger touch detected: recalibrating", g.tag)
		_ = g.Calibrate()
	}

	raw, err := g.provider.Sample()
	if err != nil {
		return
	}
	rotation := g.calib.Apply(raw, g.InitialRotation())
	if !g.sampleUsable(raw, rotation) {
		return
	}

	g.gmu.Lock()
	limit, lo, hi := g.limitVertical, g.minVertical, g.maxVertical
	g.gmu.Unlock()
	if limit {
		rotation = common.ClampPitch(rotation, lo, hi)
	}
	g.write(rotation)
}

// sampleUsable reports whether a sample can be written. A degenerate sample leaves the camera on its last pose
// and is logged once per run of bad samples.
func (g *gyroImpl) sampleUsable(raw, rotation mgl32.Quat) bool {
	bad := common.IsDegenerate(raw) || common.IsDegenerate(rotation)

	g.gmu.Lock()
	defer g.gmu.Unlock()
	if bad && !g.badSample {
		g.logger.Printf("%s ignoring degenerate motion sample", g.tag)
	} else if !bad && g.badSample {
		g.logger.Printf("%s motion samples recovered", g.tag)
	}
	g.badSample = bad
	return !bad
}

func (g *gyroImpl) Calibrate() error {
	if !g.provider.Available() {
		g.logger.Printf("%s calibration skipped: no motion data", g.tag)
		return orientation.ErrSensorUnavailable
	}
	raw, err := g.provider.Sample()
	if err != nil {
		g.logger.Printf("%s calibration skipped: %v", g.tag, err)
		return err
	}
	if err := g.calib.Calibrate(raw); err != nil {
		g.logger.Printf("%s calibration failed: %v", g.tag, err)
		g.sink.Show(status.Failure, CalibrationFailedText)
		return fmt.Errorf("gyro calibrate: %w", err)
	}

	g.gmu.Lock()
	g.startCalibration = false
	g.gmu.Unlock()

	g.logger.Printf("%s device orientation calibrated", g.tag)
	g.sink.Show(status.Success, CalibratedText)
	return nil
}

func (g *gyroImpl) SetNewInitialRotation(q mgl32.Quat) error {
	g.setInitial(q)
	x, y, z := common.EulerAngles(q)
	g.logger.Printf("%s set new initial rotation to (%.1f, %.1f, %.1f)", g.tag, x, y, z)
	return g.Calibrate()
}

// ResetRotation recalibrates so the current device heading maps to the initial rotation.
func (g *gyroImpl) ResetRotation() {
	g.logger.Printf("%s resetting rotation", g.tag)
	_ = g.Calibrate()
}

func (g *gyroImpl) DeviceRotation() bool {
	g.gmu.Lock()
	defer g.gmu.Unlock()
	return g.deviceRotation
}

func (g *gyroImpl) SetDeviceRotation(enabled bool) {
	g.gmu.Lock()
	defer g.gmu.Unlock()
	g.deviceRotation = enabled
}

func (g *gyroImpl) Provider() orientation.Provider {
	return g.provider
}

// calibrateOnStart runs the deferred start-up calibration once motion data is available.
func (g *gyroImpl) calibrateOnStart() {
	g.gmu.Lock()
	pending := g.startCalibration
	g.gmu.Unlock()
	if pending && g.provider.Available() {
		_ = g.Calibrate()
	}
}
