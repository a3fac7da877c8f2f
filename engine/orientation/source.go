package orientation

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/common"
)

// Source is the platform's motion sensor and touch surface.
type Source interface {
	// SupportsGyroscope reports whether the device has a usable gyroscope.
	SupportsGyroscope() bool

	// SupportsAccelerometer reports whether the device has a usable accelerometer.
	SupportsAccelerometer() bool

	// Attitude returns the raw gyroscope attitude in the sensor's own convention.
	Attitude() mgl32.Quat

	// Acceleration returns the raw accelerometer reading (gravity included).
	Acceleration() mgl32.Vec3

	// TouchCount returns how many fingers are currently on the screen.
	TouchCount() int
}

// PermissionSource is a Source whose motion data is gated behind a user permission prompt.
type PermissionSource interface {
	Source

	// PermissionGranted reports whether the user has allowed motion access.
	PermissionGranted() bool
}

// SimulatedSource is a Source whose readings are set by the caller. It backs the desktop viewer,
// where there is no motion hardware, and the tests.
type SimulatedSource struct {
	mu *sync.Mutex

	gyroscope     bool
	accelerometer bool
	granted       bool

	attitude     mgl32.Quat
	acceleration mgl32.Vec3
	touches      int
}

var _ Source = &SimulatedSource{}

// NewSimulatedSource creates a source that reports both sensors as present, an identity attitude and
// gravity along -Z (device lying flat, screen up).
//
// Returns:
//   - *SimulatedSource: the new source
func NewSimulatedSource() *SimulatedSource {
	return &SimulatedSource{
		mu:            &sync.Mutex{},
		gyroscope:     true,
		accelerometer: true,
		attitude:      mgl32.QuatIdent(),
		acceleration:  mgl32.Vec3{0, 0, -1},
	}
}

// NewGatedSimulatedSource creates a SimulatedSource that also implements PermissionSource.
// Permission starts out denied.
//
// Returns:
//   - *GatedSimulatedSource: the new source
func NewGatedSimulatedSource() *GatedSimulatedSource {
	return &GatedSimulatedSource{SimulatedSource: NewSimulatedSource()}
}

func (s *SimulatedSource) SupportsGyroscope() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gyroscope
}

func (s *SimulatedSource) SupportsAccelerometer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accelerometer
}

func (s *SimulatedSource) Attitude() mgl32.Quat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attitude
}

func (s *SimulatedSource) Acceleration() mgl32.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acceleration
}

func (s *SimulatedSource) TouchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touches
}

// SetSensors sets which sensors the source reports.
//
// Parameters:
//   - gyroscope: whether a gyroscope is present
//   - accelerometer: whether an accelerometer is present
func (s *SimulatedSource) SetSensors(gyroscope, accelerometer bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gyroscope = gyroscope
	s.accelerometer = accelerometer
}

// SetAttitude sets the raw gyroscope attitude, in the sensor's convention.
//
// Parameters:
//   - q: the raw attitude
func (s *SimulatedSource) SetAttitude(q mgl32.Quat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attitude = q
}

// SetWorldAttitude sets the raw attitude so that the provider's remapped sample equals q.
//
// Parameters:
//   - q: the attitude as the viewer should see it
func (s *SimulatedSource) SetWorldAttitude(q mgl32.Quat) {
	s.SetAttitude(common.RemapGyro(q))
}

// SetAcceleration sets the accelerometer reading.
//
// Parameters:
//   - v: the gravity vector
func (s *SimulatedSource) SetAcceleration(v mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acceleration = v
}

// SetTouchCount sets how many fingers are on the screen.
//
// Parameters:
//   - n: the touch count
func (s *SimulatedSource) SetTouchCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touches = n
}

// GatedSimulatedSource is a SimulatedSource behind a permission prompt.
type GatedSimulatedSource struct {
	*SimulatedSource
}

var _ PermissionSource = &GatedSimulatedSource{}

func (s *GatedSimulatedSource) PermissionGranted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.granted
}

// SetPermissionGranted answers the simulated permission prompt.
//
// Parameters:
//   - granted: whether motion access is allowed
func (s *GatedSimulatedSource) SetPermissionGranted(granted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.granted = granted
}
