package profiler

import (
	"log"
	"runtime"
	"time"

	"github.com/marroen/ImmersiveSeating/engine/camera"
	"gonum.org/v1/gonum/stat"
)

// CameraStats is the part of the camera the profiler reads: the writers of the current frame and the
// running conflict count.
type CameraStats interface {
	FrameWriters() []camera.Writer
	Conflicts() int
}

// Stats is one interval's summary.
type Stats struct {
	FPS float64
	// FrameMean and FrameStdDev are in milliseconds.
	FrameMean   float64
	FrameStdDev float64
	FrameMax    float64
	// Conflicts is how many camera write conflicts happened during the interval.
	Conflicts int
	// MaxWriters is the most distinct camera writers seen in one frame during the interval.
	MaxWriters int
	HeapMB     float64
	GCCount    uint32
}

// Profiler tracks frame rate, frame-time spread, camera writer statistics and memory.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	frameTimes     []float64
	lastTime       time.Time
	lastFrame      time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32

	camera        CameraStats
	lastConflicts int
	maxWriters    int

	now    func() time.Time
	last   Stats
	logger *log.Logger
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		logger:         log.Default(),
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	p.lastFrame = p.lastTime
	return p
}

// Tick should be called once per frame, after the frame's camera writes.
// Logs statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	currentTime := p.now()
	p.frameCount++
	p.frameTimes = append(p.frameTimes, float64(currentTime.Sub(p.lastFrame))/float64(time.Millisecond))
	p.lastFrame = currentTime

	if p.camera != nil {
		if n := len(p.camera.FrameWriters()); n > p.maxWriters {
			p.maxWriters = n
		}
	}

	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	s := Stats{FPS: float64(p.frameCount) / elapsed.Seconds(), MaxWriters: p.maxWriters}
	s.FrameMean, s.FrameStdDev = stat.MeanStdDev(p.frameTimes, nil)
	for _, ft := range p.frameTimes {
		if ft > s.FrameMax {
			s.FrameMax = ft
		}
	}
	if p.camera != nil {
		conflicts := p.camera.Conflicts()
		s.Conflicts = conflicts - p.lastConflicts
		p.lastConflicts = conflicts
	}

	runtime.ReadMemStats(&p.memStats)
	s.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	s.GCCount = p.memStats.NumGC - p.lastGCCount

	p.logger.Printf("[Profiler] FPS: %.2f | Frame: %.2f ± %.2f ms (max %.2f) | Camera writers/frame: %d | Conflicts: %d | Heap: %.2f MB | GC: %d",
		s.FPS, s.FrameMean, s.FrameStdDev, s.FrameMax, s.MaxWriters, s.Conflicts, s.HeapMB, s.GCCount)

	p.last = s
	p.frameCount = 0
	p.frameTimes = p.frameTimes[:0]
	p.maxWriters = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	return true
}

// Last returns the most recently logged interval.
//
// Returns:
//   - Stats: the stats, zero before the first interval
func (p *Profiler) Last() Stats {
	return p.last
}
