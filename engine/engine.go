package engine

import (
	"log"
	"sync"
	"time"

	"github.com/marroen/ImmersiveSeating/engine/camera"
	"github.com/marroen/ImmersiveSeating/engine/profiler"
	"github.com/marroen/ImmersiveSeating/engine/window"
)

// engine implements the Engine interface.
// Coordinates the frame thread and the window thread.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates
	postChannel     chan func()        // Work handed from other goroutines to the frame thread

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window
	camera camera.Camera

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	logger *log.Logger
}

// Engine is the main entry point for the runtime.
// It owns the frame thread: a fixed-rate loop that runs posted work, then the tick callback.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, or nil when running headless
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each frame.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// Post hands fn to the frame thread; it runs before the next tick callback. Safe from any goroutine.
	// Posts made after Quit are dropped.
	//
	// Parameters:
	//   - fn: the work to run
	Post(fn func())

	// Run starts the frame loop. With a window it runs the window message loop and blocks until the window
	// closes; headless it blocks until Quit.
	Run()

	// Quit signals all engine goroutines to stop; Run returns once they have.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		postChannel:      make(chan func(), 64),
		quitChannel:      make(chan struct{}),
		running:          false,
		wg:               sync.WaitGroup{},
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
		logger:           log.Default(),
	}

	for _, opt := range options {
		opt(e)
	}

	profOpts := []profiler.ProfilerBuilderOption{profiler.WithLogger(e.logger)}
	if e.camera != nil {
		profOpts = append(profOpts, profiler.WithCamera(e.camera))
	}
	e.profiler = profiler.NewProfiler(profOpts...)

	if e.window != nil && e.camera != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if height > 0 {
				e.camera.SetAspect(float32(width) / float32(height))
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.handle()
	if e.window == nil {
		e.wg.Wait()
		return
	}
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
}

func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) Post(fn func()) {
	select {
	case <-e.quitChannel:
	case e.postChannel <- fn:
	}
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the frame goroutine, tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.running = true
	e.wg.Add(1)
	go e.handleEngine()
}

// handleEngine runs the fixed-rate frame loop in its own goroutine.
// Runs posted work and fires the tick callback at the configured rate, and listens for dynamic rate
// changes via tickRateChannel. Recovers from panics and signals quit so the window loop can exit.
func (e *engine) handleEngine() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("[Engine] frame goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.drainPosted()
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// drainPosted runs every function posted since the previous frame.
func (e *engine) drainPosted() {
	for {
		select {
		case fn := <-e.postChannel:
			fn()
		default:
			return
		}
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each frame.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}
