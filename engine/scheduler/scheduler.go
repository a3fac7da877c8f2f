// Package scheduler runs cooperative, frame-stepped tasks on the viewer's frame thread.
//
// A task is resumed at most once per frame. Tasks never run in parallel, so the only ordering
// guarantees that matter are the ones documented on Scheduler.Start and Scheduler.Tick.
package scheduler

import (
	"sync"
)

// Task is a suspendable unit of work driven one frame at a time.
type Task interface {
	// Step resumes the task with the frame's delta time in seconds.
	//
	// Parameters:
	//   - dt: seconds since the previous frame (0 for the synchronous first segment)
	//
	// Returns:
	//   - bool: true once the task has finished and must not be resumed again
	Step(dt float32) bool
}

// Scheduler owns the set of in-flight tasks.
type Scheduler struct {
	mu *sync.Mutex

	running []Task
	pending []Task

	frame uint64
	clock float64
}

// NewScheduler creates an empty Scheduler.
//
// Returns:
//   - *Scheduler: the new scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		mu: &sync.Mutex{},
	}
}

// Start runs the task's first segment immediately, up to its first suspension point.
// A task that does not finish in that segment is first resumed on the Tick after the current one,
// whether Start was called before or during the current frame's Tick. This mirrors "yield one frame"
// semantics: a task started in frame N never resumes before frame N+1.
//
// Parameters:
//   - t: the task to start
func (s *Scheduler) Start(t Task) {
	if t == nil || t.Step(0) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, t)
}

// Tick resumes every task that was live at the end of the previous Tick, in start order.
// Finished tasks are dropped; tasks started during this Tick join the next one.
//
// Parameters:
//   - dt: seconds since the previous frame
func (s *Scheduler) Tick(dt float32) {
	s.mu.Lock()
	tasks := s.running
	s.running = nil
	s.frame++
	s.clock += float64(dt)
	s.mu.Unlock()

	live := tasks[:0]
	for _, t := range tasks {
		if !t.Step(dt) {
			live = append(live, t)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = append(live, s.pending...)
	s.pending = nil
}

// Len returns the number of unfinished tasks, including ones waiting for their first resume.
//
// Returns:
//   - int: the number of live tasks
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.running) + len(s.pending)
}

// Frame returns how many times Tick has run.
//
// Returns:
//   - uint64: the tick count
func (s *Scheduler) Frame() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Time returns the accumulated frame time in seconds.
//
// Returns:
//   - float64: seconds summed over every Tick
func (s *Scheduler) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}
