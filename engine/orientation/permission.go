package orientation

import (
	"log"
	"sync"

	"github.com/marroen/ImmersiveSeating/engine/scheduler"
	"github.com/marroen/ImmersiveSeating/engine/status"
)

// MotionDeniedText is shown when motion access is not granted before the poll times out.
const MotionDeniedText = "Motion access denied. Please try again."

// PermissionPoller waits on the frame scheduler for the user to answer the motion permission prompt.
// Sources without a permission gate are granted on the first poll.
type PermissionPoller struct {
	mu *sync.Mutex

	provider Provider
	sched    *scheduler.Scheduler
	sink     status.Sink

	interval float32
	timeout  float32

	requested bool
	pending   *scheduler.Sequence

	logger *log.Logger
}

// NewPermissionPoller creates a poller that checks every 0.2 seconds for up to 15 seconds.
//
// Parameters:
//   - provider: the provider to grant, must not be nil
//   - sched: the frame scheduler, must not be nil
//   - options: functional options to configure the poller
//
// Returns:
//   - *PermissionPoller: the new poller
func NewPermissionPoller(provider Provider, sched *scheduler.Scheduler, options ...PermissionPollerBuilderOption) *PermissionPoller {
	if provider == nil || sched == nil {
		panic("orientation: NewPermissionPoller requires a provider and a scheduler")
	}
	p := &PermissionPoller{
		mu:       &sync.Mutex{},
		provider: provider,
		sched:    sched,
		sink:     status.Nop{},
		interval: 0.2,
		timeout:  15,
		logger:   log.Default(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Request starts polling for motion access. A request already in flight, or one that already
// succeeded, is not restarted.
//
// Returns:
//   - bool: true if a new poll was started
func (p *PermissionPoller) Request() bool {
	p.mu.Lock()
	if p.requested {
		p.mu.Unlock()
		return false
	}
	p.requested = true
	seq := scheduler.NewSequence("permission").
		Poll(p.interval, p.timeout, p.check, p.denied).
		Do(func() {
			p.logger.Printf("[Orientation] motion access granted")
		})
	p.pending = seq
	p.mu.Unlock()

	p.logger.Printf("[Orientation] requesting device orientation permission")
	p.sched.Start(seq)
	return true
}

// Requested reports whether a request is in flight or has succeeded.
//
// Returns:
//   - bool: false before the first Request and after a timeout
func (p *PermissionPoller) Requested() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requested
}

// Polling reports whether a poll is still waiting for an answer.
//
// Returns:
//   - bool: true while the poll sequence is live
func (p *PermissionPoller) Polling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil && !p.pending.Done()
}

func (p *PermissionPoller) check() bool {
	if src, ok := p.provider.Source().(PermissionSource); ok && !src.PermissionGranted() {
		return false
	}
	p.provider.Grant()
	return true
}

func (p *PermissionPoller) denied() {
	p.logger.Printf("[Orientation] device orientation permission not granted or timed out")
	p.sink.Show(status.Failure, MotionDeniedText)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.requested = false
}
