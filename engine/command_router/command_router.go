// Package command_router applies externally supplied commands (a drive mode plus an optional seat) to the viewer.
package command_router

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/marroen/ImmersiveSeating/engine/drive_mode"
	"github.com/marroen/ImmersiveSeating/engine/navigator"
	"github.com/marroen/ImmersiveSeating/engine/rotation_driver"
	"github.com/marroen/ImmersiveSeating/engine/scheduler"
)

// ErrInvalidCommandTarget is returned for a seat key the venue does not know. The rest of the command still applies.
var ErrInvalidCommandTarget = errors.New("command_router: invalid command target")

// Command parameter keys.
const (
	ParamMode = "mode"
	ParamSeat = "seat"
)

// Command is one external request, processed once and discarded.
type Command struct {
	// ID correlates the command's log lines.
	ID uuid.UUID
	// Mode is the drive mode to switch to.
	Mode rotation_driver.Mode
	// Seat is an optional deep-link seat key such as "premium".
	Seat string
}

func (c Command) String() string {
	if c.Seat == "" {
		return fmt.Sprintf("%s{mode=%s}", c.ID, c.Mode)
	}
	return fmt.Sprintf("%s{mode=%s seat=%s}", c.ID, c.Mode, c.Seat)
}

// NewCommand builds a Command with a fresh ID.
//
// Parameters:
//   - mode: the drive mode
//   - seat: the seat key, or "" for none
//
// Returns:
//   - Command: the command
func NewCommand(mode rotation_driver.Mode, seat string) Command {
	return Command{ID: uuid.New(), Mode: mode, Seat: seat}
}

// ParseCommand builds a Command from string parameters. The mode defaults to gyro; only "swipe" selects swipe.
//
// Parameters:
//   - params: the parameters, e.g. from a deep-link query
//
// Returns:
//   - Command: the command
func ParseCommand(params map[string]string) Command {
	mode := rotation_driver.ModeGyro
	if params[ParamMode] == "swipe" {
		mode = rotation_driver.ModeSwipe
	}
	return NewCommand(mode, strings.TrimSpace(params[ParamSeat]))
}

type routerImpl struct {
	mu *sync.Mutex

	switcher drive_mode.Switcher
	nav      navigator.Navigator
	sched    *scheduler.Scheduler

	modeSwitchDelay float32

	inbox   []Command
	handled int

	logger *log.Logger
}

// Router applies commands on the frame thread.
//
// A command's seat, if any, is sent to the navigator first; the mode switch follows after a short delay so the
// driver reset it causes cannot race the seat-focus handoff.
type Router interface {
	// Handle applies a command. Must be called on the frame thread.
	//
	// Parameters:
	//   - cmd: the command
	//
	// Returns:
	//   - error: ErrInvalidCommandTarget or a navigator error; the mode switch is scheduled regardless
	Handle(cmd Command) error

	// Submit queues a command from any goroutine for the next Drain.
	//
	// Parameters:
	//   - cmd: the command
	Submit(cmd Command)

	// Drain handles every queued command in submission order. Must be called on the frame thread.
	//
	// Returns:
	//   - int: how many commands were handled
	Drain() int

	// Pending returns how many commands are queued.
	//
	// Returns:
	//   - int: the queue length
	Pending() int

	// Handled returns how many commands have been handled.
	//
	// Returns:
	//   - int: the count
	Handled() int
}

var _ Router = &routerImpl{}

// NewRouter creates a Router with a 0.75 second mode-switch delay.
//
// Parameters:
//   - switcher: the drive-mode switcher, must not be nil
//   - nav: the navigator, must not be nil
//   - sched: the frame scheduler, must not be nil
//   - options: functional options to configure the router
//
// Returns:
//   - Router: the new router
func NewRouter(switcher drive_mode.Switcher, nav navigator.Navigator, sched *scheduler.Scheduler, options ...RouterBuilderOption) Router {
	if switcher == nil || nav == nil || sched == nil {
		panic("command_router: NewRouter requires a switcher, a navigator and a scheduler")
	}
	r := &routerImpl{
		mu:              &sync.Mutex{},
		switcher:        switcher,
		nav:             nav,
		sched:           sched,
		modeSwitchDelay: 0.75,
		logger:          log.Default(),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *routerImpl) Handle(cmd Command) error {
	r.logger.Printf("[Router] handling command %s", cmd)

	var err error
	if cmd.Seat != "" {
		err = r.focusSeat(cmd)
	}

	mode := cmd.Mode
	id := cmd.ID.String()
	r.sched.Start(scheduler.NewSequence("command-mode:" + id).
		Wait(r.modeSwitchDelay).
		Do(func() {
			r.logger.Printf("[Router] %s: switching to %s", id, mode)
			if mode == rotation_driver.ModeSwipe {
				r.switcher.SwitchToSwipe()
			} else {
				r.switcher.SwitchToGyro()
			}
		}))

	r.mu.Lock()
	r.handled++
	r.mu.Unlock()
	return err
}

func (r *routerImpl) Submit(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inbox = append(r.inbox, cmd)
}

func (r *routerImpl) Drain() int {
	r.mu.Lock()
	cmds := r.inbox
	r.inbox = nil
	r.mu.Unlock()

	for _, cmd := range cmds {
		if err := r.Handle(cmd); err != nil {
			r.logger.Printf("[Router] command %s: %v", cmd.ID, err)
		}
	}
	return len(cmds)
}

func (r *routerImpl) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inbox)
}

func (r *routerImpl) Handled() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handled
}

// focusSeat resolves the seat key and starts the seat focus, then records the seat's section as focused so the
// view behaves as if the user had zoomed there.
func (r *routerImpl) focusSeat(cmd Command) error {
	seat, ok := r.nav.Venue().Seat(cmd.Seat)
	if !ok {
		r.logger.Printf("[Router] %s: rejected unknown seat %q", cmd.ID, cmd.Seat)
		return fmt.Errorf("seat %q: %w", cmd.Seat, ErrInvalidCommandTarget)
	}
	if err := r.nav.GoToSeat(seat.ID); err != nil {
		r.logger.Printf("[Router] %s: seat focus %q failed: %v", cmd.ID, cmd.Seat, err)
		return err
	}
	if seat.Section != "" {
		r.nav.MarkSectionFocused(seat.Section)
	}
	r.logger.Printf("[Router] %s: direct seat selection %q (%s)", cmd.ID, seat.ID, seat.Section)
	return nil
}
