// Package deeplink turns deep-link URLs such as unitydl://seatselection?mode=swipe&seat=premium into commands
// for the command router. URLs are parsed on a worker pool so link activation never blocks the frame thread.
package deeplink

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/marroen/ImmersiveSeating/engine/command_router"
)

// ErrLinkMismatch is returned for a URL that does not contain the expected link name.
var ErrLinkMismatch = errors.New("deeplink: url does not match link name")

// DefaultLinkName is the link name matched in incoming URLs.
const DefaultLinkName = "seatselection"

// Parse extracts the query parameters of a deep-link URL. When a key repeats, the first value wins.
//
// Parameters:
//   - raw: the URL
//   - linkName: the link name the URL must contain
//
// Returns:
//   - map[string]string: the parameters
//   - error: a parse error or ErrLinkMismatch
func Parse(raw, linkName string) (map[string]string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("deeplink: parse %q: %w", raw, err)
	}
	params := make(map[string]string)
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	if !strings.Contains(raw, linkName) {
		return params, fmt.Errorf("%q does not contain %q: %w", raw, linkName, ErrLinkMismatch)
	}
	return params, nil
}

// Intake receives deep-link activations and submits the parsed commands to a router.
type Intake struct {
	mu *sync.Mutex

	router   command_router.Router
	pool     worker.DynamicWorkerPool
	linkName string
	workers  int

	nextID  int
	lastURL string
	wg      *sync.WaitGroup

	logger *log.Logger
}

// NewIntake creates an Intake backed by a small worker pool.
//
// Parameters:
//   - router: the router commands are submitted to, must not be nil
//   - options: functional options to configure the intake
//
// Returns:
//   - *Intake: the new intake
func NewIntake(router command_router.Router, options ...IntakeBuilderOption) *Intake {
	if router == nil {
		panic("deeplink: NewIntake requires a router")
	}
	i := &Intake{
		mu:       &sync.Mutex{},
		router:   router,
		linkName: DefaultLinkName,
		workers:  2,
		wg:       &sync.WaitGroup{},
		logger:   log.Default(),
	}
	for _, option := range options {
		option(i)
	}
	i.pool = worker.NewDynamicWorkerPool(i.workers, 256, 1*time.Second)
	return i
}

// Activate hands a URL to the worker pool and returns immediately. A URL that parses and matches the link name
// becomes a command on the router's inbox; anything else is logged and dropped.
//
// Parameters:
//   - raw: the URL
func (i *Intake) Activate(raw string) {
	i.mu.Lock()
	id := i.nextID
	i.nextID++
	i.lastURL = raw
	i.mu.Unlock()

	i.wg.Add(1)
	i.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			defer i.wg.Done()
			params, err := Parse(raw, i.linkName)
			if err != nil {
				i.logger.Printf("[DeepLink] %v", err)
				return nil, err
			}
			cmd := command_router.ParseCommand(params)
			i.logger.Printf("[DeepLink] activated %s", cmd)
			i.router.Submit(cmd)
			return cmd, nil
		},
	})
}

// Wait blocks until every activation submitted so far has been parsed.
func (i *Intake) Wait() {
	i.wg.Wait()
}

// LastURL returns the most recently activated URL.
//
// Returns:
//   - string: the URL, or "" if none
func (i *Intake) LastURL() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastURL
}
