package rotation_driver

import (
	"slices"
	"sync"
)

// Lease is a claim on a driver's external-control lock. The driver does not write the camera while
// any lease is outstanding. Release is idempotent, so owners can release on every exit path.
type Lease struct {
	owner   string
	release func()
	once    *sync.Once
}

// Owner returns the name the lease was acquired under.
//
// Returns:
//   - string: the owner name
func (l *Lease) Owner() string {
	if l == nil {
		return ""
	}
	return l.owner
}

// Release gives the lease back. Calling it more than once, or on a nil lease, does nothing.
func (l *Lease) Release() {
	if l == nil {
		return
	}
	l.once.Do(l.release)
}

type leaseSet struct {
	mu   *sync.Mutex
	next uint64
	held map[uint64]string
}

func newLeaseSet() *leaseSet {
	return &leaseSet{
		mu:   &sync.Mutex{},
		held: make(map[uint64]string),
	}
}

func (s *leaseSet) acquire(owner string) *Lease {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.held[id] = owner
	return &Lease{
		owner: owner,
		once:  &sync.Once{},
		release: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.held, id)
		},
	}
}

func (s *leaseSet) locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held) > 0
}

func (s *leaseSet) owners() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.held))
	for _, o := range s.held {
		out = append(out, o)
	}
	slices.Sort(out)
	return out
}
