package scheduler

type stepKind int

const (
	stepDo stepKind = iota
	stepYield
	stepWait
	stepUntil
	stepTween
	stepPoll
)

type step struct {
	kind stepKind

	do   func()
	pred func() bool

	seconds  float32
	interval float32

	ease  Easing
	apply func(t float32)

	onTimeout func()
}

// Sequence is a Task built from an ordered list of steps.
// Instantaneous steps (Do) run back-to-back within one resume. Suspension steps (Yield, Wait, Until,
// Tween, Poll) are entered in the resume that reaches them and only make progress on later resumes,
// so the delta time of the frame in which a suspension step is entered is never counted against it.
type Sequence struct {
	name  string
	steps []step

	index   int
	entered bool

	elapsed float32
	since   float32

	cancelled bool
	finished  bool
}

var _ Task = &Sequence{}

// NewSequence creates an empty Sequence.
//
// Parameters:
//   - name: label used in logs and tests
//
// Returns:
//   - *Sequence: the new sequence
func NewSequence(name string) *Sequence {
	return &Sequence{name: name}
}

// Name returns the sequence label.
func (s *Sequence) Name() string {
	return s.name
}

// Do appends an instantaneous step.
//
// Parameters:
//   - fn: the function to run
//
// Returns:
//   - *Sequence: the sequence, for chaining
func (s *Sequence) Do(fn func()) *Sequence {
	s.steps = append(s.steps, step{kind: stepDo, do: fn})
	return s
}

// Yield appends a step that suspends until the next frame.
//
// Returns:
//   - *Sequence: the sequence, for chaining
func (s *Sequence) Yield() *Sequence {
	s.steps = append(s.steps, step{kind: stepYield})
	return s
}

// Wait appends a step that suspends for at least the given number of seconds of frame time.
//
// Parameters:
//   - seconds: the delay
//
// Returns:
//   - *Sequence: the sequence, for chaining
func (s *Sequence) Wait(seconds float32) *Sequence {
	s.steps = append(s.steps, step{kind: stepWait, seconds: seconds})
	return s
}

// Until appends a step that suspends until pred returns true. pred is checked when the step is entered
// and once per frame afterwards.
//
// Parameters:
//   - pred: the condition to wait for
//
// Returns:
//   - *Sequence: the sequence, for chaining
func (s *Sequence) Until(pred func() bool) *Sequence {
	s.steps = append(s.steps, step{kind: stepUntil, pred: pred})
	return s
}

// Tween appends a timed interpolation. On each frame after entry the elapsed time grows by dt and
// apply receives ease(elapsed / duration) clamped to [0, 1]. The frame in which elapsed reaches
// duration applies exactly ease(1) and the sequence continues with the next step in that same frame.
//
// Parameters:
//   - duration: seconds the tween lasts
//   - ease: easing curve (nil means Linear)
//   - apply: receives the eased progress
//
// Returns:
//   - *Sequence: the sequence, for chaining
func (s *Sequence) Tween(duration float32, ease Easing, apply func(t float32)) *Sequence {
	if ease == nil {
		ease = Linear
	}
	s.steps = append(s.steps, step{kind: stepTween, seconds: duration, ease: ease, apply: apply})
	return s
}

// Poll appends a step that checks pred on entry and then every interval seconds. When pred returns
// true the sequence continues. When timeout seconds pass without success, onTimeout runs and the
// sequence ends without running its remaining steps.
//
// Parameters:
//   - interval: seconds between checks
//   - timeout: seconds before giving up
//   - pred: the condition to poll, nil counts as satisfied
//   - onTimeout: called once on timeout (may be nil)
//
// Returns:
//   - *Sequence: the sequence, for chaining
func (s *Sequence) Poll(interval, timeout float32, pred func() bool, onTimeout func()) *Sequence {
	s.steps = append(s.steps, step{kind: stepPoll, interval: interval, seconds: timeout, pred: pred, onTimeout: onTimeout})
	return s
}

// Cancel stops the sequence before its next step runs. Steps already executed are not undone.
func (s *Sequence) Cancel() {
	s.cancelled = true
}

// Cancelled reports whether Cancel was called.
func (s *Sequence) Cancelled() bool {
	return s.cancelled
}

// Done reports whether the sequence has run to completion or was cancelled.
func (s *Sequence) Done() bool {
	return s.finished || s.cancelled
}

// Step implements Task.
func (s *Sequence) Step(dt float32) bool {
	for s.index < len(s.steps) {
		if s.cancelled {
			return true
		}
		st := &s.steps[s.index]
		switch st.kind {
		case stepDo:
			if st.do != nil {
				st.do()
			}
			s.next()

		case stepYield:
			if !s.entered {
				s.entered = true
				return false
			}
			s.next()

		case stepWait:
			if !s.entered {
				s.entered = true
				s.elapsed = 0
				return false
			}
			s.elapsed += dt
			if s.elapsed < st.seconds {
				return false
			}
			s.next()

		case stepUntil:
			if st.pred == nil || st.pred() {
				s.next()
				continue
			}
			s.entered = true
			return false

		case stepTween:
			if !s.entered {
				s.entered = true
				s.elapsed = 0
				return false
			}
			s.elapsed += dt
			t := float32(1)
			if st.seconds > 0 && s.elapsed < st.seconds {
				t = s.elapsed / st.seconds
			}
			st.apply(st.ease(t))
			if t < 1 {
				return false
			}
			s.next()

		case stepPoll:
			if !s.entered {
				if st.pred == nil || st.pred() {
					s.next()
					continue
				}
				s.entered = true
				s.elapsed = 0
				s.since = 0
				return false
			}
			s.elapsed += dt
			s.since += dt
			if s.since >= st.interval {
				s.since = 0
				if st.pred() {
					s.next()
					continue
				}
			}
			if s.elapsed >= st.seconds {
				if st.onTimeout != nil {
					st.onTimeout()
				}
				s.finished = true
				return true
			}
			return false
		}
	}
	s.finished = true
	return true
}

// next advances to the following step and clears per-step state.
func (s *Sequence) next() {
	s.index++
	s.entered = false
	s.elapsed = 0
	s.since = 0
}
