package deeplink

import "log"

type IntakeBuilderOption func(*Intake)

// WithLinkName sets the link name URLs must contain.
//
// Parameters:
//   - name: the link name
//
// Returns:
//   - IntakeBuilderOption: a function that sets the link name
func WithLinkName(name string) IntakeBuilderOption {
	return func(i *Intake) {
		if name != "" {
			i.linkName = name
		}
	}
}

// WithWorkers sets how many goroutines parse URLs.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - IntakeBuilderOption: a function that sets the worker count
func WithWorkers(n int) IntakeBuilderOption {
	return func(i *Intake) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithLogger sets the intake's logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - IntakeBuilderOption: a function that sets the logger
func WithLogger(l *log.Logger) IntakeBuilderOption {
	return func(i *Intake) {
		if l != nil {
			i.logger = l
		}
	}
}
