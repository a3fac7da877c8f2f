// Package status carries short user-facing feedback ("Calibrated!", "Switched to Touch Control")
// from the camera components to whatever displays it.
package status

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/muesli/termenv"
)

// Kind classifies a status message.
type Kind int

const (
	Info Kind = iota
	Success
	Failure
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "info"
	}
}

// Message is a single status update.
type Message struct {
	Kind Kind
	Text string
}

// Sink receives status messages. Implementations must be safe to call from the frame thread.
type Sink interface {
	// Show displays a status message.
	//
	// Parameters:
	//   - kind: how the message should be presented
	//   - text: the message text
	Show(kind Kind, text string)
}

// Nop discards every message.
type Nop struct{}

// Show implements Sink.
func (Nop) Show(Kind, string) {}

// Console writes status messages to a terminal, coloured by kind.
type Console struct {
	mu  *sync.Mutex
	out *termenv.Output
}

var _ Sink = &Console{}

// NewConsole creates a Console writing to w. Colours degrade to plain text when w is not a terminal.
//
// Parameters:
//   - w: the destination writer
//
// Returns:
//   - *Console: the console sink
func NewConsole(w io.Writer) *Console {
	return &Console{
		mu:  &sync.Mutex{},
		out: termenv.NewOutput(w),
	}
}

// Show implements Sink.
func (c *Console) Show(kind Kind, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	style := c.out.String(text)
	switch kind {
	case Success:
		style = style.Foreground(c.out.Color("2")).Bold()
	case Failure:
		style = style.Foreground(c.out.Color("1")).Bold()
	default:
		style = style.Foreground(c.out.Color("6"))
	}
	fmt.Fprintln(c.out, style.String())
}

// Recorder keeps every message in memory.
type Recorder struct {
	mu       *sync.Mutex
	messages []Message
}

var _ Sink = &Recorder{}

// NewRecorder creates an empty Recorder.
//
// Returns:
//   - *Recorder: the recorder
func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}}
}

// Show implements Sink.
func (r *Recorder) Show(kind Kind, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Kind: kind, Text: text})
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.messages)
}

// Texts returns the recorded message texts in order.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.messages))
	for _, m := range r.messages {
		out = append(out, m.Text)
	}
	return out
}
