// Package notify provides a latest-wins transient message display.
// Each call to Notify replaces the visible message and restarts its hide timer;
// there is no queue.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultDuration is how long a message stays visible after Notify.
const DefaultDuration = 3000 * time.Millisecond

// Severity tags a message for display.
type Severity string

const (
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Toast is the currently visible message.
type Toast struct {
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	ShownAt  time.Time `json:"shown_at"`
}

// Sink receives every message as it is shown. Sinks must not block.
type Sink interface {
	Show(t Toast)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(t Toast)

func (f SinkFunc) Show(t Toast) { f(t) }

// Notifier holds at most one visible Toast.
type Notifier struct {
	mu       sync.Mutex
	current  *Toast
	timer    *time.Timer
	seq      uint64
	duration time.Duration
	sinks    []Sink
	logger   *slog.Logger
}

// New creates a Notifier. A non-positive duration falls back to DefaultDuration.
func New(duration time.Duration, logger *slog.Logger, sinks ...Sink) *Notifier {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Notifier{
		duration: duration,
		sinks:    sinks,
		logger:   logger.With("system", "notify"),
	}
}

// Notify shows message immediately and schedules its hide after the
// configured duration, measured from this call.
func (n *Notifier) Notify(message string, severity Severity) {
	n.mu.Lock()

	toast := Toast{
		Message:  message,
		Severity: severity,
		ShownAt:  time.Now(),
	}

	n.seq++
	seq := n.seq
	n.current = &toast

	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.duration, func() {
		n.hide(seq)
	})

	sinks := n.sinks
	n.mu.Unlock()

	n.logger.Info("notification", "severity", string(severity), "message", message)

	for _, s := range sinks {
		s.Show(toast)
	}
}

// Current returns the visible toast, if any.
func (n *Notifier) Current() (Toast, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current == nil {
		return Toast{}, false
	}
	return *n.current, true
}

// Stop hides any visible toast and cancels the pending hide.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
}

// a timer that fires after being superseded must not hide the newer toast
func (n *Notifier) hide(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if seq != n.seq {
		return
	}
	n.current = nil
	n.timer = nil
}
