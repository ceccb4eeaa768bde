// Package submission coordinates the client's UI state machine:
// idle, file selected, submitting, and results or error shown.
//
// The Controller owns the UI state and drives the intake, the detection
// client, the renderer and the notifier. Every mutation happens under its
// mutex; the network round trip runs on its own goroutine and reports back
// through complete, which discards outcomes that a Clear has made stale.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/cardscan/internal/detection"
	"github.com/JaimeStill/cardscan/internal/intake"
	"github.com/JaimeStill/cardscan/internal/render"
	"github.com/JaimeStill/cardscan/pkg/formatting"
	"github.com/JaimeStill/cardscan/pkg/notify"
)

// User-facing messages.
const (
	MsgSelectFirst   = "Please select an image first"
	MsgInProgress    = "A detection is already in progress"
	MsgNotAnImage    = "Please upload an image file"
	MsgDetectFailed  = "Failed to detect credit card"
	MsgAPIConnection = "API connection failed"
)

// Detector is the remote detection service.
type Detector interface {
	Detect(ctx context.Context, u detection.Upload) (*detection.Result, error)
	Health(ctx context.Context) (*detection.Health, error)
}

// Notifier displays transient messages.
type Notifier interface {
	Notify(message string, severity notify.Severity)
}

// Controller is the page-lifetime owner of the client state.
type Controller struct {
	mu       sync.Mutex
	state    State
	epoch    uint64
	inFlight *Submission
	results  *render.Model
	errMsg   string
	closed   bool

	intake   *intake.Intake
	detector Detector
	notifier Notifier
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Controller in the Idle state.
func New(in *intake.Intake, detector Detector, notifier Notifier, logger *slog.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		state:    Idle,
		intake:   in,
		detector: detector,
		notifier: notifier,
		logger:   logger.With("system", "submission"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// State returns the current UI state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CanSubmit is true iff a file is held and no submission is in flight.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmit()
}

func (c *Controller) canSubmit() bool {
	return !c.closed && c.inFlight == nil && c.intake.Held()
}

// Select validates f and makes it the held file. A rejected file leaves the
// state and the previously held file untouched and is reported through the
// notifier.
func (c *Controller) Select(f intake.File) (*intake.Pending, error) {
	c.mu.Lock()

	pending, err := c.intake.Select(f)
	if err != nil {
		c.mu.Unlock()
		c.Reject(err)
		return nil, err
	}

	prev := c.state
	next, _ := Transition(prev, EventSelected)
	if next == FileSelected {
		c.results = nil
		c.errMsg = ""
	}
	c.state = next
	c.mu.Unlock()

	c.logger.Info("state", "event", EventSelected, "from", prev, "to", next, "file", f.Name)
	return pending, nil
}

// Reject reports a file that failed validation, including one cut off at
// the upload limit before it reached the intake. State is unchanged.
func (c *Controller) Reject(err error) {
	c.logger.Info("state", "event", EventRejected, "current", c.State(), "error", err)
	c.notifier.Notify(c.rejectionMessage(err), notify.Error)
}

// Clear drops the held file and returns to Idle from any state, hiding
// results. An in-flight request is not cancelled; its outcome is discarded
// when it arrives.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.intake.Clear()
	prev := c.state
	c.state, _ = Transition(prev, EventCleared)
	c.results = nil
	c.errMsg = ""
	c.epoch++

	c.logger.Info("state", "event", EventCleared, "from", prev, "to", c.state)
}

// Submit sends the held file to the detection service. Without a held file
// it is a no-op that raises a warning and returns ErrNoFile.
func (c *Controller) Submit() (*Submission, error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}

	file, ok := c.intake.Current()
	if !ok {
		c.mu.Unlock()
		c.notifier.Notify(MsgSelectFirst, notify.Warning)
		return nil, ErrNoFile
	}

	if c.inFlight != nil {
		c.mu.Unlock()
		c.notifier.Notify(MsgInProgress, notify.Warning)
		return nil, ErrInFlight
	}

	prev := c.state
	next, err := Transition(prev, EventSubmitted)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	c.state = next
	c.results = nil
	c.errMsg = ""

	sub := newSubmission(c.epoch, file.Name)
	c.inFlight = sub
	ctx := c.ctx
	c.mu.Unlock()

	c.logger.Info("state",
		"event", EventSubmitted,
		"from", prev,
		"to", next,
		"submission", sub.ID,
		"file", file.Name,
	)

	go c.run(ctx, sub, file)
	return sub, nil
}

// CheckHealth queries the detection service. Any outcome other than a
// healthy status raises a warning; nothing else is gated on it. The report
// is returned whenever the service answered.
func (c *Controller) CheckHealth(ctx context.Context) (*detection.Health, error) {
	h, err := c.detector.Health(ctx)
	if err != nil {
		c.logger.Warn("health check failed", "error", err)
		c.notifier.Notify(MsgAPIConnection, notify.Warning)
		return nil, err
	}
	if !h.Healthy() {
		c.logger.Warn("detection service not healthy", "status", h.Status)
		c.notifier.Notify(fmt.Sprintf("Detection service reported status %q", h.Status), notify.Warning)
		return h, fmt.Errorf("%w: status %q", detection.ErrUnhealthy, h.Status)
	}

	c.logger.Info("detection service healthy", "model", h.Model)
	return h, nil
}

// Snapshot returns a consistent view of the client state.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:     c.state,
		CanSubmit: c.canSubmit(),
		InFlight:  c.inFlight != nil,
		Results:   c.results,
		Error:     c.errMsg,
	}

	if f, ok := c.intake.Current(); ok {
		v.File = &FileInfo{
			Name:        f.Name,
			ContentType: f.ContentType,
			Size:        f.Size(),
			SizeLabel:   formatting.FormatBytes(f.Size(), 1),
		}
	}
	if p, ok := c.intake.Preview(); ok {
		v.Preview = &p
	}
	return v
}

// Close cancels any in-flight request and rejects further submissions.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	c.logger.Info("controller closed")
}

func (c *Controller) run(ctx context.Context, sub *Submission, f intake.File) {
	result, err := c.detector.Detect(ctx, detection.Upload{
		Name:        f.Name,
		ContentType: f.ContentType,
		Data:        f.Data,
	})
	c.complete(sub, result, err)
}

func (c *Controller) complete(sub *Submission, result *detection.Result, err error) {
	if err == nil && result == nil {
		err = fmt.Errorf("%w: empty result", detection.ErrMalformedResponse)
	}

	c.mu.Lock()

	c.inFlight = nil
	stale := sub.epoch != c.epoch
	closed := c.closed
	logger := c.logger.With("submission", sub.ID, "duration", time.Since(sub.StartedAt))

	var outcome Outcome
	outcome.Stale = stale
	outcome.Err = err

	var message string
	var severity notify.Severity

	switch {
	case closed && errors.Is(err, context.Canceled):
		logger.Info("submission cancelled")

	case err != nil:
		message = failureMessage(err)
		severity = notify.Error
		if stale {
			logger.Warn("stale submission failed", "error", err)
			break
		}
		c.state, _ = Transition(c.state, EventFailed)
		c.errMsg = message
		logger.Warn("state", "event", EventFailed, "to", c.state, "error", err)

	default:
		model := render.Render(*result)
		outcome.Result = result
		outcome.Model = &model
		if stale {
			logger.Info("stale submission discarded", "cards", result.NumCardsDetected)
			break
		}
		c.state, _ = Transition(c.state, EventSucceeded)
		c.results = &model
		message = fmt.Sprintf("Successfully detected %d card(s)", result.NumCardsDetected)
		severity = notify.Success
		logger.Info("state", "event", EventSucceeded, "to", c.state, "cards", result.NumCardsDetected)
	}
	c.mu.Unlock()

	if message != "" {
		c.notifier.Notify(message, severity)
	}
	sub.resolve(outcome)
}

func (c *Controller) rejectionMessage(err error) string {
	switch {
	case errors.Is(err, intake.ErrTooLarge):
		return "File size must be less than " + formatting.FormatBytes(c.intake.MaxSize(), 0)
	case errors.Is(err, intake.ErrNotAnImage):
		return MsgNotAnImage
	}
	return err.Error()
}

func failureMessage(err error) string {
	var serr *detection.ServerError
	if errors.As(err, &serr) {
		return detection.UserMessage(err, detection.GenericFailure)
	}
	return MsgDetectFailed
}

// FileInfo describes the held file without its content.
type FileInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	SizeLabel   string `json:"size_label"`
}

// View is a point-in-time copy of the client state.
type View struct {
	State     State           `json:"state"`
	CanSubmit bool            `json:"can_submit"`
	InFlight  bool            `json:"in_flight"`
	File      *FileInfo       `json:"file,omitempty"`
	Preview   *intake.Preview `json:"preview,omitempty"`
	Results   *render.Model   `json:"results,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Submission is the handle for one request to the detection service.
type Submission struct {
	ID        uuid.UUID
	File      string
	StartedAt time.Time

	epoch   uint64
	done    chan struct{}
	outcome Outcome
}

// Outcome is how a submission resolved. Stale is set when the file was
// cleared while the request was in flight; the outcome was not displayed.
type Outcome struct {
	Result *detection.Result
	Model  *render.Model
	Err    error
	Stale  bool
}

func newSubmission(epoch uint64, file string) *Submission {
	return &Submission{
		ID:        uuid.New(),
		File:      file,
		StartedAt: time.Now(),
		epoch:     epoch,
		done:      make(chan struct{}),
	}
}

func (s *Submission) resolve(o Outcome) {
	s.outcome = o
	close(s.done)
}

// Done is closed once the request resolves.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the request resolves or ctx ends.
func (s *Submission) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-s.done:
		return s.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
