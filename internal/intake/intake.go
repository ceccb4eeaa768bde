// Package intake validates candidate image files and owns the single
// "currently selected file" slot together with its preview.
//
// Selecting a file replaces the held file immediately; the preview is derived
// on a separate goroutine and delivered through a Pending future. A newer
// Select or a Clear supersedes any derivation still in progress, so a late
// preview can never overwrite a newer selection.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/cardscan/pkg/formatting"
)

// DefaultMaxSize is the inclusive upper bound on file size: 16 MiB.
const DefaultMaxSize int64 = 16 * 1024 * 1024

// Intake holds at most one selected file.
type Intake struct {
	mu         sync.Mutex
	maxSize    int64
	current    *File
	preview    *Preview
	generation uint64
	logger     *slog.Logger
}

// New creates an Intake. A non-positive maxSize falls back to DefaultMaxSize.
func New(maxSize int64, logger *slog.Logger) *Intake {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Intake{
		maxSize: maxSize,
		logger:  logger.With("system", "intake"),
	}
}

// MaxSize returns the configured size limit in bytes.
func (i *Intake) MaxSize() int64 {
	return i.maxSize
}

// Validate checks size first, then declared media type.
func (i *Intake) Validate(f File) error {
	if f.Size() > i.maxSize {
		return fmt.Errorf("%w: %s exceeds %s",
			ErrTooLarge,
			formatting.FormatBytes(f.Size(), 1),
			formatting.FormatBytes(i.maxSize, 0),
		)
	}
	if !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
		return fmt.Errorf("%w: declared type %q", ErrNotAnImage, f.ContentType)
	}
	return nil
}

// Select validates f and, on success, replaces the held file and starts
// deriving its preview. On failure the held file is left untouched.
func (i *Intake) Select(f File) (*Pending, error) {
	if err := i.Validate(f); err != nil {
		i.logger.Warn("file rejected", "name", f.Name, "size", f.Size(), "error", err)
		return nil, err
	}

	i.mu.Lock()
	i.generation++
	gen := i.generation
	held := f
	i.current = &held
	i.preview = nil
	i.mu.Unlock()

	i.logger.Info("file selected", "name", f.Name, "type", f.ContentType, "size", f.Size())

	p := newPending()
	go i.derive(held, gen, p)
	return p, nil
}

// Clear drops the held file and invalidates any preview, including one still
// being derived. Safe to call when nothing is held.
func (i *Intake) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.current != nil {
		i.logger.Info("file cleared", "name", i.current.Name)
	}
	i.generation++
	i.current = nil
	i.preview = nil
}

// Current returns the held file.
func (i *Intake) Current() (File, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.current == nil {
		return File{}, false
	}
	return *i.current, true
}

// Held reports whether a file is selected.
func (i *Intake) Held() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.current != nil
}

// Preview returns the preview of the held file once derivation completed.
func (i *Intake) Preview() (Preview, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.preview == nil {
		return Preview{}, false
	}
	return *i.preview, true
}

// Valid reports whether p still belongs to the held file.
func (i *Intake) Valid(p Preview) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.current != nil && p.generation == i.generation
}

func (i *Intake) derive(f File, gen uint64, p *Pending) {
	preview := Preview{
		ID:          uuid.New(),
		Name:        f.Name,
		ContentType: f.ContentType,
		Size:        f.Size(),
		DataURI:     dataURI(f),
		generation:  gen,
	}

	i.mu.Lock()
	if gen != i.generation {
		i.mu.Unlock()
		i.logger.Debug("stale preview discarded", "name", f.Name)
		p.resolve(Preview{}, ErrSuperseded)
		return
	}
	i.preview = &preview
	i.mu.Unlock()

	p.resolve(preview, nil)
}

// Pending is the future for an in-progress preview derivation.
type Pending struct {
	done    chan struct{}
	preview Preview
	err     error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(preview Preview, err error) {
	p.preview = preview
	p.err = err
	close(p.done)
}

// Done is closed once the derivation completes or is superseded.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the preview is ready, superseded, or ctx ends.
func (p *Pending) Wait(ctx context.Context) (Preview, error) {
	select {
	case <-p.done:
		return p.preview, p.err
	case <-ctx.Done():
		return Preview{}, ctx.Err()
	}
}
