package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/JaimeStill/cardscan/internal/intake"
	"github.com/JaimeStill/cardscan/internal/submission"
	"github.com/JaimeStill/cardscan/pkg/formatting"
	"github.com/JaimeStill/cardscan/pkg/notify"
	"github.com/JaimeStill/cardscan/pkg/web"
)

// page is the data behind index.html.
type page struct {
	submission.View
	Notification *notify.Toast
	MaxSize      string
	Refresh      bool
}

// A page load re-checks the detection service at most once per
// healthRecheck, and waits up to healthGrace for the outcome so a fresh
// warning renders with the page that triggered it.
const (
	healthRecheck = 30 * time.Second
	healthGrace   = 250 * time.Millisecond
)

type healthGate struct {
	mu   sync.Mutex
	last time.Time
}

// due claims the next health check when the previous one is stale.
func (g *healthGate) due(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.last.IsZero() && now.Sub(g.last) < healthRecheck {
		return false
	}
	g.last = now
	return true
}

type handler struct {
	templates   *web.TemplateSet
	controller  *submission.Controller
	notifier    *notify.Notifier
	maxFileSize int64
	logger      *slog.Logger
	health      healthGate
}

// checkHealth runs outside the request; the client bounds its duration.
func (h *handler) checkHealth(r *http.Request) {
	if !h.health.due(time.Now()) {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.controller.CheckHealth(context.WithoutCancel(r.Context()))
	}()

	timer := time.NewTimer(healthGrace)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
	case <-r.Context().Done():
	}
}

func (h *handler) page(w http.ResponseWriter, r *http.Request) {
	h.checkHealth(r)

	view := h.controller.Snapshot()
	data := &page{
		View:    view,
		MaxSize: formatting.FormatBytes(h.maxFileSize, 0),
		Refresh: view.InFlight,
	}
	if toast, ok := h.notifier.Current(); ok {
		data.Notification = &toast
	}

	if err := h.templates.Render(w, http.StatusOK, layout, indexView, data); err != nil {
		h.logger.Error("render page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *handler) selectFile(w http.ResponseWriter, r *http.Request) {
	f, err := intake.ReadUpload(w, r, h.maxFileSize)
	switch {
	case errors.Is(err, intake.ErrNoUpload):
		h.notifier.Notify(submission.MsgSelectFirst, notify.Warning)
	case errors.Is(err, intake.ErrTooLarge):
		h.controller.Reject(err)
	case err != nil:
		h.logger.Error("read upload", "error", err)
		h.notifier.Notify(err.Error(), notify.Error)
	default:
		if pending, err := h.controller.Select(f); err == nil {
			if _, err := pending.Wait(r.Context()); err != nil {
				h.logger.Info("preview not ready", "error", err)
			}
		}
	}
	h.back(w, r)
}

func (h *handler) clear(w http.ResponseWriter, r *http.Request) {
	h.controller.Clear()
	h.back(w, r)
}

// Submit failures are already reported through the notifier.
func (h *handler) submit(w http.ResponseWriter, r *http.Request) {
	if _, err := h.controller.Submit(); err != nil {
		h.logger.Info("submit refused", "error", err)
	}
	h.back(w, r)
}

func (h *handler) back(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.templates.BasePath()+"/", http.StatusSeeOther)
}
