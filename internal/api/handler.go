package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/cardscan/internal/detection"
	"github.com/JaimeStill/cardscan/internal/intake"
	"github.com/JaimeStill/cardscan/internal/submission"
	"github.com/JaimeStill/cardscan/pkg/handlers"
	"github.com/JaimeStill/cardscan/pkg/lifecycle"
	"github.com/JaimeStill/cardscan/pkg/middleware"
	"github.com/JaimeStill/cardscan/pkg/notify"
	"github.com/JaimeStill/cardscan/pkg/routes"
)

// StateResponse is the client state plus the visible notification, if any.
type StateResponse struct {
	submission.View
	Notification *notify.Toast `json:"notification,omitempty"`
}

// SubmitResponse identifies an accepted submission. With ?wait=true the
// state reflects the resolved outcome.
type SubmitResponse struct {
	Submission uuid.UUID     `json:"submission"`
	Stale      bool          `json:"stale,omitempty"`
	State      StateResponse `json:"state"`
}

// Handler serves the JSON API.
type Handler struct {
	controller  *submission.Controller
	notifier    *notify.Notifier
	lifecycle   *lifecycle.Coordinator
	cors        *middleware.CORSConfig
	maxFileSize int64
	logger      *slog.Logger
}

// NewHandler creates a Handler from the API runtime.
func NewHandler(rt *Runtime) *Handler {
	return &Handler{
		controller:  rt.Controller,
		notifier:    rt.Notifier,
		lifecycle:   rt.Lifecycle,
		cors:        rt.CORS,
		maxFileSize: rt.MaxFileSize,
		logger:      rt.Logger.With("handler", "client"),
	}
}

// Routes returns the API route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/state", Handler: h.State, OpenAPI: operations.State},
			{Method: "POST", Pattern: "/select", Handler: h.Select, OpenAPI: operations.Select},
			{Method: "POST", Pattern: "/clear", Handler: h.Clear, OpenAPI: operations.Clear},
			{Method: "POST", Pattern: "/submit", Handler: h.Submit, OpenAPI: operations.Submit},
			{Method: "GET", Pattern: "/health", Handler: h.Health, OpenAPI: operations.Health},
			{Method: "GET", Pattern: "/events", Handler: h.Events, OpenAPI: eventsOperation},
		},
	}
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.state())
}

// Select takes a multipart upload in field "file". A rejected file leaves
// the state untouched and answers with the mapped error status.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	f, err := intake.ReadUpload(w, r, h.maxFileSize)
	if err != nil {
		if errors.Is(err, intake.ErrTooLarge) {
			h.controller.Reject(err)
		}
		handlers.RespondError(w, h.logger, submission.MapHTTPStatus(err), err)
		return
	}

	pending, err := h.controller.Select(f)
	if err != nil {
		handlers.RespondError(w, h.logger, submission.MapHTTPStatus(err), err)
		return
	}

	// the preview is cheap; wait for it so the response can show it
	if _, err := pending.Wait(r.Context()); err != nil {
		h.logger.Info("preview not ready", "error", err)
	}

	handlers.RespondJSON(w, http.StatusOK, h.state())
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.controller.Clear()
	handlers.RespondJSON(w, http.StatusOK, h.state())
}

// Submit starts a detection for the held file and answers 202. With
// ?wait=true it blocks until the request resolves and answers 200.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sub, err := h.controller.Submit()
	if err != nil {
		handlers.RespondError(w, h.logger, submission.MapHTTPStatus(err), err)
		return
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if !wait {
		handlers.RespondJSON(w, http.StatusAccepted, SubmitResponse{
			Submission: sub.ID,
			State:      h.state(),
		})
		return
	}

	outcome, err := sub.Wait(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusGatewayTimeout, context.Cause(r.Context()))
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SubmitResponse{
		Submission: sub.ID,
		Stale:      outcome.Stale,
		State:      h.state(),
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health, err := h.controller.CheckHealth(r.Context())
	if health == nil {
		handlers.RespondError(w, h.logger, detection.MapHTTPStatus(err), err)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusServiceUnavailable
	}
	handlers.RespondJSON(w, status, health)
}

func (h *Handler) state() StateResponse {
	resp := StateResponse{View: h.controller.Snapshot()}
	if toast, ok := h.notifier.Current(); ok {
		resp.Notification = &toast
	}
	return resp
}
