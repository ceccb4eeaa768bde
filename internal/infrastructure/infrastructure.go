// Package infrastructure assembles the page-lifetime systems every module
// shares: lifecycle coordination, logging, the notifier, the detection
// client, the file intake and the submission controller.
package infrastructure

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/JaimeStill/cardscan/internal/config"
	"github.com/JaimeStill/cardscan/internal/detection"
	"github.com/JaimeStill/cardscan/internal/intake"
	"github.com/JaimeStill/cardscan/internal/submission"
	"github.com/JaimeStill/cardscan/pkg/lifecycle"
	"github.com/JaimeStill/cardscan/pkg/notify"
)

// Infrastructure holds the systems shared by the API and app modules.
type Infrastructure struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Notifier   *notify.Notifier
	Detection  *detection.Client
	Intake     *intake.Intake
	Controller *submission.Controller
}

// Options overrides defaults in New. Zero values keep the defaults.
type Options struct {
	Logger     *slog.Logger
	HTTPClient *http.Client
	Sinks      []notify.Sink
}

// New creates an Infrastructure from cfg. Nothing talks to the network
// until Start.
func New(cfg *config.Config, opts Options) *Infrastructure {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	notifier := notify.New(cfg.Client.NotifyDurationValue(), logger, opts.Sinks...)
	client := detection.New(&cfg.Detection, opts.HTTPClient, logger)
	in := intake.New(cfg.Client.MaxFileSizeBytes(), logger)

	return &Infrastructure{
		Lifecycle:  lifecycle.New(),
		Logger:     logger,
		Notifier:   notifier,
		Detection:  client,
		Intake:     in,
		Controller: submission.New(in, client, notifier, logger),
	}
}

// Start registers the startup health check and the shutdown hooks.
// A failed check only raises a warning; the page stays usable.
func (i *Infrastructure) Start() {
	i.Lifecycle.OnStartup("detection health", func(ctx context.Context) error {
		_, err := i.Controller.CheckHealth(ctx)
		return err
	})

	i.Lifecycle.OnShutdown(func() {
		i.Controller.Close()
		i.Notifier.Stop()
	})
}
