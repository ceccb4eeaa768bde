// Command scan sends one image to the detection service and prints the
// detected cards.
//
//	scan [-url base] [-q] [-v] [-version] <image>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/cardscan/internal/config"
	"github.com/JaimeStill/cardscan/internal/infrastructure"
	"github.com/JaimeStill/cardscan/internal/intake"
	"github.com/JaimeStill/cardscan/internal/render"
	"github.com/JaimeStill/cardscan/pkg/formatting"
	"github.com/JaimeStill/cardscan/pkg/notify"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("url", "", "Detection service base URL (default from config)")
	quiet := fs.Bool("q", false, "Quiet mode (only print results)")
	verbose := fs.Bool("v", false, "Verbose mode (debug logging to stderr)")
	showVersion := fs.Bool("version", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: scan [flags] <image>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Fprintf(stdout, "scan %s\n", version)
		return 0
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	if *baseURL != "" {
		cfg.Detection.BaseURL = *baseURL
		if err := cfg.Detection.Finalize(nil); err != nil {
			fmt.Fprintf(stderr, "config: %v\n", err)
			return 1
		}
	}

	stderr = &lockedWriter{w: stderr}

	infra := infrastructure.New(cfg, infrastructure.Options{
		Logger: newLogger(stderr, *quiet, *verbose),
		Sinks:  reporter(stderr, *quiet),
	})
	defer infra.Notifier.Stop()
	defer infra.Controller.Close()

	if err := scan(ctx, infra, fs.Arg(0), stdout, stderr, *verbose); err != nil {
		infra.Logger.Debug("scan failed", "error", err)
		return 1
	}
	return 0
}

func scan(ctx context.Context, infra *infrastructure.Infrastructure, path string, stdout, stderr io.Writer, verbose bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "read %s: %v\n", path, err)
		return err
	}

	name := filepath.Base(path)
	file := intake.File{
		Name:        name,
		ContentType: intake.DetectContentType(name, data),
		Data:        data,
	}

	// health only warns and is not cut short by a rejected file
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		infra.Controller.CheckHealth(ctx)
		return nil
	})
	g.Go(func() error {
		pending, err := infra.Controller.Select(file)
		if err != nil {
			return err
		}
		preview, err := pending.Wait(gctx)
		if err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(stderr, "selected %s (%s, %s) preview %s\n",
				preview.Name, preview.ContentType, formatting.FormatBytes(preview.Size, 1), preview.ID)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	sub, err := infra.Controller.Submit()
	if err != nil {
		return err
	}

	outcome, err := sub.Wait(ctx)
	if err != nil {
		return err
	}
	if outcome.Err != nil {
		return outcome.Err
	}
	if outcome.Model == nil {
		return errors.New("no result")
	}

	return render.WriteText(stdout, *outcome.Model)
}

func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	if quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// reporter prints every notification on its own line. Errors are printed
// even in quiet mode.
func reporter(w io.Writer, quiet bool) []notify.Sink {
	return []notify.Sink{notify.SinkFunc(func(t notify.Toast) {
		if quiet && t.Severity != notify.Error {
			return
		}
		fmt.Fprintf(w, "[%s] %s\n", t.Severity, t.Message)
	})}
}

// lockedWriter serializes writes from the logger and notification sink.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
