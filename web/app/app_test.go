package app_test

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/cardscan/internal/config"
	"github.com/JaimeStill/cardscan/internal/detection"
	"github.com/JaimeStill/cardscan/internal/infrastructure"
	"github.com/JaimeStill/cardscan/internal/submission"
	"github.com/JaimeStill/cardscan/pkg/module"
	"github.com/JaimeStill/cardscan/web/app"
)

const detectBody = `{
	"num_cards_detected": 1,
	"cards": [{
		"card_number": "4111111111111111",
		"is_valid": false,
		"cardholder_name": "JANE <DOE>",
		"expiry_date": null,
		"detection_confidence": 0.42,
		"bbox": [0, 0, 30, 20],
		"all_text": [{"text": "VISA", "confidence": 0.9}]
	}]
}`

type fixture struct {
	router  *module.Router
	infra   *infrastructure.Infrastructure
	release chan struct{}
	checks  *atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithHealth(t, detection.HealthyStatus)
}

// newFixtureWithHealth answers /health at once with status; /detect waits
// for release.
func newFixtureWithHealth(t *testing.T, status string) *fixture {
	t.Helper()

	release := make(chan struct{})
	checks := new(atomic.Int32)
	detector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			checks.Add(1)
			io.WriteString(w, `{"status": "`+status+`"}`)
			return
		}
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		io.WriteString(w, detectBody)
	}))
	t.Cleanup(detector.Close)

	cfg := &config.Config{}
	cfg.Detection.BaseURL = detector.URL
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("config: %v", err)
	}

	infra := infrastructure.New(cfg, infrastructure.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(infra.Notifier.Stop)
	t.Cleanup(infra.Controller.Close)

	m, err := app.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("module: %v", err)
	}

	router := module.NewRouter()
	router.Mount(m)
	return &fixture{router: router, infra: infra, release: release, checks: checks}
}

func (f *fixture) get(t *testing.T, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec.Code, rec.Body.String()
}

func (f *fixture) post(t *testing.T, req *http.Request) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("%s: status %d, want 303", req.URL.Path, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/app/" {
		t.Errorf("%s: redirect to %q, want /app/", req.URL.Path, loc)
	}
}

func (f *fixture) waitFor(t *testing.T, want submission.State) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for f.infra.Controller.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("state: got %s, want %s", f.infra.Controller.State(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func selectRequest(t *testing.T, name, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest("POST", "/app/select", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func assertContains(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("page missing %q", w)
		}
	}
}

func TestIdlePage(t *testing.T) {
	f := newFixture(t)

	status, body := f.get(t, "/app/")
	if status != http.StatusOK {
		t.Fatalf("status: got %d", status)
	}
	assertContains(t, body,
		"Credit Card Detection",
		`action="/app/select"`,
		`id="detect" disabled`,
		"Choose an image up to 16 MB",
	)
	if strings.Contains(body, "http-equiv") {
		t.Error("idle page should not refresh")
	}
}

func (f *fixture) waitChecks(t *testing.T, want int32) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for f.checks.Load() < want {
		if time.Now().After(deadline) {
			t.Fatalf("health checks: got %d, want %d", f.checks.Load(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPageLoadChecksHealth(t *testing.T) {
	f := newFixtureWithHealth(t, "degraded")

	f.get(t, "/app/")
	f.waitChecks(t, 1)

	deadline := time.Now().Add(5 * time.Second)
	for {
		if toast, ok := f.infra.Notifier.Current(); ok && strings.Contains(toast.Message, "degraded") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("degraded service raised no notification")
		}
		time.Sleep(5 * time.Millisecond)
	}

	_, body := f.get(t, "/app/")
	assertContains(t, body, "toast-warning", "degraded")
	f.get(t, "/app/")
	if n := f.checks.Load(); n != 1 {
		t.Errorf("health checks within the recheck window: got %d, want 1", n)
	}
}

func TestPageLoadHealthyNoToast(t *testing.T) {
	f := newFixture(t)

	f.get(t, "/app/")
	f.waitChecks(t, 1)

	_, body := f.get(t, "/app/")
	if strings.Contains(body, "toast-warning") {
		t.Error("healthy service should not raise a warning")
	}
}

func TestSubmitWithoutFile(t *testing.T) {
	f := newFixture(t)

	f.post(t, httptest.NewRequest("POST", "/app/submit", nil))

	_, body := f.get(t, "/app/")
	assertContains(t, body, "toast-warning", submission.MsgSelectFirst)
}

func TestSelectWithoutFile(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("POST", "/app/select", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	f.post(t, req)

	if s := f.infra.Controller.State(); s != submission.Idle {
		t.Errorf("state: got %s", s)
	}
}

func TestSelectRejected(t *testing.T) {
	f := newFixture(t)

	f.post(t, selectRequest(t, "doc.txt", "text/plain", []byte("hello")))

	_, body := f.get(t, "/app/")
	assertContains(t, body, "toast-error", submission.MsgNotAnImage)
	if s := f.infra.Controller.State(); s != submission.Idle {
		t.Errorf("state: got %s", s)
	}
}

func TestDetectionFlow(t *testing.T) {
	f := newFixture(t)

	f.post(t, selectRequest(t, "card.png", "image/png", []byte("abc")))

	_, body := f.get(t, "/app/")
	assertContains(t, body,
		`src="data:image/png;base64,YWJj"`,
		"card.png",
		`action="/app/clear"`,
	)
	if strings.Contains(body, `id="detect" disabled`) {
		t.Error("detect button should be enabled with a file held")
	}

	f.post(t, httptest.NewRequest("POST", "/app/submit", nil))

	_, body = f.get(t, "/app/")
	assertContains(t, body, `http-equiv="refresh"`, "Detecting...", `id="detect" disabled`)

	close(f.release)
	f.waitFor(t, submission.ResultsShown)

	_, body = f.get(t, "/app/")
	assertContains(t, body,
		"1 card(s) detected",
		"4111 1111 1111 1111",
		"badge-invalid",
		"42% Confidence",
		"JANE &lt;DOE&gt;",
		`class="missing">Not found`,
		"Width: 30, Height: 20",
		"&#34;VISA&#34;",
		"Successfully detected 1 card(s)",
	)

	f.post(t, httptest.NewRequest("POST", "/app/clear", nil))

	_, body = f.get(t, "/app/")
	if strings.Contains(body, "card(s) detected") || strings.Contains(body, "card.png") {
		t.Error("clear should hide results and the held file")
	}
}

func TestStaticAsset(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest("GET", "/app/static/app.css", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css") {
		t.Errorf("content-type: got %q", rec.Header().Get("Content-Type"))
	}
}

func TestNotFound(t *testing.T) {
	f := newFixture(t)

	status, body := f.get(t, "/app/nowhere")
	if status != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", status)
	}
	assertContains(t, body, "That page does not exist.", `href="/app/"`)
}
