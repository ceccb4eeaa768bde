package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// FileField is the multipart field name carrying the image.
const FileField = "file"

// RequestIDHeader correlates a detect call with server-side logs.
const RequestIDHeader = "X-Request-ID"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// maxErrorBody bounds how much of a failure response is read for its message.
const maxErrorBody = 64 << 10

// Client talks to the detection service.
type Client struct {
	http   *http.Client
	cfg    Config
	health singleflight.Group
	logger *slog.Logger
}

// New creates a Client. A nil httpClient uses a client with the configured
// request timeout.
func New(cfg *Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeoutDuration()}
	}
	return &Client{
		http:   httpClient,
		cfg:    *cfg,
		logger: logger.With("system", "detection"),
	}
}

// Detect posts u to the detect endpoint and decodes the result.
// Failures are *ServerError, ErrTransport or ErrMalformedResponse.
func (c *Client) Detect(ctx context.Context, u Upload) (*Result, error) {
	body, contentType, err := encodeUpload(u)
	if err != nil {
		return nil, fmt.Errorf("encode upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.cfg.DetectPath), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	logger := c.logger.With("request_id", requestID, "name", u.Name)
	logger.Info("detect request", "size", len(u.Data))

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error("detect transport failure", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := decodeServerError(resp)
		logger.Warn("detect failed", "status", resp.StatusCode, "message", serr.Message)
		return nil, serr
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Error("detect response undecodable", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if err := result.Validate(); err != nil {
		logger.Error("detect response invalid", "error", err)
		return nil, err
	}

	logger.Info("detect complete", "cards", result.NumCardsDetected)
	return &result, nil
}

// Health queries the health endpoint. Concurrent callers share one request,
// which runs detached from any caller and is bounded by the health timeout.
// A caller whose ctx ends stops waiting without failing the others.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	ch := c.health.DoChan("health", func() (any, error) {
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.HealthTimeoutDuration())
		defer cancel()
		return c.fetchHealth(checkCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("health check shared")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Health), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
	}
}

func (c *Client) fetchHealth(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(c.cfg.HealthPath), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &h, nil
}

// Validate checks the invariants a rendered result relies on.
func (r *Result) Validate() error {
	if r.NumCardsDetected < 0 {
		return fmt.Errorf("%w: negative card count %d", ErrMalformedResponse, r.NumCardsDetected)
	}
	if r.NumCardsDetected != len(r.Cards) {
		return fmt.Errorf("%w: num_cards_detected %d but %d cards",
			ErrMalformedResponse, r.NumCardsDetected, len(r.Cards))
	}
	for i, card := range r.Cards {
		if card.BBox.Width() < 0 || card.BBox.Height() < 0 {
			return fmt.Errorf("%w: card %d has inverted bbox %v", ErrMalformedResponse, i+1, card.BBox)
		}
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + path
}

func encodeUpload(u Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := u.Name
	if name == "" {
		name = "image"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(
		`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(FileField),
		quoteEscaper.Replace(name),
	))
	header.Set("Content-Type", u.ContentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(u.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

func decodeServerError(resp *http.Response) *ServerError {
	serr := &ServerError{Status: resp.StatusCode}

	var payload struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && json.Unmarshal(data, &payload) == nil {
		serr.Message = strings.TrimSpace(payload.Error)
	}
	return serr
}
