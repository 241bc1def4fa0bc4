// Package upload sends an encoded asset to the portal as a multipart form.
// Its retry policy is independent from the re-encode search: one retry
// after a fixed delay.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/AnyUserName/newsimg-cli/internal/logging"
)

const (
	DefaultFieldName  = "file"
	DefaultRetryDelay = 2 * time.Second
	DefaultTimeout    = 60 * time.Second
	maxResponseBytes  = 1 << 20
)

// Config holds the transport settings.
type Config struct {
	URL        string
	FieldName  string
	RetryDelay time.Duration
	Timeout    time.Duration
	Token      string
}

// File is the payload for one upload.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Response is the server reply to a successful upload.
type Response struct {
	Status int
	Body   []byte
}

// StatusError is a non-2xx reply.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload: server returned %d: %s", e.Status, e.Body)
}

// Client uploads files. It is safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

// New creates a client, filling unset config fields with defaults.
func New(cfg Config, httpClient *http.Client, log *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("upload: url is required")
	}
	if cfg.FieldName == "" {
		cfg.FieldName = DefaultFieldName
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient, log: logging.OrDiscard(log)}, nil
}

// Upload posts f, reporting progress in percent (0..100, never going
// backwards, 100 on success). A transport error or 5xx is retried once
// after the configured delay; 4xx replies are returned immediately.
func (c *Client) Upload(ctx context.Context, f File, progress func(percent int)) (*Response, error) {
	body, contentType, err := c.encodeForm(f)
	if err != nil {
		return nil, err
	}
	report := newReporter(progress)

	attempt := 0
	op := func() (*Response, error) {
		attempt++
		resp, err := c.post(ctx, body, contentType, report)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && se.Status < 500 {
				return nil, backoff.Permanent(err)
			}
			c.log.Warn("upload attempt failed", "file", f.Name, "attempt", attempt, "err", err)
			return nil, err
		}
		return resp, nil
	}

	resp, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.cfg.RetryDelay)),
		backoff.WithMaxTries(2),
	)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", f.Name, err)
	}
	report.done()
	return resp, nil
}

func (c *Client) encodeForm(f File) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, c.cfg.FieldName, f.Name))
	ct := f.MIME
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, "", fmt.Errorf("write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func (c *Client) post(ctx context.Context, body []byte, contentType string, report *reporter) (*Response, error) {
	reader := &progressReader{r: bytes.NewReader(body), total: int64(len(body)), report: report}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, reader)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", contentType)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return &Response{Status: resp.StatusCode, Body: data}, nil
}
