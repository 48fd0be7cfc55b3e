// Package upstream is the HTTP client for the remote warehouse API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
	"time"

	"warehouse-dashboard/internal/auth"
	"warehouse-dashboard/internal/metrics"
)

const maxErrorBody = 64 << 10

// DeniedFunc runs once per 403 before ErrSessionExpired is returned.
type DeniedFunc func(ctx context.Context)

// Client calls the warehouse API with the caller's bearer token.
//
// There is no retry, dedupe or caching. Concurrent 403s each invoke the denial hook; the
// hook decides which of them wins.
type Client struct {
	baseURL  string
	http     *http.Client
	onDenied DeniedFunc
	metrics  *metrics.Metrics
	log      *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets a per-request deadline; zero keeps none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// OnDenied installs the 403 hook. Call before serving traffic.
func (c *Client) OnDenied(fn DeniedFunc) {
	c.onDenied = fn
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	// anonymous requests carry no bearer token and bypass the 403 hook.
	anonymous bool
}

func jsonBody(v any) (io.Reader, string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrRequestSetup, err)
	}
	return bytes.NewReader(b), "application/json", nil
}

// FilePart is an optional file attached to a multipart call.
type FilePart struct {
	Name    string
	Content io.Reader
}

// multipartBody encodes dto as a JSON part named field plus an optional "file" part.
func multipartBody(field string, dto any, file *FilePart) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	b, err := json.Marshal(dto)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrRequestSetup, err)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q`, field))
	h.Set("Content-Type", "application/json")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrRequestSetup, err)
	}
	if _, err := part.Write(b); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrRequestSetup, err)
	}

	if file != nil && file.Content != nil {
		fw, err := w.CreateFormFile("file", file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrRequestSetup, err)
		}
		if _, err := io.Copy(fw, file.Content); err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrRequestSetup, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrRequestSetup, err)
	}
	return &buf, w.FormDataContentType(), nil
}

// formBody encodes flat form fields plus an optional "file" part.
func formBody(fields url.Values, file *FilePart) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range fields[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("%w: %w", ErrRequestSetup, err)
			}
		}
	}

	if file != nil && file.Content != nil {
		fw, err := w.CreateFormFile("file", file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrRequestSetup, err)
		}
		if _, err := io.Copy(fw, file.Content); err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrRequestSetup, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrRequestSetup, err)
	}
	return &buf, w.FormDataContentType(), nil
}

type reply struct {
	body        []byte
	contentType string
}

// do sends r and returns the raw body of a 2xx reply.
func (c *Client) do(ctx context.Context, r request) (reply, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return reply{}, fmt.Errorf("%w: %w", ErrRequestSetup, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	} else if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !r.anonymous {
		if tok := auth.Token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.UpstreamStatus(0)
		return reply{}, fmt.Errorf("%w: %w", ErrNoResponse, err)
	}
	defer resp.Body.Close()
	c.metrics.UpstreamStatus(resp.StatusCode)

	if resp.StatusCode == http.StatusForbidden && !r.anonymous {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		c.log.InfoContext(ctx, "upstream denied token", "method", r.method, "path", r.path)
		if c.onDenied != nil {
			c.onDenied(ctx)
		}
		return reply{}, ErrSessionExpired
	}

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return reply{}, &StatusError{Status: resp.StatusCode, Message: errorMessage(b)}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return reply{}, fmt.Errorf("%w: %w", ErrNoResponse, err)
	}
	return reply{body: b, contentType: resp.Header.Get("Content-Type")}, nil
}

// doJSON is do plus decoding of the reply into out. An empty body leaves out untouched.
func (c *Client) doJSON(ctx context.Context, r request, out any) error {
	rep, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(rep.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(rep.body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, request{method: http.MethodGet, path: path}, out)
}

func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	body, ct, err := jsonBody(in)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, request{method: method, path: path, body: body, contentType: ct}, out)
}

func (c *Client) sendMultipart(ctx context.Context, method, path, field string, dto any, file *FilePart, out any) error {
	body, ct, err := multipartBody(field, dto, file)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, request{method: method, path: path, body: body, contentType: ct}, out)
}

func (c *Client) sendForm(ctx context.Context, method, path string, fields url.Values, file *FilePart, out any) error {
	body, ct, err := formBody(fields, file)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, request{method: method, path: path, body: body, contentType: ct}, out)
}

func (c *Client) remove(ctx context.Context, path string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: path})
	return err
}

func errorMessage(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ""
	}
	var withMessage struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &withMessage) == nil {
		if withMessage.Message != "" {
			return withMessage.Message
		}
		if withMessage.Error != "" {
			return withMessage.Error
		}
	}
	var s string
	if json.Unmarshal(b, &s) == nil {
		return s
	}
	return string(b)
}

// unquote strips a JSON string encoding when the reply is one.
func unquote(b []byte) string {
	b = bytes.TrimSpace(b)
	var s string
	if len(b) > 0 && b[0] == '"' && json.Unmarshal(b, &s) == nil {
		return strings.TrimSpace(s)
	}
	return string(b)
}

// IsSessionExpired is errors.Is(err, ErrSessionExpired).
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}
