package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ArchiveDesk/internal/cli/metrics"
	"ArchiveDesk/internal/model"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Client — HTTP-клиент API архива. Все ответы приходят в конверте {status, message, data}.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.SugaredLogger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a per-request timeout on the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New создаёт клиента для baseURL вида http://host:port/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the API base without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// SetToken sets the bearer token; empty clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Get выполняет GET path?query и декодирует data в out (out может быть nil).
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Post sends payload as JSON.
func (c *Client) Post(ctx context.Context, path string, payload, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, payload, out)
}

// Put sends payload as JSON.
func (c *Client) Put(ctx context.Context, path string, payload, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, payload, out)
}

// Delete issues DELETE path.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// SendMultipart отправляет форму m методом method (POST или PUT).
func (c *Client) SendMultipart(ctx context.Context, method, path string, m *Multipart, out any) error {
	body, contentType, err := m.Encode()
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	reqID := req.Header.Get(RequestIDHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRequest(req.Method, 0, time.Since(start))
		c.logger.Debugw("api request failed",
			"method", req.Method, "url", req.URL.String(), "request_id", reqID, "error", err)
		return &Error{Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	metrics.ObserveRequest(req.Method, resp.StatusCode, time.Since(start))
	c.logger.Debugw("api request",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start),
	)
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	var env model.Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if decodeErr != nil {
			msg = strings.TrimSpace(string(raw))
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode envelope (status %d): %w", resp.StatusCode, decodeErr)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
