// Package hashapi is the client for the external hash service.
//
// Every call makes exactly one HTTP attempt and resolves to either a typed
// result or an *Error. Whether a response is a success or a failure is decided
// here, once, so callers never look at raw response bodies.
package hashapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	generatePath = "/generate-hash"
	verifyPath   = "/verify-hash"

	maxResponseBytes = 1 << 20
)

// Service is the hash service as the rest of the application sees it.
type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (HashResult, error)
	Verify(ctx context.Context, req VerifyRequest) (VerificationResult, error)
}

var _ Service = (*Client)(nil)

// Client calls the hash service over HTTP. It is safe for concurrent use and
// keeps no per-call state.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds each call. Zero means no bound beyond the caller's
// context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for per-call debug records.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient returns a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("hashapi: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("hashapi: base url %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate asks the service to hash req.Data with req.Algorithm.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (HashResult, error) {
	env, err := c.post(ctx, "generate", generatePath, req)
	if err != nil {
		return HashResult{}, err
	}
	return HashResult{Algorithm: env.Algorithm, HashValue: env.HashValue}, nil
}

// Verify asks the service whether req.HashValue is the digest of req.Data.
func (c *Client) Verify(ctx context.Context, req VerifyRequest) (VerificationResult, error) {
	env, err := c.post(ctx, "verify", verifyPath, req)
	if err != nil {
		return VerificationResult{}, err
	}
	return VerificationResult{IsValid: env.IsValid, Message: env.Message}, nil
}

// envelope is the union of every response shape the service produces.
type envelope struct {
	Success   *bool           `json:"success"`
	Message   string          `json:"message"`
	Algorithm string          `json:"algorithm"`
	HashValue string          `json:"hash_value"`
	IsValid   bool            `json:"is_valid"`
	Detail    json.RawMessage `json:"detail"`
}

func (c *Client) post(ctx context.Context, op, path string, body any) (*envelope, error) {
	start := time.Now()
	env, status, err := c.do(ctx, op, path, body)

	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		fields = append(fields, zap.Stringer("kind", apiErr.Kind), zap.String("message", apiErr.Message))
	}
	c.logger.Debug("hash service call", fields...)

	return env, err
}

func (c *Client) do(ctx context.Context, op, path string, body any) (*envelope, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, transport(op, "encode request", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, transport(op, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, transport(op, "hash service unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, transport(op, "read response", err)
	}

	env, err := decide(op, resp.StatusCode, raw)
	return env, resp.StatusCode, err
}

// decide turns a raw response into an envelope or an *Error.
//
// An explicit success:false wins over everything else. A non-2xx response
// is a rejection when it explains itself with a FastAPI-style detail and a
// transport fault when it does not.
func decide(op string, status int, raw []byte) (*envelope, error) {
	ok := status >= 200 && status < 300

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if !ok {
			return nil, transport(op, "unexpected response", fmt.Errorf("status %d", status))
		}
		return nil, transport(op, "malformed response", err)
	}

	if env.Success != nil && !*env.Success {
		return nil, rejected(op, env.Message)
	}
	if !ok {
		if detail := detailMessage(env.Detail); detail != "" {
			return nil, rejected(op, detail)
		}
		return nil, transport(op, "unexpected response", fmt.Errorf("status %d", status))
	}
	return &env, nil
}

// detailMessage flattens FastAPI's detail: either a string or a list of
// validation errors carrying msg.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(items))
	for _, it := range items {
		if it.Msg != "" {
			msgs = append(msgs, it.Msg)
		}
	}
	return strings.Join(msgs, "; ")
}
