// Package ai talks to the AI relay and applies its results to the document:
// selection rewrites for summarize, expand and improve, and ghost
// suggestions for autocomplete.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Op is one relay operation.
type Op string

const (
	OpSummarize    Op = "summarize"
	OpExpand       Op = "expand"
	OpImprove      Op = "improve"
	OpAutocomplete Op = "autocomplete"
)

// Ops lists every operation in menu order.
func Ops() []Op { return []Op{OpSummarize, OpExpand, OpImprove, OpAutocomplete} }

// Path is the relay endpoint for op, relative to the base URL.
func (o Op) Path() string { return "/ai/" + string(o) }

func (o Op) valid() bool {
	switch o {
	case OpSummarize, OpExpand, OpImprove, OpAutocomplete:
		return true
	}
	return false
}

// ParseOp accepts an operation name in any case.
func ParseOp(s string) (Op, error) {
	op := Op(strings.ToLower(strings.TrimSpace(s)))
	if !op.valid() {
		return "", fmt.Errorf("ai: unknown operation %q", s)
	}
	return op, nil
}

// ErrEmptyResult is returned when the relay reports success with no text.
var ErrEmptyResult = errors.New("AI request failed")

const defaultFailure = "AI request failed"

// RelayError is a failed relay call. Status is 0 when the request never got
// an HTTP response.
type RelayError struct {
	Op      Op
	Status  int
	Message string
	Err     error
}

func (e *RelayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ai %s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("ai %s: %s", e.Op, e.Message)
}

func (e *RelayError) Unwrap() error { return e.Err }

// Relay performs one operation on text and returns the result text.
type Relay interface {
	Do(ctx context.Context, op Op, text string) (string, error)
}

type request struct {
	Text string `json:"text"`
}

type response struct {
	Success bool   `json:"success"`
	Data    string `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Client is the HTTP relay client.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	log       *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each call. It replaces the timeout of the client's
// current http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithUserAgent sets the User-Agent header sent to the relay.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Do(ctx context.Context, op Op, text string) (string, error) {
	if !op.valid() {
		return "", fmt.Errorf("ai: unknown operation %q", op)
	}
	body, err := json.Marshal(request{Text: text})
	if err != nil {
		return "", fmt.Errorf("ai %s: encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+op.Path(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai %s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("ai relay unreachable", "op", op, "err", err)
		return "", &RelayError{Op: op, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.log.Warn("ai relay status", "op", op, "status", resp.StatusCode, "elapsed", time.Since(start))
		return "", &RelayError{Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("HTTP error %d", resp.StatusCode)}
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &RelayError{Op: op, Status: resp.StatusCode, Message: "invalid relay response", Err: err}
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = defaultFailure
		}
		return "", &RelayError{Op: op, Status: resp.StatusCode, Message: msg}
	}
	if out.Data == "" {
		return "", ErrEmptyResult
	}
	c.log.Debug("ai relay ok", "op", op, "in", len(text), "out", len(out.Data), "elapsed", time.Since(start))
	return out.Data, nil
}
