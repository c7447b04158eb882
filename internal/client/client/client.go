package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/expertconnect/internal/common"
	"github.com/dmitrijs2005/expertconnect/internal/logging"
	"github.com/dmitrijs2005/expertconnect/internal/netx"
)

// maxErrorBody bounds how much of a failed response is read for messages.
const maxErrorBody = 64 << 10

// Credentials supplies the bearer token. An empty token means the request is
// sent anonymously.
type Credentials interface {
	AccessToken(ctx context.Context) (string, error)
}

// Recorder observes finished requests. status is 0 when no response arrived.
type Recorder interface {
	RecordRequest(method, path string, status int, d time.Duration)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.rec = r }
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Client issues single-attempt JSON requests against the REST API.
type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
	log     logging.Logger
	rec     Recorder
	timeout time.Duration
}

func New(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		creds:   creds,
		http:    http.DefaultClient,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends body (if non-nil) as JSON and decodes a 2xx response into out
// (if non-nil). Failures are *APIError values or ErrNetwork wrappers.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target, err := netx.ResolveURL(c.baseURL, path, query)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s error: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s error: %w", method, path, err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.creds != nil {
		token, err := c.creds.AccessToken(ctx)
		if err != nil {
			return fmt.Errorf("credentials error: %w", err)
		}
		if token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(ctx, method, path, 0, elapsed, reqID)
		return fmt.Errorf("%w: %s %s: %w", common.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	c.observe(ctx, method, path, resp.StatusCode, elapsed, reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(method, path, resp.StatusCode, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s %s: %w", common.ErrNetwork, method, path, ctx.Err())
		}
		return fmt.Errorf("decode %s %s error: %w", method, path, err)
	}
	return nil
}

func (c *Client) observe(ctx context.Context, method, path string, status int, d time.Duration, reqID string) {
	c.log.Debug(ctx, "api request", "method", method, "path", path, "status", status,
		"duration", d, "request_id", reqID)
	if c.rec != nil {
		c.rec.RecordRequest(method, path, status, d)
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Ping checks that the API answers. Any HTTP response, even an error status,
// counts as reachable; only transport failures are reported.
func (c *Client) Ping(ctx context.Context) error {
	err := c.Get(ctx, "/categories/", nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return nil
	}
	return err
}
