package tablegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/time/rate"

	"canvas/internal/domain"
	"canvas/internal/secret"
)

// ── Table generator client ─────────────────────────────────
// Sends a free-text prompt to the external generation service and returns
// the rows it produced. One request per call: no retry, no cancellation
// beyond the caller's context.

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 5 * 1024 * 1024

// ErrInvalidResponse is returned when the body is not an array of flat objects.
var ErrInvalidResponse = errors.New("tablegen: invalid response")

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tablegen: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("tablegen: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Generator turns a prompt into table rows.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]*domain.Row, error)
}

// Options configures a Client.
type Options struct {
	Endpoint string
	// Timeout bounds a whole request. Zero leaves it to the transport.
	Timeout time.Duration
	// RatePerMinute paces outbound requests. Zero or less disables pacing.
	RatePerMinute int
	// Secrets supplies the optional bearer token under secret.TableGenTokenKey.
	Secrets secret.SecretStore
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client is the HTTP implementation of Generator.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	secrets  secret.SecretStore
	schema   *gojsonschema.Schema
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// New builds a Client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, fmt.Errorf("tablegen: endpoint is required")
	}
	schema, err := responseSchema()
	if err != nil {
		return nil, err
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), 1)
	}

	return &Client{
		endpoint: opts.Endpoint,
		http:     hc,
		limiter:  limiter,
		secrets:  opts.Secrets,
		schema:   schema,
	}, nil
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Generate posts {"prompt": prompt} and decodes the returned rows in column order.
func (c *Client) Generate(ctx context.Context, prompt string) ([]*domain.Row, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("tablegen: wait: %w", err)
	}

	payload, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("tablegen: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tablegen: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tablegen: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("tablegen: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(truncate(string(body), 200))}
	}

	return c.decode(body)
}

func (c *Client) decode(body []byte) ([]*domain.Row, error) {
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(msgs, "; "))
	}

	var rows []*domain.Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if rows == nil {
		rows = []*domain.Row{}
	}
	return rows, nil
}

func (c *Client) token() string {
	if c.secrets == nil {
		return ""
	}
	v, err := c.secrets.Get(secret.TableGenTokenKey)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(v))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
