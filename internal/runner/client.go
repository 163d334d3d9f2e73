// internal/runner/client.go
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the Job Runner and the Suite Catalog it serves.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default runner HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout sets a per-request timeout on the default HTTP client. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = runnerHTTPClient(d) }
}

// NewClient returns a client for the runner rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: runnerHTTPClient(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the runner root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Start submits a benchmark job.
func (c *Client) Start(ctx context.Context, req StartRequest) (StartResponse, error) {
	var out StartResponse
	if err := c.do(ctx, "start", http.MethodPost, "/api/bm/start", nil, req, &out); err != nil {
		return StartResponse{}, err
	}
	if out.JobID == "" {
		return StartResponse{}, &TransportError{Op: "start", Err: fmt.Errorf("%w: missing job_id", ErrMalformedBody)}
	}
	return out, nil
}

// Status fetches the full snapshot of a job.
func (c *Client) Status(ctx context.Context, jobID string) (Status, error) {
	var out Status
	if err := c.do(ctx, "status", http.MethodGet, "/api/bm/"+url.PathEscape(jobID), nil, nil, &out); err != nil {
		return Status{}, err
	}
	return out, nil
}

// Cancel asks the runner to stop a job. Cancellation is best effort.
func (c *Client) Cancel(ctx context.Context, jobID string) error {
	return c.do(ctx, "cancel", http.MethodPost, "/api/bm/"+url.PathEscape(jobID)+"/cancel", nil, nil, nil)
}

// Override flips the verdict of one result on the runner.
func (c *Client) Override(ctx context.Context, jobID string, index int, passed bool) (OverrideResponse, error) {
	var out OverrideResponse
	body := OverrideRequest{ResultIndex: index, NewPassed: passed}
	if err := c.do(ctx, "override", http.MethodPost, "/api/bm/"+url.PathEscape(jobID)+"/override", nil, body, &out); err != nil {
		return OverrideResponse{}, err
	}
	return out, nil
}

// Suite loads the catalog for suitePath. An empty path lets the runner pick its default.
func (c *Client) Suite(ctx context.Context, suitePath string) (Suite, error) {
	q := url.Values{}
	if suitePath != "" {
		q.Set("suite_path", suitePath)
	}
	var out Suite
	if err := c.do(ctx, "suite", http.MethodGet, "/api/suite", q, nil, &out); err != nil {
		return Suite{}, err
	}
	return out, nil
}

// Models lists the models available on the inference server at modelBaseURL.
func (c *Client) Models(ctx context.Context, modelBaseURL string) ([]ModelInfo, error) {
	q := url.Values{}
	if modelBaseURL != "" {
		q.Set("base_url", modelBaseURL)
	}
	var out modelsResponse
	if err := c.do(ctx, "models", http.MethodGet, "/api/models", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

// errorEnvelope picks the error field every reply may carry.
type errorEnvelope struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	var env errorEnvelope
	envErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Error
		if envErr != nil || msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return &ServerError{StatusCode: resp.StatusCode, Message: msg}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		if out == nil {
			return nil
		}
		return &TransportError{Op: op, Err: fmt.Errorf("%w: empty body", ErrMalformedBody)}
	}
	if envErr != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformedBody, envErr)}
	}
	if env.Error != "" {
		return &ServerError{StatusCode: resp.StatusCode, Message: env.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformedBody, err)}
	}
	return nil
}

// runnerIdleConns is the idle pool kept per host: one connection for the
// poll loop and one for a cancel or override sent while a poll is in flight.
const runnerIdleConns = 2

// runnerHTTPClient returns the default client for a single runner. Requests
// carry the caller's context; timeout bounds each one when set.
func runnerHTTPClient(timeout time.Duration) *http.Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = runnerIdleConns
	return &http.Client{Timeout: timeout, Transport: t}
}
