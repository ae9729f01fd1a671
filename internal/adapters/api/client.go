package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/warera-economy-go/internal/application/auth"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/config"
)

const (
	defaultBaseURL     = "https://api2.warera.io"
	defaultOrigin      = "https://app.warera.io"
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 3
	defaultBackoffBase = time.Second
)

var (
	// ErrTokenExpired is returned when the API rejects the session (401/403)
	ErrTokenExpired = market.ErrTokenExpired

	// ErrTokenMissing is returned when an authenticated call has no token configured
	ErrTokenMissing = market.ErrTokenMissing
)

// RequestRecorder receives per-request telemetry; metrics.UpstreamMetricsCollector implements it
type RequestRecorder interface {
	RecordCall(endpoint string, statusCode int, duration time.Duration)
	RecordRetry(endpoint string, reason string)
	RecordBreakerState(state string)
}

// Call is one procedure invocation inside a tRPC batch
type Call struct {
	Procedure string
	Input     interface{}
}

// ClientOptions configures a Client
type ClientOptions struct {
	BaseURL            string
	Origin             string
	Token              string
	Fingerprint        string
	Timeout            time.Duration
	RequestsPerSecond  float64
	Burst              int
	MaxRetries         int
	BackoffBase        time.Duration
	BreakerMaxFailures int
	BreakerTimeout     time.Duration
}

// Client talks to the WarEra tRPC and REST endpoints
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *Breaker
	baseURL     string
	origin      string
	session     auth.Session
	maxRetries  int
	backoffBase time.Duration
	clock       shared.Clock
	recorder    RequestRecorder
}

// NewClient creates a new WarEra API client
// If clock is nil, uses RealClock for production
func NewClient(opts ClientOptions, clock shared.Clock) *Client {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Origin == "" {
		opts.Origin = defaultOrigin
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.BackoffBase == 0 {
		opts.BackoffBase = defaultBackoffBase
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BreakerMaxFailures <= 0 {
		opts.BreakerMaxFailures = 5
	}
	if opts.BreakerTimeout == 0 {
		opts.BreakerTimeout = time.Minute
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		rateLimiter: rate.NewLimiter(limit, burst),
		breaker:     NewBreaker(opts.BreakerMaxFailures, opts.BreakerTimeout, clock),
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		origin:      strings.TrimRight(opts.Origin, "/"),
		session:     auth.Session{Token: opts.Token, Fingerprint: opts.Fingerprint},
		maxRetries:  opts.MaxRetries,
		backoffBase: opts.BackoffBase,
		clock:       clock,
	}
}

// NewClientFromConfig builds a client from the api config section
func NewClientFromConfig(cfg config.APIConfig, clock shared.Clock) *Client {
	return NewClient(ClientOptions{
		BaseURL:            cfg.BaseURL,
		Origin:             cfg.Origin,
		Token:              cfg.Token,
		Fingerprint:        cfg.Fingerprint,
		Timeout:            cfg.Timeout,
		RequestsPerSecond:  float64(cfg.RateLimit.Requests),
		Burst:              cfg.RateLimit.Burst,
		MaxRetries:         cfg.Retry.MaxAttempts,
		BackoffBase:        cfg.Retry.BackoffBase,
		BreakerMaxFailures: cfg.CircuitBreaker.MaxFailures,
		BreakerTimeout:     cfg.CircuitBreaker.Timeout,
	}, clock)
}

// SetRecorder attaches request telemetry
func (c *Client) SetRecorder(recorder RequestRecorder) {
	c.recorder = recorder
	if recorder == nil {
		c.breaker.OnStateChange(nil)
		return
	}
	recorder.RecordBreakerState(string(c.breaker.State()))
	c.breaker.OnStateChange(func(state BreakerState) {
		recorder.RecordBreakerState(string(state))
	})
}

// Breaker exposes the circuit breaker
func (c *Client) Breaker() *Breaker {
	return c.breaker
}

// Session returns the credentials a call made with ctx would use.
// Credentials in the context take precedence over the configured ones.
func (c *Client) Session(ctx context.Context) auth.Session {
	if session, ok := auth.SessionFromContext(ctx); ok {
		if session.Fingerprint == "" {
			session.Fingerprint = c.session.Fingerprint
		}
		return session
	}
	return c.session
}

// HasToken reports whether a call made with ctx would be authenticated
func (c *Client) HasToken(ctx context.Context) bool {
	return c.Session(ctx).Token != ""
}

// Query invokes a single procedure and returns its result data
func (c *Client) Query(ctx context.Context, procedure string, input interface{}) (gjson.Result, error) {
	results, err := c.Batch(ctx, []Call{{Procedure: procedure, Input: input}})
	if err != nil {
		return gjson.Result{}, err
	}
	return results[0], nil
}

// Batch invokes several procedures in one HTTP request. Results come back in call
// order; an entry whose call failed upstream has Exists() == false.
func (c *Client) Batch(ctx context.Context, calls []Call) ([]gjson.Result, error) {
	if len(calls) == 0 {
		return []gjson.Result{}, nil
	}

	path, err := batchPath(calls)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, path, procedureLabel(calls))
	if err != nil {
		return nil, err
	}

	envelope := gjson.ParseBytes(body)
	if !envelope.IsArray() {
		return nil, fmt.Errorf("unexpected tRPC response: expected batch array")
	}

	results := make([]gjson.Result, len(calls))
	for i := range calls {
		results[i] = envelope.Get(fmt.Sprintf("%d.result.data", i))
	}
	return results, nil
}

// GetJSON fetches a plain REST path (for example /regions) and parses it
func (c *Client) GetJSON(ctx context.Context, path string) (gjson.Result, error) {
	body, err := c.get(ctx, path, path)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("invalid JSON from %s", path)
	}
	return gjson.ParseBytes(body), nil
}

// batchPath builds /trpc/{p1,p2}?batch=1&input={"0":...,"1":...}
func batchPath(calls []Call) (string, error) {
	procedures := make([]string, len(calls))
	inputs := make(map[string]interface{}, len(calls))
	for i, call := range calls {
		procedures[i] = call.Procedure
		input := call.Input
		if input == nil {
			input = map[string]interface{}{}
		}
		inputs[strconv.Itoa(i)] = input
	}

	encoded, err := json.Marshal(inputs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tRPC input: %w", err)
	}

	return "/trpc/" + strings.Join(procedures, ",") + "?batch=1&input=" + url.QueryEscape(string(encoded)), nil
}

// procedureLabel keeps metric label cardinality bounded for batches
func procedureLabel(calls []Call) string {
	if len(calls) == 1 {
		return calls[0].Procedure
	}
	return calls[0].Procedure + "[batch]"
}

// addJitter adds random jitter to a duration to avoid thundering herd
// Returns a duration between 50% and 150% of the original value
func addJitter(d time.Duration) time.Duration {
	jitter := 0.5 + rand.Float64() // 0.5 to 1.5
	return time.Duration(float64(d) * jitter)
}

// get runs a request through the circuit breaker. Client errors (4xx) are
// returned to the caller without counting as breaker failures.
func (c *Client) get(ctx context.Context, path, endpoint string) ([]byte, error) {
	var body []byte
	var permanent error

	err := c.breaker.Do(func() error {
		var reqErr error
		body, reqErr = c.request(ctx, path, endpoint)
		var statusErr *statusError
		if errors.As(reqErr, &statusErr) && statusErr.status < 500 {
			permanent = reqErr
			return nil
		}
		return reqErr
	})
	if err != nil {
		return nil, err
	}
	if permanent != nil {
		return nil, permanent
	}
	return body, nil
}

// request makes an HTTP GET with rate limiting and exponential backoff retries
func (c *Client) request(ctx context.Context, path, endpoint string) ([]byte, error) {
	fullURL := c.baseURL + path
	session := c.Session(ctx)

	var lastErr error

	// Attempt the request with exponential backoff + jitter retries
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		// Create HTTP request
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Origin", c.origin)
		req.Header.Set("Referer", c.origin+"/")
		if session.Token != "" {
			req.Header.Set("Authorization", "Bearer "+session.Token)
		}
		if session.Fingerprint != "" {
			req.Header.Set("X-Fingerprint", session.Fingerprint)
		}

		// Execute HTTP request
		start := c.clock.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network error - retryable
			lastErr = &retryableError{
				message: fmt.Errorf("network error: %w", err).Error(),
			}
			c.recordRetry(endpoint, "network", attempt)

			// Last attempt - don't sleep, just record error
			if attempt >= c.maxRetries {
				break
			}

			// Check for context cancellation before sleeping
			if ctx.Err() != nil {
				return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
			}

			// Calculate backoff with jitter and sleep using clock (instant in tests with MockClock)
			c.clock.Sleep(addJitter(c.backoffBase * time.Duration(1<<attempt)))
			continue
		}

		// Read response body
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if c.recorder != nil {
			c.recorder.RecordCall(endpoint, resp.StatusCode, c.clock.Now().Sub(start))
		}

		// Session rejected - NOT retryable
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, &statusError{status: resp.StatusCode, body: string(respBody), cause: ErrTokenExpired}
		}

		// Handle 429 Too Many Requests - retryable
		if resp.StatusCode == http.StatusTooManyRequests {
			var retryAfterDuration time.Duration

			// Check for Retry-After header
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					retryAfterDuration = time.Duration(seconds) * time.Second
				}
			}

			lastErr = &retryableError{
				message:    "rate limited (429)",
				retryAfter: retryAfterDuration,
			}
			c.recordRetry(endpoint, "rate_limited", attempt)

			// Last attempt - don't sleep
			if attempt >= c.maxRetries {
				break
			}

			// Check for context cancellation before sleeping
			if ctx.Err() != nil {
				return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
			}

			// Calculate backoff delay with jitter (unless server provided Retry-After)
			backoffDelay := addJitter(c.backoffBase * time.Duration(1<<attempt))
			if retryAfterDuration > 0 {
				// Use server-provided Retry-After value without jitter
				backoffDelay = retryAfterDuration
			}

			c.clock.Sleep(backoffDelay)
			continue
		}

		// Handle 5xx server errors (503 included) - retryable
		if resp.StatusCode >= 500 {
			message := fmt.Sprintf("server error (%d)", resp.StatusCode)
			if resp.StatusCode == http.StatusServiceUnavailable {
				message = "service unavailable (503)"
			}
			lastErr = &retryableError{message: message}
			c.recordRetry(endpoint, strconv.Itoa(resp.StatusCode), attempt)

			// Last attempt - don't sleep
			if attempt >= c.maxRetries {
				break
			}

			// Check for context cancellation before sleeping
			if ctx.Err() != nil {
				return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
			}

			c.clock.Sleep(addJitter(c.backoffBase * time.Duration(1<<attempt)))
			continue
		}

		// Handle remaining non-2xx status codes - NOT retryable
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &statusError{status: resp.StatusCode, body: string(respBody)}
		}

		// Success!
		return respBody, nil
	}

	// All retries exhausted
	if lastErr != nil {
		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return nil, fmt.Errorf("max retries exceeded")
}

func (c *Client) recordRetry(endpoint, reason string, attempt int) {
	if c.recorder != nil && attempt < c.maxRetries {
		c.recorder.RecordRetry(endpoint, reason)
	}
}

// retryableError represents an error that should trigger a retry
type retryableError struct {
	message    string
	retryAfter time.Duration
}

func (e *retryableError) Error() string {
	return e.message
}

// statusError is a non-retryable HTTP failure
type statusError struct {
	status int
	body   string
	cause  error
}

func (e *statusError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("API error (status %d): %v", e.status, e.cause)
	}
	return fmt.Sprintf("API error (status %d): %s", e.status, e.body)
}

func (e *statusError) Unwrap() error {
	return e.cause
}
