// Package api implements the HTTP client for the setups storefront REST
// API. All methods are context-aware, respect the shared rate limiter, and
// retry on transient errors (429, 5xx). Responses are unwrapped from the
// API's {success|status, data} envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "http://localhost:8000/api/"
	maxRetries     = 4
	userAgent      = "pitwall-cli/1.0"
)

// Endpoint paths relative to the base URL.
const (
	pathCategories = "categories"
	pathCascading  = "setups/filters"
	pathSearch     = "setups/search"
	pathPlans      = "plans"
	pathLogin      = "auth/login"
	pathRefresh    = "auth/refresh"
	pathLogout     = "auth/logout"
)

var (
	// ErrUnsuccessful is returned when the envelope reports failure.
	ErrUnsuccessful = errors.New("api reported failure")
	// ErrUnauthorized is returned on HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// Client is the storefront API HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
	tokens     oauth2.TokenSource
}

// NewClient creates a Client for baseURL with the given timeout and
// request rate.
func NewClient(baseURL string, timeout time.Duration, ratePerSec float64, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if log == nil {
		log = zap.NewNop()
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		log:     log,
	}
}

// SetTokenSource makes authenticated endpoints carry a bearer token
// obtained from ts.
func (c *Client) SetTokenSource(ts oauth2.TokenSource) {
	c.tokens = ts
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ─── Low-level HTTP ───────────────────────────────────────────────────────────

// do performs one API call, handling rate limiting, retries and the
// response envelope. It returns the envelope's data node.
func (c *Client) do(ctx context.Context, method, endpoint string, body any, auth bool) (any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
	}
	reqURL := c.baseURL + endpoint
	c.log.Debug("api request", zap.String("method", method), zap.String("url", reqURL), zap.Int("bytes", len(payload)))

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))*500) * time.Millisecond
			c.log.Debug("retrying after backoff", zap.Int("attempt", attempt), zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if auth && c.tokens != nil {
			tok, err := c.tokens.Token()
			if err != nil {
				c.log.Debug("no usable token, sending anonymously", zap.Error(err))
			} else {
				tok.SetAuthHeader(req)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http: %w", err)
			continue
		}

		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading body: %w", err)
			continue
		}

		c.log.Debug("api response", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(raw)))

		// Retry on server errors and rate limiting
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
			continue
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%s %s: %w", method, endpoint, ErrUnauthorized)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			if msg := envelopeMessage(raw); msg != "" {
				return nil, fmt.Errorf("API error: %s", msg)
			}
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}

		return decodeEnvelope(raw)
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) get(ctx context.Context, endpoint string, auth bool) (any, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil, auth)
}

func (c *Client) post(ctx context.Context, endpoint string, body any, auth bool) (any, error) {
	return c.do(ctx, http.MethodPost, endpoint, body, auth)
}
