// Package api implements the HTTP client for the plateful backend. All
// methods are context-aware, respect the shared rate limiter, and retry on
// transient errors (429, 5xx, transport failures).
//
// Every endpoint answers the same JSON envelope:
//
//	{"success": bool, "data": ..., "message": "..."}
//
// Callers receive decoded data on success and a *StatusError otherwise.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.plateful.app/v1/"
	maxRetries     = 3
)

// TokenSource supplies the bearer token attached to every request. The auth
// session implements this so token rotation is picked up per request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Client is the plateful backend HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenSource
	log        zerolog.Logger
}

// NewClient creates a Client with the given base URL and timeout.
func NewClient(baseURL string, timeout time.Duration, ratePerSec float64, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
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

// SetTokenSource installs the bearer-token source. Requests made without one
// are sent unauthenticated.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// envelope is the uniform response wrapper used by every backend endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// doJSON performs a request with an optional JSON body and decodes the
// envelope's data field into out (when out is non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	contentType := ""
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		contentType = "application/json"
	}
	raw, err := c.request(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// request performs one logical API call, handling rate limiting, auth, and
// retries. The body is kept as bytes so each retry attempt can rebuild its
// reader.
func (c *Client) request(ctx context.Context, method, path, contentType string, body []byte) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + strings.TrimPrefix(path, "/")

	var raw json.RawMessage
	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("building request: %w", err))
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "plateful/1.0")
		if c.tokens != nil {
			tok, err := c.tokens.Token(ctx)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("resolving token: %w", err))
			}
			if tok != "" {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.log.Debug().Str("method", method).Str("path", path).Int("attempt", attempt).Err(err).Msg("api transport error")
			return fmt.Errorf("http: %w", err)
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}

		c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Int("bytes", len(data)).Msg("api response")

		// Retry on server errors and rate limiting.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		}

		var env envelope
		if len(data) > 0 {
			// Tolerate non-envelope bodies on errors; the message just
			// stays empty.
			_ = json.Unmarshal(data, &env)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 || (len(data) > 0 && !env.Success) {
			msg := env.Message
			if msg == "" {
				msg = http.StatusText(resp.StatusCode)
			}
			return backoff.Permanent(&StatusError{Code: resp.StatusCode, Message: msg})
		}

		raw = env.Data
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 500 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return raw, nil
}
