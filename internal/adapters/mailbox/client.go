// Package mailbox provides a resilient Gmail REST v1 client for report pickup
package mailbox

import (
	"context"
	"io"
	"net/http"
	"time"

	perr "donorpipe/internal/platform/errors"
	"donorpipe/internal/platform/logger"
)

const (
	baseURLDefault   = "https://gmail.googleapis.com"
	defaultTimeout   = 30 * time.Second
	defaultUA        = "donorpipe-ingest"
	defaultMaxRetry  = 5
	defaultRetryBase = 500 * time.Millisecond
)

// TokenProvider supplies a fresh OAuth bearer token per request
// implemented by the secrets adapter
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration
}

// Client is a minimal Gmail REST client scoped to the authenticated mailbox
type Client struct {
	http   *http.Client
	opts   Options
	tokens TokenProvider
	log    logger.Logger
	now    func() time.Time
	sleep  func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options, tokens TokenProvider) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:   &http.Client{Timeout: o.Timeout},
		opts:   o,
		tokens: tokens,
		log:    *logger.Named("mailbox"),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// do issues a request with auth headers, retries, and rate limit handling
func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	url := c.opts.BaseURL + path
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "gmail new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")

		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnauthorized, "gmail token refresh failed")
		}
		req.Header.Set("Authorization", "Bearer "+tok)

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "gmail do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("gmail transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("gmail http response")

		switch resp.StatusCode {
		case http.StatusOK, http.StatusNoContent:
			return resp, nil
		case http.StatusTooManyRequests:
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "gmail rate limited")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("sleep", back).Msg("gmail rate limited backing off")
			_ = drainAndClose(resp.Body)
			c.sleep(back)
			attempts++
			continue
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.Newf(perr.ErrorCodeUnavailable, "gmail transient server error")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("gmail transient error retrying")
			_ = drainAndClose(resp.Body)
			c.sleep(back)
			attempts++
			continue
		case http.StatusUnauthorized:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Newf(perr.ErrorCodeUnauthorized, "gmail unauthorized body %s", string(body))
		case http.StatusNotFound:
			_ = drainAndClose(resp.Body)
			return nil, perr.NotFoundf("gmail %s not found", path)
		default:
			// read a small tail for diagnostics then return
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Newf(perr.ErrorCodeUnknown, "gmail unexpected status %d body %s", resp.StatusCode, string(body))
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase
	// simple exponential with cap
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	ceil := int64(30 * time.Second / time.Millisecond)
	if ms > ceil {
		ms = ceil
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<20))
	return rc.Close()
}
