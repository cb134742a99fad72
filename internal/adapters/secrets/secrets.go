// Package secrets exchanges a long lived OAuth refresh token for short
// lived access tokens and caches them until shortly before expiry
package secrets

import (
	"context"
	json "encoding/json/v2"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	perr "donorpipe/internal/platform/errors"
	"donorpipe/internal/platform/logger"
)

const (
	tokenURLDefault = "https://oauth2.googleapis.com/token"
	defaultTimeout  = 10 * time.Second

	// refresh this long before the reported expiry to absorb clock skew
	expirySlack = 30 * time.Second
)

// Config carries the OAuth client credentials
type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	RefreshToken string
	Timeout      time.Duration
}

// Provider implements mailbox.TokenProvider with a cached bearer token
type Provider struct {
	http *http.Client
	cfg  Config
	log  logger.Logger
	now  func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewProvider builds a Provider with sane defaults
func NewProvider(cfg Config) *Provider {
	if cfg.TokenURL == "" {
		cfg.TokenURL = tokenURLDefault
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
		log:  *logger.Named("secrets"),
		now:  time.Now,
	}
}

// Token returns a valid access token, refreshing when the cache is stale
func (p *Provider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.expiry.Add(-expirySlack)) {
		return p.token, nil
	}
	return p.refresh(ctx)
}

// refresh performs the grant exchange, caller holds the lock
func (p *Provider) refresh(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {p.cfg.ClientID},
		"client_secret": {p.cfg.ClientSecret},
		"refresh_token": {p.cfg.RefreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "token request build failed")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "token exchange failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "token response read failed")
	}
	if resp.StatusCode != http.StatusOK {
		return "", perr.Unauthorizedf("token exchange status %d body %s", resp.StatusCode, string(body))
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeJSON, "token response decode failed")
	}
	if out.AccessToken == "" {
		return "", perr.Unauthorizedf("token exchange returned empty access token")
	}

	p.token = out.AccessToken
	p.expiry = p.now().Add(time.Duration(out.ExpiresIn) * time.Second)

	p.log.Debug().Int("expires_in", out.ExpiresIn).Msg("access token refreshed")
	return p.token, nil
}
