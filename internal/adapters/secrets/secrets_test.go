package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	perr "donorpipe/internal/platform/errors"
)

func TestToken_RefreshesAndCaches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("client_id"); got != "cid" {
			t.Errorf("client_id = %q", got)
		}
		if got := r.PostForm.Get("refresh_token"); got != "rtok" {
			t.Errorf("refresh_token = %q", got)
		}
		_, _ = w.Write([]byte(`{"access_token":"atok","expires_in":3600,"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{
		TokenURL:     srv.URL,
		ClientID:     "cid",
		ClientSecret: "sec",
		RefreshToken: "rtok",
	})

	tok, err := p.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "atok" {
		t.Fatalf("token = %q", tok)
	}

	// second call inside the expiry window must not hit the endpoint again
	if _, err := p.Token(context.Background()); err != nil {
		t.Fatalf("Token cached: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("token endpoint calls = %d, want 1", got)
	}
}

func TestToken_RefreshesNearExpiry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"access_token":"atok","expires_in":60}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{TokenURL: srv.URL})
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return base }

	if _, err := p.Token(context.Background()); err != nil {
		t.Fatalf("Token: %v", err)
	}

	// inside the slack window of the 60s expiry, the cache is stale
	p.now = func() time.Time { return base.Add(45 * time.Second) }
	if _, err := p.Token(context.Background()); err != nil {
		t.Fatalf("Token near expiry: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("token endpoint calls = %d, want 2", got)
	}
}

func TestToken_Non200IsUnauthorized(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{TokenURL: srv.URL})
	_, err := p.Token(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestToken_EmptyAccessTokenRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"","expires_in":3600}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{TokenURL: srv.URL})
	_, err := p.Token(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
}
