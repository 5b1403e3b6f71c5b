package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goGuard/permission"
)

func TestLogoutSendsBearerToRoleEndpoint(t *testing.T) {
	var gotPath, gotAuth, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL + "/api/"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if err := c.Logout(context.Background(), permission.RoleLecturer, "abc"); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/lecturer-logout" || gotAuth != "Bearer abc" {
		t.Fatalf("unexpected request %s %s auth=%q", gotMethod, gotPath, gotAuth)
	}
}

func TestLogoutOmitsBearerWithoutToken(t *testing.T) {
	var sawAuth atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth.Store(r.Header.Get("Authorization") != "")
	}))
	defer srv.Close()

	c, _ := NewClient(Config{BaseURL: srv.URL})
	if err := c.Logout(context.Background(), permission.RoleStudent, ""); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if sawAuth.Load() {
		t.Fatal("expected no Authorization header for empty token")
	}
}

func TestLogoutStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	c, _ := NewClient(Config{BaseURL: srv.URL})
	err := c.Logout(context.Background(), permission.RoleAdmin, "abc")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusMethodNotAllowed || statusErr.Endpoint != "/admin-logout" {
		t.Fatalf("expected StatusError 405, got %v", err)
	}
}

func TestLogoutTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, _ := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	err := c.Logout(context.Background(), permission.RoleAdmin, "abc")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on timeout, got %v", err)
	}
}

func TestLogoutRejectsRolesWithoutEndpoint(t *testing.T) {
	c, _ := NewClient(Config{})
	for _, r := range []permission.Role{permission.RoleGuest, permission.RoleUnknown} {
		if err := c.Logout(context.Background(), r, "abc"); !errors.Is(err, ErrNoEndpoint) {
			t.Fatalf("expected ErrNoEndpoint for %v, got %v", r, err)
		}
	}
}

func TestDoReturnsResponseForAnyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/faculties" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
	}))
	defer srv.Close()

	c, _ := NewClient(Config{BaseURL: srv.URL})
	resp, err := c.Do(context.Background(), http.MethodGet, "faculties", nil, "abc")
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 passthrough, got %d", resp.StatusCode)
	}
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	for _, raw := range []string{"ftp://x", "not a url", "http://"} {
		if _, err := NewClient(Config{BaseURL: raw}); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}

	c, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("default config failed: %v", err)
	}
	if !strings.HasPrefix(c.baseURL, "https://") || c.timeout != DefaultTimeout {
		t.Fatalf("unexpected defaults: %q %v", c.baseURL, c.timeout)
	}
}
