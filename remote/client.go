package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goGuard/permission"
)

const (
	// DefaultBaseURL is the portal API root.
	DefaultBaseURL = "https://schedule.use-api-services.com/api"
	// DefaultTimeout bounds every remote call.
	DefaultTimeout = 10 * time.Second
)

var (
	// ErrUnavailable wraps transport failures: DNS, connect, TLS, timeout.
	ErrUnavailable = errors.New("remote session api unavailable")
	// ErrNoEndpoint is returned when a role has no logout endpoint.
	ErrNoEndpoint = errors.New("role has no remote logout endpoint")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote %s %s: unexpected status %d", e.Method, e.Endpoint, e.StatusCode)
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the portal's remote session API.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewClient validates cfg and returns a Client. Zero fields take defaults.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid remote base url %q", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http:    hc,
	}, nil
}

// LogoutEndpoint returns "/<role>-logout" for roles with a portal.
func LogoutEndpoint(role permission.Role) (string, bool) {
	if !role.HasPortal() {
		return "", false
	}
	return "/" + role.String() + "-logout", true
}

// Logout invalidates token server-side with POST /<role>-logout. A bearer
// header is attached only when token is non-empty. The response body is
// discarded.
func (c *Client) Logout(ctx context.Context, role permission.Role, token string) error {
	endpoint, ok := LogoutEndpoint(role)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoEndpoint, role.String())
	}

	resp, err := c.Do(ctx, http.MethodPost, endpoint, nil, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: http.MethodPost, Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	return nil
}

// Do sends an authenticated request to endpoint, relative to the base URL.
// The caller owns the response body. Only transport failures are returned as
// errors; any HTTP status is returned as a response.
func (c *Client) Do(ctx context.Context, method, endpoint string, body io.Reader, token string) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		req, err := c.newRequest(ctx, method, endpoint, body, token)
		if err != nil {
			cancel()
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	}

	req, err := c.newRequest(ctx, method, endpoint, body, token)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader, token string) (*http.Request, error) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build remote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
