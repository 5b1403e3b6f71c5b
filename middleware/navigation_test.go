package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/routes"
	"github.com/MrEthical07/goGuard/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRemote struct {
	mu    sync.Mutex
	calls []string
}

func (s *stubRemote) Logout(_ context.Context, role permission.Role, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, role.String()+":"+token)
	return nil
}

func (s *stubRemote) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newGuard(t *testing.T, r goGuard.RemoteSession) *goGuard.Guard {
	t.Helper()
	cfg := goGuard.DefaultConfig()
	cfg.Logout.AwaitRemote = true
	g, err := goGuard.New().WithConfig(cfg).WithRemote(r).Build()
	require.NoError(t, err)
	t.Cleanup(g.Close)
	return g
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		w.Header().Set("X-Role", sess.Role.String())
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithClient(method, path, clientID string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if clientID != "" {
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: clientID})
	}
	return req
}

func seedClient(t *testing.T, provider *session.MemoryProvider, values map[string]string) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, provider.For(id).SetMany(context.Background(), values))
	return id
}

func TestNavigationProceedsWithSession(t *testing.T) {
	provider := session.NewMemoryProvider()
	g := newGuard(t, &stubRemote{})
	id := seedClient(t, provider, map[string]string{session.KeyAccessToken: "abc", session.KeyRole: "admin"})

	h := Navigation(g, routes.Default(), provider)(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithClient(http.MethodGet, "/admin/faculties", id))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Header().Get("X-Role"))
}

func TestNavigationRedirectsLoggedInUserAwayFromLogin(t *testing.T) {
	provider := session.NewMemoryProvider()
	g := newGuard(t, &stubRemote{})
	id := seedClient(t, provider, map[string]string{session.KeyAccessToken: "abc", session.KeyRole: "student"})

	h := Navigation(g, nil, provider)(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithClient(http.MethodGet, "/login", id))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/student/dashboard", rec.Header().Get("Location"))
}

func TestNavigationForceLogoutClearsAndRedirects(t *testing.T) {
	provider := session.NewMemoryProvider()
	remote := &stubRemote{}
	g := newGuard(t, remote)
	id := seedClient(t, provider, map[string]string{session.KeyAccessToken: "abc", session.KeyRole: "lecturer"})

	h := Navigation(g, routes.Default(), provider)(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithClient(http.MethodGet, "/admin/faculties/", id))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/lecturer/login", rec.Header().Get("Location"))
	assert.Equal(t, 1, remote.count())
	assert.Zero(t, provider.For(id).(*session.MemoryStore).Len())
}

func TestNavigationIssuesClientCookie(t *testing.T) {
	provider := session.NewMemoryProvider()
	g := newGuard(t, &stubRemote{})

	h := Navigation(g, routes.Default(), provider)(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithClient(http.MethodGet, "/admin/dashboard", "not-a-uuid"))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err)
}

func TestNavigationPassesUnknownPaths(t *testing.T) {
	g := newGuard(t, &stubRemote{})
	h := Navigation(g, routes.Default(), session.NewMemoryProvider())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestNavigationFallbackForUnresolvableTarget(t *testing.T) {
	var g *goGuard.Guard
	provider := session.NewMemoryProvider()

	h := Navigation(g, routes.Default(), provider, WithFallbackPath("/home"))(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/home", rec.Header().Get("Location"))
}

func TestRedirectPath(t *testing.T) {
	table := routes.Default()
	assert.Equal(t, "/lecturer/login", RedirectPath(table, routes.LecturerLogin))
	assert.Equal(t, "/", RedirectPath(table, "missing"))
	assert.Equal(t, "/x", RedirectPath(nil, routes.AdminLogin, WithFallbackPath("/x")))
}

func TestRequireSession(t *testing.T) {
	provider := session.NewMemoryProvider()
	g := newGuard(t, &stubRemote{})
	h := Client(provider)(RequireSession(g)(okHandler()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body RedirectBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "/admin/login", body.Redirect)

	id := seedClient(t, provider, map[string]string{session.KeyAccessToken: "abc", session.KeyRole: "lecturer"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithClient(http.MethodGet, "/api/courses", id))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lecturer", rec.Header().Get("X-Role"))
}

func TestClientReusesValidCookie(t *testing.T) {
	provider := session.NewMemoryProvider()
	id := uuid.NewString()

	var seen string
	h := Client(provider, WithCookieName("sid"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClientIDFromContext(r.Context())
		assert.Equal(t, seen, goGuard.ClientIDFromContext(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: id})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, id, seen)
	assert.Empty(t, rec.Result().Cookies())
}
