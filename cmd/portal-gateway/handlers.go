package main

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/internal/rate"
	"github.com/MrEthical07/goGuard/middleware"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
)

const maxSessionBody = 64 << 10

// ErrorResponse is the JSON body of every gateway error.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// PageResponse stands in for the SPA shell of a page route.
type PageResponse struct {
	Page string `json:"page"`
	Role string `json:"role,omitempty"`
}

// establishRequest carries the credentials returned by the portal login call.
type establishRequest struct {
	Token    string          `json:"token" validate:"required,notblank"`
	Role     string          `json:"role" validate:"required,portal_role"`
	UserID   string          `json:"user_id" validate:"omitempty,max=128"`
	Name     string          `json:"name" validate:"omitempty,max=256"`
	SchoolID string          `json:"school_id" validate:"omitempty,max=128"`
	Data     json.RawMessage `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, statusCode int, err string, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Error:   err,
		Message: message,
	})
}

func (a *app) healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// root sends visitors to the default login page.
func (a *app) root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, middleware.RedirectPath(a.table, a.guard.LoginFor(permission.RoleUnknown)), http.StatusFound)
}

func (a *app) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := PageResponse{Page: name}
		if sess, ok := middleware.SessionFromContext(r.Context()); ok {
			resp.Role = sess.Role.String()
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// establishSession handles POST /session.
func (a *app) establishSession(w http.ResponseWriter, r *http.Request) {
	store, ok := middleware.StoreFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "no credential store for client")
		return
	}

	clientID, _ := middleware.ClientIDFromContext(r.Context())
	if err := a.limiter.Allow(r.Context(), clientID, remoteIP(r)); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			respondError(w, http.StatusTooManyRequests, "rate_limited", "too many session attempts")
			return
		}
		a.logger.Error("session rate limiter failed", zap.String("client_id", clientID), zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "store_unavailable", "session store unavailable")
		return
	}

	var req establishRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxSessionBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "request body must be a JSON object")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "validation_failed",
			Fields: fieldErrors(err, a.translator),
		})
		return
	}

	role, _ := permission.ParseRole(req.Role)
	sess := session.Session{Token: strings.TrimSpace(req.Token), Role: role, RawRole: req.Role}

	keys := a.guard.Keys()
	identity := map[string]string{session.KeyIsLogged: "true"}
	for key, v := range map[string]string{
		session.KeyUserID:   req.UserID,
		session.KeyName:     req.Name,
		session.KeySchoolID: req.SchoolID,
	} {
		if v != "" {
			identity[key] = v
		}
	}
	if len(req.Data) > 0 {
		if dataKey, ok := keys.DataKey(role); ok {
			identity[dataKey] = string(req.Data)
		}
	}

	if err := a.guard.Establish(r.Context(), store, sess, identity); err != nil {
		switch {
		case errors.Is(err, session.ErrStoreUnavailable):
			respondError(w, http.StatusServiceUnavailable, "store_unavailable", "session store unavailable")
		case errors.Is(err, goGuard.ErrInvalidSession):
			respondError(w, http.StatusBadRequest, "invalid_session", err.Error())
		default:
			a.logger.Error("session establish failed", zap.String("client_id", clientID), zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal_error", "could not establish session")
		}
		return
	}

	home, _ := a.guard.HomeFor(role)
	respondJSON(w, http.StatusOK, middleware.RedirectBody{Redirect: middleware.RedirectPath(a.table, home)})
}

// logout handles POST /logout.
func (a *app) logout(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFromContext(r.Context())
	out := a.guard.Logout(r.Context(), store)
	if out.Err != nil {
		a.logger.Warn("logout completed with error", zap.Error(out.Err))
	}
	respondJSON(w, http.StatusOK, middleware.RedirectBody{Redirect: middleware.RedirectPath(a.table, out.Target)})
}

// proxyAPI forwards /api/* to the portal backend with the stored bearer token.
// A refused call clears the session and answers 401 with the login path.
func (a *app) proxyAPI(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFromContext(r.Context())
	sess, _ := middleware.SessionFromContext(r.Context())

	endpoint := strings.TrimPrefix(r.URL.Path, "/api")
	if r.URL.RawQuery != "" {
		endpoint += "?" + r.URL.RawQuery
	}

	resp, err := a.remote.Do(r.Context(), r.Method, endpoint, r.Body, sess.Token)
	status := 0
	if resp != nil {
		status = resp.StatusCode
		defer resp.Body.Close()
	}

	if out, rejected := a.guard.Reject(r.Context(), store, status, err); rejected {
		middleware.WriteRedirect(w, http.StatusUnauthorized, middleware.RedirectPath(a.table, out.Target))
		return
	}
	if err != nil {
		a.logger.Warn("api proxy failed", zap.String("endpoint", endpoint), zap.Error(err))
		respondError(w, http.StatusBadGateway, "remote_unavailable", "portal api unavailable")
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
