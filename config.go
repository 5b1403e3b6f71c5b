package goGuard

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/routes"
	"github.com/MrEthical07/goGuard/session"
)

// Config holds every tunable of a Guard.
type Config struct {
	Routes  RoutesConfig
	Session SessionConfig
	Logout  LogoutConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig maps roles to their login and home route names.
type RoutesConfig struct {
	DefaultLogin string
	Login        map[permission.Role]string
	Home         map[permission.Role]string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls how credentials are read and when they are rejected.
type SessionConfig struct {
	Keys session.Keys
	// RejectStatuses are backend statuses that invalidate the local session.
	RejectStatuses []int
	// CheckTokenExpiry treats an expired access token as no session.
	CheckTokenExpiry bool
	ExpiryLeeway     time.Duration
}

/*
====================================
LOGOUT CONFIG
====================================
*/

// LogoutConfig controls the remote invalidation call.
type LogoutConfig struct {
	RemoteTimeout time.Duration
	// AwaitRemote runs the remote call inline instead of detaching it.
	AwaitRemote bool
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// Retain lists event types exempt from DropIfFull.
	Retain []string
}

// MetricsConfig controls in-process counters and the decision latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the portal defaults.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Routes: RoutesConfig{
			DefaultLogin: routes.AdminLogin,
			Login: map[permission.Role]string{
				permission.RoleAdmin:    routes.AdminLogin,
				permission.RoleLecturer: routes.LecturerLogin,
				permission.RoleStudent:  routes.StudentLogin,
			},
			Home: map[permission.Role]string{
				permission.RoleAdmin:    routes.AdminDashboard,
				permission.RoleLecturer: routes.LecturerDashboard,
				permission.RoleStudent:  routes.StudentDashboard,
			},
		},
		Session: SessionConfig{
			Keys:           session.DefaultKeys(),
			RejectStatuses: []int{http.StatusMethodNotAllowed, http.StatusUnauthorized},
			ExpiryLeeway:   30 * time.Second,
		},
		Logout: LogoutConfig{
			RemoteTimeout: 10 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
			Retain:     []string{auditEventRemoteLogoutFailed},
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Routes.Login = cloneRoleMap(cfg.Routes.Login)
	out.Routes.Home = cloneRoleMap(cfg.Routes.Home)
	out.Session.Keys = cfg.Session.Keys.Clone()
	if cfg.Session.RejectStatuses != nil {
		out.Session.RejectStatuses = append([]int(nil), cfg.Session.RejectStatuses...)
	}
	if cfg.Audit.Retain != nil {
		out.Audit.Retain = append([]string(nil), cfg.Audit.Retain...)
	}
	return out
}

func cloneRoleMap(m map[permission.Role]string) map[permission.Role]string {
	if m == nil {
		return nil
	}
	out := make(map[permission.Role]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the config for internal consistency. Route names are
// checked against the table separately, by Build.
func (c *Config) Validate() error {
	if c.Routes.DefaultLogin == "" {
		return errors.New("Routes DefaultLogin must be set")
	}
	for r, name := range c.Routes.Login {
		if !r.HasPortal() {
			return fmt.Errorf("Routes Login declared for role %q without a portal", r)
		}
		if name == "" {
			return fmt.Errorf("Routes Login for role %q must not be empty", r)
		}
	}
	for r, name := range c.Routes.Home {
		if !r.HasPortal() {
			return fmt.Errorf("Routes Home declared for role %q without a portal", r)
		}
		if name == "" {
			return fmt.Errorf("Routes Home for role %q must not be empty", r)
		}
	}

	if err := c.Session.Keys.Validate(); err != nil {
		return err
	}
	for _, status := range c.Session.RejectStatuses {
		if status < 400 || status > 599 {
			return fmt.Errorf("Session RejectStatuses contains non-error status %d", status)
		}
	}
	if c.Session.ExpiryLeeway < 0 {
		return errors.New("Session ExpiryLeeway must be >= 0")
	}

	if c.Logout.RemoteTimeout <= 0 {
		return errors.New("Logout RemoteTimeout must be > 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	return nil
}

func (c *Config) validateAgainst(table *routes.Table) error {
	if _, ok := table.Lookup(c.Routes.DefaultLogin); !ok {
		return fmt.Errorf("%w: default login %q", ErrUnknownDestination, c.Routes.DefaultLogin)
	}
	for r, name := range c.Routes.Login {
		if _, ok := table.Lookup(name); !ok {
			return fmt.Errorf("%w: login for %s %q", ErrUnknownDestination, r, name)
		}
	}
	for r, name := range c.Routes.Home {
		if _, ok := table.Lookup(name); !ok {
			return fmt.Errorf("%w: home for %s %q", ErrUnknownDestination, r, name)
		}
	}
	return nil
}

func (c *Config) rejects(status int) bool {
	for _, s := range c.Session.RejectStatuses {
		if s == status {
			return true
		}
	}
	return false
}
