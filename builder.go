package goGuard

import (
	"errors"

	"github.com/MrEthical07/goGuard/internal/audit"
	"github.com/MrEthical07/goGuard/internal/flows"
	"github.com/MrEthical07/goGuard/jwt"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/routes"
	"github.com/MrEthical07/goGuard/session"
	"go.uber.org/zap"
)

// Builder assembles a Guard. A Builder can be used for one Build call.
type Builder struct {
	config    Config
	store     session.Store
	remote    RemoteSession
	table     *routes.Table
	logger    *zap.Logger
	auditSink AuditSink
	validator TokenValidator

	built bool
}

// New returns a Builder preloaded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the store used by Navigate. Stores can also be passed per
// call through NavigateWith and the other store-taking methods.
func (b *Builder) WithStore(store session.Store) *Builder {
	b.store = store
	return b
}

func (b *Builder) WithRemote(remote RemoteSession) *Builder {
	b.remote = remote
	return b
}

// WithRoutes replaces the default portal route table.
func (b *Builder) WithRoutes(table *routes.Table) *Builder {
	b.table = table
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithTokenValidator sets the expiry check and enables it.
func (b *Builder) WithTokenValidator(v TokenValidator) *Builder {
	b.validator = v
	b.config.Session.CheckTokenExpiry = v != nil
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Guard.
func (b *Builder) Build() (*Guard, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.remote == nil {
		return nil, ErrRemoteRequired
	}

	table := b.table
	if table == nil {
		table = routes.Default()
	}
	if err := cfg.validateAgainst(table); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// -------- TOKEN EXPIRY --------
	var validator TokenValidator
	if cfg.Session.CheckTokenExpiry {
		validator = b.validator
		if validator == nil {
			validator = jwt.NewInspector(cfg.Session.ExpiryLeeway)
		}
	}

	g := &Guard{
		config:    cfg,
		table:     table,
		store:     b.store,
		remote:    b.remote,
		validator: validator,
		logger:    logger.Named("guard"),
		metrics:   NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
			Retain:     cfg.Audit.Retain,
		}, b.auditSink),
	}

	// -------- FLOW DEPS --------
	login := roleLookup(cfg.Routes.Login)
	home := roleLookup(cfg.Routes.Home)

	g.flows = flows.Deps{
		Decide: flows.DecideDeps{
			DefaultLogin: cfg.Routes.DefaultLogin,
			LoginFor:     login,
			HomeFor:      home,
		},
		Logout: flows.LogoutDeps{
			Keys:         cfg.Session.Keys,
			Remote:       b.remote,
			DefaultLogin: cfg.Routes.DefaultLogin,
			LoginFor:     login,
			Dispatch:     g.dispatchRemote,
		},
	}
	if validator != nil {
		g.flows.Decide.CheckToken = validator.Check
	}

	b.built = true
	return g, nil
}

func roleLookup(m map[permission.Role]string) func(permission.Role) (string, bool) {
	return func(r permission.Role) (string, bool) {
		name, ok := m[r]
		return name, ok && name != ""
	}
}
