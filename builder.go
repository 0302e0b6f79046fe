package gatekeep

import (
	"errors"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/sochq/gatekeep/internal/audit"
	"github.com/sochq/gatekeep/internal/rate"
	"github.com/sochq/gatekeep/password"
	"github.com/sochq/gatekeep/session"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the first Engine call.
type Builder struct {
	config Config

	store     AccountStore
	notifier  Notifier
	auditSink AuditSink
	redis     redis.UniversalClient

	built bool
}

// DefaultConfig returns the configuration Build starts from: profile fields
// required, 10-digit phones, 8-character password minimum, 30-minute session
// tokens, audit and metrics enabled. Session.SigningKey must still be set by
// the caller.
func DefaultConfig() Config {
	return defaultConfig()
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration with a clone of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore injects the account persistence collaborator. Required.
func (b *Builder) WithStore(store AccountStore) *Builder {
	b.store = store
	return b
}

// WithNotifier injects the best-effort approver notifier. Optional; when
// absent, signups simply do not notify anyone.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithAuditSink injects the audit event consumer. Optional; when auditing is
// enabled without a sink, events are discarded.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithRedis injects the Redis client backing the login throttle. Required
// when [ThrottleConfig.Enabled] is set; otherwise unused.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAdminKey sets the shared secret gating the review surface.
func (b *Builder) WithAdminKey(key string) *Builder {
	b.config.Admin.Key = key
	return b
}

// WithMetricsEnabled toggles the in-process metrics system.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires the collaborators, and returns a
// ready Engine. A Builder can build at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.store == nil {
		return nil, errors.New("account store required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hasher, err := password.New(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewManager(session.Config{
		SigningKey: cfg.Session.SigningKey,
		TokenTTL:   cfg.Session.TokenTTL,
		Issuer:     cfg.Session.Issuer,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       cfg,
		store:        b.store,
		passwordHash: hasher,
		sessions:     sessions,
		notifier:     b.notifier,
		metrics:      NewMetrics(cfg.Metrics),
	}

	if cfg.Throttle.Enabled {
		if b.redis == nil {
			return nil, errors.New("throttle enabled but no redis client")
		}
		engine.throttle = rate.New(b.redis, rate.Config{
			MaxAttempts: cfg.Throttle.MaxAttempts,
			Window:      cfg.Throttle.Window,
			ThrottleIPs: cfg.Throttle.ThrottleIPs,
		})
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true
	return engine, nil
}
