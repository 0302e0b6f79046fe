package gatekeep

import (
	"crypto/subtle"

	internalaudit "github.com/sochq/gatekeep/internal/audit"
	"github.com/sochq/gatekeep/internal/rate"
	"github.com/sochq/gatekeep/password"
	"github.com/sochq/gatekeep/session"
)

// Engine is the auth decision core. It validates signup requests, gates
// logins on account status and expiry, and applies admin review decisions.
// All state lives in the injected [AccountStore]; the Engine itself never
// retains anything between calls beyond its immutable collaborators.
//
// Engine instances are configured through [Builder.Build] and treated as
// immutable afterwards; methods are safe for concurrent use.
type Engine struct {
	config       Config
	store        AccountStore
	passwordHash *password.Hasher
	sessions     *session.Manager
	notifier     Notifier
	throttle     *rate.Limiter
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
}

// Close flushes and stops the audit dispatcher. The Engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a deep copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// BootID returns the session manager's boot identifier. Tokens issued under
// a different boot ID fail validation with [ErrSessionStale].
func (e *Engine) BootID() string {
	if e == nil || e.sessions == nil {
		return ""
	}
	return e.sessions.BootID()
}

// VerifyAdminKey checks the caller-supplied admin key in constant time.
// When no key is configured, every input fails: an unset secret closes the
// admin surface rather than opening it.
func (e *Engine) VerifyAdminKey(key string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	configured := e.config.Admin.Key
	if configured == "" || key == "" {
		return ErrAdminKeyInvalid
	}
	if subtle.ConstantTimeCompare([]byte(configured), []byte(key)) != 1 {
		return ErrAdminKeyInvalid
	}
	return nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
