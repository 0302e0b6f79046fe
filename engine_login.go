package gatekeep

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sochq/gatekeep/internal/rate"
	"github.com/sochq/gatekeep/session"
)

// Login authenticates email/password and, for approved non-expired accounts,
// issues a session token.
//
// Credentials are always verified before the account's gating status is
// consulted, so a wrong password on a pending or rejected account fails with
// [ErrInvalidCredentials] rather than leaking that the account exists in
// that state. Gating failures after a correct password come back as
// [ErrPendingApproval], [ErrRejected], or [ErrExpired].
//
// When the login throttle is enabled, repeated credential failures for the
// same email or client IP are cut off with [ErrTooManyAttempts] until the
// window lapses; a successful login clears the counters.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if e == nil || e.store == nil || e.passwordHash == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.Observe(MetricLoginLatency, time.Since(start))
		}
	}()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", email, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "empty_credentials",
			}
		})
		return nil, ErrInvalidCredentials
	}

	ip := clientIPFromContext(ctx)
	if e.throttle != nil {
		switch err := e.throttle.CheckLogin(ctx, email, ip); {
		case errors.Is(err, rate.ErrRateLimited):
			e.metricInc(MetricLoginThrottled)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", email, ErrTooManyAttempts, nil)
			return nil, ErrTooManyAttempts
		case err != nil:
			// Throttle backend down: fail open rather than lock everyone out.
		}
	}

	account, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.recordLoginFailure(ctx, email, ip)
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", email, ErrInvalidCredentials, func() map[string]string {
				return map[string]string{
					"reason": "account_not_found",
				}
			})
			return nil, ErrInvalidCredentials
		}
		e.emitAudit(ctx, auditEventLoginFailure, false, "", email, err, nil)
		return nil, err
	}

	ok, err := e.passwordHash.Verify(password, account.CredentialHash)
	password = ""
	if err != nil || !ok {
		e.recordLoginFailure(ctx, email, ip)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, account.ID, email, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "password_mismatch",
			}
		})
		return nil, ErrInvalidCredentials
	}

	switch account.Status {
	case StatusPending:
		e.metricInc(MetricLoginPending)
		e.emitAudit(ctx, auditEventLoginFailure, false, account.ID, email, ErrPendingApproval, nil)
		return nil, ErrPendingApproval
	case StatusRejected:
		e.metricInc(MetricLoginRejected)
		e.emitAudit(ctx, auditEventLoginFailure, false, account.ID, email, ErrRejected, nil)
		return nil, ErrRejected
	case StatusApproved:
	default:
		e.emitAudit(ctx, auditEventLoginFailure, false, account.ID, email, ErrStoreUnavailable, func() map[string]string {
			return map[string]string{
				"reason": "unknown_status",
				"status": string(account.Status),
			}
		})
		return nil, ErrStoreUnavailable
	}

	now := time.Now()
	if account.Expired(now) {
		e.metricInc(MetricLoginExpired)
		e.emitAudit(ctx, auditEventLoginFailure, false, account.ID, email, ErrExpired, nil)
		return nil, ErrExpired
	}

	token, err := e.sessions.Issue(session.Identity{
		Email:     account.Email,
		Status:    string(account.Status),
		ExpiresAt: account.ExpiryDate,
	}, now)
	if err != nil {
		e.emitAudit(ctx, auditEventLoginFailure, false, account.ID, email, err, func() map[string]string {
			return map[string]string{
				"reason": "token_issue_failed",
			}
		})
		return nil, err
	}

	if e.throttle != nil {
		_ = e.throttle.Reset(ctx, email, ip)
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionIssued)
	e.emitAudit(ctx, auditEventLoginSuccess, true, account.ID, email, nil, nil)

	return &LoginResult{
		Message:      "Login successful",
		User:         account.Public(),
		SessionToken: token,
	}, nil
}

func (e *Engine) recordLoginFailure(ctx context.Context, email, ip string) {
	if e.throttle == nil {
		return
	}
	_ = e.throttle.RecordFailure(ctx, email, ip)
}

// ValidateSession checks token and re-applies the account gate against the
// current store record, so a revocation or expiry after issuance invalidates
// the session immediately. Tokens issued before the engine's current boot
// fail with [ErrSessionStale].
func (e *Engine) ValidateSession(ctx context.Context, token string) (*PublicView, error) {
	if e == nil || e.sessions == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	id, err := e.sessions.Validate(token)
	if err != nil {
		if errors.Is(err, session.ErrTokenStale) {
			e.metricInc(MetricSessionStale)
			e.emitAudit(ctx, auditEventSessionRejected, false, "", id.Email, ErrSessionStale, nil)
			return nil, ErrSessionStale
		}
		e.emitAudit(ctx, auditEventSessionRejected, false, "", "", ErrSessionTokenInvalid, nil)
		return nil, ErrSessionTokenInvalid
	}

	account, err := e.store.FindByEmail(ctx, id.Email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.emitAudit(ctx, auditEventSessionRejected, false, "", id.Email, ErrSessionTokenInvalid, nil)
			return nil, ErrSessionTokenInvalid
		}
		return nil, err
	}

	switch account.Status {
	case StatusPending:
		e.emitAudit(ctx, auditEventSessionRejected, false, account.ID, account.Email, ErrPendingApproval, nil)
		return nil, ErrPendingApproval
	case StatusRejected:
		e.emitAudit(ctx, auditEventSessionRejected, false, account.ID, account.Email, ErrRejected, nil)
		return nil, ErrRejected
	}
	if account.Expired(time.Now()) {
		e.emitAudit(ctx, auditEventSessionRejected, false, account.ID, account.Email, ErrExpired, nil)
		return nil, ErrExpired
	}

	view := account.Public()
	return &view, nil
}

// Logout records the end of a session. Tokens are client-held, so there is
// nothing server-side to destroy; the call exists for the audit trail and
// the logout counter.
func (e *Engine) Logout(ctx context.Context, token string) {
	if e == nil {
		return
	}

	email := ""
	if e.sessions != nil {
		if id, err := e.sessions.Validate(token); err == nil {
			email = id.Email
		}
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, "", email, nil, nil)
}
