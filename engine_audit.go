package gatekeep

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventSignupSuccess   = "signup_success"
	auditEventSignupFailure   = "signup_failure"
	auditEventSignupDuplicate = "signup_duplicate"
	auditEventLoginSuccess    = "login_success"
	auditEventLoginFailure    = "login_failure"
	auditEventReviewDecision  = "review_decision"
	auditEventRenewal         = "renewal"
	auditEventSessionRejected = "session_rejected"
	auditEventLogout          = "logout"
	auditEventNotifyFailure   = "notify_failure"
)

// AuditErrorCode is the stable, enumerable error label carried in audit
// events instead of raw error text.
type AuditErrorCode string

const (
	auditErrMissingField       AuditErrorCode = "missing_field"
	auditErrInvalidFormat      AuditErrorCode = "invalid_format"
	auditErrWeakPassword       AuditErrorCode = "weak_password"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrPendingApproval    AuditErrorCode = "pending_approval"
	auditErrRejected           AuditErrorCode = "rejected"
	auditErrExpired            AuditErrorCode = "expired"
	auditErrThrottled          AuditErrorCode = "too_many_attempts"
	auditErrNotFound           AuditErrorCode = "account_not_found"
	auditErrInvalidDecision    AuditErrorCode = "invalid_decision"
	auditErrNotApproved        AuditErrorCode = "not_approved"
	auditErrAdminKey           AuditErrorCode = "admin_key_invalid"
	auditErrSessionInvalid     AuditErrorCode = "session_invalid"
	auditErrSessionStale       AuditErrorCode = "session_stale"
	auditErrUnavailable        AuditErrorCode = "store_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrMissingField):
		return auditErrMissingField
	case errors.Is(err, ErrInvalidFormat):
		return auditErrInvalidFormat
	case errors.Is(err, ErrWeakPassword):
		return auditErrWeakPassword
	case errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrDuplicatePhone):
		return auditErrDuplicate
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrPendingApproval):
		return auditErrPendingApproval
	case errors.Is(err, ErrRejected):
		return auditErrRejected
	case errors.Is(err, ErrExpired):
		return auditErrExpired
	case errors.Is(err, ErrTooManyAttempts):
		return auditErrThrottled
	case errors.Is(err, ErrAccountNotFound):
		return auditErrNotFound
	case errors.Is(err, ErrInvalidDecision):
		return auditErrInvalidDecision
	case errors.Is(err, ErrNotApproved):
		return auditErrNotApproved
	case errors.Is(err, ErrAdminKeyInvalid):
		return auditErrAdminKey
	case errors.Is(err, ErrSessionTokenInvalid):
		return auditErrSessionInvalid
	case errors.Is(err, ErrSessionStale):
		return auditErrSessionStale
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
