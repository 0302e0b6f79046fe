package gatekeep

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Signup validates req, hashes the password, and inserts a pending account.
// Validation runs in a fixed order and stops at the first failure: required
// fields, field formats, password length, then the store's atomic duplicate
// checks. A successful signup is never auto-approved; the account waits for
// [Engine.Review].
func (e *Engine) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	if e == nil || e.store == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validateSignup(e.config.Validation, req); err != nil {
		e.metricInc(MetricSignupInvalid)
		e.emitAudit(ctx, auditEventSignupFailure, false, "", req.Email, err, func() map[string]string {
			return map[string]string{
				"reason": "validation",
			}
		})
		return nil, err
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventSignupFailure, false, "", req.Email, err, func() map[string]string {
			return map[string]string{
				"reason": "hash_failed",
			}
		})
		return nil, err
	}
	req.Password = ""

	account := Account{
		ID:             uuid.NewString(),
		Email:          req.Email,
		Phone:          req.Phone,
		DOB:            req.DOB,
		State:          req.State,
		CredentialHash: hash,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	}

	if err := e.store.Insert(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicatePhone) {
			e.metricInc(MetricSignupDuplicate)
			e.emitAudit(ctx, auditEventSignupDuplicate, false, "", req.Email, err, nil)
			return nil, err
		}
		e.emitAudit(ctx, auditEventSignupFailure, false, "", req.Email, err, func() map[string]string {
			return map[string]string{
				"reason": "store_insert_failed",
			}
		})
		if errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	if e.notifier != nil {
		// Best-effort: a dead mail relay must not fail the signup.
		if err := e.notifier.NotifyPendingSignup(ctx, account.Public()); err != nil {
			e.metricInc(MetricNotifyFailure)
			e.emitAudit(ctx, auditEventNotifyFailure, false, account.ID, account.Email, nil, func() map[string]string {
				return map[string]string{
					"error": err.Error(),
				}
			})
		}
	}

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, auditEventSignupSuccess, true, account.ID, account.Email, nil, nil)

	return &SignupResult{
		AccountID: account.ID,
		Message:   "Signup submitted. Awaiting admin approval.",
	}, nil
}

func validateSignup(cfg ValidationConfig, req SignupRequest) error {
	if req.Email == "" || req.Password == "" {
		return ErrMissingField
	}
	if cfg.RequireProfile && (req.Phone == "" || req.DOB == "" || req.State == "") {
		return ErrMissingField
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("%w: email", ErrInvalidFormat)
	}
	if req.Phone != "" && !allDigits(req.Phone, cfg.PhoneDigits) {
		return fmt.Errorf("%w: phone number must be %d digits", ErrInvalidFormat, cfg.PhoneDigits)
	}
	if req.DOB != "" {
		if _, err := time.Parse("2006-01-02", req.DOB); err != nil {
			return fmt.Errorf("%w: date of birth", ErrInvalidFormat)
		}
	}

	if len(req.Password) < cfg.MinPasswordLength {
		return ErrWeakPassword
	}

	return nil
}

func allDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
