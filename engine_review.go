package gatekeep

import (
	"context"
	"time"
)

// Review applies an admin decision to a pending or approved account.
//
// Approval may set an expiry date; rejection always clears it. A rejected
// account cannot be approved again through Review, and no decision returns
// an account to pending. Callers are expected to have authenticated the
// admin first, via [Engine.VerifyAdminKey] or their own means.
func (e *Engine) Review(ctx context.Context, req ReviewRequest) (*ReviewResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	if req.Decision != DecisionApprove && req.Decision != DecisionReject {
		e.emitAudit(ctx, auditEventReviewDecision, false, req.AccountID, "", ErrInvalidDecision, nil)
		return nil, ErrInvalidDecision
	}

	account, err := e.store.FindByID(ctx, req.AccountID)
	if err != nil {
		e.emitAudit(ctx, auditEventReviewDecision, false, req.AccountID, "", err, nil)
		return nil, err
	}

	prior := account.Status

	var (
		next   AccountStatus
		expiry *time.Time
	)
	switch req.Decision {
	case DecisionApprove:
		// Rejection is terminal for approval purposes; there is no path
		// back through this API.
		if prior == StatusRejected {
			e.emitAudit(ctx, auditEventReviewDecision, false, account.ID, account.Email, ErrInvalidDecision, func() map[string]string {
				return map[string]string{
					"reason":       "approve_after_reject",
					"prior_status": string(prior),
				}
			})
			return nil, ErrInvalidDecision
		}
		next = StatusApproved
		expiry = req.ExpiryDate
	case DecisionReject:
		next = StatusRejected
		expiry = nil
	}

	updated, err := e.store.UpdateStatus(ctx, account.ID, next, expiry)
	if err != nil {
		e.emitAudit(ctx, auditEventReviewDecision, false, account.ID, account.Email, err, nil)
		return nil, err
	}

	if next == StatusApproved {
		e.metricInc(MetricReviewApproved)
	} else {
		e.metricInc(MetricReviewRejected)
	}
	e.emitAudit(ctx, auditEventReviewDecision, true, updated.ID, updated.Email, nil, func() map[string]string {
		return map[string]string{
			"decision":     string(req.Decision),
			"prior_status": string(prior),
			"new_status":   string(updated.Status),
		}
	})

	return &ReviewResult{
		Account:     updated.Public(),
		PriorStatus: prior,
	}, nil
}

// Renew pushes out the expiry date of an approved account. Accounts in any
// other status fail with [ErrNotApproved]; an expired but still approved
// account is eligible, which is how lapsed accounts come back.
func (e *Engine) Renew(ctx context.Context, accountID string, newExpiry time.Time) (*ReviewResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	account, err := e.store.FindByID(ctx, accountID)
	if err != nil {
		e.emitAudit(ctx, auditEventRenewal, false, accountID, "", err, nil)
		return nil, err
	}

	if account.Status != StatusApproved {
		e.emitAudit(ctx, auditEventRenewal, false, account.ID, account.Email, ErrNotApproved, func() map[string]string {
			return map[string]string{
				"status": string(account.Status),
			}
		})
		return nil, ErrNotApproved
	}

	updated, err := e.store.UpdateStatus(ctx, account.ID, StatusApproved, &newExpiry)
	if err != nil {
		e.emitAudit(ctx, auditEventRenewal, false, account.ID, account.Email, err, nil)
		return nil, err
	}

	e.metricInc(MetricRenewal)
	e.emitAudit(ctx, auditEventRenewal, true, updated.ID, updated.Email, nil, func() map[string]string {
		return map[string]string{
			"new_expiry": newExpiry.UTC().Format(time.RFC3339),
		}
	})

	return &ReviewResult{
		Account:     updated.Public(),
		PriorStatus: account.Status,
	}, nil
}

// Pending lists accounts awaiting review, oldest first.
func (e *Engine) Pending(ctx context.Context) ([]PublicView, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	all, err := e.store.All(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]PublicView, 0, len(all))
	for _, account := range all {
		if account.Status == StatusPending {
			views = append(views, account.Public())
		}
	}
	return views, nil
}

// Accounts lists every account in insertion order, regardless of status.
func (e *Engine) Accounts(ctx context.Context) ([]PublicView, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	all, err := e.store.All(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]PublicView, 0, len(all))
	for _, account := range all {
		views = append(views, account.Public())
	}
	return views, nil
}
