package gatekeep

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/sochq/gatekeep/internal/audit"
)

// AccountStatus is the lifecycle state of an account. The zero value is not
// valid; accounts are created as [StatusPending] and only ever move to
// [StatusApproved] or [StatusRejected] through a review decision.
type AccountStatus string

const (
	// StatusPending marks an account awaiting admin review. Every account
	// starts here; nothing moves an account back once reviewed.
	StatusPending AccountStatus = "pending"
	// StatusApproved marks an account cleared for login.
	StatusApproved AccountStatus = "approved"
	// StatusRejected marks an account denied login. Reachable from both
	// pending (denial) and approved (revocation).
	StatusRejected AccountStatus = "rejected"
)

// Valid reports whether s is one of the three known lifecycle states.
func (s AccountStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Account is the durable record of one registered user.
//
// Email is the unique key across all accounts and is compared
// case-insensitively: the engine lowercases it before any store call, and
// stores index the lowercased form. ID and CreatedAt are immutable after
// Insert. CredentialHash is an argon2id PHC string and never appears in a
// [PublicView], an audit event, or a log line.
type Account struct {
	ID             string
	Email          string
	Phone          string
	DOB            string
	State          string
	CredentialHash string
	Status         AccountStatus
	ExpiryDate     *time.Time
	CreatedAt      time.Time
}

// Expired reports whether the account's expiry date has passed at now.
// Accounts without an expiry date never expire.
func (a Account) Expired(now time.Time) bool {
	return a.ExpiryDate != nil && now.After(*a.ExpiryDate)
}

// Public returns the caller-safe projection of the account. It excludes the
// credential hash and the raw profile fields.
func (a Account) Public() PublicView {
	return PublicView{
		Email:      a.Email,
		Status:     a.Status,
		ExpiryDate: a.ExpiryDate,
		CreatedAt:  a.CreatedAt,
	}
}

// PublicView is the account projection returned to callers. It is the only
// account shape that may leave the trusted boundary.
type PublicView struct {
	Email      string        `json:"email"`
	Status     AccountStatus `json:"status"`
	ExpiryDate *time.Time    `json:"expiryDate,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// SignupRequest is the input for [Engine.Signup]. Email and Password are
// always required; Phone, DOB, and State are required when
// [ValidationConfig.RequireProfile] is set. The profile fields are validated
// but carry no further meaning inside the engine.
type SignupRequest struct {
	Email    string
	Password string
	Phone    string
	DOB      string
	State    string
}

// SignupResult is returned by [Engine.Signup] on success.
type SignupResult struct {
	AccountID string
	Message   string
}

// ReviewDecision is an admin's verdict on an account.
type ReviewDecision string

const (
	// DecisionApprove clears the account for login.
	DecisionApprove ReviewDecision = "approve"
	// DecisionReject denies (or revokes) the account.
	DecisionReject ReviewDecision = "reject"
)

// ReviewRequest is the input for [Engine.Review]. ExpiryDate is only applied
// on approval; a nil ExpiryDate means the account never expires.
type ReviewRequest struct {
	AccountID  string
	Decision   ReviewDecision
	ExpiryDate *time.Time
}

// ReviewResult is returned by [Engine.Review]. PriorStatus records the state
// the account was in before the decision, for the caller's audit trail.
type ReviewResult struct {
	Account     PublicView
	PriorStatus AccountStatus
}

// LoginResult is returned by [Engine.Login] on success. SessionToken is the
// signed, client-held session; it embeds the public view and the engine's
// boot ID, so it stops validating after the next engine restart.
type LoginResult struct {
	Message      string
	User         PublicView
	SessionToken string
}

// AccountStore is the persistence contract the engine operates against.
// Implementations must keep Insert atomic with its uniqueness checks: two
// concurrent inserts for the same email must never both succeed
// (check-then-act is closed inside the store, not left to the engine).
//
// Error contract: FindByEmail and FindByID return [ErrAccountNotFound] for
// unknown keys; Insert returns [ErrDuplicateEmail] or [ErrDuplicatePhone];
// UpdateStatus returns [ErrAccountNotFound]; any infrastructure failure is
// wrapped in [ErrStoreUnavailable]. All errors must be errors.Is-matchable.
//
// All returns every account in insertion order, for administrative listing.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
	Insert(ctx context.Context, account Account) error
	UpdateStatus(ctx context.Context, id string, status AccountStatus, expiry *time.Time) (Account, error)
	All(ctx context.Context) ([]Account, error)
}

// Notifier is told about new pending signups so an approver can be alerted.
// Delivery is best-effort: the engine logs a failed notification and moves
// on; it never fails the signup.
type Notifier interface {
	NotifyPendingSignup(ctx context.Context, view PublicView) error
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
