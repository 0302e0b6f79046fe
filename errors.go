package gatekeep

import "errors"

var (
	// ErrMissingField is returned by Signup when a required field is absent.
	ErrMissingField = errors.New("all fields are required")
	// ErrInvalidFormat is returned by Signup when a field fails its format check.
	ErrInvalidFormat = errors.New("field format invalid")
	// ErrWeakPassword is returned by Signup when the password is shorter than the minimum length.
	ErrWeakPassword = errors.New("password must be at least 8 characters long")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicatePhone is returned when the phone number is already registered.
	ErrDuplicatePhone = errors.New("phone number already registered")
	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// password mismatch. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTooManyAttempts is returned by Login once the failed-attempt budget
	// for the email or client IP is exhausted.
	ErrTooManyAttempts = errors.New("too many failed login attempts")
	// ErrPendingApproval is returned by Login while the account awaits review.
	ErrPendingApproval = errors.New("account is pending approval")
	// ErrRejected is returned by Login for a rejected account.
	ErrRejected = errors.New("account has been rejected")
	// ErrExpired is returned by Login once the account's expiry date has passed.
	ErrExpired = errors.New("account has expired")
	// ErrAccountNotFound is returned by store lookups and review operations
	// targeting an unknown account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrStoreUnavailable wraps persistence read/write failures. Callers must
	// surface it as a generic server error without internal detail.
	ErrStoreUnavailable = errors.New("account store unavailable")
	// ErrInvalidDecision is returned by Review for a decision other than
	// approve or reject.
	ErrInvalidDecision = errors.New("invalid review decision")
	// ErrNotApproved is returned by Renew when the target account is not in
	// the approved state.
	ErrNotApproved = errors.New("account not approved")
	// ErrAdminKeyInvalid is returned by VerifyAdminKey for a missing or wrong key.
	ErrAdminKeyInvalid = errors.New("admin key invalid")
	// ErrSessionTokenInvalid is returned when a session token fails signature
	// or claim validation.
	ErrSessionTokenInvalid = errors.New("invalid session token")
	// ErrSessionStale is returned for a structurally valid session token
	// issued before the current engine boot. Fresh application loads must
	// re-authenticate.
	ErrSessionStale = errors.New("session predates current boot")
	// ErrEngineNotReady is returned when an Engine method is called before
	// Build wired its collaborators.
	ErrEngineNotReady = errors.New("engine not initialized")
)
