package gatekeep

import (
	"context"
	"errors"
	"testing"
)

func TestSignupCreatesPendingAccount(t *testing.T) {
	engine, store := newTestEngine(t)

	result, err := engine.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if result.AccountID == "" {
		t.Fatal("expected a non-empty account ID")
	}

	account, err := store.FindByID(context.Background(), result.AccountID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if account.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", account.Status)
	}
	if account.CredentialHash == "correct-horse-battery" {
		t.Fatal("password stored in the clear")
	}
	if account.ExpiryDate != nil {
		t.Fatalf("fresh account should have no expiry, got %v", account.ExpiryDate)
	}
}

func TestSignupLowercasesEmail(t *testing.T) {
	engine, store := newTestEngine(t)

	req := validSignup()
	req.Email = "  Alice@Example.COM "
	id := signupAccount(t, engine, req)

	account, err := store.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if account.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", account.Email)
	}
}

func TestSignupMissingFields(t *testing.T) {
	engine, _ := newTestEngine(t)

	cases := map[string]func(*SignupRequest){
		"email":    func(r *SignupRequest) { r.Email = "" },
		"password": func(r *SignupRequest) { r.Password = "" },
		"phone":    func(r *SignupRequest) { r.Phone = "" },
		"dob":      func(r *SignupRequest) { r.DOB = "" },
		"state":    func(r *SignupRequest) { r.State = "" },
	}
	for name, mutate := range cases {
		req := validSignup()
		mutate(&req)
		_, err := engine.Signup(context.Background(), req)
		if !errors.Is(err, ErrMissingField) {
			t.Fatalf("%s: expected ErrMissingField, got %v", name, err)
		}
	}
}

func TestSignupInvalidFormats(t *testing.T) {
	engine, _ := newTestEngine(t)

	cases := map[string]func(*SignupRequest){
		"bad email":    func(r *SignupRequest) { r.Email = "not-an-email" },
		"short phone":  func(r *SignupRequest) { r.Phone = "12345" },
		"alpha phone":  func(r *SignupRequest) { r.Phone = "555123000x" },
		"bad dob":      func(r *SignupRequest) { r.DOB = "01/04/1990" },
		"nonsense dob": func(r *SignupRequest) { r.DOB = "1990-13-45" },
	}
	for name, mutate := range cases {
		req := validSignup()
		mutate(&req)
		_, err := engine.Signup(context.Background(), req)
		if !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("%s: expected ErrInvalidFormat, got %v", name, err)
		}
	}
}

func TestSignupWeakPassword(t *testing.T) {
	engine, _ := newTestEngine(t)

	req := validSignup()
	req.Password = "short"
	_, err := engine.Signup(context.Background(), req)
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

// A request failing several checks at once reports them in a fixed order:
// missing fields win over formats, formats win over password strength.
func TestSignupValidationOrder(t *testing.T) {
	engine, _ := newTestEngine(t)

	req := validSignup()
	req.Email = ""
	req.Phone = "bad"
	req.Password = "x"
	_, err := engine.Signup(context.Background(), req)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField first, got %v", err)
	}

	req = validSignup()
	req.Phone = "bad"
	req.Password = "x"
	_, err = engine.Signup(context.Background(), req)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat before ErrWeakPassword, got %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	engine, _ := newTestEngine(t)

	signupAccount(t, engine, validSignup())

	dup := validSignup()
	dup.Email = "ALICE@example.com"
	dup.Phone = "5559990000"
	_, err := engine.Signup(context.Background(), dup)
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestSignupDuplicatePhone(t *testing.T) {
	engine, _ := newTestEngine(t)

	signupAccount(t, engine, validSignup())

	dup := validSignup()
	dup.Email = "bob@example.com"
	_, err := engine.Signup(context.Background(), dup)
	if !errors.Is(err, ErrDuplicatePhone) {
		t.Fatalf("expected ErrDuplicatePhone, got %v", err)
	}
}

func TestSignupProfileOptionalWhenNotRequired(t *testing.T) {
	store := newTestStore(t)
	cfg := testConfig()
	cfg.Validation.RequireProfile = false

	engine, err := New().WithConfig(cfg).WithStore(store).Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	req := SignupRequest{Email: "bare@example.com", Password: "correct-horse-battery"}
	if _, err := engine.Signup(context.Background(), req); err != nil {
		t.Fatalf("signup without profile failed: %v", err)
	}
}

type failingNotifier struct {
	calls int
}

func (f *failingNotifier) NotifyPendingSignup(context.Context, PublicView) error {
	f.calls++
	return errors.New("relay down")
}

func TestSignupSurvivesNotifierFailure(t *testing.T) {
	store := newTestStore(t)
	notifier := &failingNotifier{}

	engine, err := New().
		WithConfig(testConfig()).
		WithStore(store).
		WithNotifier(notifier).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := engine.Signup(context.Background(), validSignup()); err != nil {
		t.Fatalf("signup should succeed despite notifier failure: %v", err)
	}
	if notifier.calls != 1 {
		t.Fatalf("expected one notification attempt, got %d", notifier.calls)
	}

	snapshot := engine.MetricsSnapshot()
	if got := snapshot.Counters[MetricNotifyFailure]; got != 1 {
		t.Fatalf("expected notify failure counter 1, got %d", got)
	}
}

func TestSignupStoreOutageWrapsUnavailable(t *testing.T) {
	engine, store := newTestEngine(t)
	store.insertErr = errors.New("connection refused")

	_, err := engine.Signup(context.Background(), validSignup())
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
