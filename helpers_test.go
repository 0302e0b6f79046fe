package gatekeep

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Session.SigningKey = []byte("0123456789abcdef0123456789abcdef")
	// Keep the hasher cheap; correctness, not cost, is under test.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Audit.Enabled = false
	return cfg
}

// testStore is a map-backed AccountStore double mirroring the semantics the
// engine relies on: case-insensitive email uniqueness, atomic duplicate
// checks, insertion order preserved by All.
type testStore struct {
	mu       sync.Mutex
	byID     map[string]Account
	emailIdx map[string]string
	phoneIdx map[string]string
	order    []string

	insertErr error
	findErr   error
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	return &testStore{
		byID:     make(map[string]Account),
		emailIdx: make(map[string]string),
		phoneIdx: make(map[string]string),
	}
}

func (s *testStore) FindByEmail(_ context.Context, email string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findErr != nil {
		return Account{}, s.findErr
	}
	id, ok := s.emailIdx[strings.ToLower(email)]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return s.byID[id], nil
}

func (s *testStore) FindByID(_ context.Context, id string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findErr != nil {
		return Account{}, s.findErr
	}
	acct, ok := s.byID[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return acct, nil
}

func (s *testStore) Insert(_ context.Context, account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return s.insertErr
	}
	emailKey := strings.ToLower(account.Email)
	if _, exists := s.emailIdx[emailKey]; exists {
		return ErrDuplicateEmail
	}
	if account.Phone != "" {
		if _, exists := s.phoneIdx[account.Phone]; exists {
			return ErrDuplicatePhone
		}
	}
	s.byID[account.ID] = account
	s.emailIdx[emailKey] = account.ID
	if account.Phone != "" {
		s.phoneIdx[account.Phone] = account.ID
	}
	s.order = append(s.order, account.ID)
	return nil
}

func (s *testStore) UpdateStatus(_ context.Context, id string, status AccountStatus, expiry *time.Time) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.byID[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	acct.Status = status
	if expiry != nil {
		exp := *expiry
		acct.ExpiryDate = &exp
	} else {
		acct.ExpiryDate = nil
	}
	s.byID[id] = acct
	return acct, nil
}

func (s *testStore) All(_ context.Context) ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func newTestEngine(t *testing.T) (*Engine, *testStore) {
	t.Helper()

	store := newTestStore(t)
	engine, err := New().
		WithConfig(testConfig()).
		WithStore(store).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, store
}

func validSignup() SignupRequest {
	return SignupRequest{
		Email:    "alice@example.com",
		Password: "correct-horse-battery",
		Phone:    "5551230000",
		DOB:      "1990-04-01",
		State:    "CA",
	}
}

func signupAccount(t *testing.T, engine *Engine, req SignupRequest) string {
	t.Helper()

	result, err := engine.Signup(context.Background(), req)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	return result.AccountID
}

func approveAccount(t *testing.T, engine *Engine, accountID string, expiry *time.Time) {
	t.Helper()

	_, err := engine.Review(context.Background(), ReviewRequest{
		AccountID:  accountID,
		Decision:   DecisionApprove,
		ExpiryDate: expiry,
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
