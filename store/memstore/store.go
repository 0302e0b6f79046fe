// Package memstore provides a mutex-guarded in-memory [gatekeep.AccountStore].
//
// It is the store used by the engine's own tests and is suitable for
// single-process embedding. Durability is the caller's problem: everything
// lives in process memory.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	gatekeep "github.com/sochq/gatekeep"
)

// Store keeps accounts in maps keyed by ID, with secondary indexes on the
// lowercased email and on the phone number, plus an insertion-order list.
// All methods are safe for concurrent use; Insert holds the write lock for
// the whole check-and-insert so duplicate checks are atomic.
type Store struct {
	mu       sync.RWMutex
	byID     map[string]gatekeep.Account
	emailIdx map[string]string
	phoneIdx map[string]string
	order    []string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		byID:     make(map[string]gatekeep.Account),
		emailIdx: make(map[string]string),
		phoneIdx: make(map[string]string),
	}
}

func (s *Store) FindByEmail(_ context.Context, email string) (gatekeep.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIdx[strings.ToLower(email)]
	if !ok {
		return gatekeep.Account{}, gatekeep.ErrAccountNotFound
	}
	return s.byID[id], nil
}

func (s *Store) FindByID(_ context.Context, id string) (gatekeep.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.byID[id]
	if !ok {
		return gatekeep.Account{}, gatekeep.ErrAccountNotFound
	}
	return acct, nil
}

func (s *Store) Insert(_ context.Context, account gatekeep.Account) error {
	emailKey := strings.ToLower(account.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emailIdx[emailKey]; exists {
		return gatekeep.ErrDuplicateEmail
	}
	if account.Phone != "" {
		if _, exists := s.phoneIdx[account.Phone]; exists {
			return gatekeep.ErrDuplicatePhone
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

// UpdateStatus sets the account's status and replaces its expiry date with
// expiry (nil clears it). The updated record is returned.
func (s *Store) UpdateStatus(_ context.Context, id string, status gatekeep.AccountStatus, expiry *time.Time) (gatekeep.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.byID[id]
	if !ok {
		return gatekeep.Account{}, gatekeep.ErrAccountNotFound
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

// All returns every account in insertion order.
func (s *Store) All(_ context.Context) ([]gatekeep.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]gatekeep.Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}
