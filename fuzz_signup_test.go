package gatekeep

import (
	"errors"
	"net/mail"
	"testing"
)

// FuzzValidateSignup exercises the signup validator with arbitrary field
// combinations. Goal: no panics, and every rejection maps onto one of the
// validation sentinels.
func FuzzValidateSignup(f *testing.F) {
	valid := validSignup()
	f.Add(valid.Email, valid.Password, valid.Phone, valid.DOB, valid.State)

	f.Add("", "", "", "", "")
	f.Add("not-an-email", "correct-horse-battery", "5551230000", "1990-04-01", "CA")
	f.Add("a@b.co", "short", "5551230000", "1990-04-01", "CA")
	f.Add("a@b.co", "correct-horse-battery", "555-123-0000", "1990-04-01", "CA")
	f.Add("a@b.co", "correct-horse-battery", "5551230000", "04/01/1990", "CA")
	f.Add("a@b.co\x00", "correct-horse-battery", "5551230000", "1990-04-01", "CA")
	f.Add("héllo@exämple.com", "p\xc3\x28ssword-long-enough", "0000000000", "0001-01-01", "")

	cfg := defaultConfig().Validation

	f.Fuzz(func(t *testing.T, email, password, phone, dob, state string) {
		req := SignupRequest{
			Email:    email,
			Password: password,
			Phone:    phone,
			DOB:      dob,
			State:    state,
		}

		err := validateSignup(cfg, req)
		if err == nil {
			// Accepted input must actually satisfy the rules.
			if _, perr := mail.ParseAddress(email); perr != nil {
				t.Fatalf("accepted unparseable email %q", email)
			}
			if len(password) < cfg.MinPasswordLength {
				t.Fatalf("accepted %d-byte password below minimum %d", len(password), cfg.MinPasswordLength)
			}
			return
		}

		if !errors.Is(err, ErrMissingField) &&
			!errors.Is(err, ErrInvalidFormat) &&
			!errors.Is(err, ErrWeakPassword) {
			t.Fatalf("rejection outside the validation sentinels: %v", err)
		}
	})
}
