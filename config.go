package gatekeep

import (
	"errors"
	"time"
)

// Config defines a public type used by gatekeep APIs.
//
// Config instances are intended to be configured before [Builder.Build] and
// treated as immutable afterwards; the engine keeps its own clone.
type Config struct {
	Validation ValidationConfig
	Password   PasswordConfig
	Session    SessionConfig
	Admin      AdminConfig
	Throttle   ThrottleConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
VALIDATION CONFIG
====================================
*/

// ValidationConfig controls signup input validation. Checks run in a fixed
// order and short-circuit on the first failure: required fields, formats,
// password length, duplicate email, duplicate phone.
type ValidationConfig struct {
	// RequireProfile makes Phone, DOB, and State mandatory on signup.
	RequireProfile bool
	// PhoneDigits is the exact digit count a phone number must have.
	PhoneDigits int
	// MinPasswordLength is the weak-password cutoff, in bytes.
	MinPasswordLength int
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds the Argon2id parameters used to hash credentials.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls client-held session token issuance. Tokens are
// HMAC-signed and carry the engine's boot ID; they stop validating when the
// engine restarts, which forces re-authentication on every fresh load.
type SessionConfig struct {
	SigningKey []byte
	TokenTTL   time.Duration
	Issuer     string
}

// AdminConfig gates the review surface. An empty Key disables admin access
// entirely: VerifyAdminKey fails for every input rather than for none.
type AdminConfig struct {
	Key string
}

/*
====================================
THROTTLE CONFIG
====================================
*/

// ThrottleConfig controls the Redis-backed login throttle. Disabled by
// default; enabling it requires a Redis client on the builder. Only failed
// attempts count against the window, and a successful login clears the
// counters. A Redis outage fails open: logins proceed unthrottled rather
// than locking everyone out.
type ThrottleConfig struct {
	Enabled     bool
	MaxAttempts int
	Window      time.Duration
	ThrottleIPs bool
}

// AuditConfig defines a public type used by gatekeep APIs.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by gatekeep APIs.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Validation: ValidationConfig{
			RequireProfile:    true,
			PhoneDigits:       10,
			MinPasswordLength: 8,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Session: SessionConfig{
			TokenTTL: 30 * time.Minute,
			Issuer:   "gatekeep",
		},
		Throttle: ThrottleConfig{
			MaxAttempts: 5,
			Window:      15 * time.Minute,
			ThrottleIPs: true,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Session.SigningKey != nil {
		out.Session.SigningKey = make([]byte, len(cfg.Session.SigningKey))
		copy(out.Session.SigningKey, cfg.Session.SigningKey)
	}
	return out
}

// Validate checks the configuration for values Build cannot work with.
func (c Config) Validate() error {
	if c.Validation.PhoneDigits <= 0 {
		return errors.New("Validation.PhoneDigits must be positive")
	}
	if c.Validation.MinPasswordLength < 8 {
		return errors.New("Validation.MinPasswordLength must be at least 8")
	}
	if len(c.Session.SigningKey) < 32 {
		return errors.New("Session.SigningKey must be at least 32 bytes")
	}
	if c.Session.TokenTTL <= 0 {
		return errors.New("Session.TokenTTL must be positive")
	}
	if c.Throttle.Enabled {
		if c.Throttle.MaxAttempts <= 0 {
			return errors.New("Throttle.MaxAttempts must be positive")
		}
		if c.Throttle.Window <= 0 {
			return errors.New("Throttle.Window must be positive")
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}
