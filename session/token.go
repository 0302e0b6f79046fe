package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid is returned for tokens that fail signature, structure, or
// time-based claim checks.
var ErrTokenInvalid = errors.New("invalid session token")

// ErrTokenStale is returned for well-formed tokens issued under a previous
// boot ID. Holders must authenticate again.
var ErrTokenStale = errors.New("stale session token")

// Config controls token issuance.
type Config struct {
	SigningKey []byte
	TokenTTL   time.Duration
	Issuer     string
}

// Identity is the public account snapshot embedded in a token. Status and
// ExpiresAt are snapshots from login time; the engine re-checks the account
// record for anything security-relevant.
type Identity struct {
	Email     string
	Status    string
	ExpiresAt *time.Time
}

type sessionClaims struct {
	Email         string `json:"email"`
	AccountStatus string `json:"status"`
	AccountExpiry int64  `json:"account_expiry,omitempty"`
	Boot          string `json:"boot"`
	jwt.RegisteredClaims
}

// Manager signs and validates session tokens. A fresh boot ID is drawn at
// construction; it is part of every issued token and every validation check.
type Manager struct {
	config Config
	bootID string
}

// NewManager validates cfg, draws a boot ID, and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.SigningKey) < 32 {
		return nil, errors.New("signing key must be at least 32 bytes")
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("token TTL must be positive")
	}

	boot := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, boot); err != nil {
		return nil, err
	}

	return &Manager{
		config: cfg,
		bootID: hex.EncodeToString(boot),
	}, nil
}

// BootID returns the manager's boot identifier. Exposed for callers that want
// to log or compare it; tokens embed it automatically.
func (m *Manager) BootID() string {
	if m == nil {
		return ""
	}
	return m.bootID
}

// Issue signs a token for id, valid for the configured TTL from now.
func (m *Manager) Issue(id Identity, now time.Time) (string, error) {
	if m == nil {
		return "", ErrTokenInvalid
	}

	claims := sessionClaims{
		Email:         id.Email,
		AccountStatus: id.Status,
		Boot:          m.bootID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TokenTTL)),
		},
	}
	if id.ExpiresAt != nil {
		claims.AccountExpiry = id.ExpiresAt.Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.config.SigningKey)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Validate parses and verifies tokenString and returns the embedded identity.
// Tokens from a previous boot fail with [ErrTokenStale] even when their
// signature and expiry are otherwise valid; since the signature has already
// been checked at that point, the identity is returned alongside the error
// so callers can attribute the rejection.
func (m *Manager) Validate(tokenString string) (Identity, error) {
	if m == nil || tokenString == "" {
		return Identity{}, ErrTokenInvalid
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrTokenInvalid
			}
			return m.config.SigningKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrTokenInvalid
	}

	id := Identity{
		Email:  claims.Email,
		Status: claims.AccountStatus,
	}
	if claims.AccountExpiry != 0 {
		exp := time.Unix(claims.AccountExpiry, 0)
		id.ExpiresAt = &exp
	}

	if claims.Boot != m.bootID {
		return id, ErrTokenStale
	}
	return id, nil
}
