// Package redisstore provides a Redis-backed [gatekeep.AccountStore].
//
// # Key layout
//
//	<prefix>:acct:<id>     — JSON account record
//	<prefix>:email:<email> — lowercased email -> account id
//	<prefix>:phone:<phone> — phone number -> account id
//	<prefix>:accounts      — list of account ids in insertion order
//
// Insert runs as a single Lua script so the duplicate-email and
// duplicate-phone checks are atomic with the writes: two concurrent inserts
// for the same email can never both succeed. UpdateStatus likewise rewrites
// the record inside one script so a concurrent reader never observes a
// half-applied decision.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	gatekeep "github.com/sochq/gatekeep"
)

const defaultPrefix = "gk"

const insertScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return "email"
end
if ARGV[3] ~= "" and redis.call("EXISTS", KEYS[2]) == 1 then
  return "phone"
end
redis.call("SET", KEYS[1], ARGV[1])
if ARGV[3] ~= "" then
  redis.call("SET", KEYS[2], ARGV[1])
end
redis.call("SET", KEYS[3], ARGV[2])
redis.call("RPUSH", KEYS[4], ARGV[1])
return "ok"
`

var insertLua = redis.NewScript(insertScript)

const updateStatusScript = `
local raw = redis.call("GET", KEYS[1])
if not raw then
  return false
end
local acct = cjson.decode(raw)
acct["status"] = ARGV[1]
if ARGV[2] == "" then
  acct["expiryDate"] = nil
else
  acct["expiryDate"] = ARGV[2]
end
local out = cjson.encode(acct)
redis.call("SET", KEYS[1], out)
return out
`

var updateStatusLua = redis.NewScript(updateStatusScript)

// Store implements [gatekeep.AccountStore] on a Redis client.
type Store struct {
	client *redis.Client
	prefix string
}

// New creates a Store. An empty prefix falls back to "gk".
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{
		client: client,
		prefix: prefix,
	}
}

type record struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	DOB            string `json:"dob,omitempty"`
	State          string `json:"state,omitempty"`
	CredentialHash string `json:"credentialHash"`
	Status         string `json:"status"`
	ExpiryDate     string `json:"expiryDate,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

func (s *Store) accountKey(id string) string {
	return s.prefix + ":acct:" + id
}

func (s *Store) emailKey(email string) string {
	return s.prefix + ":email:" + strings.ToLower(email)
}

func (s *Store) phoneKey(phone string) string {
	return s.prefix + ":phone:" + phone
}

func (s *Store) orderKey() string {
	return s.prefix + ":accounts"
}

func (s *Store) FindByEmail(ctx context.Context, email string) (gatekeep.Account, error) {
	id, err := s.client.Get(ctx, s.emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return gatekeep.Account{}, gatekeep.ErrAccountNotFound
	}
	if err != nil {
		return gatekeep.Account{}, fmt.Errorf("%w: %v", gatekeep.ErrStoreUnavailable, err)
	}
	return s.FindByID(ctx, id)
}

func (s *Store) FindByID(ctx context.Context, id string) (gatekeep.Account, error) {
	raw, err := s.client.Get(ctx, s.accountKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return gatekeep.Account{}, gatekeep.ErrAccountNotFound
	}
	if err != nil {
		return gatekeep.Account{}, fmt.Errorf("%w: %v", gatekeep.ErrStoreUnavailable, err)
	}
	return decodeRecord([]byte(raw))
}

func (s *Store) Insert(ctx context.Context, account gatekeep.Account) error {
	blob, err := encodeRecord(account)
	if err != nil {
		return fmt.Errorf("%w: %v", gatekeep.ErrStoreUnavailable, err)
	}

	keys := []string{
		s.emailKey(account.Email),
		s.phoneKey(account.Phone),
		s.accountKey(account.ID),
		s.orderKey(),
	}
	res, err := insertLua.Run(ctx, s.client, keys, account.ID, string(blob), account.Phone).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", gatekeep.ErrStoreUnavailable, err)
	}

	switch res {
	case "ok":
		return nil
	case "email":
		return gatekeep.ErrDuplicateEmail
	case "phone":
		return gatekeep.ErrDuplicatePhone
	default:
		return fmt.Errorf("%w: unexpected insert result %v", gatekeep.ErrStoreUnavailable, res)
	}
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status gatekeep.AccountStatus, expiry *time.Time) (gatekeep.Account, error) {
	expiryArg := ""
	if expiry != nil {
		expiryArg = expiry.UTC().Format(time.RFC3339)
	}

	res, err := updateStatusLua.Run(ctx, s.client, []string{s.accountKey(id)}, string(status), expiryArg).Result()
	if errors.Is(err, redis.Nil) {
		return gatekeep.Account{}, gatekeep.ErrAccountNotFound
	}
	if err != nil {
		return gatekeep.Account{}, fmt.Errorf("%w: %v", gatekeep.ErrStoreUnavailable, err)
	}

	raw, ok := res.(string)
	if !ok {
		return gatekeep.Account{}, fmt.Errorf("%w: unexpected update result %v", gatekeep.ErrStoreUnavailable, res)
	}
	return decodeRecord([]byte(raw))
}

func (s *Store) All(ctx context.Context) ([]gatekeep.Account, error) {
	ids, err := s.client.LRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gatekeep.ErrStoreUnavailable, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.accountKey(id)
	}

	raws, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gatekeep.ErrStoreUnavailable, err)
	}

	out := make([]gatekeep.Account, 0, len(raws))
	for _, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// id still listed but record gone; skip rather than fail the listing
			continue
		}
		acct, err := decodeRecord([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, nil
}

func encodeRecord(account gatekeep.Account) ([]byte, error) {
	rec := record{
		ID:             account.ID,
		Email:          strings.ToLower(account.Email),
		Phone:          account.Phone,
		DOB:            account.DOB,
		State:          account.State,
		CredentialHash: account.CredentialHash,
		Status:         string(account.Status),
		CreatedAt:      account.CreatedAt.UTC().Format(time.RFC3339),
	}
	if account.ExpiryDate != nil {
		rec.ExpiryDate = account.ExpiryDate.UTC().Format(time.RFC3339)
	}
	return json.Marshal(rec)
}

func decodeRecord(raw []byte) (gatekeep.Account, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return gatekeep.Account{}, fmt.Errorf("%w: corrupt account record", gatekeep.ErrStoreUnavailable)
	}

	createdAt, err := time.Parse(time.RFC3339, rec.CreatedAt)
	if err != nil {
		return gatekeep.Account{}, fmt.Errorf("%w: corrupt account record", gatekeep.ErrStoreUnavailable)
	}

	acct := gatekeep.Account{
		ID:             rec.ID,
		Email:          rec.Email,
		Phone:          rec.Phone,
		DOB:            rec.DOB,
		State:          rec.State,
		CredentialHash: rec.CredentialHash,
		Status:         gatekeep.AccountStatus(rec.Status),
		CreatedAt:      createdAt,
	}
	if rec.ExpiryDate != "" {
		exp, err := time.Parse(time.RFC3339, rec.ExpiryDate)
		if err != nil {
			return gatekeep.Account{}, fmt.Errorf("%w: corrupt account record", gatekeep.ErrStoreUnavailable)
		}
		acct.ExpiryDate = &exp
	}
	return acct, nil
}
