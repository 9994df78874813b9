// tokens.go - Session token lifecycle backed by the key-value store.
package server

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// authKeyPrefix namespaces session entries in the key-value store. The
// value under "auth_<token>" is the owning user id in hex form.
const authKeyPrefix = "auth_"

// DefaultSessionTTL is how long an issued token remains valid. Sessions
// have no durability guarantee beyond this window; a store restart may
// drop live sessions, which is acceptable because they are cheap to
// reissue.
const DefaultSessionTTL = 24 * time.Hour

// TokenGenerator produces opaque session tokens. The default draws
// random UUIDs; tests substitute a deterministic source.
type TokenGenerator func() string

// SessionService issues, resolves, and revokes session tokens. A token is
// never derived from user data and never reused: each Issue call mints a
// fresh identifier, so concurrent sign-ins by one user hold independent,
// co-existing sessions.
type SessionService struct {
	kv       KeyValue
	ttl      time.Duration
	generate TokenGenerator
}

// NewSessionService builds a service over the given key-value handle.
// A non-positive ttl falls back to DefaultSessionTTL.
func NewSessionService(kv KeyValue, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		kv:       kv,
		ttl:      ttl,
		generate: uuid.NewString,
	}
}

// Issue mints a token for userID and persists the mapping with the
// service TTL. The store's read-after-write consistency on a single key
// guarantees the token resolves immediately after Issue returns.
func (s *SessionService) Issue(ctx context.Context, userID string) (string, error) {
	token := s.generate()
	if err := s.kv.Set(ctx, authKeyPrefix+token, userID, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a token back to its user id. ok is false when the token was
// never issued, has expired, or was revoked; the three cases are
// indistinguishable by design.
func (s *SessionService) Resolve(ctx context.Context, token string) (userID string, ok bool, err error) {
	return s.kv.Get(ctx, authKeyPrefix+token)
}

// Revoke deletes a token. Revoking an unknown or already-revoked token is
// a no-op; a token never transitions back to active.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	return s.kv.Del(ctx, authKeyPrefix+token)
}
