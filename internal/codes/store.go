package codes

import (
  "context"
  "time"
)

// Entry is one active one-time code for an identity. ExpiresAt is the
// logical expiry the verification flow checks against.
type Entry struct {
  Code      string    `json:"code"`
  ExpiresAt time.Time `json:"expiresAt"`
}

// Store holds at most one Entry per identity. Set replaces any prior entry
// unconditionally. Get returns ok=false when no entry exists for the
// identity. Implementations must be safe for concurrent use.
type Store interface {
  Get(ctx context.Context, identity string) (Entry, bool, error)
  Set(ctx context.Context, identity string, entry Entry, ttl time.Duration) error
  Delete(ctx context.Context, identity string) error
}
