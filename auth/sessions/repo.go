// Package sessions stores the transient state of an in-flight OAuth
// handshake: the request token pair written by the first leg and consumed
// by the second, keyed by an opaque session identifier. Records carry no
// long-lived access, so losing them (restart, expiry) only forces a fresh
// login.
package sessions

import (
	"context"
	"errors"
	"time"
)

// Record holds the request token pair between the two handshake legs. The
// secret never crosses the trust boundary; only the session identifier does.
type Record struct {
	RequestToken       string    `json:"request_token"`
	RequestTokenSecret string    `json:"request_token_secret"`
	CreatedAt          time.Time `json:"created_at"`
}

// ErrNotFound is returned by Get for an unknown or expired session
// identifier. It is an expected condition, not a failure.
var ErrNotFound = errors.New("session not found")

type Repo interface {
	// Upsert creates or replaces the record for a session identifier. A
	// repeated login attempt under the same identifier overwrites the
	// previous record.
	Upsert(ctx context.Context, sessionID string, record Record) error
	Get(ctx context.Context, sessionID string) (Record, error)
	Delete(ctx context.Context, sessionID string) error
}
