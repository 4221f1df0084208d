// Package persist defines the storage boundary for session state. Two
// backends implement it: a local file cache and an account-keyed SQLite
// store. The mode is chosen once at startup and the backends never
// migrate into one another.
package persist

import (
	"context"
	"errors"

	"finestra/internal/core"
)

// ErrUnauthorized is returned by the remote backend when no account is
// configured. Callers must treat the write as rejected, not as succeeded.
var ErrUnauthorized = errors.New("persist: no authenticated account")

// Snapshot is the full durable state of a session.
type Snapshot struct {
	Transactions  []core.Transaction
	Subscriptions []core.Subscription
	Goals         []core.Goal
	Settings      core.Settings
}

// Backend persists session state. Each Save call replaces the whole
// collection; there are no partial updates. Implementations must tolerate
// a first run with nothing persisted and return an empty Snapshot.
type Backend interface {
	Load(ctx context.Context) (Snapshot, error)
	SaveTransactions(ctx context.Context, transactions []core.Transaction) error
	SaveSubscriptions(ctx context.Context, subscriptions []core.Subscription) error
	SaveGoals(ctx context.Context, goals []core.Goal) error
	SaveSettings(ctx context.Context, settings core.Settings) error
	Close() error
}
