// Package localcache persists session state as independent JSON entries in
// a data directory, one file per entry. There is no schema version: absent
// or malformed entries are treated as empty defaults and logged, never
// fatal, so a corrupted cache degrades to a fresh session instead of
// blocking startup.
package localcache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"finestra/internal/core"
	"finestra/internal/log"
	"finestra/internal/persist"
)

// Entry file names. Goals are session-only in local mode and have no entry.
const (
	transactionsEntry  = "finance_transactions.json"
	budgetEntry        = "finance_budget.json"
	subscriptionsEntry = "finance_subscriptions.json"
	userNameEntry      = "finance_username.json"
)

// Backend stores each collection as its own JSON file under dir.
type Backend struct {
	dir    string
	logger *log.Logger
}

var _ persist.Backend = (*Backend)(nil)

// New creates the data directory if needed and returns a backend rooted
// there.
func New(dir string, logger *log.Logger) (*Backend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localcache: create data dir: %w", err)
	}
	return &Backend{dir: dir, logger: logger.WithComponent(log.ComponentPersist)}, nil
}

// Load reads all entries, substituting defaults for anything missing or
// unreadable.
func (b *Backend) Load(ctx context.Context) (persist.Snapshot, error) {
	var snap persist.Snapshot
	b.loadEntry(ctx, transactionsEntry, &snap.Transactions)
	b.loadEntry(ctx, subscriptionsEntry, &snap.Subscriptions)
	b.loadEntry(ctx, budgetEntry, &snap.Settings.MonthlyBudget)
	b.loadEntry(ctx, userNameEntry, &snap.Settings.UserName)
	return snap, nil
}

// loadEntry decodes one entry into v, leaving v untouched when the file is
// absent or malformed.
func (b *Backend) loadEntry(ctx context.Context, name string, v any) {
	raw, err := os.ReadFile(filepath.Join(b.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			b.logger.WarnContext(ctx, "cache entry unreadable, using default",
				"entry", name, log.FieldError, err.Error())
		}
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		b.logger.WarnContext(ctx, "cache entry malformed, using default",
			"entry", name, log.FieldError, err.Error())
	}
}

func (b *Backend) SaveTransactions(ctx context.Context, transactions []core.Transaction) error {
	return b.saveEntry(transactionsEntry, transactions)
}

func (b *Backend) SaveSubscriptions(ctx context.Context, subscriptions []core.Subscription) error {
	return b.saveEntry(subscriptionsEntry, subscriptions)
}

// SaveGoals is a no-op: goals live only in memory in local-cache mode.
func (b *Backend) SaveGoals(ctx context.Context, goals []core.Goal) error {
	return nil
}

// SaveSettings writes the budget and user name as their own entries so each
// can change independently.
func (b *Backend) SaveSettings(ctx context.Context, settings core.Settings) error {
	if err := b.saveEntry(budgetEntry, settings.MonthlyBudget); err != nil {
		return err
	}
	return b.saveEntry(userNameEntry, settings.UserName)
}

func (b *Backend) Close() error { return nil }

// saveEntry writes via a temp file and rename so a crash mid-write never
// leaves a truncated entry.
func (b *Backend) saveEntry(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("localcache: encode %s: %w", name, err)
	}
	path := filepath.Join(b.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("localcache: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("localcache: replace %s: %w", name, err)
	}
	return nil
}
