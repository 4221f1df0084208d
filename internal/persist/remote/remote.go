// Package remote persists session state in SQLite keyed by account id.
// Rows carry both the server-assigned AUTOINCREMENT id and the session's
// local id; the two id spaces never overlap and the backends never
// migrate into one another. Each save replaces the account's whole
// collection inside a transaction.
package remote

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"finestra/internal/core"
	"finestra/internal/log"
	"finestra/internal/persist"

	_ "modernc.org/sqlite"
)

// Backend is the account-keyed SQLite store.
type Backend struct {
	db        *sql.DB
	accountID string
	logger    *log.Logger
}

var _ persist.Backend = (*Backend)(nil)

// New opens the database, runs migrations, and binds the backend to one
// account. An empty account id is rejected up front so no unauthorized
// write can happen mid-session.
func New(dbPath, accountID string, logger *log.Logger) (*Backend, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, persist.ErrUnauthorized
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Backend{
		db:        db,
		accountID: accountID,
		logger:    logger.WithComponent(log.ComponentPersist),
	}, nil
}

func (b *Backend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// Load reads all four collections for the bound account. Insertion order
// within each collection is preserved via the server id.
func (b *Backend) Load(ctx context.Context) (persist.Snapshot, error) {
	var snap persist.Snapshot

	rows, err := b.db.QueryContext(ctx,
		`SELECT local_id, date, name, category, amount_paise, icon
		 FROM transactions WHERE account_id = ? ORDER BY id`, b.accountID)
	if err != nil {
		return snap, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tx core.Transaction
		var date string
		if err := rows.Scan(&tx.ID, &date, &tx.Name, &tx.Category, &tx.Amount.Paise, &tx.Icon); err != nil {
			return snap, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Date, err = core.ParseDate(date); err != nil {
			return snap, fmt.Errorf("parse transaction date %q: %w", date, err)
		}
		snap.Transactions = append(snap.Transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate transactions: %w", err)
	}

	subRows, err := b.db.QueryContext(ctx,
		`SELECT local_id, name, amount_paise, renewal_date, icon
		 FROM subscriptions WHERE account_id = ? ORDER BY id`, b.accountID)
	if err != nil {
		return snap, fmt.Errorf("load subscriptions: %w", err)
	}
	defer subRows.Close()
	for subRows.Next() {
		var sub core.Subscription
		var renewal string
		if err := subRows.Scan(&sub.ID, &sub.Name, &sub.Amount.Paise, &renewal, &sub.Icon); err != nil {
			return snap, fmt.Errorf("scan subscription: %w", err)
		}
		if sub.RenewalDate, err = core.ParseDate(renewal); err != nil {
			return snap, fmt.Errorf("parse renewal date %q: %w", renewal, err)
		}
		snap.Subscriptions = append(snap.Subscriptions, sub)
	}
	if err := subRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate subscriptions: %w", err)
	}

	goalRows, err := b.db.QueryContext(ctx,
		`SELECT local_id, name, target_paise, current_paise, deadline, emoji
		 FROM goals WHERE account_id = ? ORDER BY id`, b.accountID)
	if err != nil {
		return snap, fmt.Errorf("load goals: %w", err)
	}
	defer goalRows.Close()
	for goalRows.Next() {
		var goal core.Goal
		var deadline string
		if err := goalRows.Scan(&goal.ID, &goal.Name, &goal.Target.Paise, &goal.Current.Paise, &deadline, &goal.Emoji); err != nil {
			return snap, fmt.Errorf("scan goal: %w", err)
		}
		if goal.Deadline, err = core.ParseDate(deadline); err != nil {
			return snap, fmt.Errorf("parse deadline %q: %w", deadline, err)
		}
		snap.Goals = append(snap.Goals, goal)
	}
	if err := goalRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate goals: %w", err)
	}

	err = b.db.QueryRowContext(ctx,
		`SELECT monthly_budget_paise, user_name FROM user_settings WHERE account_id = ?`,
		b.accountID).Scan(&snap.Settings.MonthlyBudget.Paise, &snap.Settings.UserName)
	if err != nil && err != sql.ErrNoRows {
		return snap, fmt.Errorf("load settings: %w", err)
	}

	return snap, nil
}

// SaveTransactions replaces the account's transaction collection.
func (b *Backend) SaveTransactions(ctx context.Context, transactions []core.Transaction) error {
	return b.replace(ctx, "transactions", func(tx *sql.Tx) error {
		for _, t := range transactions {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO transactions (account_id, local_id, date, name, category, amount_paise, icon)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				b.accountID, t.ID, t.Date.ISO(), t.Name, t.Category, t.Amount.Paise, t.Icon)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveSubscriptions replaces the account's subscription collection.
func (b *Backend) SaveSubscriptions(ctx context.Context, subscriptions []core.Subscription) error {
	return b.replace(ctx, "subscriptions", func(tx *sql.Tx) error {
		for _, s := range subscriptions {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO subscriptions (account_id, local_id, name, amount_paise, renewal_date, icon)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				b.accountID, s.ID, s.Name, s.Amount.Paise, s.RenewalDate.ISO(), s.Icon)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveGoals replaces the account's goal collection.
func (b *Backend) SaveGoals(ctx context.Context, goals []core.Goal) error {
	return b.replace(ctx, "goals", func(tx *sql.Tx) error {
		for _, g := range goals {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO goals (account_id, local_id, name, target_paise, current_paise, deadline, emoji)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				b.accountID, g.ID, g.Name, g.Target.Paise, g.Current.Paise, g.Deadline.ISO(), g.Emoji)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveSettings upserts the account's settings row.
func (b *Backend) SaveSettings(ctx context.Context, settings core.Settings) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO user_settings (account_id, monthly_budget_paise, user_name)
		 VALUES (?, ?, ?)
		 ON CONFLICT(account_id) DO UPDATE SET
		   monthly_budget_paise = excluded.monthly_budget_paise,
		   user_name = excluded.user_name`,
		b.accountID, settings.MonthlyBudget.Paise, settings.UserName)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// replace deletes the account's rows from table and re-inserts inside one
// transaction, so readers never observe a partially written collection.
func (b *Backend) replace(ctx context.Context, table string, insert func(*sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s replace: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE account_id = ?", b.accountID); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := insert(tx); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s replace: %w", table, err)
	}
	return nil
}

// MarkExported stamps exported_at on rows mirrored to the external ledger.
// Rows are matched by local id within the bound account.
func (b *Backend) MarkExported(ctx context.Context, localIDs []int64) error {
	if len(localIDs) == 0 {
		return nil
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark exported: %w", err)
	}
	defer tx.Rollback()

	for _, id := range localIDs {
		_, err := tx.ExecContext(ctx,
			`UPDATE transactions SET exported_at = CURRENT_TIMESTAMP
			 WHERE account_id = ? AND local_id = ?`, b.accountID, id)
		if err != nil {
			return fmt.Errorf("mark exported %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mark exported: %w", err)
	}
	b.logger.InfoContext(ctx, "transactions marked exported", log.FieldCount, len(localIDs))
	return nil
}
