// Package store holds the in-memory session state and is the only mutator
// of it. Every mutation completes synchronously, then triggers a
// best-effort write of the whole affected collection to the configured
// backend. Write failures are logged, never surfaced as blocking, and the
// in-memory state stays the operative truth for the rest of the session.
package store

import (
	"context"
	"sync"
	"time"

	"finestra/internal/core"
	"finestra/internal/log"
	"finestra/internal/persist"
)

// Change operations published for downstream export.
const (
	OpTransactionAdded    = "transaction_added"
	OpTransactionsLoaded  = "transactions_imported"
	OpTransactionsCleared = "transactions_cleared"
)

// Change describes a transaction-collection mutation. It is published
// after the local write so export consumers can mirror the ledger.
type Change struct {
	Op           string             `json:"op"`
	Transactions []core.Transaction `json:"transactions,omitempty"`
}

// Publisher forwards change events to an external broker. Publishing is
// fire-and-forget: a publish failure never rolls back a mutation.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Store is the session state container. Construct one per session with
// New, call Init to load persisted state, and Flush at teardown.
type Store struct {
	mu            sync.RWMutex
	transactions  []core.Transaction
	subscriptions []core.Subscription
	goals         []core.Goal
	settings      core.Settings

	backend   persist.Backend
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
}

// New creates a store over the given backend. publisher may be nil when no
// broker is configured.
func New(backend persist.Backend, publisher Publisher, logger *log.Logger) *Store {
	return NewAt(backend, publisher, logger, time.Now)
}

// NewAt creates a store with a fixed clock, for tests.
func NewAt(backend persist.Backend, publisher Publisher, logger *log.Logger, now func() time.Time) *Store {
	return &Store{
		backend:   backend,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentStore),
		now:       now,
	}
}

// Init loads the persisted snapshot and populates the store. It must be
// called before any reads or mutations.
func (s *Store) Init(ctx context.Context) error {
	snap, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = snap.Transactions
	s.subscriptions = snap.Subscriptions
	s.goals = snap.Goals
	s.settings = snap.Settings
	return nil
}

// Flush writes every collection to the backend. Called at teardown so
// nothing pending is lost on shutdown.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.RLock()
	transactions := append([]core.Transaction(nil), s.transactions...)
	subscriptions := append([]core.Subscription(nil), s.subscriptions...)
	goals := append([]core.Goal(nil), s.goals...)
	settings := s.settings
	s.mu.RUnlock()

	if err := s.backend.SaveTransactions(ctx, transactions); err != nil {
		return err
	}
	if err := s.backend.SaveSubscriptions(ctx, subscriptions); err != nil {
		return err
	}
	if err := s.backend.SaveGoals(ctx, goals); err != nil {
		return err
	}
	return s.backend.SaveSettings(ctx, settings)
}

// Transactions returns a copy of the transaction collection, most recent
// insertion first.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.transactions...)
}

// AddTransaction validates the input, assigns the next id, prepends the
// transaction, and persists the full collection. Manual entries with a
// zero amount are rejected.
func (s *Store) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.Amount.IsZero() {
		return core.Transaction{}, core.ErrZeroAmount
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.Icon = core.IconFor(tx.Category)

	s.mu.Lock()
	tx.ID = s.nextTransactionIDLocked()
	s.transactions = append([]core.Transaction{tx}, s.transactions...)
	snapshot := append([]core.Transaction(nil), s.transactions...)
	s.mu.Unlock()

	s.persistTransactions(ctx, snapshot)
	s.publish(ctx, Change{Op: OpTransactionAdded, Transactions: []core.Transaction{tx}})
	return tx, nil
}

// ImportTransactions prepends an already-parsed batch ahead of the
// existing collection and persists. Ids are assigned by the CSV parser
// against the snapshot the caller parsed with.
func (s *Store) ImportTransactions(ctx context.Context, batch []core.Transaction) {
	if len(batch) == 0 {
		return
	}
	s.mu.Lock()
	s.transactions = append(append([]core.Transaction(nil), batch...), s.transactions...)
	snapshot := append([]core.Transaction(nil), s.transactions...)
	s.mu.Unlock()

	s.persistTransactions(ctx, snapshot)
	s.publish(ctx, Change{Op: OpTransactionsLoaded, Transactions: batch})
}

// RemoveTransaction deletes by id. Removing an unknown id is a no-op.
func (s *Store) RemoveTransaction(ctx context.Context, id int64) {
	s.mu.Lock()
	kept := s.transactions[:0]
	removed := false
	for _, tx := range s.transactions {
		if tx.ID == id {
			removed = true
			continue
		}
		kept = append(kept, tx)
	}
	s.transactions = kept
	snapshot := append([]core.Transaction(nil), s.transactions...)
	s.mu.Unlock()

	if removed {
		s.persistTransactions(ctx, snapshot)
	}
}

// ClearAllTransactions empties the collection and persists the removal.
func (s *Store) ClearAllTransactions(ctx context.Context) {
	s.mu.Lock()
	s.transactions = nil
	s.mu.Unlock()

	s.persistTransactions(ctx, nil)
	s.publish(ctx, Change{Op: OpTransactionsCleared})
}

// Subscriptions returns a copy of the subscription collection.
func (s *Store) Subscriptions() []core.Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Subscription(nil), s.subscriptions...)
}

// AddSubscription assigns the next id and the renewal date, appends, and
// persists. The renewal date is always 30 days from creation; callers do
// not choose it.
func (s *Store) AddSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	sub.RenewalDate = core.DateOf(s.now().AddDate(0, 0, 30))
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}
	s.mu.Lock()
	var next int64 = 1
	for _, existing := range s.subscriptions {
		if existing.ID >= next {
			next = existing.ID + 1
		}
	}
	sub.ID = next
	s.subscriptions = append(s.subscriptions, sub)
	snapshot := append([]core.Subscription(nil), s.subscriptions...)
	s.mu.Unlock()

	if err := s.backend.SaveSubscriptions(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "subscription write failed",
			log.FieldOperation, "save_subscriptions", log.FieldError, err.Error())
	}
	return sub, nil
}

// RemoveSubscription deletes by id and persists. Unknown ids are a no-op.
func (s *Store) RemoveSubscription(ctx context.Context, id int64) {
	s.mu.Lock()
	kept := s.subscriptions[:0]
	removed := false
	for _, sub := range s.subscriptions {
		if sub.ID == id {
			removed = true
			continue
		}
		kept = append(kept, sub)
	}
	s.subscriptions = kept
	snapshot := append([]core.Subscription(nil), s.subscriptions...)
	s.mu.Unlock()

	if !removed {
		return
	}
	if err := s.backend.SaveSubscriptions(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "subscription write failed",
			log.FieldOperation, "save_subscriptions", log.FieldError, err.Error())
	}
}

// Goals returns a copy of the goal collection.
func (s *Store) Goals() []core.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Goal(nil), s.goals...)
}

// AddGoal assigns the next id, appends, and persists.
func (s *Store) AddGoal(ctx context.Context, goal core.Goal) (core.Goal, error) {
	if err := goal.Validate(); err != nil {
		return core.Goal{}, err
	}
	s.mu.Lock()
	var next int64 = 1
	for _, existing := range s.goals {
		if existing.ID >= next {
			next = existing.ID + 1
		}
	}
	goal.ID = next
	s.goals = append(s.goals, goal)
	snapshot := append([]core.Goal(nil), s.goals...)
	s.mu.Unlock()

	s.persistGoals(ctx, snapshot)
	return goal, nil
}

// AddToGoal increases a goal's saved amount. The result may exceed the
// target; progress is unbounded above 100%.
func (s *Store) AddToGoal(ctx context.Context, id int64, amount core.Money) (core.Goal, bool) {
	s.mu.Lock()
	var updated core.Goal
	found := false
	for i, goal := range s.goals {
		if goal.ID == id {
			s.goals[i].Current = goal.Current.Add(amount)
			updated = s.goals[i]
			found = true
			break
		}
	}
	snapshot := append([]core.Goal(nil), s.goals...)
	s.mu.Unlock()

	if found {
		s.persistGoals(ctx, snapshot)
	}
	return updated, found
}

// RemoveGoal deletes by id and persists. Unknown ids are a no-op.
func (s *Store) RemoveGoal(ctx context.Context, id int64) {
	s.mu.Lock()
	kept := s.goals[:0]
	removed := false
	for _, goal := range s.goals {
		if goal.ID == id {
			removed = true
			continue
		}
		kept = append(kept, goal)
	}
	s.goals = kept
	snapshot := append([]core.Goal(nil), s.goals...)
	s.mu.Unlock()

	if removed {
		s.persistGoals(ctx, snapshot)
	}
}

// Settings returns the current settings.
func (s *Store) Settings() core.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetMonthlyBudget overwrites the budget and persists settings
// immediately, not batched with other mutations.
func (s *Store) SetMonthlyBudget(ctx context.Context, budget core.Money) error {
	if budget.Paise < 0 {
		return core.ErrInvalidAmount
	}
	s.mu.Lock()
	s.settings.MonthlyBudget = budget
	settings := s.settings
	s.mu.Unlock()

	s.persistSettings(ctx, settings)
	return nil
}

// SetUserName overwrites the display name and persists settings.
func (s *Store) SetUserName(ctx context.Context, name string) {
	s.mu.Lock()
	s.settings.UserName = name
	settings := s.settings
	s.mu.Unlock()

	s.persistSettings(ctx, settings)
}

func (s *Store) nextTransactionIDLocked() int64 {
	var next int64 = 1
	for _, tx := range s.transactions {
		if tx.ID >= next {
			next = tx.ID + 1
		}
	}
	return next
}

func (s *Store) persistTransactions(ctx context.Context, snapshot []core.Transaction) {
	if err := s.backend.SaveTransactions(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "transaction write failed",
			log.FieldOperation, "save_transactions",
			log.FieldCount, len(snapshot),
			log.FieldError, err.Error())
	}
}

func (s *Store) persistGoals(ctx context.Context, snapshot []core.Goal) {
	if err := s.backend.SaveGoals(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "goal write failed",
			log.FieldOperation, "save_goals", log.FieldError, err.Error())
	}
}

func (s *Store) persistSettings(ctx context.Context, settings core.Settings) {
	if err := s.backend.SaveSettings(ctx, settings); err != nil {
		s.logger.ErrorContext(ctx, "settings write failed",
			log.FieldOperation, "save_settings", log.FieldError, err.Error())
	}
}

func (s *Store) publish(ctx context.Context, change Change) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, change); err != nil {
		s.logger.WarnContext(ctx, "change publish failed",
			log.FieldOperation, change.Op, log.FieldError, err.Error())
	}
}
