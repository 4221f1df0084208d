package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"finestra/internal/core"
	"finestra/internal/log"
	"finestra/internal/persist"
)

// memBackend records saves in memory and can be primed with a snapshot.
type memBackend struct {
	mu      sync.Mutex
	snap    persist.Snapshot
	saveErr error
	saves   int
}

func (m *memBackend) Load(ctx context.Context) (persist.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *memBackend) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap.Transactions = txs
	return nil
}

func (m *memBackend) SaveSubscriptions(ctx context.Context, subs []core.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Subscriptions = subs
	return nil
}

func (m *memBackend) SaveGoals(ctx context.Context, goals []core.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Goals = goals
	return nil
}

func (m *memBackend) SaveSettings(ctx context.Context, settings core.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Settings = settings
	return nil
}

func (m *memBackend) Close() error { return nil }

type recordingPublisher struct {
	changes []Change
}

func (p *recordingPublisher) Publish(ctx context.Context, change Change) error {
	p.changes = append(p.changes, change)
	return nil
}

func testLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError, Component: log.ComponentStore})
}

func newTestStore(t *testing.T, backend persist.Backend, pub Publisher) *Store {
	t.Helper()
	s := New(backend, pub, testLogger())
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return s
}

func manualTx(name string, paise int64) core.Transaction {
	return core.Transaction{
		Date:     core.NewDate(2024, 6, 1),
		Name:     name,
		Category: core.CategoryFood,
		Amount:   core.Money{Paise: paise},
	}
}

func TestAddTransactionAssignsIncreasingIDs(t *testing.T) {
	s := newTestStore(t, &memBackend{}, nil)
	ctx := context.Background()

	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		tx, err := s.AddTransaction(ctx, manualTx("Coffee", -15000))
		if err != nil {
			t.Fatalf("AddTransaction() error = %v", err)
		}
		if tx.ID <= 0 || seen[tx.ID] {
			t.Fatalf("id %d duplicated or non-positive", tx.ID)
		}
		seen[tx.ID] = true
	}
	if len(seen) != 5 {
		t.Fatalf("got %d distinct ids, want 5", len(seen))
	}

	// Newest first.
	txs := s.Transactions()
	if txs[0].ID != 5 {
		t.Fatalf("head id = %d, want 5", txs[0].ID)
	}
}

func TestAddTransactionRejectsZeroAmount(t *testing.T) {
	s := newTestStore(t, &memBackend{}, nil)
	_, err := s.AddTransaction(context.Background(), manualTx("Nothing", 0))
	if !errors.Is(err, core.ErrZeroAmount) {
		t.Fatalf("error = %v, want ErrZeroAmount", err)
	}
}

func TestClearAllTransactions(t *testing.T) {
	backend := &memBackend{}
	s := newTestStore(t, backend, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.AddTransaction(ctx, manualTx("Coffee", -15000)); err != nil {
			t.Fatal(err)
		}
	}
	s.ClearAllTransactions(ctx)

	if got := s.Transactions(); len(got) != 0 {
		t.Fatalf("transactions = %d, want 0", len(got))
	}
	if len(backend.snap.Transactions) != 0 {
		t.Fatalf("backend still holds %d transactions", len(backend.snap.Transactions))
	}
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	backend := &memBackend{saveErr: errors.New("disk full")}
	s := newTestStore(t, backend, nil)

	tx, err := s.AddTransaction(context.Background(), manualTx("Coffee", -15000))
	if err != nil {
		t.Fatalf("AddTransaction() error = %v, want nil despite write failure", err)
	}
	if got := s.Transactions(); len(got) != 1 || got[0].ID != tx.ID {
		t.Fatalf("memory state lost after write failure: %+v", got)
	}
}

func TestImportTransactionsPrepends(t *testing.T) {
	backend := &memBackend{snap: persist.Snapshot{Transactions: []core.Transaction{
		{ID: 3, Name: "Old", Date: core.NewDate(2024, 5, 1), Amount: core.Money{Paise: -100}},
	}}}
	pub := &recordingPublisher{}
	s := newTestStore(t, backend, pub)

	batch := []core.Transaction{
		{ID: 4, Name: "New A", Date: core.NewDate(2024, 6, 1), Amount: core.Money{Paise: -200}},
		{ID: 5, Name: "New B", Date: core.NewDate(2024, 6, 2), Amount: core.Money{Paise: -300}},
	}
	s.ImportTransactions(context.Background(), batch)

	txs := s.Transactions()
	if len(txs) != 3 {
		t.Fatalf("transactions = %d, want 3", len(txs))
	}
	if txs[0].Name != "New A" || txs[2].Name != "Old" {
		t.Fatalf("batch not prepended: %+v", txs)
	}
	if len(pub.changes) != 1 || pub.changes[0].Op != OpTransactionsLoaded {
		t.Fatalf("published changes = %+v", pub.changes)
	}
}

func TestPublishOnAdd(t *testing.T) {
	pub := &recordingPublisher{}
	s := newTestStore(t, &memBackend{}, pub)

	if _, err := s.AddTransaction(context.Background(), manualTx("Coffee", -15000)); err != nil {
		t.Fatal(err)
	}
	if len(pub.changes) != 1 || pub.changes[0].Op != OpTransactionAdded {
		t.Fatalf("changes = %+v", pub.changes)
	}
	if len(pub.changes[0].Transactions) != 1 {
		t.Fatalf("change payload = %+v", pub.changes[0])
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	s := newTestStore(t, &memBackend{}, nil)
	ctx := context.Background()

	sub, err := s.AddSubscription(ctx, core.Subscription{
		Name:   "StreamBox",
		Amount: core.Money{Paise: 19900},
	})
	if err != nil {
		t.Fatalf("AddSubscription() error = %v", err)
	}
	if sub.ID != 1 {
		t.Fatalf("id = %d, want 1", sub.ID)
	}
	if sub.RenewalDate.IsZero() || !sub.RenewalDate.After(time.Now()) {
		t.Fatalf("renewal date = %v, want 30 days out", sub.RenewalDate)
	}

	s.RemoveSubscription(ctx, sub.ID)
	if got := s.Subscriptions(); len(got) != 0 {
		t.Fatalf("subscriptions = %+v, want empty", got)
	}
}

func TestAddSubscriptionSetsRenewalThirtyDaysOut(t *testing.T) {
	fixed := func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }
	s := NewAt(&memBackend{}, nil, testLogger(), fixed)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	sub, err := s.AddSubscription(context.Background(), core.Subscription{
		Name:   "StreamBox",
		Amount: core.Money{Paise: 19900},
	})
	if err != nil {
		t.Fatalf("AddSubscription() error = %v", err)
	}
	if want := core.NewDate(2024, 7, 15); !sub.RenewalDate.Equal(want.Time) {
		t.Fatalf("renewal date = %s, want %s", sub.RenewalDate.ISO(), want.ISO())
	}
}

func TestGoalProgressUnbounded(t *testing.T) {
	s := newTestStore(t, &memBackend{}, nil)
	ctx := context.Background()

	goal, err := s.AddGoal(ctx, core.Goal{
		Name:     "Trip",
		Target:   core.Money{Paise: 100000},
		Deadline: core.NewDate(2024, 12, 31),
	})
	if err != nil {
		t.Fatalf("AddGoal() error = %v", err)
	}

	updated, ok := s.AddToGoal(ctx, goal.ID, core.Money{Paise: 150000})
	if !ok {
		t.Fatal("AddToGoal() did not find goal")
	}
	if updated.Progress() != 150 {
		t.Fatalf("progress = %f, want 150", updated.Progress())
	}
}

func TestSetMonthlyBudgetPersistsImmediately(t *testing.T) {
	backend := &memBackend{}
	s := newTestStore(t, backend, nil)

	if err := s.SetMonthlyBudget(context.Background(), core.Money{Paise: 3000000}); err != nil {
		t.Fatalf("SetMonthlyBudget() error = %v", err)
	}
	if backend.snap.Settings.MonthlyBudget.Paise != 3000000 {
		t.Fatalf("persisted budget = %d", backend.snap.Settings.MonthlyBudget.Paise)
	}
}

func TestInitPopulatesFromSnapshot(t *testing.T) {
	backend := &memBackend{snap: persist.Snapshot{
		Transactions: []core.Transaction{{ID: 9, Name: "Loaded", Date: core.NewDate(2024, 5, 1), Amount: core.Money{Paise: -100}}},
		Settings:     core.Settings{UserName: "Asha"},
	}}
	s := newTestStore(t, backend, nil)

	if got := s.Transactions(); len(got) != 1 || got[0].ID != 9 {
		t.Fatalf("transactions = %+v", got)
	}
	if s.Settings().UserName != "Asha" {
		t.Fatalf("settings = %+v", s.Settings())
	}

	// Next manual add continues past the loaded id.
	tx, err := s.AddTransaction(context.Background(), manualTx("Coffee", -15000))
	if err != nil {
		t.Fatal(err)
	}
	if tx.ID != 10 {
		t.Fatalf("id = %d, want 10", tx.ID)
	}
}
