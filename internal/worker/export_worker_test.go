package worker

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"finestra/internal/amqp"
	"finestra/internal/core"
	"finestra/internal/log"
	"finestra/internal/store"
)

type fakeLedger struct {
	appended [][]core.Transaction
	err      error
}

func (f *fakeLedger) AppendTransactions(ctx context.Context, txs []core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, txs)
	return "Ledger!A2:E3", nil
}

type fakeMarker struct {
	marked [][]int64
	err    error
}

func (f *fakeMarker) MarkExported(ctx context.Context, ids []int64) error {
	if f.err != nil {
		return f.err
	}
	f.marked = append(f.marked, ids)
	return nil
}

func testLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError, Component: log.ComponentWorker})
}

func changeMsg(op string, txs ...core.Transaction) *amqp.ChangeMessage {
	return amqp.NewChangeMessage(store.Change{Op: op, Transactions: txs})
}

func sampleTx(id int64) core.Transaction {
	return core.Transaction{
		ID:       id,
		Date:     core.NewDate(2024, 6, 1),
		Name:     "Coffee",
		Category: core.CategoryFood,
		Amount:   core.Money{Paise: -15000},
	}
}

func TestHandleChangeAppendsAndMarks(t *testing.T) {
	ledger := &fakeLedger{}
	marker := &fakeMarker{}
	w := NewExportWorker(ledger, marker, testLogger())

	err := w.HandleChange(context.Background(), changeMsg(store.OpTransactionAdded, sampleTx(7)))
	if err != nil {
		t.Fatalf("HandleChange() error = %v", err)
	}
	if len(ledger.appended) != 1 || len(ledger.appended[0]) != 1 {
		t.Fatalf("appended = %+v", ledger.appended)
	}
	if len(marker.marked) != 1 || marker.marked[0][0] != 7 {
		t.Fatalf("marked = %+v", marker.marked)
	}
}

func TestHandleChangeLedgerFailureRequeues(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("sheets unavailable")}
	w := NewExportWorker(ledger, &fakeMarker{}, testLogger())

	err := w.HandleChange(context.Background(), changeMsg(store.OpTransactionAdded, sampleTx(1)))
	if err == nil {
		t.Fatal("HandleChange() should fail so the message is requeued")
	}
}

func TestHandleChangeMarkFailureDoesNotRequeue(t *testing.T) {
	ledger := &fakeLedger{}
	marker := &fakeMarker{err: errors.New("db locked")}
	w := NewExportWorker(ledger, marker, testLogger())

	err := w.HandleChange(context.Background(), changeMsg(store.OpTransactionAdded, sampleTx(1)))
	if err != nil {
		t.Fatalf("HandleChange() error = %v, want nil so the append is not replayed", err)
	}
}

func TestHandleChangeClearDoesNotTouchLedger(t *testing.T) {
	ledger := &fakeLedger{}
	w := NewExportWorker(ledger, &fakeMarker{}, testLogger())

	if err := w.HandleChange(context.Background(), changeMsg(store.OpTransactionsCleared)); err != nil {
		t.Fatalf("HandleChange() error = %v", err)
	}
	if len(ledger.appended) != 0 {
		t.Fatalf("ledger touched on clear: %+v", ledger.appended)
	}
}

func TestHandleChangeNilMarker(t *testing.T) {
	ledger := &fakeLedger{}
	w := NewExportWorker(ledger, nil, testLogger())

	if err := w.HandleChange(context.Background(), changeMsg(store.OpTransactionsLoaded, sampleTx(1), sampleTx(2))); err != nil {
		t.Fatalf("HandleChange() error = %v", err)
	}
	if len(ledger.appended) != 1 || len(ledger.appended[0]) != 2 {
		t.Fatalf("appended = %+v", ledger.appended)
	}
}
