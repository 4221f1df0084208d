// Package worker mirrors transaction changes to the external ledger. It
// consumes change messages from the queue, appends the carried
// transactions to Google Sheets, and stamps the mirrored rows in the
// remote store.
package worker

import (
	"context"
	"fmt"

	"finestra/internal/amqp"
	"finestra/internal/core"
	"finestra/internal/log"
	"finestra/internal/store"
)

// LedgerAppender appends transactions to the external ledger and returns
// a reference to the written range.
type LedgerAppender interface {
	AppendTransactions(ctx context.Context, transactions []core.Transaction) (string, error)
}

// ExportMarker records which local transactions have been mirrored.
type ExportMarker interface {
	MarkExported(ctx context.Context, localIDs []int64) error
}

// ExportWorker handles change messages from the queue.
type ExportWorker struct {
	ledger LedgerAppender
	marker ExportMarker
	logger *log.Logger
}

// NewExportWorker creates a worker. marker may be nil when the store does
// not track export state.
func NewExportWorker(ledger LedgerAppender, marker ExportMarker, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		ledger: ledger,
		marker: marker,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChange processes one change message. Returning an error requeues
// the message for redelivery.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	switch msg.Op {
	case store.OpTransactionAdded, store.OpTransactionsLoaded:
		return w.appendToLedger(ctx, msg.Transactions)
	case store.OpTransactionsCleared:
		// The ledger is append-only history; a local clear is not
		// propagated.
		w.logger.InfoContext(ctx, "transactions cleared locally, ledger untouched")
		return nil
	default:
		w.logger.WarnContext(ctx, "unknown change op, dropping", log.FieldOperation, msg.Op)
		return nil
	}
}

func (w *ExportWorker) appendToLedger(ctx context.Context, transactions []core.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	ref, err := w.ledger.AppendTransactions(ctx, transactions)
	if err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}
	w.logger.InfoContext(ctx, "transactions appended to ledger",
		log.FieldCount, len(transactions),
		log.FieldSheetsRef, ref)

	if w.marker == nil {
		return nil
	}
	ids := make([]int64, len(transactions))
	for i, tx := range transactions {
		ids[i] = tx.ID
	}
	if err := w.marker.MarkExported(ctx, ids); err != nil {
		// The ledger write already happened; failing here would replay
		// the append on redelivery and duplicate rows.
		w.logger.ErrorContext(ctx, "failed to mark transactions exported",
			log.FieldCount, len(ids), log.FieldError, err.Error())
	}
	return nil
}
