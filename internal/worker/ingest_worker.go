package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/extractor"
	"fintrack/internal/store"
)

// Extractor turns raw notification text into structured fields.
type Extractor interface {
	Extract(ctx context.Context, text string) (*extractor.Result, error)
}

// IngestWorker turns queued bank notifications into stored transactions.
//
// Error handling is split by recoverability: extractor and storage failures
// are returned so the delivery requeues, while unusable extraction output is
// logged and swallowed — dead data must not wedge the queue.
type IngestWorker struct {
	store   store.Store
	extract Extractor
	now     func() time.Time
}

func NewIngestWorker(st store.Store, ex Extractor) *IngestWorker {
	return &IngestWorker{
		store:   st,
		extract: ex,
		now:     time.Now,
	}
}

// WithClock overrides the worker clock. Tests use this.
func (w *IngestWorker) WithClock(now func() time.Time) *IngestWorker {
	w.now = now
	return w
}

// HandleIngestMessage processes a single ingest message from AMQP
func (w *IngestWorker) HandleIngestMessage(ctx context.Context, msg *amqp.IngestMessage) error {
	slog.InfoContext(ctx, "Processing ingest message", "source", msg.Source)

	result, err := w.extract.Extract(ctx, msg.Text)
	if err != nil {
		return fmt.Errorf("extract transaction: %w", err)
	}

	tx, err := w.buildTransaction(result, msg)
	if err != nil {
		// Unrecoverable: the extractor answered but the answer is unusable.
		// Requeueing would just fail the same way forever.
		slog.ErrorContext(ctx, "Dropping unusable extraction",
			"source", msg.Source,
			"amount", result.Amount,
			"type", result.Type,
			"error", err)
		return nil
	}

	dup, err := w.isDuplicate(ctx, tx)
	if err != nil {
		return fmt.Errorf("check duplicate: %w", err)
	}
	if dup {
		slog.InfoContext(ctx, "Skipping duplicate notification",
			"source", msg.Source,
			"merchant", tx.Merchant)
		return nil
	}

	if err := w.store.CreateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Stored ingested transaction",
		"id", tx.ID,
		"source", tx.Source,
		"merchant", tx.Merchant,
		"amount", tx.Amount)

	return nil
}

func (w *IngestWorker) buildTransaction(result *extractor.Result, msg *amqp.IngestMessage) (core.Transaction, error) {
	amount, err := core.ParseAmount(result.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("extracted amount %q: %w", result.Amount, err)
	}

	txType, err := core.ParseTransactionType(result.Type)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("extracted type %q: %w", result.Type, err)
	}

	now := w.now()
	tx := core.Transaction{
		ID:              uuid.NewString(),
		Amount:          core.FormatAmount(amount),
		Type:            txType,
		TransactionDate: result.Date(msg.ReceivedAt),
		Merchant:        result.Merchant,
		BankName:        result.BankName,
		Remarks:         msg.Text,
		Source:          core.TransactionSource(msg.Source),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate ingested transaction: %w", err)
	}
	return tx, nil
}

// isDuplicate reports whether the same notification text was already stored
// around the same transaction date. The gmail poller can deliver a message
// twice across restarts, so ingestion has to be idempotent on text.
func (w *IngestWorker) isDuplicate(ctx context.Context, tx core.Transaction) (bool, error) {
	start := tx.TransactionDate.AddDate(0, 0, -1)
	end := tx.TransactionDate.AddDate(0, 0, 1)

	existing, err := w.store.ListTransactions(ctx, store.TransactionFilter{
		Start: &start,
		End:   &end,
	})
	if err != nil {
		return false, err
	}

	for _, e := range existing {
		if e.Source == tx.Source && e.Remarks == tx.Remarks && e.Remarks != "" {
			return true, nil
		}
	}
	return false, nil
}

// StartupCheck verifies storage is reachable before consuming begins, so a
// broken database fails the worker fast instead of nacking every delivery.
func (w *IngestWorker) StartupCheck(ctx context.Context) error {
	categories, err := w.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("storage not ready: %w", err)
	}

	slog.InfoContext(ctx, "Ingest worker ready", "categories", len(categories))
	return nil
}
