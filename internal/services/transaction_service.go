package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/extractor"
	"fintrack/internal/store"
)

// ErrIngestionUnavailable is returned when raw text arrives but neither the
// broker nor a synchronous extractor is configured.
var ErrIngestionUnavailable = errors.New("ingestion not configured")

// IngestPublisher is the broker side of raw-text ingestion.
type IngestPublisher interface {
	PublishIngest(ctx context.Context, msg *amqp.IngestMessage) error
}

// Extractor turns raw notification text into structured fields.
type Extractor interface {
	Extract(ctx context.Context, text string) (*extractor.Result, error)
}

// TransactionService orchestrates transaction writes across storage and the
// ingestion pipeline.
type TransactionService struct {
	store     store.Store
	publisher IngestPublisher // nil when no broker is configured
	extractor Extractor       // nil when no extraction service is configured
	now       func() time.Time
}

func NewTransactionService(st store.Store, publisher IngestPublisher, ex Extractor) *TransactionService {
	return &TransactionService{
		store:     st,
		publisher: publisher,
		extractor: ex,
		now:       time.Now,
	}
}

// WithClock overrides the service clock. Tests use this.
func (s *TransactionService) WithClock(now func() time.Time) *TransactionService {
	s.now = now
	return s
}

// Create validates and stores a new transaction. ID and timestamps are
// assigned here; callers only supply domain fields.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.ID = uuid.NewString()
	if tx.Source == "" {
		tx.Source = core.SourceManual
	}
	now := s.now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Created transaction",
		"id", tx.ID,
		"type", tx.Type,
		"source", tx.Source)

	return tx, nil
}

// IngestText accepts a raw bank notification. With a broker configured the
// text is queued for the worker and queued=true is returned; otherwise the
// extraction runs inline and the stored transaction is returned.
func (s *TransactionService) IngestText(ctx context.Context, source, text string) (*core.Transaction, bool, error) {
	if text == "" {
		return nil, false, fmt.Errorf("ingest text: %w", core.ErrEmptyText)
	}

	if s.publisher != nil {
		msg := amqp.NewIngestMessage(source, text)
		if err := s.publisher.PublishIngest(ctx, msg); err != nil {
			return nil, false, fmt.Errorf("queue ingest message: %w", err)
		}
		return nil, true, nil
	}

	if s.extractor == nil {
		return nil, false, ErrIngestionUnavailable
	}

	result, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return nil, false, fmt.Errorf("extract transaction: %w", err)
	}

	tx, err := s.transactionFromExtraction(result, source, text)
	if err != nil {
		return nil, false, err
	}

	created, err := s.Create(ctx, tx)
	if err != nil {
		return nil, false, err
	}
	return &created, false, nil
}

func (s *TransactionService) transactionFromExtraction(result *extractor.Result, source, text string) (core.Transaction, error) {
	amount, err := core.ParseAmount(result.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("extracted amount %q: %w", result.Amount, err)
	}

	txType, err := core.ParseTransactionType(result.Type)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("extracted type %q: %w", result.Type, err)
	}

	return core.Transaction{
		Amount:          core.FormatAmount(amount),
		Type:            txType,
		TransactionDate: result.Date(s.now()),
		Merchant:        result.Merchant,
		BankName:        result.BankName,
		Remarks:         text,
		Source:          core.TransactionSource(source),
	}, nil
}

// Update changes the editable fields of a transaction.
func (s *TransactionService) Update(ctx context.Context, id string, upd store.TransactionUpdate) (core.Transaction, error) {
	tx, err := s.store.UpdateTransaction(ctx, id, upd)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	slog.InfoContext(ctx, "Deleted transaction", "id", id)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, f)
}

// CreateCategory validates and stores a new category.
func (s *TransactionService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()

	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("validate category: %w", err)
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	return c, nil
}

func (s *TransactionService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *TransactionService) DeleteCategory(ctx context.Context, id string) error {
	return s.store.DeleteCategory(ctx, id)
}

// Close closes the storage and broker handles the service owns, when they
// are closable at all.
func (s *TransactionService) Close() error {
	var errs []error

	if closer, ok := s.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if closer, ok := s.publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
