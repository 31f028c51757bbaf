package store

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/core"
)

// ErrNotFound is returned when a transaction or category does not exist.
var ErrNotFound = errors.New("not found")

// TransactionFilter narrows a transaction listing. Nil bounds mean
// "no filter on that side", which is how the all_time view queries.
type TransactionFilter struct {
	Start      *time.Time
	End        *time.Time
	CategoryID string
	Search     string
	Limit      int
	Offset     int
}

// TransactionUpdate carries the editable fields of a transaction.
// Nil pointers leave the stored value untouched.
type TransactionUpdate struct {
	Merchant   *string
	CategoryID *string
	Remarks    *string
}

// Ports for the storage adapters.
type (
	TransactionStore interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) error
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, id string, upd TransactionUpdate) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
		// ListTransactions returns transactions inside the filter window,
		// newest first.
		ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error)
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) error
		ListCategories(ctx context.Context) ([]core.Category, error)
		DeleteCategory(ctx context.Context, id string) error
	}

	// Store is the combined storage surface the services depend on.
	Store interface {
		TransactionStore
		CategoryStore
	}
)
