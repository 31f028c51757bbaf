package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Store is an in-memory implementation of the storage ports, used for
// development and tests.
type Store struct {
	mu    sync.Mutex
	txns  map[string]core.Transaction
	cats  map[string]core.Category
}

func New() *Store {
	return &Store{
		txns: make(map[string]core.Transaction),
		cats: make(map[string]core.Category),
	}
}

// NewSeeded returns a store pre-populated with the given categories.
func NewSeeded(categories []core.Category) *Store {
	s := New()
	for _, c := range categories {
		s.cats[c.ID] = c
	}
	return s
}

var _ store.Store = (*Store)(nil)

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns[tx.ID] = tx
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txns[id]
	if !ok {
		return core.Transaction{}, store.ErrNotFound
	}
	return tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id string, upd store.TransactionUpdate) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txns[id]
	if !ok {
		return core.Transaction{}, store.ErrNotFound
	}
	if upd.Merchant != nil {
		tx.Merchant = *upd.Merchant
	}
	if upd.CategoryID != nil {
		tx.CategoryID = *upd.CategoryID
	}
	if upd.Remarks != nil {
		tx.Remarks = *upd.Remarks
	}
	tx.UpdatedAt = time.Now()
	s.txns[id] = tx
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txns[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.txns, id)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, 0, len(s.txns))
	for _, tx := range s.txns {
		if f.Start != nil && tx.TransactionDate.Before(*f.Start) {
			continue
		}
		if f.End != nil && tx.TransactionDate.After(*f.End) {
			continue
		}
		if f.CategoryID != "" && tx.CategoryID != f.CategoryID {
			continue
		}
		if f.Search != "" && !matches(tx, f.Search) {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TransactionDate.After(out[j].TransactionDate)
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []core.Transaction{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats[c.ID] = c
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.cats))
	for _, c := range s.cats {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cats[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.cats, id)
	return nil
}

func matches(tx core.Transaction, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(tx.Merchant), q) ||
		strings.Contains(strings.ToLower(tx.BankName), q) ||
		strings.Contains(strings.ToLower(tx.Remarks), q)
}
