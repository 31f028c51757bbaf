package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "fintrack.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testTx(id string, day int, typ core.TransactionType) core.Transaction {
	return core.Transaction{
		ID:              id,
		Amount:          "250.00",
		Type:            typ,
		TransactionDate: time.Date(2025, 1, day, 9, 30, 0, 0, time.UTC),
		Merchant:        "Imtiaz Super Market",
		BankName:        "HBL",
		Source:          core.SourceSMS,
	}
}

func TestSQLiteRepository_TransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	want := testTx("tx-1", 5, core.Debit)
	if err := repo.CreateTransaction(ctx, want); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	got, err := repo.GetTransaction(ctx, "tx-1")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Amount != want.Amount || got.Type != want.Type || got.Merchant != want.Merchant {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if !got.TransactionDate.Equal(want.TransactionDate) {
		t.Errorf("date = %v, want %v", got.TransactionDate, want.TransactionDate)
	}
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetTransaction(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_ListWindow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for i, day := range []int{2, 12, 28} {
		tx := testTx(string(rune('a'+i)), day, core.Debit)
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	got, err := repo.ListTransactions(ctx, store.TransactionFilter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 1 || got[0].TransactionDate.Day() != 12 {
		t.Errorf("window listing = %d rows, want only Jan 12", len(got))
	}

	all, err := repo.ListTransactions(ctx, store.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions all: %v", err)
	}
	if len(all) != 3 || all[0].TransactionDate.Day() != 28 {
		t.Errorf("unbounded listing should return all rows newest first, got %d rows", len(all))
	}
}

func TestSQLiteRepository_WindowBoundariesInclusive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	// Last instant of Jan 31: must fall inside a monthly window ending
	// at end-of-day Jan 31.
	tx := testTx("edge", 31, core.Debit)
	tx.TransactionDate = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	got, err := repo.ListTransactions(ctx, store.TransactionFilter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("end-of-day boundary transaction excluded from window")
	}
}

func TestSQLiteRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.CreateTransaction(ctx, testTx("tx-1", 5, core.Debit)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	merchant := "Carrefour"
	remarks := "weekly groceries"
	got, err := repo.UpdateTransaction(ctx, "tx-1", store.TransactionUpdate{
		Merchant: &merchant,
		Remarks:  &remarks,
	})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if got.Merchant != "Carrefour" || got.Remarks != "weekly groceries" {
		t.Errorf("update not applied: %+v", got)
	}
	if got.BankName != "HBL" {
		t.Errorf("untouched field changed: bank = %q", got.BankName)
	}

	if _, err := repo.UpdateTransaction(ctx, "missing", store.TransactionUpdate{Merchant: &merchant}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update missing = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_Categories(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.CreateCategory(ctx, core.Category{ID: "c1", Name: "Groceries", Icon: "🛒"}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if err := repo.SeedDefaultCategories(ctx, []string{"Groceries", "Bills"}); err != nil {
		t.Fatalf("SeedDefaultCategories: %v", err)
	}

	cats, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	// Seeding must not duplicate the existing "Groceries".
	if len(cats) != 2 {
		t.Fatalf("category count = %d, want 2", len(cats))
	}
	if cats[0].Name != "Bills" || cats[1].Name != "Groceries" {
		t.Errorf("categories = %v, want sorted by name", cats)
	}

	if err := repo.DeleteCategory(ctx, "c1"); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err := repo.DeleteCategory(ctx, "c1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}
