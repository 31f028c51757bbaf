package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/store"

	_ "modernc.org/sqlite"
)

// timeFormat is how instants are persisted: RFC 3339 UTC with a fixed
// nine-digit fraction, so the strings are fixed width and text
// comparisons order chronologically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultCategories is the starter taxonomy seeded on first run.
var DefaultCategories = []string{
	"Food & Dining",
	"Groceries",
	"Transport",
	"Shopping",
	"Bills & Utilities",
	"Health",
	"Entertainment",
	"Travel",
	"Education",
	"Other",
}

// SQLiteRepository implements store.Store on an embedded SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
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

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC().Format(timeFormat)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, amount, type, transaction_date, merchant, bank_name, category_id, remarks, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Amount, string(tx.Type), tx.TransactionDate.UTC().Format(timeFormat),
		tx.Merchant, tx.BankName, tx.CategoryID, tx.Remarks, string(tx.Source), now, now)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"type", tx.Type,
		"amount", tx.Amount,
		"source", tx.Source)

	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, amount, type, transaction_date, merchant, bank_name, category_id, remarks, source, created_at, updated_at
		FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id string, upd store.TransactionUpdate) (core.Transaction, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(timeFormat)}
	if upd.Merchant != nil {
		sets = append(sets, "merchant = ?")
		args = append(args, *upd.Merchant)
	}
	if upd.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *upd.CategoryID)
	}
	if upd.Remarks != nil {
		sets = append(sets, "remarks = ?")
		args = append(args, *upd.Remarks)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Transaction{}, store.ErrNotFound
	}

	return r.GetTransaction(ctx, id)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	query := `
		SELECT id, amount, type, transaction_date, merchant, bank_name, category_id, remarks, source, created_at, updated_at
		FROM transactions`
	var where []string
	var args []any

	if f.Start != nil {
		where = append(where, "transaction_date >= ?")
		args = append(args, f.Start.UTC().Format(timeFormat))
	}
	if f.End != nil {
		where = append(where, "transaction_date <= ?")
		args = append(args, f.End.UTC().Format(timeFormat))
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Search != "" {
		where = append(where, "(merchant LIKE ? OR bank_name LIKE ? OR remarks LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY transaction_date DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, tx)
	}
	return txns, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, icon, color, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Icon, c.Color, time.Now().UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, icon, color, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	cats := []core.Category{}
	for rows.Next() {
		var c core.Category
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &createdAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SeedDefaultCategories inserts the starter taxonomy on first run.
// Existing names are left alone.
func (r *SQLiteRepository) SeedDefaultCategories(ctx context.Context, names []string) error {
	for _, name := range names {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO categories (id, name, created_at)
			VALUES (?, ?, ?)
			ON CONFLICT(name) DO NOTHING`,
			uuid.NewString(), name, time.Now().UTC().Format(timeFormat))
		if err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var typ, source, txDate, createdAt, updatedAt string
	err := row.Scan(&tx.ID, &tx.Amount, &typ, &txDate, &tx.Merchant, &tx.BankName,
		&tx.CategoryID, &tx.Remarks, &source, &createdAt, &updatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(typ)
	tx.Source = core.TransactionSource(source)
	if tx.TransactionDate, err = time.Parse(timeFormat, txDate); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction_date %q: %w", txDate, err)
	}
	tx.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	tx.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return tx, nil
}
