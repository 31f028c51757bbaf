package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Debit  TransactionType = "debit"
	Credit TransactionType = "credit"
)

const (
	SourceManual TransactionSource = "manual"
	SourceSMS    TransactionSource = "sms"
	SourceGmail  TransactionSource = "gmail"
)

type (
	// TransactionType tells expense (debit) from income (credit).
	TransactionType string

	// TransactionSource records how a transaction entered the system.
	TransactionSource string

	// Transaction is a single money movement. Amount is kept as the
	// decimal string the source reported; parsing happens at the edges.
	Transaction struct {
		ID              string
		Amount          string
		Type            TransactionType
		TransactionDate time.Time
		Merchant        string
		BankName        string
		CategoryID      string
		Remarks         string
		Source          TransactionSource
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}

	Category struct {
		ID        string
		Name      string
		Icon      string
		Color     string
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidSource = errors.New("invalid transaction source")
	ErrZeroDate      = errors.New("transaction date cannot be zero")
	ErrEmptyName     = errors.New("empty category name")
	ErrEmptyText     = errors.New("empty notification text")
)

// ParseTransactionType parses a type string from the API or a data source.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case Debit:
		return Debit, nil
	case Credit:
		return Credit, nil
	default:
		return "", ErrInvalidType
	}
}

func (t TransactionType) Valid() bool {
	return t == Debit || t == Credit
}

func (s TransactionSource) Valid() bool {
	return s == SourceManual || s == SourceSMS || s == SourceGmail
}

func (t Transaction) Validate() error {
	if t.TransactionDate.IsZero() {
		return ErrZeroDate
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.Source.Valid() {
		return ErrInvalidSource
	}
	if _, err := ParseAmount(t.Amount); err != nil {
		return err
	}
	if len(t.Merchant) > 200 {
		return errors.New("merchant too long (max 200 characters)")
	}
	if len(t.BankName) > 100 {
		return errors.New("bank name too long (max 100 characters)")
	}
	if len(t.Remarks) > 500 {
		return errors.New("remarks too long (max 500 characters)")
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	return nil
}
