package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/extractor"
	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

type fakePublisher struct {
	published []*amqp.IngestMessage
	err       error
}

func (f *fakePublisher) PublishIngest(_ context.Context, msg *amqp.IngestMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

type fakeExtractor struct {
	result *extractor.Result
	err    error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (*extractor.Result, error) {
	return f.result, f.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTransactionService_Create(t *testing.T) {
	st := memory.New()
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	svc := NewTransactionService(st, nil, nil).WithClock(fixedClock(now))

	created, err := svc.Create(context.Background(), core.Transaction{
		Amount:          "500.00",
		Type:            core.Debit,
		TransactionDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Merchant:        "Daraz",
		BankName:        "HBL",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created.ID == "" {
		t.Error("Create() should assign an ID")
	}
	if created.Source != core.SourceManual {
		t.Errorf("Source = %q, want %q", created.Source, core.SourceManual)
	}
	if !created.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", created.CreatedAt, now)
	}

	stored, err := st.GetTransaction(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if stored.Merchant != "Daraz" {
		t.Errorf("stored Merchant = %q, want %q", stored.Merchant, "Daraz")
	}
}

func TestTransactionService_Create_Invalid(t *testing.T) {
	st := memory.New()
	svc := NewTransactionService(st, nil, nil)

	_, err := svc.Create(context.Background(), core.Transaction{
		Amount:          "500.00",
		Type:            "transfer",
		TransactionDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, core.ErrInvalidType) {
		t.Errorf("Create() error = %v, want ErrInvalidType", err)
	}

	txns, _ := st.ListTransactions(context.Background(), store.TransactionFilter{})
	if len(txns) != 0 {
		t.Errorf("store should be empty, has %d transactions", len(txns))
	}
}

func TestTransactionService_IngestText_QueuesWhenBrokerConfigured(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub, &fakeExtractor{})

	tx, queued, err := svc.IngestText(context.Background(), "sms", "HBL: Rs 500 debited")
	if err != nil {
		t.Fatalf("IngestText() error = %v", err)
	}
	if !queued {
		t.Error("IngestText() should queue when a publisher is configured")
	}
	if tx != nil {
		t.Error("queued ingestion should not return a transaction")
	}
	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}
	if pub.published[0].Source != "sms" {
		t.Errorf("message source = %q, want %q", pub.published[0].Source, "sms")
	}
}

func TestTransactionService_IngestText_SynchronousFallback(t *testing.T) {
	st := memory.New()
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	ex := &fakeExtractor{result: &extractor.Result{
		Amount:          "1250.50",
		Type:            "debit",
		Merchant:        "Careem",
		BankName:        "HBL",
		TransactionDate: "2025-01-05",
	}}
	svc := NewTransactionService(st, nil, ex).WithClock(fixedClock(now))

	tx, queued, err := svc.IngestText(context.Background(), "sms", "HBL: Rs 1,250.50 debited for Careem")
	if err != nil {
		t.Fatalf("IngestText() error = %v", err)
	}
	if queued {
		t.Error("IngestText() without a publisher should run inline")
	}
	if tx == nil {
		t.Fatal("inline ingestion should return the stored transaction")
	}
	if tx.Amount != "1250.50" {
		t.Errorf("Amount = %q, want %q", tx.Amount, "1250.50")
	}
	if tx.Source != core.SourceSMS {
		t.Errorf("Source = %q, want %q", tx.Source, core.SourceSMS)
	}
	if got := tx.TransactionDate; got.Format("2006-01-02") != "2025-01-05" {
		t.Errorf("TransactionDate = %v, want 2025-01-05", got)
	}
	if tx.Remarks == "" {
		t.Error("Remarks should keep the original text")
	}
}

func TestTransactionService_IngestText_BadExtraction(t *testing.T) {
	ex := &fakeExtractor{result: &extractor.Result{Amount: "NaN", Type: "debit"}}
	svc := NewTransactionService(memory.New(), nil, ex)

	_, _, err := svc.IngestText(context.Background(), "sms", "garbled text")
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("IngestText() error = %v, want ErrInvalidAmount", err)
	}
}

func TestTransactionService_IngestText_NotConfigured(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil, nil)

	_, _, err := svc.IngestText(context.Background(), "sms", "some text")
	if !errors.Is(err, ErrIngestionUnavailable) {
		t.Errorf("IngestText() error = %v, want ErrIngestionUnavailable", err)
	}
}

func TestTransactionService_IngestText_EmptyText(t *testing.T) {
	svc := NewTransactionService(memory.New(), &fakePublisher{}, nil)

	_, _, err := svc.IngestText(context.Background(), "sms", "")
	if !errors.Is(err, core.ErrEmptyText) {
		t.Errorf("IngestText() error = %v, want ErrEmptyText", err)
	}
}

func TestTransactionService_UpdateAndDelete(t *testing.T) {
	st := memory.New()
	svc := NewTransactionService(st, nil, nil)

	created, err := svc.Create(context.Background(), core.Transaction{
		Amount:          "75.00",
		Type:            core.Debit,
		TransactionDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Merchant:        "Foodpanda",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	merchant := "Foodpanda PK"
	updated, err := svc.Update(context.Background(), created.ID, store.TransactionUpdate{Merchant: &merchant})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Merchant != merchant {
		t.Errorf("Merchant = %q, want %q", updated.Merchant, merchant)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}
