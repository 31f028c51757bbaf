package http

import (
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type createTransactionRequest struct {
	Amount          string `json:"amount"`
	Type            string `json:"type"`
	TransactionDate string `json:"transactionDate"`
	Merchant        string `json:"merchant"`
	BankName        string `json:"bankName"`
	CategoryID      string `json:"categoryId"`
	Remarks         string `json:"remarks"`
}

type updateTransactionRequest struct {
	Merchant   *string `json:"merchant"`
	CategoryID *string `json:"categoryId"`
	Remarks    *string `json:"remarks"`
}

type ingestSMSRequest struct {
	Text string `json:"text"`
}

type transactionListResponse struct {
	Transactions []transactionResponse `json:"transactions"`
}

type transactionResponse struct {
	ID              string `json:"id"`
	Amount          string `json:"amount"`
	Type            string `json:"type"`
	TransactionDate string `json:"transactionDate"`
	Merchant        string `json:"merchant,omitempty"`
	BankName        string `json:"bankName,omitempty"`
	CategoryID      string `json:"categoryId,omitempty"`
	Remarks         string `json:"remarks,omitempty"`
	Source          string `json:"source"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:              tx.ID,
		Amount:          tx.Amount,
		Type:            string(tx.Type),
		TransactionDate: tx.TransactionDate.Format(time.RFC3339),
		Merchant:        tx.Merchant,
		BankName:        tx.BankName,
		CategoryID:      tx.CategoryID,
		Remarks:         tx.Remarks,
		Source:          string(tx.Source),
		CreatedAt:       tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       tx.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.transactions.List(r.Context(), parseListFilter(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		writeDomainError(w, err)
		return
	}

	out := transactionListResponse{Transactions: make([]transactionResponse, len(txns))}
	for i, tx := range txns {
		out.Transactions[i] = toTransactionResponse(tx)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txType, err := core.ParseTransactionType(req.Type)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	txDate, err := time.Parse(time.RFC3339, req.TransactionDate)
	if err != nil {
		// manual entry forms send bare dates
		txDate, err = time.Parse("2006-01-02", req.TransactionDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid transactionDate")
			return
		}
	}

	created, err := s.transactions.Create(r.Context(), core.Transaction{
		Amount:          req.Amount,
		Type:            txType,
		TransactionDate: txDate,
		Merchant:        req.Merchant,
		BankName:        req.BankName,
		CategoryID:      req.CategoryID,
		Remarks:         req.Remarks,
		Source:          core.SourceManual,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Create transaction failed", "error", err)
		writeDomainError(w, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleIngestSMS(w http.ResponseWriter, r *http.Request) {
	var req ingestSMSRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, queued, err := s.transactions.IngestText(r.Context(), string(core.SourceSMS), req.Text)
	if err != nil {
		slog.ErrorContext(r.Context(), "SMS ingestion failed", "error", err)
		writeDomainError(w, err)
		return
	}

	if queued {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, toTransactionResponse(*tx))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.transactions.Update(r.Context(), r.PathValue("id"), store.TransactionUpdate{
		Merchant:   req.Merchant,
		CategoryID: req.CategoryID,
		Remarks:    req.Remarks,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}
