package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps domain errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidSource),
		errors.Is(err, core.ErrZeroDate),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyText):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseListFilter reads the transaction listing query parameters.
// Unparseable dates and numbers are ignored rather than rejected.
func parseListFilter(r *http.Request) store.TransactionFilter {
	q := r.URL.Query()
	f := store.TransactionFilter{
		CategoryID: q.Get("categoryId"),
		Search:     q.Get("search"),
	}

	if t, err := time.Parse(time.RFC3339, q.Get("startDate")); err == nil {
		f.Start = &t
	}
	if t, err := time.Parse(time.RFC3339, q.Get("endDate")); err == nil {
		f.End = &t
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		f.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		f.Offset = n
	}

	return f
}

// listProbe is the cheapest possible storage round-trip, used by readiness.
func listProbe() store.TransactionFilter {
	return store.TransactionFilter{Limit: 1}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
