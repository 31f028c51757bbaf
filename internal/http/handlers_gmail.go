package http

import (
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
)

type gmailCallbackRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleGmailAuthURL(w http.ResponseWriter, r *http.Request) {
	if s.gmail == nil {
		writeError(w, http.StatusServiceUnavailable, "gmail integration not configured")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"url":        s.gmail.AuthURL("fintrack-oauth"),
		"authorized": s.gmail.HasToken(),
	})
}

func (s *Server) handleGmailCallback(w http.ResponseWriter, r *http.Request) {
	if s.gmail == nil {
		writeError(w, http.StatusServiceUnavailable, "gmail integration not configured")
		return
	}

	var req gmailCallbackRequest
	if err := decodeBody(r, &req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	if err := s.gmail.Exchange(r.Context(), req.Code); err != nil {
		slog.ErrorContext(r.Context(), "Gmail token exchange failed", "error", err)
		writeError(w, http.StatusBadGateway, "token exchange failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "authorized"})
}

// handleGmailSync triggers an on-demand scan of recent bank mails. The
// periodic poller covers steady state; this exists for "sync now" in the UI.
func (s *Server) handleGmailSync(w http.ResponseWriter, r *http.Request) {
	if s.gmail == nil {
		writeError(w, http.StatusServiceUnavailable, "gmail integration not configured")
		return
	}
	if !s.gmail.HasToken() {
		writeError(w, http.StatusPreconditionFailed, "gmail not authorized")
		return
	}

	since := time.Now().AddDate(0, 0, -7)
	messages, err := s.gmail.ListBankMessages(r.Context(), since)
	if err != nil {
		slog.ErrorContext(r.Context(), "Gmail listing failed", "error", err)
		writeError(w, http.StatusBadGateway, "gmail listing failed")
		return
	}

	ingested, failed := 0, 0
	for _, m := range messages {
		if _, _, err := s.transactions.IngestText(r.Context(), string(core.SourceGmail), m.Snippet); err != nil {
			slog.WarnContext(r.Context(), "Gmail message ingestion failed",
				"message_id", m.ID,
				"error", err)
			failed++
			continue
		}
		ingested++
	}

	if ingested > 0 {
		s.invalidateSummaries()
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"found":    len(messages),
		"ingested": ingested,
		"failed":   failed,
	})
}
