package http

import (
	"log/slog"
	"net/http"
)

// handleSummary serves the dashboard payload. View and periodStart are the
// only filter state; unknown views and bad cursors fall back instead of
// erroring, so the endpoint never 4xxes on stale bookmarks.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	cursor := r.URL.Query().Get("periodStart")

	cacheKey := view + "|" + cursor
	if cached, ok := s.summaryCache.Get(cacheKey); ok {
		w.Header().Set("X-Cache", "hit")
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.analytics.Summarize(r.Context(), view, cursor)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary computation failed", "error", err, "view", view)
		writeDomainError(w, err)
		return
	}

	s.summaryCache.Set(cacheKey, summary)
	w.Header().Set("X-Cache", "miss")
	writeJSON(w, http.StatusOK, summary)
}
