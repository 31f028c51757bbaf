package period

import (
	"strings"
	"time"
)

const legacyCursorFormat = "2006-01-02"

// ParseCursor parses a periodStart cursor from URL state. It accepts
// RFC 3339 instants and the legacy date-only form, which is interpreted
// as local noon of that date to avoid UTC date-shift ambiguity.
//
// An unparseable cursor falls back to now instead of failing the caller.
// Callers that care can compare the result against now to detect the
// fallback; the filter itself just lands on the current period.
func ParseCursor(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	if len(s) == len(legacyCursorFormat) && !strings.Contains(s, "T") {
		d, err := time.ParseInLocation(legacyCursorFormat, s, now.Location())
		if err != nil {
			return now
		}
		return d.Add(12 * time.Hour)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return now
	}
	return t
}
