package period

import "time"

// Period is the inclusive [Start, End] interval of one filter window.
// Start is the first instant (local midnight) of the calendar unit
// containing the cursor; End is the last instant of that unit.
type Period struct {
	Start time.Time
	End   time.Time
}

// Direction selects prev/next navigation.
type Direction int

const (
	Prev Direction = iota
	Next
)

// Resolve computes the period boundaries for a view anchored at ref.
// All arithmetic happens in ref's location, so day boundaries follow the
// caller's timezone. The now argument only matters for AllTime, whose
// window is derived from the current instant rather than the cursor.
//
// An unknown view resolves as Monthly, mirroring the filter's default.
func Resolve(v View, ref, now time.Time) Period {
	switch v {
	case Daily:
		s := startOfDay(ref)
		return Period{Start: s, End: endOfDay(s)}
	case Weekly:
		mon := startOfWeek(ref)
		return Period{Start: mon, End: endOfDay(mon.AddDate(0, 0, 6))}
	case BiYearly:
		y := ref.Year()
		var s time.Time
		if ref.Month() < time.July {
			s = time.Date(y, time.January, 1, 0, 0, 0, 0, ref.Location())
		} else {
			s = time.Date(y, time.July, 1, 0, 0, 0, 0, ref.Location())
		}
		// Exactly six calendar months later, minus one day, end of day.
		return Period{Start: s, End: endOfDay(s.AddDate(0, 6, -1))}
	case Yearly:
		s := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location())
		return Period{Start: s, End: endOfDay(time.Date(ref.Year(), time.December, 31, 0, 0, 0, 0, ref.Location()))}
	case AllTime:
		s := time.Date(now.Year()-10, time.January, 1, 0, 0, 0, 0, now.Location())
		return Period{Start: s, End: endOfDay(now)}
	default: // Monthly
		y, m, _ := ref.Date()
		s := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
		last := time.Date(y, m+1, 0, 0, 0, 0, 0, ref.Location())
		return Period{Start: s, End: endOfDay(last)}
	}
}

// Step moves the cursor exactly one calendar unit of the view's
// granularity. AllTime is a no-op: there is nothing to page through.
//
// Monthly and bi-yearly cursors are normalized to the first of the month
// before stepping. Only the period start is ever persisted and Resolve
// re-derives the full window from it, so normalizing keeps prev/next
// round-trips lossless even across months of different lengths.
func Step(v View, cursor time.Time, dir Direction) time.Time {
	n := 1
	if dir == Prev {
		n = -1
	}
	switch v {
	case Daily:
		return cursor.AddDate(0, 0, n)
	case Weekly:
		return cursor.AddDate(0, 0, 7*n)
	case Monthly:
		return firstOfMonth(cursor).AddDate(0, n, 0)
	case BiYearly:
		return firstOfMonth(cursor).AddDate(0, 6*n, 0)
	case Yearly:
		return cursor.AddDate(n, 0, 0)
	default: // AllTime
		return cursor
	}
}

// DefaultCursor returns the cursor for the current period: the start of
// the window containing now (now itself for AllTime).
func DefaultCursor(v View, now time.Time) time.Time {
	if v == AllTime {
		return now
	}
	return Resolve(v, now, now).Start
}

// Label renders a human-readable name for the period the cursor sits in,
// e.g. "January 2025" or "Dec 30 – Jan 5, 2025". AllTime is a fixed literal.
func Label(v View, cursor, now time.Time) string {
	if v == AllTime {
		return "All time"
	}
	p := Resolve(v, cursor, now)
	switch v {
	case Daily:
		return p.Start.Format("Mon, Jan 2, 2006")
	case Weekly:
		return p.Start.Format("Jan 2") + " – " + p.End.Format("Jan 2, 2006")
	case BiYearly:
		return p.Start.Format("Jan 2006") + " – " + p.End.Format("Jan 2006")
	case Yearly:
		return p.Start.Format("2006")
	default: // Monthly
		return p.Start.Format("January 2006")
	}
}

// IsAdvanceable reports whether "next" navigation is allowed: the next
// period must not start after now. AllTime is never advanceable.
func IsAdvanceable(v View, cursor, now time.Time) bool {
	if v == AllTime {
		return false
	}
	next := Resolve(v, Step(v, cursor, Next), now)
	return !next.Start.After(now)
}

// DateRange serializes the period into the RFC 3339 startDate/endDate
// strings used as REST query bounds. AllTime returns empty strings,
// signaling "no filter" to the data source.
func DateRange(v View, cursor, now time.Time) (startDate, endDate string) {
	if v == AllTime {
		return "", ""
	}
	p := Resolve(v, cursor, now)
	return p.Start.Format(time.RFC3339Nano), p.End.Format(time.RFC3339Nano)
}

// Contains reports whether t falls inside the period, boundaries included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
}

// startOfWeek returns local midnight of the most recent Monday <= t.
func startOfWeek(t time.Time) time.Time {
	s := startOfDay(t)
	offset := (int(s.Weekday()) - int(time.Monday) + 7) % 7
	return s.AddDate(0, 0, -offset)
}

func firstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	h, min, sec := t.Clock()
	return time.Date(y, m, 1, h, min, sec, t.Nanosecond(), t.Location())
}
