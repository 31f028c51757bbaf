package period

import (
	"testing"
	"time"
)

var karachi = time.FixedZone("PKT", 5*3600)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve_Bounds(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		view      View
		ref       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "daily mid-afternoon",
			view:      Daily,
			ref:       time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC),
			wantStart: date(2025, 1, 15),
			wantEnd:   date(2025, 1, 16).Add(-time.Nanosecond),
		},
		{
			name:      "weekly friday anchors to monday",
			view:      Weekly,
			ref:       date(2025, 1, 3), // a Friday
			wantStart: date(2024, 12, 30),
			wantEnd:   date(2025, 1, 6).Add(-time.Nanosecond), // end of Sunday Jan 5
		},
		{
			name:      "weekly monday anchors to itself",
			view:      Weekly,
			ref:       date(2024, 12, 30),
			wantStart: date(2024, 12, 30),
			wantEnd:   date(2025, 1, 6).Add(-time.Nanosecond),
		},
		{
			name:      "weekly sunday stays in same week",
			view:      Weekly,
			ref:       date(2025, 1, 5),
			wantStart: date(2024, 12, 30),
			wantEnd:   date(2025, 1, 6).Add(-time.Nanosecond),
		},
		{
			name:      "monthly january",
			view:      Monthly,
			ref:       time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC),
			wantStart: date(2025, 1, 1),
			wantEnd:   date(2025, 2, 1).Add(-time.Nanosecond),
		},
		{
			name:      "monthly february non-leap",
			view:      Monthly,
			ref:       date(2025, 2, 14),
			wantStart: date(2025, 2, 1),
			wantEnd:   date(2025, 3, 1).Add(-time.Nanosecond),
		},
		{
			name:      "monthly february leap year",
			view:      Monthly,
			ref:       date(2024, 2, 29),
			wantStart: date(2024, 2, 1),
			wantEnd:   date(2024, 3, 1).Add(-time.Nanosecond),
		},
		{
			name:      "bi-yearly first half",
			view:      BiYearly,
			ref:       date(2025, 3, 10),
			wantStart: date(2025, 1, 1),
			wantEnd:   date(2025, 7, 1).Add(-time.Nanosecond), // Jun 30 end of day
		},
		{
			name:      "bi-yearly second half",
			view:      BiYearly,
			ref:       date(2025, 11, 2),
			wantStart: date(2025, 7, 1),
			wantEnd:   date(2026, 1, 1).Add(-time.Nanosecond), // Dec 31 end of day
		},
		{
			name:      "bi-yearly june boundary",
			view:      BiYearly,
			ref:       date(2025, 6, 30),
			wantStart: date(2025, 1, 1),
			wantEnd:   date(2025, 7, 1).Add(-time.Nanosecond),
		},
		{
			name:      "yearly",
			view:      Yearly,
			ref:       date(2024, 6, 15),
			wantStart: date(2024, 1, 1),
			wantEnd:   date(2025, 1, 1).Add(-time.Nanosecond),
		},
		{
			name:      "all time derives from now",
			view:      AllTime,
			ref:       date(1999, 5, 5), // cursor ignored
			wantStart: date(2015, 1, 1),
			wantEnd:   time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Resolve(tt.view, tt.ref, now)
			if !p.Start.Equal(tt.wantStart) {
				t.Errorf("Resolve(%s).Start = %v, want %v", tt.view, p.Start, tt.wantStart)
			}
			if !p.End.Equal(tt.wantEnd) {
				t.Errorf("Resolve(%s).End = %v, want %v", tt.view, p.End, tt.wantEnd)
			}
		})
	}
}

func TestResolve_StartNeverAfterEnd(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	refs := []time.Time{
		date(2020, 1, 1),
		date(2024, 2, 29),
		date(2024, 12, 31),
		time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC),
		time.Date(2025, 7, 1, 0, 0, 0, 1, karachi),
		date(1999, 9, 9),
	}
	for _, v := range Views() {
		for _, ref := range refs {
			p := Resolve(v, ref, now)
			if p.Start.After(p.End) {
				t.Errorf("Resolve(%s, %v): start %v after end %v", v, ref, p.Start, p.End)
			}
		}
	}
}

func TestResolve_IdempotentOnOwnStart(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	refs := []time.Time{
		time.Date(2025, 1, 3, 17, 45, 0, 0, time.UTC),
		date(2024, 2, 29),
		time.Date(2025, 12, 31, 6, 0, 0, 0, karachi),
	}
	for _, v := range Views() {
		if v == AllTime {
			continue
		}
		for _, ref := range refs {
			first := Resolve(v, ref, now)
			again := Resolve(v, first.Start, now)
			if !again.Start.Equal(first.Start) || !again.End.Equal(first.End) {
				t.Errorf("Resolve(%s) not idempotent: %v/%v then %v/%v",
					v, first.Start, first.End, again.Start, again.End)
			}
		}
	}
}

func TestResolve_RespectsLocation(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, karachi)
	ref := time.Date(2025, 1, 15, 2, 30, 0, 0, karachi)

	p := Resolve(Daily, ref, now)
	want := time.Date(2025, 1, 15, 0, 0, 0, 0, karachi)
	if !p.Start.Equal(want) {
		t.Errorf("daily start in PKT = %v, want %v", p.Start, want)
	}
	if p.Start.Location() != karachi {
		t.Errorf("start location = %v, want PKT", p.Start.Location())
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		name   string
		view   View
		cursor time.Time
		dir    Direction
		want   time.Time
	}{
		{name: "daily next", view: Daily, cursor: date(2025, 1, 31), dir: Next, want: date(2025, 2, 1)},
		{name: "daily prev", view: Daily, cursor: date(2025, 3, 1), dir: Prev, want: date(2025, 2, 28)},
		{name: "weekly next", view: Weekly, cursor: date(2024, 12, 30), dir: Next, want: date(2025, 1, 6)},
		{name: "monthly next normalizes day", view: Monthly, cursor: date(2025, 1, 31), dir: Next, want: date(2025, 2, 1)},
		{name: "monthly prev", view: Monthly, cursor: date(2025, 3, 1), dir: Prev, want: date(2025, 2, 1)},
		{name: "bi-yearly next", view: BiYearly, cursor: date(2025, 1, 1), dir: Next, want: date(2025, 7, 1)},
		{name: "bi-yearly prev", view: BiYearly, cursor: date(2025, 7, 1), dir: Prev, want: date(2025, 1, 1)},
		{name: "yearly next", view: Yearly, cursor: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC), dir: Next, want: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)},
		{name: "all time is a no-op", view: AllTime, cursor: date(2025, 4, 4), dir: Next, want: date(2025, 4, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Step(tt.view, tt.cursor, tt.dir)
			if !got.Equal(tt.want) {
				t.Errorf("Step(%s, %v, %v) = %v, want %v", tt.view, tt.cursor, tt.dir, got, tt.want)
			}
		})
	}
}

func TestStep_YearlyNextResolvesFollowingYear(t *testing.T) {
	now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	cursor := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	next := Step(Yearly, cursor, Next)
	p := Resolve(Yearly, next, now)
	if !p.Start.Equal(date(2025, 1, 1)) {
		t.Errorf("stepped yearly period start = %v, want 2025-01-01", p.Start)
	}
}

func TestStep_RoundTrip(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	cursors := []time.Time{
		date(2025, 1, 31), // long month into short month
		date(2025, 2, 28),
		date(2024, 2, 29), // leap day
		time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC),
	}

	for _, v := range Views() {
		for _, cursor := range cursors {
			back := Step(v, Step(v, cursor, Next), Prev)
			// The cursor only exists to identify a period; round-trips must
			// land in the original period even when the timestamp moved
			// (monthly/bi-yearly normalize to the first of the month).
			orig := Resolve(v, cursor, now)
			got := Resolve(v, back, now)
			if !got.Start.Equal(orig.Start) || !got.End.Equal(orig.End) {
				t.Errorf("%s round-trip from %v: period %v..%v, want %v..%v",
					v, cursor, got.Start, got.End, orig.Start, orig.End)
			}
			if v == Daily || v == Weekly || v == Yearly {
				if !back.Equal(cursor) {
					t.Errorf("%s round-trip from %v returned %v, want exact cursor", v, cursor, back)
				}
			}
		}
	}
}

func TestDefaultCursor(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		view View
		want time.Time
	}{
		{view: Daily, want: date(2025, 1, 15)},
		{view: Weekly, want: date(2025, 1, 13)}, // Monday of that week
		{view: Monthly, want: date(2025, 1, 1)},
		{view: BiYearly, want: date(2025, 1, 1)},
		{view: Yearly, want: date(2025, 1, 1)},
		{view: AllTime, want: now},
	}

	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			got := DefaultCursor(tt.view, now)
			if !got.Equal(tt.want) {
				t.Errorf("DefaultCursor(%s) = %v, want %v", tt.view, got, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		view   View
		cursor time.Time
		want   string
	}{
		{name: "daily", view: Daily, cursor: date(2025, 1, 15), want: "Wed, Jan 15, 2025"},
		{name: "weekly across year boundary", view: Weekly, cursor: date(2025, 1, 3), want: "Dec 30 – Jan 5, 2025"},
		{name: "monthly", view: Monthly, cursor: date(2025, 1, 10), want: "January 2025"},
		{name: "bi-yearly", view: BiYearly, cursor: date(2025, 3, 1), want: "Jan 2025 – Jun 2025"},
		{name: "yearly", view: Yearly, cursor: date(2024, 7, 4), want: "2024"},
		{name: "all time fixed literal", view: AllTime, cursor: date(2025, 1, 1), want: "All time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.view, tt.cursor, now); got != tt.want {
				t.Errorf("Label(%s) = %q, want %q", tt.view, got, tt.want)
			}
		})
	}
}

func TestIsAdvanceable(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		view   View
		cursor time.Time
		want   bool
	}{
		{name: "past month advanceable", view: Monthly, cursor: date(2024, 11, 1), want: true},
		{name: "previous month advanceable", view: Monthly, cursor: date(2024, 12, 1), want: true},
		{name: "current month not advanceable", view: Monthly, cursor: date(2025, 1, 1), want: false},
		{name: "yesterday advanceable", view: Daily, cursor: date(2025, 1, 14), want: true},
		{name: "today not advanceable", view: Daily, cursor: date(2025, 1, 15), want: false},
		{name: "current week not advanceable", view: Weekly, cursor: date(2025, 1, 13), want: false},
		{name: "last week advanceable", view: Weekly, cursor: date(2025, 1, 6), want: true},
		{name: "all time never advanceable", view: AllTime, cursor: date(2020, 1, 1), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAdvanceable(tt.view, tt.cursor, now); got != tt.want {
				t.Errorf("IsAdvanceable(%s, %v) = %v, want %v", tt.view, tt.cursor, got, tt.want)
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("all time means no filter", func(t *testing.T) {
		start, end := DateRange(AllTime, date(2025, 1, 1), now)
		if start != "" || end != "" {
			t.Errorf("DateRange(AllTime) = %q/%q, want empty strings", start, end)
		}
	})

	t.Run("monthly serializes period bounds", func(t *testing.T) {
		start, end := DateRange(Monthly, date(2025, 1, 10), now)
		wantStart := date(2025, 1, 1).Format(time.RFC3339Nano)
		if start != wantStart {
			t.Errorf("startDate = %q, want %q", start, wantStart)
		}
		parsedEnd, err := time.Parse(time.RFC3339Nano, end)
		if err != nil {
			t.Fatalf("endDate %q not RFC3339: %v", end, err)
		}
		wantEnd := date(2025, 2, 1).Add(-time.Nanosecond)
		if !parsedEnd.Equal(wantEnd) {
			t.Errorf("endDate = %v, want %v", parsedEnd, wantEnd)
		}
	})
}

func TestPeriod_Contains(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p := Resolve(Monthly, date(2025, 1, 10), now)

	if !p.Contains(p.Start) || !p.Contains(p.End) {
		t.Error("period must contain its own boundaries")
	}
	if p.Contains(p.Start.Add(-time.Nanosecond)) {
		t.Error("period must not contain the instant before start")
	}
	if p.Contains(p.End.Add(time.Nanosecond)) {
		t.Error("period must not contain the instant after end")
	}
}
