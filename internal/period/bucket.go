package period

import "time"

// Grain is the sub-granularity buckets are cut at: one level below the
// period's own granularity.
type Grain int

const (
	GrainDay Grain = iota
	GrainMonth
)

const (
	dayKeyFormat   = "2006-01-02"
	monthKeyFormat = "2006-01"
)

// Bucket is one sub-interval of a period, used as a chart x-axis point.
// Key is unique within the bucket set; Date is the bucket's first instant.
type Bucket struct {
	Key   string
	Date  time.Time
	Label string
}

// Buckets is the eagerly materialized, chronologically ascending bucket
// sequence for one period. Counts are small (at most ~366 for a yearly
// span of days is never produced; the largest set is 12*10 months for
// AllTime or 31 days for Monthly), so laziness buys nothing.
type Buckets struct {
	Grain Grain
	Items []Bucket

	loc *time.Location
}

// GrainFor returns the charting sub-granularity of a view. Weekly
// periods bucket per day within the single week, matching the
// daily/monthly drill-down pattern.
func GrainFor(v View) Grain {
	switch v {
	case BiYearly, Yearly, AllTime:
		return GrainMonth
	default:
		return GrainDay
	}
}

// BuildBuckets partitions the period into buckets at the view's grain.
// The sequence is exhaustive and disjoint: every instant of the period
// belongs to exactly one bucket.
func BuildBuckets(v View, p Period) Buckets {
	return buildBuckets(GrainFor(v), p.Start, p.End)
}

// BucketsForSpan builds month buckets across an arbitrary data-driven
// range, used to narrow AllTime charts to the actual transaction span.
func BucketsForSpan(min, max time.Time) Buckets {
	y, m, _ := min.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, min.Location())
	return buildBuckets(GrainMonth, start, max)
}

func buildBuckets(g Grain, start, end time.Time) Buckets {
	b := Buckets{Grain: g, loc: start.Location()}
	cur := startOfDay(start)
	if g == GrainMonth {
		y, m, _ := cur.Date()
		cur = time.Date(y, m, 1, 0, 0, 0, 0, cur.Location())
	}
	for !cur.After(end) {
		b.Items = append(b.Items, Bucket{
			Key:   b.keyOf(cur),
			Date:  cur,
			Label: b.labelOf(cur),
		})
		if g == GrainMonth {
			cur = cur.AddDate(0, 1, 0)
		} else {
			cur = cur.AddDate(0, 0, 1)
		}
	}
	return b
}

// KeyFor maps an instant to its bucket key using the same truncation
// rule the buckets were built with. Instants outside the period map to
// keys with no bucket and are simply not aggregated.
func (b Buckets) KeyFor(t time.Time) string {
	return b.keyOf(t.In(b.location()))
}

func (b Buckets) keyOf(t time.Time) string {
	if b.Grain == GrainMonth {
		return t.Format(monthKeyFormat)
	}
	return t.Format(dayKeyFormat)
}

func (b Buckets) labelOf(t time.Time) string {
	if b.Grain == GrainMonth {
		return t.Format("Jan 2006")
	}
	return t.Format("Jan 2")
}

func (b Buckets) location() *time.Location {
	if b.loc == nil {
		return time.Local
	}
	return b.loc
}
