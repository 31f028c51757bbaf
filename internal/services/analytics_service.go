package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/period"
	"fintrack/internal/store"
)

const (
	topCategories = 6
	topBanks      = 5
	trendMonths   = 6
)

// SeriesPoint is one chart bucket in a summary payload.
type SeriesPoint struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// BreakdownEntry is one slice of a category or bank breakdown, largest first.
type BreakdownEntry struct {
	Name   string `json:"name"`
	Icon   string `json:"icon,omitempty"`
	Amount string `json:"amount"`
}

// TrendPoint is one month of the expense/income trend.
type TrendPoint struct {
	Month    string `json:"month"`
	Expenses string `json:"expenses"`
	Income   string `json:"income"`
}

// Summary is the full dashboard payload for one view/cursor pair.
type Summary struct {
	View             string           `json:"view"`
	Label            string           `json:"label"`
	StartDate        string           `json:"startDate,omitempty"`
	EndDate          string           `json:"endDate,omitempty"`
	IsAdvanceable    bool             `json:"isAdvanceable"`
	TotalExpenses    string           `json:"totalExpenses"`
	TotalIncome      string           `json:"totalIncome"`
	TransactionCount int              `json:"transactionCount"`
	AvgTransaction   string           `json:"avgTransaction"`
	SpendingSeries   []SeriesPoint    `json:"spendingSeries"`
	IncomeSeries     []SeriesPoint    `json:"incomeSeries"`
	Categories       []BreakdownEntry `json:"categories"`
	Banks            []BreakdownEntry `json:"banks"`
	Trends           []TrendPoint     `json:"trends"`
}

// AnalyticsService computes dashboard summaries over stored transactions.
// All period math lives in internal/period; this service only joins it with
// storage and shapes the payload.
type AnalyticsService struct {
	store store.Store
	now   func() time.Time
}

func NewAnalyticsService(st store.Store) *AnalyticsService {
	return &AnalyticsService{store: st, now: time.Now}
}

// WithClock overrides the service clock. Tests use this.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// Summarize resolves the view/cursor pair to a period, loads the matching
// transactions and computes the dashboard numbers. An unparseable cursor
// falls back to now; an unknown view falls back to monthly.
func (s *AnalyticsService) Summarize(ctx context.Context, view, cursor string) (*Summary, error) {
	v, _ := period.ParseView(view)
	now := s.now()
	ref := period.ParseCursor(cursor, now)
	p := period.Resolve(v, ref, now)

	filter := store.TransactionFilter{}
	if v != period.AllTime {
		start, end := p.Start, p.End
		filter.Start = &start
		filter.End = &end
	}

	txns, err := s.store.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	startDate, endDate := period.DateRange(v, ref, now)

	summary := &Summary{
		View:          v.String(),
		Label:         period.Label(v, ref, now),
		StartDate:     startDate,
		EndDate:       endDate,
		IsAdvanceable: period.IsAdvanceable(v, ref, now),
	}
	s.fillTotals(summary, txns)
	s.fillSeries(summary, v, p, txns)
	summary.Categories = categoryBreakdown(txns, categories)
	summary.Banks = bankBreakdown(txns)
	summary.Trends = monthlyTrends(txns)

	return summary, nil
}

func (s *AnalyticsService) fillTotals(summary *Summary, txns []core.Transaction) {
	var expenses, income decimal.Decimal
	for _, t := range txns {
		amount := amountOrZero(t.Amount)
		if t.Type == core.Credit {
			income = income.Add(amount)
		} else {
			expenses = expenses.Add(amount)
		}
	}

	summary.TotalExpenses = core.FormatAmount(expenses)
	summary.TotalIncome = core.FormatAmount(income)
	summary.TransactionCount = len(txns)

	avg := decimal.Zero
	if len(txns) > 0 {
		avg = expenses.Add(income).Div(decimal.NewFromInt(int64(len(txns))))
	}
	summary.AvgTransaction = core.FormatAmount(avg)
}

func (s *AnalyticsService) fillSeries(summary *Summary, v period.View, p period.Period, txns []core.Transaction) {
	buckets := period.BuildBuckets(v, p)
	if v == period.AllTime && len(txns) > 0 {
		// Narrow the chart to the months that actually hold data; the
		// derived ten-year range would bury them in zero buckets.
		min, max := transactionSpan(txns)
		buckets = period.BucketsForSpan(min, max)
	}

	spending := period.Series(buckets, period.Aggregate(buckets, txns, period.Spending))
	income := period.Series(buckets, period.Aggregate(buckets, txns, period.Income))

	summary.SpendingSeries = toSeriesPoints(spending)
	summary.IncomeSeries = toSeriesPoints(income)
}

// transactionSpan returns the earliest and latest transaction dates.
// Callers must ensure txns is non-empty.
func transactionSpan(txns []core.Transaction) (min, max time.Time) {
	min, max = txns[0].TransactionDate, txns[0].TransactionDate
	for _, t := range txns[1:] {
		if t.TransactionDate.Before(min) {
			min = t.TransactionDate
		}
		if t.TransactionDate.After(max) {
			max = t.TransactionDate
		}
	}
	return min, max
}

func toSeriesPoints(points []period.Point) []SeriesPoint {
	out := make([]SeriesPoint, len(points))
	for i, pt := range points {
		out[i] = SeriesPoint{
			Key:   pt.Key,
			Label: pt.Label,
			Value: core.FormatAmount(pt.Value),
		}
	}
	return out
}

// categoryBreakdown sums every transaction into its category, largest first.
// Transactions without a known category land in "Uncategorized".
func categoryBreakdown(txns []core.Transaction, categories []core.Category) []BreakdownEntry {
	type catInfo struct {
		name string
		icon string
	}
	byID := make(map[string]catInfo, len(categories))
	for _, c := range categories {
		byID[c.ID] = catInfo{name: c.Name, icon: c.Icon}
	}

	sums := make(map[string]decimal.Decimal)
	icons := make(map[string]string)
	for _, t := range txns {
		name := "Uncategorized"
		var icon string
		if info, ok := byID[t.CategoryID]; ok && t.CategoryID != "" {
			name = info.name
			icon = info.icon
		}
		sums[name] = sums[name].Add(amountOrZero(t.Amount))
		icons[name] = icon
	}

	entries := sortedBreakdown(sums, topCategories)
	for i := range entries {
		entries[i].Icon = icons[entries[i].Name]
	}
	return entries
}

// bankBreakdown sums every transaction into its bank, largest first.
func bankBreakdown(txns []core.Transaction) []BreakdownEntry {
	sums := make(map[string]decimal.Decimal)
	for _, t := range txns {
		name := t.BankName
		if name == "" {
			name = "Unknown Bank"
		}
		sums[name] = sums[name].Add(amountOrZero(t.Amount))
	}
	return sortedBreakdown(sums, topBanks)
}

func sortedBreakdown(sums map[string]decimal.Decimal, limit int) []BreakdownEntry {
	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := sums[names[i]], sums[names[j]]
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return names[i] < names[j]
	})

	if len(names) > limit {
		names = names[:limit]
	}

	entries := make([]BreakdownEntry, len(names))
	for i, name := range names {
		entries[i] = BreakdownEntry{Name: name, Amount: core.FormatAmount(sums[name])}
	}
	return entries
}

// monthlyTrends buckets the transactions by calendar month and keeps the
// last six months present in the data, oldest first.
func monthlyTrends(txns []core.Transaction) []TrendPoint {
	type pair struct {
		expenses decimal.Decimal
		income   decimal.Decimal
	}
	months := make(map[string]pair)
	for _, t := range txns {
		key := t.TransactionDate.Format("2006-01")
		p := months[key]
		amount := amountOrZero(t.Amount)
		if t.Type == core.Credit {
			p.income = p.income.Add(amount)
		} else {
			p.expenses = p.expenses.Add(amount)
		}
		months[key] = p
	}

	keys := make([]string, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) > trendMonths {
		keys = keys[len(keys)-trendMonths:]
	}

	trends := make([]TrendPoint, len(keys))
	for i, key := range keys {
		month, _ := time.Parse("2006-01", key)
		trends[i] = TrendPoint{
			Month:    month.Format("Jan"),
			Expenses: core.FormatAmount(months[key].expenses),
			Income:   core.FormatAmount(months[key].income),
		}
	}
	return trends
}

// amountOrZero is the forgiving read-path parse: malformed stored amounts
// count as zero instead of failing the whole summary.
func amountOrZero(s string) decimal.Decimal {
	d, err := core.ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}
