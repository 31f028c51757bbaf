package period

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Selector decides whether a transaction contributes to a series.
type Selector func(core.Transaction) bool

// Spending includes expense (debit) transactions only.
func Spending(tx core.Transaction) bool { return tx.Type == core.Debit }

// Income includes credit transactions only.
func Income(tx core.Transaction) bool { return tx.Type == core.Credit }

// Point is one chart-ready data point of an aggregated series.
type Point struct {
	Key   string
	Date  time.Time
	Label string
	Value decimal.Decimal
}

// Aggregate folds transactions into the bucket set and returns the sum
// per bucket key. Every bucket key is present in the result, zero when
// nothing matched, so chart series have no gaps. Transactions whose
// timestamp falls outside the bucketed window are excluded; a malformed
// amount contributes zero rather than aborting the aggregation.
//
// Accumulation is decimal, so the result is independent of the input
// order and bit-identical across repeated calls.
func Aggregate(b Buckets, txns []core.Transaction, include Selector) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal, len(b.Items))
	for _, bucket := range b.Items {
		sums[bucket.Key] = decimal.Zero
	}
	for _, tx := range txns {
		if include != nil && !include(tx) {
			continue
		}
		key := b.KeyFor(tx.TransactionDate)
		cur, ok := sums[key]
		if !ok {
			continue
		}
		sums[key] = cur.Add(contribution(tx.Amount))
	}
	return sums
}

// Series pairs the ordered buckets with their aggregated sums.
func Series(b Buckets, sums map[string]decimal.Decimal) []Point {
	points := make([]Point, 0, len(b.Items))
	for _, bucket := range b.Items {
		points = append(points, Point{
			Key:   bucket.Key,
			Date:  bucket.Date,
			Label: bucket.Label,
			Value: sums[bucket.Key],
		})
	}
	return points
}

// contribution parses a transaction amount forgivingly: any string that
// is not a number counts as zero. Sign is discarded; the selector has
// already decided which series the transaction belongs to.
func contribution(amount string) decimal.Decimal {
	s := strings.ReplaceAll(strings.TrimSpace(amount), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}
