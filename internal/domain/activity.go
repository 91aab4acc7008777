package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultFeedSize = 10

type DailyTotal struct {
	Date  time.Time
	Total decimal.Decimal
	Count int
}

// DailyTotals buckets transactions by calendar day of CreatedAt (in the
// timestamp's own location) and sums their amounts, oldest day first.
func DailyTotals(txs []Transaction) []DailyTotal {
	type day struct {
		year  int
		month time.Month
		day   int
	}

	buckets := make(map[day]*DailyTotal)
	for _, tx := range NormalizeTransactions(txs) {
		if tx.CreatedAt.IsZero() {
			continue
		}
		y, m, d := tx.CreatedAt.Date()
		key := day{year: y, month: m, day: d}
		bucket, ok := buckets[key]
		if !ok {
			bucket = &DailyTotal{Date: time.Date(y, m, d, 0, 0, 0, 0, tx.CreatedAt.Location()), Total: decimal.Zero}
			buckets[key] = bucket
		}
		bucket.Total = bucket.Total.Add(tx.Amount)
		bucket.Count++
	}

	totals := make([]DailyTotal, 0, len(buckets))
	for _, bucket := range buckets {
		totals = append(totals, *bucket)
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Date.Before(totals[j].Date)
	})

	return totals
}

// RecentActivity returns at most n transactions, most recent first.
func RecentActivity(txs []Transaction, n int) []Transaction {
	if n <= 0 {
		return []Transaction{}
	}

	ordered := NormalizeTransactions(txs)
	if len(ordered) > n {
		ordered = ordered[:n]
	}

	return ordered
}
