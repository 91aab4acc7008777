package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "KES"

// Primary is the headline state of a subject: a Balance for a user, a
// SystemSummary for the admin view.
type Primary interface {
	primary()
}

type Balance struct {
	UserID   UserID
	Amount   decimal.Decimal
	Currency string
}

func (Balance) primary() {}

type SystemSummary struct {
	TotalUsers       int64
	TotalValue       decimal.Decimal
	Currency         string
	TotalTransfers   int64
	TotalWithdrawals int64
}

func (SystemSummary) primary() {}

// Snapshot is an immutable view of a subject's remote state. Sessions replace
// it wholesale and never mutate one after publishing it.
type Snapshot struct {
	FetchedAt    time.Time
	Primary      Primary
	Transactions []Transaction
}

func NewSnapshot(fetchedAt time.Time, primary Primary, txs []Transaction) *Snapshot {
	return &Snapshot{
		FetchedAt:    fetchedAt,
		Primary:      primary,
		Transactions: NormalizeTransactions(txs),
	}
}

func (s *Snapshot) Balance() (Balance, bool) {
	if s == nil {
		return Balance{}, false
	}
	balance, ok := s.Primary.(Balance)
	return balance, ok
}

func (s *Snapshot) Summary() (SystemSummary, bool) {
	if s == nil {
		return SystemSummary{}, false
	}
	summary, ok := s.Primary.(SystemSummary)
	return summary, ok
}
