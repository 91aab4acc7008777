package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionID int64
type TransactionType string
type TransactionStatus string

const (
	TransactionDeposit  TransactionType = "DEPOSIT"
	TransactionTransfer TransactionType = "TRANSFER"
	TransactionWithdraw TransactionType = "WITHDRAW"

	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

func ParseTransactionType(raw string) (TransactionType, bool) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(raw))) {
	case TransactionDeposit:
		return TransactionDeposit, true
	case TransactionTransfer:
		return TransactionTransfer, true
	case TransactionWithdraw, "WITHDRAWAL":
		return TransactionWithdraw, true
	default:
		return "", false
	}
}

// ParseTransactionStatus accepts the service's SUCCESS spelling as COMPLETED.
func ParseTransactionStatus(raw string) (TransactionStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PENDING":
		return StatusPending, true
	case "COMPLETED", "SUCCESS":
		return StatusCompleted, true
	case "FAILED":
		return StatusFailed, true
	default:
		return "", false
	}
}

type Transaction struct {
	ID          TransactionID
	Type        TransactionType
	Status      TransactionStatus
	Amount      decimal.Decimal
	From        *UserID
	To          *UserID
	Description string
	CreatedAt   time.Time
}

// Newer reports whether t sorts before other in recent-activity order:
// CreatedAt descending, ties broken by ID descending.
func (t Transaction) Newer(other Transaction) bool {
	if !t.CreatedAt.Equal(other.CreatedAt) {
		return t.CreatedAt.After(other.CreatedAt)
	}

	return t.ID > other.ID
}

// NormalizeTransactions returns a copy without duplicate ids, ordered
// most recent first. When an id repeats, the first occurrence wins.
func NormalizeTransactions(txs []Transaction) []Transaction {
	result := make([]Transaction, 0, len(txs))
	seen := make(map[TransactionID]struct{}, len(txs))
	for _, tx := range txs {
		if _, ok := seen[tx.ID]; ok {
			continue
		}
		seen[tx.ID] = struct{}{}
		result = append(result, tx)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Newer(result[j])
	})

	return result
}
