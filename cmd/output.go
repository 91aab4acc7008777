package cmd

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/nissmart/dashboard-cli/internal/application"
	"github.com/nissmart/dashboard-cli/internal/domain"
)

type userJSON struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type balanceJSON struct {
	UserID   int64           `json:"user_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type transactionJSON struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	FromUserID  *int64          `json:"from_user_id,omitempty"`
	ToUserID    *int64          `json:"to_user_id,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
}

type historyJSON struct {
	Balance      balanceJSON       `json:"balance"`
	Transactions []transactionJSON `json:"transactions"`
}

type summaryJSON struct {
	TotalUsers       int64           `json:"total_users"`
	TotalValue       decimal.Decimal `json:"total_value"`
	Currency         string          `json:"currency"`
	TotalTransfers   int64           `json:"total_transfers"`
	TotalWithdrawals int64           `json:"total_withdrawals"`
}

type dailyTotalJSON struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type adminJSON struct {
	Summary     *summaryJSON      `json:"summary,omitempty"`
	DailyTotals []dailyTotalJSON  `json:"daily_totals"`
	Recent      []transactionJSON `json:"recent"`
}

type actionJSON struct {
	RequestID   string           `json:"request_id"`
	Kind        string           `json:"kind"`
	Message     string           `json:"message"`
	User        *userJSON        `json:"user,omitempty"`
	Transaction *transactionJSON `json:"transaction,omitempty"`
}

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func toUserJSON(user domain.User) userJSON {
	out := userJSON{ID: int64(user.ID), Name: user.Name, Email: user.Email}
	if !user.CreatedAt.IsZero() {
		createdAt := user.CreatedAt
		out.CreatedAt = &createdAt
	}
	return out
}

func toBalanceJSON(balance domain.Balance) balanceJSON {
	currency := balance.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return balanceJSON{UserID: int64(balance.UserID), Amount: balance.Amount, Currency: currency}
}

func toTransactionJSON(tx domain.Transaction) transactionJSON {
	out := transactionJSON{
		ID:          int64(tx.ID),
		Type:        string(tx.Type),
		Status:      string(tx.Status),
		Amount:      tx.Amount,
		Description: tx.Description,
	}
	if tx.From != nil {
		from := int64(*tx.From)
		out.FromUserID = &from
	}
	if tx.To != nil {
		to := int64(*tx.To)
		out.ToUserID = &to
	}
	if !tx.CreatedAt.IsZero() {
		createdAt := tx.CreatedAt
		out.CreatedAt = &createdAt
	}
	return out
}

func toTransactionsJSON(txs []domain.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionJSON(tx))
	}
	return out
}

func toAdminJSON(state application.AdminDashboardState) adminJSON {
	out := adminJSON{
		DailyTotals: make([]dailyTotalJSON, 0, len(state.DailyTotals)),
		Recent:      toTransactionsJSON(state.Recent),
	}
	if state.HasSummary {
		currency := state.Summary.Currency
		if currency == "" {
			currency = domain.DefaultCurrency
		}
		out.Summary = &summaryJSON{
			TotalUsers:       state.Summary.TotalUsers,
			TotalValue:       state.Summary.TotalValue,
			Currency:         currency,
			TotalTransfers:   state.Summary.TotalTransfers,
			TotalWithdrawals: state.Summary.TotalWithdrawals,
		}
	}
	for _, total := range state.DailyTotals {
		out.DailyTotals = append(out.DailyTotals, dailyTotalJSON{
			Date:  total.Date.Format("2006-01-02"),
			Total: total.Total,
			Count: total.Count,
		})
	}
	return out
}
