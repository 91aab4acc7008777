package rest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nissmart/dashboard-cli/internal/domain"
)

// The service emits naive timestamps in UTC as well as zoned ones.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

type createUserBody struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

type movementBody struct {
	UserID      int64       `json:"user_id"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description,omitempty"`
}

type transferBody struct {
	FromUserID  int64       `json:"from_user_id"`
	ToUserID    int64       `json:"to_user_id"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description,omitempty"`
}

type userPayload struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     *string `json:"email"`
	CreatedAt string  `json:"created_at"`
}

func (p userPayload) toDomain() (domain.User, error) {
	createdAt, err := parseTimestamp(p.CreatedAt)
	if err != nil {
		return domain.User{}, &domain.UnavailableError{Err: fmt.Errorf("decode user %d: %w", p.ID, err)}
	}

	user := domain.User{ID: domain.UserID(p.ID), Name: p.Name, CreatedAt: createdAt}
	if p.Email != nil {
		user.Email = *p.Email
	}
	return user, nil
}

type balancePayload struct {
	UserID   int64           `json:"user_id"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

func (p balancePayload) toDomain() domain.Balance {
	return domain.Balance{
		UserID:   domain.UserID(p.UserID),
		Amount:   p.Balance,
		Currency: currencyOrDefault(p.Currency),
	}
}

type summaryPayload struct {
	TotalUsers       int64           `json:"total_users"`
	TotalValue       decimal.Decimal `json:"total_value"`
	TotalTransfers   int64           `json:"total_transfers"`
	TotalWithdrawals int64           `json:"total_withdrawals"`
	Currency         string          `json:"currency"`
}

func (p summaryPayload) toDomain() domain.SystemSummary {
	return domain.SystemSummary{
		TotalUsers:       p.TotalUsers,
		TotalValue:       p.TotalValue,
		Currency:         currencyOrDefault(p.Currency),
		TotalTransfers:   p.TotalTransfers,
		TotalWithdrawals: p.TotalWithdrawals,
	}
}

type transactionPayload struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	FromUserID  *int64          `json:"from_user_id"`
	ToUserID    *int64          `json:"to_user_id"`
	CreatedAt   string          `json:"created_at"`
	Description *string         `json:"description"`
}

func (p transactionPayload) toDomain() (domain.Transaction, error) {
	kind, ok := domain.ParseTransactionType(p.Type)
	if !ok {
		return domain.Transaction{}, fmt.Errorf("transaction %d: unknown type %q", p.ID, p.Type)
	}
	status, ok := domain.ParseTransactionStatus(p.Status)
	if !ok {
		return domain.Transaction{}, fmt.Errorf("transaction %d: unknown status %q", p.ID, p.Status)
	}
	createdAt, err := parseTimestamp(p.CreatedAt)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %d: %w", p.ID, err)
	}

	tx := domain.Transaction{
		ID:        domain.TransactionID(p.ID),
		Type:      kind,
		Status:    status,
		Amount:    p.Amount,
		From:      userIDPtr(p.FromUserID),
		To:        userIDPtr(p.ToUserID),
		CreatedAt: createdAt,
	}
	if p.Description != nil {
		tx.Description = *p.Description
	}
	return tx, nil
}

type transactionsPayload struct {
	Transactions []transactionPayload `json:"transactions"`
}

func (p transactionsPayload) toDomain() ([]domain.Transaction, error) {
	txs := make([]domain.Transaction, 0, len(p.Transactions))
	for _, item := range p.Transactions {
		tx, err := item.toDomain()
		if err != nil {
			return nil, &domain.UnavailableError{Err: fmt.Errorf("decode transactions: %w", err)}
		}
		txs = append(txs, tx)
	}
	return domain.NormalizeTransactions(txs), nil
}

type mutationPayload struct {
	Status        string `json:"status"`
	TransactionID int64  `json:"transaction_id"`
}

// errorPayload is the service's error body. detail is a string for business
// rejections and a list of field errors for malformed requests.
type errorPayload struct {
	Detail json.RawMessage `json:"detail"`
}

type fieldErrorPayload struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func (p errorPayload) message() string {
	if len(p.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(p.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var fieldErrors []fieldErrorPayload
	if err := json.Unmarshal(p.Detail, &fieldErrors); err == nil {
		messages := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			if msg := strings.TrimSpace(fe.Msg); msg != "" {
				messages = append(messages, msg)
			}
		}
		return strings.Join(messages, "; ")
	}

	return ""
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", raw)
}

func userIDPtr(id *int64) *domain.UserID {
	if id == nil {
		return nil
	}
	value := domain.UserID(*id)
	return &value
}

func currencyOrDefault(currency string) string {
	if strings.TrimSpace(currency) == "" {
		return domain.DefaultCurrency
	}
	return currency
}
