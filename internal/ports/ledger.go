package ports

import (
	"context"

	"github.com/nissmart/dashboard-cli/internal/domain"
)

// LedgerReader is the read surface of the remote ledger service.
type LedgerReader interface {
	Balance(ctx context.Context, id domain.UserID) (domain.Balance, error)
	Transactions(ctx context.Context, id domain.UserID) ([]domain.Transaction, error)
	SystemSummary(ctx context.Context) (domain.SystemSummary, error)
	RecentActivity(ctx context.Context, limit int) ([]domain.Transaction, error)
}

// LedgerWriter is the mutation surface of the remote ledger service.
type LedgerWriter interface {
	CreateAccount(ctx context.Context, params domain.CreateUser) (domain.User, error)
	Deposit(ctx context.Context, params domain.Deposit) (domain.Transaction, error)
	Transfer(ctx context.Context, params domain.Transfer) (domain.Transaction, error)
	Withdraw(ctx context.Context, params domain.Withdraw) (domain.Transaction, error)
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
