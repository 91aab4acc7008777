package ports

import (
	"context"

	"github.com/nissmart/dashboard-cli/internal/domain"
)

// UserDirectory remembers the users this client created or selected so the
// selector survives restarts. It holds no ledger state.
type UserDirectory interface {
	List(ctx context.Context) ([]domain.User, error)
	Save(ctx context.Context, user domain.User) error
}
