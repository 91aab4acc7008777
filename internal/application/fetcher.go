package application

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/nissmart/dashboard-cli/internal/ports"
)

const DefaultActivityLimit = 20

var (
	ErrNoSubject     = errors.New("no subject selected")
	ErrSessionClosed = errors.New("polling session closed")
)

// SnapshotFetcher resolves a subject to its two remote streams: the balance
// and transaction history of a user, or the system summary and recent
// activity for the admin subject.
type SnapshotFetcher struct {
	reader        ports.LedgerReader
	clock         ports.Clock
	activityLimit int
}

func NewSnapshotFetcher(reader ports.LedgerReader, clock ports.Clock, activityLimit int) *SnapshotFetcher {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if activityLimit <= 0 {
		activityLimit = DefaultActivityLimit
	}

	return &SnapshotFetcher{reader: reader, clock: clock, activityLimit: activityLimit}
}

func (f *SnapshotFetcher) FetchPrimary(ctx context.Context, subject domain.Subject) (domain.Primary, error) {
	if subject.IsSystem() {
		summary, err := f.reader.SystemSummary(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch system summary: %w", err)
		}
		return summary, nil
	}

	id, ok := subject.UserID()
	if !ok {
		return nil, ErrNoSubject
	}
	balance, err := f.reader.Balance(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch balance for %s: %w", subject, err)
	}
	return balance, nil
}

func (f *SnapshotFetcher) FetchTransactions(ctx context.Context, subject domain.Subject) ([]domain.Transaction, error) {
	if subject.IsSystem() {
		txs, err := f.reader.RecentActivity(ctx, f.activityLimit)
		if err != nil {
			return nil, fmt.Errorf("fetch recent activity: %w", err)
		}
		return txs, nil
	}

	id, ok := subject.UserID()
	if !ok {
		return nil, ErrNoSubject
	}
	txs, err := f.reader.Transactions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions for %s: %w", subject, err)
	}
	return txs, nil
}

// Fetch reads both streams concurrently and fails if either fails.
func (f *SnapshotFetcher) Fetch(ctx context.Context, subject domain.Subject) (*domain.Snapshot, error) {
	var (
		primary domain.Primary
		txs     []domain.Transaction
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		primary, err = f.FetchPrimary(groupCtx, subject)
		return err
	})
	group.Go(func() error {
		var err error
		txs, err = f.FetchTransactions(groupCtx, subject)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return domain.NewSnapshot(f.clock.Now(), primary, txs), nil
}
