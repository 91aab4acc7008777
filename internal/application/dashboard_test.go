package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/nissmart/dashboard-cli/internal/ports"
	"github.com/nissmart/dashboard-cli/internal/ports/clocktest"
	"github.com/nissmart/dashboard-cli/internal/ports/mocks"
)

func newTestUserDashboard(t *testing.T, ledger *fakeLedger, directory ports.UserDirectory) (*UserDashboard, *clocktest.Clock) {
	t.Helper()

	clock := clocktest.New(baseTime)
	dashboard := NewUserDashboard(NewSnapshotFetcher(ledger, clock, 0), ledger, directory, DashboardConfig{
		Clock:                clock,
		PollInterval:         5 * time.Second,
		NotificationDuration: 3 * time.Second,
		OverlayDuration:      3 * time.Second,
	})
	t.Cleanup(dashboard.Close)
	return dashboard, clock
}

func waitUserSnapshot(t *testing.T, dashboard *UserDashboard, ready func(UserDashboardState) bool) UserDashboardState {
	t.Helper()

	require.Eventually(t, func() bool {
		state := dashboard.State()
		return state.Session.Snapshot != nil && !state.Session.LoadingPrimary && !state.Session.LoadingTransactions && ready(state)
	}, waitFor, tick)
	return dashboard.State()
}

func TestUserDashboardDepositEndToEnd(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	alice := ledger.addUser("Alice", 0)
	directory := mocks.NewMockUserDirectory(t)
	directory.EXPECT().List(mockAnyContext()).Return([]domain.User{alice}, nil).Once()
	dashboard, _ := newTestUserDashboard(t, ledger, directory)

	require.NoError(t, dashboard.Load(context.Background()))
	require.NoError(t, dashboard.Select(context.Background(), alice.ID))
	waitUserSnapshot(t, dashboard, func(UserDashboardState) bool { return true })

	outcome, err := dashboard.Submit(context.Background(), domain.Deposit{Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)
	require.NotNil(t, outcome.Transaction)
	assert.Equal(t, alice.ID, *outcome.Transaction.To)

	state := dashboard.State()
	assert.False(t, state.Busy)
	require.Len(t, state.Notifications, 1)
	assert.Equal(t, domain.CategoryDeposit, state.Notifications[0].Category)
	require.NotNil(t, state.Overlay)
	assert.Equal(t, "Alice (#1) — Deposit Successful!", state.Overlay.Text())

	state = waitUserSnapshot(t, dashboard, func(state UserDashboardState) bool {
		return len(state.Session.Snapshot.Transactions) == 1
	})
	balance, ok := state.Session.Snapshot.Balance()
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(50).Equal(balance.Amount))
	assert.Equal(t, outcome.Transaction.ID, state.Session.Snapshot.Transactions[0].ID)
	assert.Equal(t, domain.StatusCompleted, state.Session.Snapshot.Transactions[0].Status)
	assert.Equal(t, 2, ledger.callCount("balance/1"))
}

func TestUserDashboardTransferRejectedLeavesSnapshot(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	alice := ledger.addUser("Alice", 10)
	bob := ledger.addUser("Bob", 0)
	dashboard, _ := newTestUserDashboard(t, ledger, nil)

	require.NoError(t, dashboard.Select(context.Background(), alice.ID))
	before := waitUserSnapshot(t, dashboard, func(UserDashboardState) bool { return true })

	_, err := dashboard.Submit(context.Background(), domain.Transfer{To: bob.ID, Amount: decimal.NewFromInt(100)})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	state := dashboard.State()
	assert.False(t, state.Busy)
	assert.Equal(t, "Insufficient funds", state.ActionError)
	assert.Empty(t, state.Notifications)
	assert.Nil(t, state.Overlay)
	assert.Same(t, before.Session.Snapshot, state.Session.Snapshot)
	assert.Equal(t, 1, ledger.callCount("balance/1"))
}

func TestUserDashboardCreateUserRegistersAndSelects(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	directory := mocks.NewMockUserDirectory(t)
	directory.EXPECT().Save(mockAnyContext(), mock.MatchedBy(func(user domain.User) bool {
		return user.ID == 1 && user.Name == "Ann"
	})).Return(nil).Once()
	dashboard, _ := newTestUserDashboard(t, ledger, directory)

	outcome, err := dashboard.Submit(context.Background(), domain.CreateUser{Name: "Ann"})
	require.NoError(t, err)
	require.NotNil(t, outcome.User)

	state := dashboard.State()
	assert.Equal(t, domain.UserSubject(1), state.Selected)
	require.Len(t, state.Users, 1)
	user, ok := state.SelectedUser()
	require.True(t, ok)
	assert.Equal(t, "Ann", user.Name)

	state = waitUserSnapshot(t, dashboard, func(UserDashboardState) bool { return true })
	balance, ok := state.Session.Snapshot.Balance()
	require.True(t, ok)
	assert.True(t, balance.Amount.IsZero())
}

func TestUserDashboardSwitchingUsersAndClose(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	alice := ledger.addUser("Alice", 10)
	bob := ledger.addUser("Bob", 20)
	dashboard, clock := newTestUserDashboard(t, ledger, nil)

	require.NoError(t, dashboard.Select(context.Background(), alice.ID))
	waitUserSnapshot(t, dashboard, func(UserDashboardState) bool { return true })

	release := ledger.hold("balance/1")
	t.Cleanup(release)
	dashboard.RefreshNow()
	require.Eventually(t, func() bool { return ledger.callCount("balance/1") == 2 }, waitFor, tick)

	require.NoError(t, dashboard.Select(context.Background(), bob.ID))
	state := waitUserSnapshot(t, dashboard, func(state UserDashboardState) bool {
		balance, _ := state.Session.Snapshot.Balance()
		return balance.UserID == bob.ID
	})
	release()

	_, err := dashboard.Submit(context.Background(), domain.Deposit{Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return ledger.returnedCount("balance/1") == 2 }, waitFor, tick)
	assert.Equal(t, bob.Subject(), dashboard.State().Selected)
	assert.NotNil(t, state.Session.Snapshot)

	dashboard.Deselect()
	assert.True(t, dashboard.State().Selected.IsZero())
	assert.Nil(t, dashboard.State().Session.Snapshot)

	dashboard.Close()
	assert.Zero(t, clock.Pending())
	assert.Empty(t, dashboard.State().Notifications)
	assert.Nil(t, dashboard.State().Overlay)
}

func TestUserDashboardCloseDuringCreateUserStaysQuiet(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	dashboard, clock := newTestUserDashboard(t, ledger, nil)

	release := ledger.hold("create")
	t.Cleanup(release)

	done := make(chan error, 1)
	go func() {
		_, err := dashboard.Submit(context.Background(), domain.CreateUser{Name: "Bob"})
		done <- err
	}()
	require.Eventually(t, func() bool { return ledger.callCount("create") == 1 }, waitFor, tick)

	dashboard.Close()
	release()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("create user did not settle")
	}

	state := dashboard.State()
	assert.Zero(t, clock.Pending())
	assert.False(t, state.Session.Active)
	assert.Empty(t, state.Notifications)
	assert.Nil(t, state.Overlay)

	clock.Advance(10 * time.Second)
	assert.Zero(t, ledger.callCount("balance/1"))
	assert.False(t, dashboard.State().Session.Active)
}

func TestAdminDashboardDerivesProjections(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	alice := ledger.addUser("Alice", 100)
	day1 := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= 15; i++ {
		createdAt := day2.Add(time.Duration(i) * time.Minute)
		amount := decimal.NewFromInt(1)
		if i <= 2 {
			createdAt = day1.Add(time.Duration(i) * time.Minute)
			amount = decimal.NewFromInt(int64(10 * i))
		}
		ledger.addTransaction(domain.Transaction{ID: domain.TransactionID(i), Type: domain.TransactionDeposit, Status: domain.StatusCompleted, Amount: amount, To: &alice.ID, CreatedAt: createdAt})
	}

	clock := clocktest.New(baseTime)
	dashboard := NewAdminDashboard(NewSnapshotFetcher(ledger, clock, 20), DashboardConfig{Clock: clock})
	t.Cleanup(dashboard.Close)

	require.NoError(t, dashboard.Start(context.Background()))
	require.Eventually(t, func() bool { return dashboard.State().HasSummary }, waitFor, tick)

	state := dashboard.State()
	assert.Equal(t, int64(1), state.Summary.TotalUsers)
	require.Len(t, state.DailyTotals, 2)
	assert.True(t, decimal.NewFromInt(30).Equal(state.DailyTotals[0].Total))
	assert.True(t, decimal.NewFromInt(13).Equal(state.DailyTotals[1].Total))
	require.Len(t, state.Recent, domain.DefaultFeedSize)
	assert.Equal(t, domain.TransactionID(15), state.Recent[0].ID)
	assert.Equal(t, domain.TransactionID(6), state.Recent[9].ID)
	assert.Equal(t, []int{20}, ledger.limits)

	dashboard.Stop()
	assert.Zero(t, clock.Pending())
	assert.Equal(t, state.DailyTotals, dashboard.State().DailyTotals)
}

func TestProjectAdminWithoutSnapshot(t *testing.T) {
	t.Parallel()

	state := ProjectAdmin(SessionState{LastError: loadFailedMessage}, 0)

	assert.False(t, state.HasSummary)
	assert.Empty(t, state.DailyTotals)
	assert.Empty(t, state.Recent)
	assert.Equal(t, loadFailedMessage, state.Session.LastError)
}

func TestProjectAdminTrimsFeed(t *testing.T) {
	t.Parallel()

	txs := make([]domain.Transaction, 0, 5)
	for i := 1; i <= 5; i++ {
		txs = append(txs, domain.Transaction{ID: domain.TransactionID(i), Amount: decimal.NewFromInt(1), CreatedAt: baseTime.Add(time.Duration(i) * time.Second)})
	}
	snapshot := domain.NewSnapshot(baseTime, domain.SystemSummary{TotalUsers: 2}, txs)

	state := ProjectAdmin(SessionState{Snapshot: snapshot}, 3)

	assert.True(t, state.HasSummary)
	require.Len(t, state.Recent, 3)
	assert.Equal(t, domain.TransactionID(5), state.Recent[0].ID)
	require.Len(t, state.DailyTotals, 1)
	assert.Equal(t, 5, state.DailyTotals[0].Count)
}
