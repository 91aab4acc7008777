package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/nissmart/dashboard-cli/internal/ports/clocktest"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func newTestSession(t *testing.T, ledger *fakeLedger, clock *clocktest.Clock, metrics *recordingMetrics) *PollingSession {
	t.Helper()

	session := NewPollingSession(NewSnapshotFetcher(ledger, clock, 0), clock, 5*time.Second, WithMetrics(metrics))
	t.Cleanup(session.Close)
	return session
}

func waitIdle(t *testing.T, session *PollingSession) SessionState {
	t.Helper()

	require.Eventually(t, func() bool {
		state := session.State()
		return !state.LoadingPrimary && !state.LoadingTransactions
	}, waitFor, tick)
	return session.State()
}

func balanceOf(t *testing.T, state SessionState) decimal.Decimal {
	t.Helper()

	balance, ok := state.Snapshot.Balance()
	require.True(t, ok)
	return balance.Amount
}

func TestPollingSessionStartLoadsSnapshot(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	alice := ledger.addUser("Alice", 100)
	ledger.addTransaction(domain.Transaction{ID: 1, Type: domain.TransactionDeposit, Status: domain.StatusCompleted, Amount: decimal.NewFromInt(100), To: &alice.ID, CreatedAt: baseTime})
	clock := clocktest.New(baseTime)
	session := newTestSession(t, ledger, clock, newRecordingMetrics())

	release := ledger.hold("balance/1")
	t.Cleanup(release)
	require.NoError(t, session.Start(context.Background(), alice.Subject()))

	state := session.State()
	assert.True(t, state.Active)
	assert.True(t, state.LoadingPrimary)
	assert.Nil(t, state.Snapshot)

	release()
	state = waitIdle(t, session)
	require.NotNil(t, state.Snapshot)
	assert.True(t, decimal.NewFromInt(100).Equal(balanceOf(t, state)))
	require.Len(t, state.Snapshot.Transactions, 1)
	assert.Equal(t, baseTime, state.LastUpdatedAt)
	assert.Empty(t, state.LastError)
}

func TestPollingSessionStartRejectsZeroSubject(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, newFakeLedger(), clocktest.New(baseTime), newRecordingMetrics())
	assert.ErrorIs(t, session.Start(context.Background(), domain.Subject{}), ErrNoSubject)
	assert.False(t, session.State().Active)
}

func TestPollingSessionRefusesStartAfterClose(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	alice := ledger.addUser("Alice", 10)
	clock := clocktest.New(baseTime)
	session := newTestSession(t, ledger, clock, newRecordingMetrics())

	session.Close()
	require.ErrorIs(t, session.Start(context.Background(), alice.Subject()), ErrSessionClosed)
	session.RefreshNow()

	assert.False(t, session.State().Active)
	assert.Zero(t, clock.Pending())
	assert.Zero(t, ledger.callCount("balance/1"))
}

func TestPollingSessionRefreshNowCoalescesWithInFlightFetch(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	alice := ledger.addUser("Alice", 10)
	clock := clocktest.New(baseTime)
	metrics := newRecordingMetrics()
	session := newTestSession(t, ledger, clock, metrics)

	release := ledger.hold("balance/1")
	t.Cleanup(release)
	require.NoError(t, session.Start(context.Background(), alice.Subject()))
	require.Eventually(t, func() bool { return ledger.callCount("balance/1") == 1 }, waitFor, tick)

	for i := 0; i < 3; i++ {
		session.RefreshNow()
	}
	require.Eventually(t, func() bool {
		return metrics.count(metrics.coalesced, string(StreamPrimary)) == 3
	}, waitFor, tick)
	assert.Equal(t, 1, ledger.callCount("balance/1"))
	assert.True(t, session.State().LoadingPrimary)

	release()
	state := waitIdle(t, session)
	assert.Equal(t, 1, ledger.callCount("balance/1"))
	assert.Equal(t, 1, ledger.peakInFlight("balance/1"))
	assert.LessOrEqual(t, ledger.peakInFlight("transactions/1"), 1)
	assert.NotNil(t, state.Snapshot)
}

func TestPollingSessionDropsResponsesFromAbandonedSubject(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	alice := ledger.addUser("Alice", 10)
	bob := ledger.addUser("Bob", 20)
	clock := clocktest.New(baseTime)
	metrics := newRecordingMetrics()
	session := newTestSession(t, ledger, clock, metrics)

	release := ledger.hold("balance/1")
	t.Cleanup(release)
	require.NoError(t, session.Start(context.Background(), alice.Subject()))
	require.Eventually(t, func() bool { return ledger.callCount("balance/1") == 1 }, waitFor, tick)

	require.NoError(t, session.Start(context.Background(), bob.Subject()))
	state := waitIdle(t, session)
	require.NotNil(t, state.Snapshot)
	assert.True(t, decimal.NewFromInt(20).Equal(balanceOf(t, state)))

	release()
	require.Eventually(t, func() bool {
		return metrics.count(metrics.abandoned, string(StreamPrimary)) >= 1
	}, waitFor, tick)

	state = session.State()
	assert.Equal(t, bob.Subject(), state.Subject)
	assert.True(t, decimal.NewFromInt(20).Equal(balanceOf(t, state)))
	assert.Empty(t, state.LastError)
}

func TestPollingSessionIgnoresResponsesAfterStop(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	alice := ledger.addUser("Alice", 10)
	clock := clocktest.New(baseTime)
	metrics := newRecordingMetrics()
	session := newTestSession(t, ledger, clock, metrics)

	require.NoError(t, session.Start(context.Background(), alice.Subject()))
	first := waitIdle(t, session)
	require.NotNil(t, first.Snapshot)

	release := ledger.hold("balance/1")
	t.Cleanup(release)
	session.RefreshNow()
	require.Eventually(t, func() bool { return ledger.callCount("balance/1") == 2 }, waitFor, tick)

	session.Stop()
	assert.Zero(t, clock.Pending())
	release()
	require.Eventually(t, func() bool {
		return metrics.count(metrics.abandoned, string(StreamPrimary)) >= 1
	}, waitFor, tick)

	state := session.State()
	assert.False(t, state.Active)
	assert.False(t, state.LoadingPrimary)
	assert.Same(t, first.Snapshot, state.Snapshot)

	session.RefreshNow()
	clock.Advance(20 * time.Second)
	assert.Equal(t, 2, ledger.callCount("balance/1"))
}

func TestPollingSessionTicksOnInterval(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	alice := ledger.addUser("Alice", 10)
	clock := clocktest.New(baseTime)
	session := newTestSession(t, ledger, clock, newRecordingMetrics())

	require.NoError(t, session.Start(context.Background(), alice.Subject()))
	waitIdle(t, session)
	require.Equal(t, 1, ledger.callCount("balance/1"))
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(4 * time.Second)
	assert.Equal(t, 1, ledger.callCount("balance/1"))

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return ledger.callCount("balance/1") == 2 }, waitFor, tick)
	waitIdle(t, session)
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(5 * time.Second)
	require.Eventually(t, func() bool { return ledger.callCount("balance/1") == 3 }, waitFor, tick)
	state := waitIdle(t, session)
	assert.Equal(t, baseTime.Add(10*time.Second), state.LastUpdatedAt)
}

func TestPollingSessionTracksStreamFailuresIndependently(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	alice := ledger.addUser("Alice", 10)
	clock := clocktest.New(baseTime)
	session := newTestSession(t, ledger, clock, newRecordingMetrics())

	ledger.failWith("transactions/1", &domain.UnavailableError{Status: 503, Message: "ledger down"})
	require.NoError(t, session.Start(context.Background(), alice.Subject()))
	state := waitIdle(t, session)
	assert.Equal(t, "ledger down", state.LastError)
	assert.Nil(t, state.Snapshot)

	ledger.failWith("transactions/1", nil)
	clock.Advance(5 * time.Second)
	require.Eventually(t, func() bool {
		state := session.State()
		return state.Snapshot != nil && state.LastError == ""
	}, waitFor, tick)
	loaded := session.State().Snapshot

	ledger.failWith("balance/1", &domain.UnavailableError{Err: context.DeadlineExceeded})
	session.RefreshNow()
	require.Eventually(t, func() bool { return session.State().LastError != "" }, waitFor, tick)
	state = waitIdle(t, session)
	assert.Equal(t, "Failed to load data", state.LastError)
	require.NotNil(t, state.Snapshot)
	assert.True(t, decimal.NewFromInt(10).Equal(balanceOf(t, state)))
	assert.Equal(t, loaded.Primary, state.Snapshot.Primary)
	assert.True(t, session.State().Active)
}

func TestPollingSessionDiscardsOutOfOrderResult(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	alice := ledger.addUser("Alice", 10)
	clock := clocktest.New(baseTime)
	session := newTestSession(t, ledger, clock, newRecordingMetrics())

	require.NoError(t, session.Start(context.Background(), alice.Subject()))
	waitIdle(t, session)
	session.RefreshNow()
	require.Eventually(t, func() bool { return ledger.returnedCount("balance/1") == 2 }, waitFor, tick)
	state := waitIdle(t, session)

	session.mu.Lock()
	gen := session.generation
	session.mu.Unlock()

	stale := domain.Balance{UserID: alice.ID, Amount: decimal.NewFromInt(999), Currency: domain.DefaultCurrency}
	assert.True(t, session.settle(&cycle{gen: gen, remaining: 1}, StreamPrimary, streamResult{seq: 1, value: stale}))

	assert.Same(t, state.Snapshot, session.State().Snapshot)
	assert.True(t, decimal.NewFromInt(10).Equal(balanceOf(t, session.State())))
}

func TestPollingSessionResetForgetsSubject(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	alice := ledger.addUser("Alice", 10)
	clock := clocktest.New(baseTime)
	session := newTestSession(t, ledger, clock, newRecordingMetrics())

	require.NoError(t, session.Start(context.Background(), alice.Subject()))
	waitIdle(t, session)

	session.Reset()
	state := session.State()
	assert.True(t, state.Subject.IsZero())
	assert.Nil(t, state.Snapshot)
	assert.False(t, state.Active)
	assert.Zero(t, clock.Pending())
}
