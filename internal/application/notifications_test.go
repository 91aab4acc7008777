package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/nissmart/dashboard-cli/internal/ports/clocktest"
)

func TestNotificationQueuePushKeepsInsertionOrderAndExpires(t *testing.T) {
	t.Parallel()

	clock := clocktest.New(baseTime)
	queue := NewNotificationQueue(clock, 3*time.Second)

	first := queue.Push("one", domain.CategoryDeposit)
	clock.Advance(time.Second)
	second := queue.Push("two", domain.CategoryTransfer)
	third := queue.Push("three", domain.CategoryWithdraw)

	active := queue.Active()
	require.Len(t, active, 3)
	assert.Equal(t, []domain.NotificationID{first, second, third}, []domain.NotificationID{active[0].ID, active[1].ID, active[2].ID})
	assert.Less(t, uint64(first), uint64(second))
	assert.Less(t, uint64(second), uint64(third))
	assert.Equal(t, baseTime.Add(3*time.Second), active[0].ExpiresAt)
	assert.Equal(t, domain.CategoryTransfer, active[1].Category)

	clock.Advance(2 * time.Second)
	active = queue.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "two", active[0].Message)

	clock.Advance(time.Second)
	assert.Empty(t, queue.Active())
	assert.Zero(t, clock.Pending())
}

func TestNotificationQueueDismissIsIdempotent(t *testing.T) {
	t.Parallel()

	clock := clocktest.New(baseTime)
	queue := NewNotificationQueue(clock, 3*time.Second)
	id := queue.Push("one", domain.CategoryDeposit)
	queue.Push("two", domain.CategoryDeposit)

	queue.Dismiss(domain.NotificationID(999))
	assert.Len(t, queue.Active(), 2)

	queue.Dismiss(id)
	queue.Dismiss(id)
	active := queue.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "two", active[0].Message)
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(3 * time.Second)
	assert.Empty(t, queue.Active())
}

func TestNotificationQueueCloseCancelsTimers(t *testing.T) {
	t.Parallel()

	clock := clocktest.New(baseTime)
	queue := NewNotificationQueue(clock, 3*time.Second)
	notified := 0
	queue.Subscribe(func() { notified++ })

	queue.Push("one", domain.CategoryDeposit)
	queue.Push("two", domain.CategoryDeposit)
	require.Equal(t, 2, clock.Pending())

	queue.Close()
	assert.Empty(t, queue.Active())
	assert.Zero(t, clock.Pending())
	assert.Equal(t, 3, notified)

	clock.Advance(5 * time.Second)
	assert.Equal(t, 3, notified)
}

func TestNotificationQueueIgnoresPushAfterClose(t *testing.T) {
	t.Parallel()

	clock := clocktest.New(baseTime)
	queue := NewNotificationQueue(clock, 3*time.Second)
	queue.Close()

	id := queue.Push("late", domain.CategoryDeposit)

	assert.Zero(t, id)
	assert.Empty(t, queue.Active())
	assert.Zero(t, clock.Pending())
}
