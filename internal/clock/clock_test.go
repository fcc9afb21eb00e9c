package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func TestFakeAfterFuncFiresOnAdvance(t *testing.T) {
	c := Fake(epoch)
	fired := 0
	c.AfterFunc(3*time.Second, func() { fired++ })

	c.Advance(2999 * time.Millisecond)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, c.PendingTimers())

	c.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, c.PendingTimers())

	c.Advance(time.Hour)
	assert.Equal(t, 1, fired)
}

func TestFakeTimerStop(t *testing.T) {
	c := Fake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	assert.Equal(t, 0, c.PendingTimers())

	c.Advance(time.Minute)
	assert.False(t, fired)
}

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	c := Fake(epoch)
	var order []int
	c.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	c.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	c.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	c.Advance(5 * time.Second)
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, epoch.Add(5*time.Second), c.Now())
}

func TestSleepHonoursCancellation(t *testing.T) {
	c := Fake(epoch)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Sleep(ctx, c, 500*time.Millisecond) }()

	c.WaitForTimers(1)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestSleepCompletesOnAdvance(t *testing.T) {
	c := Fake(epoch)

	done := make(chan error, 1)
	go func() { done <- Sleep(context.Background(), c, time.Second) }()

	c.WaitForTimers(1)
	c.Advance(time.Second)
	assert.NoError(t, <-done)
}

func TestSleepZeroReturnsImmediately(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), Real(), 0))
}
