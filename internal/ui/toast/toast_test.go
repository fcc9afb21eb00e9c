package toast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudshield/admin-dashboard/internal/clock"
)

var epoch = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func TestShowThenAutoDismiss(t *testing.T) {
	c := clock.Fake(epoch)
	d := NewDispatcher(c)

	d.Show("Pattern updated successfully", Success)

	got, ok := d.Current()
	require.True(t, ok)
	assert.Equal(t, "Pattern updated successfully", got.Message)
	assert.Equal(t, Success, got.Type)
	assert.Equal(t, epoch.Add(DefaultDuration), got.ExpiresAt)

	c.Advance(2999 * time.Millisecond)
	_, ok = d.Current()
	assert.True(t, ok)

	c.Advance(time.Millisecond)
	_, ok = d.Current()
	assert.False(t, ok)
}

func TestReplacementCancelsPreviousTimer(t *testing.T) {
	c := clock.Fake(epoch)
	var expired []string
	d := NewDispatcher(c, WithOnExpire(func(t Toast) { expired = append(expired, t.Message) }))

	d.Show("x", Info)
	c.Advance(time.Second)
	d.Show("y", Warning)

	got, ok := d.Current()
	require.True(t, ok)
	assert.Equal(t, "y", got.Message)
	assert.Equal(t, 1, c.PendingTimers())

	// x's original deadline passes; y stays visible.
	c.Advance(2 * time.Second)
	got, ok = d.Current()
	require.True(t, ok)
	assert.Equal(t, "y", got.Message)

	c.Advance(time.Second)
	_, ok = d.Current()
	assert.False(t, ok)
	assert.Equal(t, []string{"y"}, expired)

	c.Advance(time.Hour)
	assert.Equal(t, []string{"y"}, expired)
}

func TestDefaultTypeIsInfo(t *testing.T) {
	d := NewDispatcher(clock.Fake(epoch))
	d.Show("hello", "")
	got, _ := d.Current()
	assert.Equal(t, Info, got.Type)
}

func TestDismissCancelsTimer(t *testing.T) {
	c := clock.Fake(epoch)
	d := NewDispatcher(c)

	d.Show("IP blocked successfully", Success)
	d.Dismiss()

	_, ok := d.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, c.PendingTimers())
}

func TestCloseStopsTimerAndIgnoresLaterShows(t *testing.T) {
	c := clock.Fake(epoch)
	shown := 0
	d := NewDispatcher(c, WithOnShow(func(Toast) { shown++ }))

	d.Show("first", Info)
	d.Close()
	assert.Equal(t, 0, c.PendingTimers())

	d.Show("second", Info)
	_, ok := d.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, shown)
}

func TestWithDuration(t *testing.T) {
	c := clock.Fake(epoch)
	d := NewDispatcher(c, WithDuration(time.Second))

	d.Show("quick", Info)
	c.Advance(time.Second)
	_, ok := d.Current()
	assert.False(t, ok)

	d = NewDispatcher(c, WithDuration(0))
	d.Show("default", Info)
	got, _ := d.Current()
	assert.Equal(t, DefaultDuration, got.ExpiresAt.Sub(got.ShownAt))
}

func TestFromContextFailsFastWithoutProvider(t *testing.T) {
	assert.PanicsWithValue(t, ErrNoProvider, func() {
		FromContext(context.Background()).Show("nope", Info)
	})
}

func TestFromContextReturnsProvider(t *testing.T) {
	d := NewDispatcher(clock.Fake(epoch))
	ctx := NewContext(context.Background(), d)

	FromContext(ctx).Show("Settings saved", Success)

	got, ok := d.Current()
	require.True(t, ok)
	assert.Equal(t, "Settings saved", got.Message)
}
