package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errProbe = errors.New("probe failed")

func TestBreakerOpensAndRecovers(t *testing.T) {
	now := time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(Settings{
		Name:        "scanner",
		MaxFailures: 2,
		Timeout:     30 * time.Second,
		Now:         func() time.Time { return now },
	})

	fail := func() error { return errProbe }
	ok := func() error { return nil }

	assert.ErrorIs(t, cb.Execute(fail), errProbe)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(fail), errProbe)
	assert.Equal(t, StateOpen, cb.State())

	calls := 0
	err := cb.Execute(func() error { calls++; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.Zero(t, calls, "open breaker does not call through")

	now = now.Add(30 * time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(fail), errProbe)
	assert.Equal(t, StateOpen, cb.State(), "failed trial reopens")

	now = now.Add(time.Minute)
	assert.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxFailures: 2, Timeout: time.Minute})

	_ = cb.Execute(func() error { return errProbe })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return errProbe })
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerIgnoresFilteredErrors(t *testing.T) {
	cb := NewCircuitBreaker(Settings{
		MaxFailures: 1,
		Timeout:     time.Minute,
		IsFailure:   func(err error) bool { return err != nil && !errors.Is(err, context.Canceled) },
	})

	assert.ErrorIs(t, cb.Execute(func() error { return context.Canceled }), context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
}

func TestDisabledBreakerAlwaysCalls(t *testing.T) {
	cb := NewCircuitBreaker(Settings{})
	for range 5 {
		assert.ErrorIs(t, cb.Execute(func() error { return errProbe }), errProbe)
	}
	assert.Equal(t, StateClosed, cb.State())
}
