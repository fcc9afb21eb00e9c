package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudshield/admin-dashboard/internal/clock"
)

type countingSyncer struct {
	calls atomic.Int32
	err   error
}

func (s *countingSyncer) SyncAll(context.Context) (int, error) {
	s.calls.Add(1)
	return 9, s.err
}

func TestConnectorSyncRunsEveryInterval(t *testing.T) {
	fake := clock.Fake(time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC))
	syncer := &countingSyncer{}
	w := NewConnectorSyncWorker(syncer, fake, time.Minute)

	passes := make(chan int, 4)
	w.OnSync(func(n int, err error) {
		assert.NoError(t, err)
		passes <- n
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		fake.WaitForTimers(1)
		fake.Advance(time.Minute)
		assert.Equal(t, 9, <-passes)
	}
	assert.Equal(t, int32(2), syncer.calls.Load())

	cancel()
	<-done
}

func TestConnectorSyncSurvivesErrors(t *testing.T) {
	fake := clock.Fake(time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC))
	syncer := &countingSyncer{err: errors.New("store offline")}
	w := NewConnectorSyncWorker(syncer, fake, time.Second)

	errs := make(chan error, 2)
	w.OnSync(func(_ int, err error) { errs <- err })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	for i := 0; i < 2; i++ {
		fake.WaitForTimers(1)
		fake.Advance(time.Second)
		require.Error(t, <-errs)
	}
}

func TestConnectorSyncDisabled(t *testing.T) {
	syncer := &countingSyncer{}
	NewConnectorSyncWorker(syncer, clock.Real(), 0).Start(context.Background())
	assert.Zero(t, syncer.calls.Load())
}
