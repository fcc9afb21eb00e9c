// Package session keeps per-browser dashboard state: the toast slot and
// the TCP scan in flight.
package session

import (
	"context"
	"sync"

	"github.com/fraudshield/admin-dashboard/internal/clock"
	"github.com/fraudshield/admin-dashboard/internal/service/scan"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
)

// Session is the state one browser shares across requests.
type Session struct {
	ID     string
	Toasts *toast.Dispatcher
	Scans  *scan.Runner

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func newSession(id string, c clock.Clock, scanner scan.Scanner, toastOpts ...toast.Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:     id,
		Toasts: toast.NewDispatcher(c, toastOpts...),
		ctx:    ctx,
		cancel: cancel,
	}
	s.Scans = scan.NewRunner(ctx, scanner, c, func(st scan.State) {
		if st.Err != "" {
			s.Toasts.Show(st.Err, toast.Error)
		}
	})
	return s
}

// Context is cancelled when the session closes.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Close stops the toast timer and abandons any scan in flight. It is
// safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		s.cancel()
		s.Toasts.Close()
	})
}
