package scan

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fraudshield/admin-dashboard/internal/clock"
	"github.com/fraudshield/admin-dashboard/internal/model"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

// State is a snapshot of a session's scan.
type State struct {
	Scanning  bool
	IP        string
	StartedAt time.Time
	Result    *model.ScanResult
	Err       string
}

// Runner owns the one scan a session may have in flight. Starting a
// new scan cancels the previous one, and a finished scan only updates
// the state if no newer scan has started since.
type Runner struct {
	scanner Scanner
	clock   clock.Clock
	onDone  func(State)

	parent context.Context

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State
	wg     sync.WaitGroup
}

// NewRunner binds scans to parent: cancelling it abandons any scan in
// flight. onDone, if set, is called outside the lock after a current
// scan settles.
func NewRunner(parent context.Context, s Scanner, c clock.Clock, onDone func(State)) *Runner {
	return &Runner{
		scanner: s,
		clock:   c,
		onDone:  onDone,
		parent:  parent,
	}
}

// Start begins scanning ip. It returns false if the runner's parent
// context is already done.
func (r *Runner) Start(ip string) bool {
	r.mu.Lock()
	if r.parent.Err() != nil {
		r.mu.Unlock()
		return false
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	ctx, cancel := context.WithCancel(r.parent)
	r.cancel = cancel
	r.state = State{Scanning: true, IP: ip, StartedAt: r.clock.Now()}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer cancel()
		res, err := r.scanner.Scan(ctx, ip)
		r.finish(gen, res, err)
	}()
	return true
}

func (r *Runner) finish(gen uint64, res model.ScanResult, err error) {
	r.mu.Lock()
	if gen != r.gen || r.parent.Err() != nil {
		r.mu.Unlock()
		return
	}
	r.cancel = nil
	st := State{IP: r.state.IP, StartedAt: r.state.StartedAt}
	var appErr *apperrors.AppError
	switch {
	case err == nil:
		st.Result = &res
	case errors.As(err, &appErr):
		st.Err = appErr.Message
	default:
		st.Err = MsgScanFailed
	}
	r.state = st
	r.mu.Unlock()

	if r.onDone != nil {
		r.onDone(st)
	}
}

// State returns the latest snapshot.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state
	if st.Result != nil {
		res := cloneResult(*st.Result)
		st.Result = &res
	}
	return st
}

// Wait blocks until every scan goroutine has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}
