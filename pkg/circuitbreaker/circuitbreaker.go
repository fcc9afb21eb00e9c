package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Execute while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker is open")

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

type Settings struct {
	Name string
	// MaxFailures consecutive failures open the breaker. Zero disables it.
	MaxFailures int
	// Timeout is how long the breaker stays open before letting one
	// trial call through.
	Timeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	// IsFailure decides which errors count. Defaults to every non-nil error.
	IsFailure func(error) bool
}

type CircuitBreaker struct {
	name        string
	maxFailures int
	timeout     time.Duration
	now         func() time.Time
	isFailure   func(error) bool

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	state       State
	trial       bool
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:        settings.Name,
		maxFailures: settings.MaxFailures,
		timeout:     settings.Timeout,
		now:         settings.Now,
		isFailure:   settings.IsFailure,
		state:       StateClosed,
	}
	if cb.now == nil {
		cb.now = time.Now
	}
	if cb.isFailure == nil {
		cb.isFailure = func(err error) bool { return err != nil }
	}
	return cb
}

func (cb *CircuitBreaker) Name() string { return cb.name }

// State reports the current state, moving an expired open breaker to
// half-open.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.advance()
	return cb.state
}

func (cb *CircuitBreaker) advance() {
	if cb.state == StateOpen && cb.now().Sub(cb.lastFailure) >= cb.timeout {
		cb.state = StateHalfOpen
		cb.trial = false
	}
}

// Execute runs fn unless the breaker is open. While half-open only one
// trial call runs at a time; a success closes the breaker and a failure
// opens it again.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.maxFailures <= 0 {
		return fn()
	}

	cb.mu.Lock()
	cb.advance()
	switch cb.state {
	case StateOpen:
		cb.mu.Unlock()
		return ErrOpen
	case StateHalfOpen:
		if cb.trial {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.trial = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.trial = false

	if cb.isFailure(err) {
		cb.failures++
		cb.lastFailure = cb.now()
		if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = StateOpen
		}
		return err
	}

	cb.state = StateClosed
	cb.failures = 0
	return err
}
