package infra

import (
	"errors"
	"sync"
	"time"
)

// Breaker guards calls to the SMTP relay. After enough consecutive failures
// it opens and fast-fails every call; once the cooldown elapses a single
// probe is let through, and consecutive probe successes close it again.

// ErrBreakerOpen is returned by Call while the breaker is open.
var ErrBreakerOpen = errors.New("circuit breaker open")

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// BreakerOptions tunes the breaker. Zero values fall back to the defaults
// used for the mail relay: trip after 5 failures, close after 2 probe
// successes, cool down for 60s.
type BreakerOptions struct {
	TripAfter  int
	CloseAfter int
	Cooldown   time.Duration
}

type Breaker struct {
	mu         sync.Mutex
	state      breakerState
	failures   int
	successes  int
	openedAt   time.Time
	tripAfter  int
	closeAfter int
	cooldown   time.Duration
}

func NewBreaker(opts BreakerOptions) *Breaker {
	if opts.TripAfter <= 0 {
		opts.TripAfter = 5
	}
	if opts.CloseAfter <= 0 {
		opts.CloseAfter = 2
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 60 * time.Second
	}
	return &Breaker{
		tripAfter:  opts.TripAfter,
		closeAfter: opts.CloseAfter,
		cooldown:   opts.Cooldown,
	}
}

// State reports the current state for health endpoints and logs.
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.current() {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// current applies the open -> half-open transition. Caller holds b.mu.
func (b *Breaker) current() breakerState {
	if b.state == breakerOpen && time.Since(b.openedAt) >= b.cooldown {
		b.state = breakerHalfOpen
		b.successes = 0
	}
	return b.state
}

// Call runs fn unless the breaker is open, recording the outcome.
func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.current() == breakerOpen {
		b.mu.Unlock()
		return ErrBreakerOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *Breaker) recordFailure() {
	b.failures++
	b.openedAt = time.Now()

	switch b.state {
	case breakerClosed:
		if b.failures >= b.tripAfter {
			b.state = breakerOpen
			b.successes = 0
		}
	case breakerHalfOpen:
		// probe failed, another full cooldown
		b.state = breakerOpen
		b.failures = 0
	}
}

func (b *Breaker) recordSuccess() {
	switch b.state {
	case breakerClosed:
		b.failures = 0
	case breakerHalfOpen:
		b.successes++
		if b.successes >= b.closeAfter {
			b.state = breakerClosed
			b.failures = 0
			b.successes = 0
		}
	}
}
