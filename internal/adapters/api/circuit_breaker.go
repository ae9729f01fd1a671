package api

import (
	"errors"
	"sync"
	"time"

	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

// BreakerState is the health of the upstream as seen by the client
type BreakerState string

const (
	BreakerClosed  BreakerState = "closed"
	BreakerOpen    BreakerState = "open"
	BreakerProbing BreakerState = "probing"
)

// ErrCircuitOpen is returned without contacting WarEra while the breaker is open
var ErrCircuitOpen = errors.New("warera api unavailable: circuit open")

// Breaker stops calling WarEra after consecutive server-side failures. Once
// the cooldown has passed a single probe call is let through; its outcome
// closes or reopens the circuit.
type Breaker struct {
	threshold int
	cooldown  time.Duration
	clock     shared.Clock

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
	onChange func(BreakerState)
}

// NewBreaker creates a closed breaker. If clock is nil, uses RealClock.
func NewBreaker(threshold int, cooldown time.Duration, clock shared.Clock) *Breaker {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if threshold < 1 {
		threshold = 1
	}
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		clock:     clock,
		state:     BreakerClosed,
	}
}

// OnStateChange registers fn to be called after every transition
func (b *Breaker) OnStateChange(fn func(BreakerState)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Do runs fn unless the circuit is open. fn runs without the lock held so
// slow retries do not serialize unrelated callers.
func (b *Breaker) Do(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		if b.state == BreakerProbing || b.failures >= b.threshold {
			b.openedAt = b.clock.Now()
			b.transition(BreakerOpen)
		}
		return err
	}

	b.failures = 0
	b.transition(BreakerClosed)
	return nil
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.clock.Now().Sub(b.openedAt) < b.cooldown {
			return ErrCircuitOpen
		}
		b.transition(BreakerProbing)
		return nil
	case BreakerProbing:
		// one probe at a time
		return ErrCircuitOpen
	}
	return nil
}

// transition must be called with mu held
func (b *Breaker) transition(to BreakerState) {
	if b.state == to {
		return
	}
	b.state = to
	if b.onChange != nil {
		b.onChange(to)
	}
}

// State returns the current state
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the consecutive failure count
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
