// Package circuitbreaker stops calling a remote upload store after repeated
// failures and probes it again after a cool-down.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// State is the breaker position.
type State int

const (
	StateClosed   State = iota // calls pass through
	StateOpen                  // calls fail fast with ErrOpen
	StateHalfOpen              // a few probe calls decide whether to close again
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	ErrOpen            = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("circuit breaker is half-open and busy")
)

// Config tunes a breaker. Zero fields take the values from DefaultConfig.
type Config struct {
	Name string

	// HalfOpenProbes is how many calls may run while half-open, and how many
	// consecutive successes close the breaker again.
	HalfOpenProbes uint32

	// Interval clears the closed-state counts periodically. Zero never clears.
	Interval time.Duration

	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration

	// ReadyToTrip decides, after each closed-state failure, whether to open.
	ReadyToTrip func(c Counts) bool

	// IsFailure classifies a call error. Errors it rejects count as success,
	// e.g. a not-found answer from a healthy store.
	IsFailure func(err error) bool

	OnStateChange func(name string, from, to State)
}

// DefaultConfig trips after five consecutive failures and probes again after
// fifteen seconds.
func DefaultConfig(name string) Config {
	return Config{
		Name:           name,
		HalfOpenProbes: 1,
		Interval:       time.Minute,
		Cooldown:       15 * time.Second,
		ReadyToTrip: func(c Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		IsFailure: func(err error) bool { return err != nil },
		OnStateChange: func(name string, from, to State) {
			slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
}

// Counts are the call outcomes of the current generation.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) success() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) failure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// Breaker guards calls to one dependency.
type Breaker struct {
	cfg Config
	now func() time.Time

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	expiry     time.Time
}

// New creates a closed breaker.
func New(cfg Config) *Breaker {
	def := DefaultConfig(cfg.Name)
	if cfg.HalfOpenProbes == 0 {
		cfg.HalfOpenProbes = def.HalfOpenProbes
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = def.ReadyToTrip
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = def.IsFailure
	}

	b := &Breaker{cfg: cfg, now: time.Now}
	b.toNewGeneration(b.now())
	return b
}

func (b *Breaker) Name() string { return b.cfg.Name }

// State returns the current state, moving open to half-open once the
// cool-down has passed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, _ := b.currentState(b.now())
	return state
}

func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Do runs fn unless the breaker rejects it, and records the outcome. The
// error from fn is returned unchanged.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	generation, err := b.beforeCall()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			b.afterCall(generation, false)
			panic(r)
		}
	}()

	err = fn(ctx)
	b.afterCall(generation, !b.cfg.IsFailure(err))
	return err
}

func (b *Breaker) beforeCall() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, generation := b.currentState(b.now())
	switch {
	case state == StateOpen:
		return generation, ErrOpen
	case state == StateHalfOpen && b.counts.Requests >= b.cfg.HalfOpenProbes:
		return generation, ErrTooManyRequests
	}
	b.counts.Requests++
	return generation, nil
}

func (b *Breaker) afterCall(generation uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	state, current := b.currentState(now)
	if generation != current {
		return // outcome of a call from an earlier generation
	}

	if ok {
		b.counts.success()
		if state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.cfg.HalfOpenProbes {
			b.setState(StateClosed, now)
		}
		return
	}

	b.counts.failure()
	switch state {
	case StateClosed:
		if b.cfg.ReadyToTrip(b.counts) {
			b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		b.setState(StateOpen, now)
	}
}

func (b *Breaker) currentState(now time.Time) (State, uint64) {
	switch b.state {
	case StateClosed:
		if !b.expiry.IsZero() && b.expiry.Before(now) {
			b.toNewGeneration(now)
		}
	case StateOpen:
		if b.expiry.Before(now) {
			b.setState(StateHalfOpen, now)
		}
	}
	return b.state, b.generation
}

func (b *Breaker) setState(state State, now time.Time) {
	if b.state == state {
		return
	}
	prev := b.state
	b.state = state
	b.toNewGeneration(now)

	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.cfg.Name, prev, state)
	}
}

func (b *Breaker) toNewGeneration(now time.Time) {
	b.generation++
	b.counts = Counts{}

	switch b.state {
	case StateClosed:
		b.expiry = time.Time{}
		if b.cfg.Interval > 0 {
			b.expiry = now.Add(b.cfg.Interval)
		}
	case StateOpen:
		b.expiry = now.Add(b.cfg.Cooldown)
	default:
		b.expiry = time.Time{}
	}
}
