package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

func fail(context.Context) error { return errDown }
func ok(context.Context) error   { return nil }

// newTestBreaker returns a breaker on a controllable clock.
func newTestBreaker(cfg Config) (*Breaker, *time.Time) {
	now := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	cfg.OnStateChange = nil
	b := New(cfg)
	b.now = func() time.Time { return now }
	b.toNewGeneration(now)
	return b, &now
}

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(Config{Name: "store"})

	for i := 0; i < 4; i++ {
		assert.ErrorIs(t, b.Do(context.Background(), fail), errDown)
		assert.Equal(t, StateClosed, b.State())
	}
	assert.ErrorIs(t, b.Do(context.Background(), fail), errDown)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(context.Background(), func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(Config{Name: "store"})

	for i := 0; i < 4; i++ {
		b.Do(context.Background(), fail)
	}
	require.NoError(t, b.Do(context.Background(), ok))
	for i := 0; i < 4; i++ {
		b.Do(context.Background(), fail)
	}
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(4), b.Counts().ConsecutiveFailures)
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	b, now := newTestBreaker(Config{Name: "store", Cooldown: 10 * time.Second})
	for i := 0; i < 5; i++ {
		b.Do(context.Background(), fail)
	}
	require.Equal(t, StateOpen, b.State())

	*now = now.Add(11 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	// a failed probe reopens
	assert.ErrorIs(t, b.Do(context.Background(), fail), errDown)
	assert.Equal(t, StateOpen, b.State())

	*now = now.Add(11 * time.Second)
	require.NoError(t, b.Do(context.Background(), ok))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_IsFailureClassifies(t *testing.T) {
	errMiss := errors.New("not found")
	b, _ := newTestBreaker(Config{
		Name:      "store",
		IsFailure: func(err error) bool { return err != nil && !errors.Is(err, errMiss) },
	})

	for i := 0; i < 10; i++ {
		err := b.Do(context.Background(), func(context.Context) error { return errMiss })
		assert.ErrorIs(t, err, errMiss)
	}
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(10), b.Counts().TotalSuccesses)
}

func TestBreaker_IntervalClearsCounts(t *testing.T) {
	b, now := newTestBreaker(Config{Name: "store", Interval: time.Minute})

	for i := 0; i < 4; i++ {
		b.Do(context.Background(), fail)
	}
	*now = now.Add(2 * time.Minute)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(0), b.Counts().ConsecutiveFailures)
	b.Do(context.Background(), fail)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_PanicCountsAsFailure(t *testing.T) {
	b, _ := newTestBreaker(Config{Name: "store"})

	assert.Panics(t, func() {
		b.Do(context.Background(), func(context.Context) error { panic("boom") })
	})
	assert.Equal(t, uint32(1), b.Counts().TotalFailures)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}
