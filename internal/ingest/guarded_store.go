package ingest

import (
	"context"
	"errors"

	"github.com/retailpilot/backend/internal/circuitbreaker"
)

// GuardedStore fronts a remote Store with a circuit breaker, so a dead Redis
// or Postgres turns uploads into fast ErrInternal answers instead of
// timeouts. ErrNotFound is a normal answer and does not count as a failure.
type GuardedStore struct {
	inner Store
	cb    *circuitbreaker.Breaker
}

func NewGuardedStore(inner Store, cfg circuitbreaker.Config) *GuardedStore {
	cfg.IsFailure = func(err error) bool {
		return err != nil && !errors.Is(err, ErrNotFound)
	}
	return &GuardedStore{inner: inner, cb: circuitbreaker.New(cfg)}
}

// Breaker exposes the breaker for health reporting.
func (g *GuardedStore) Breaker() *circuitbreaker.Breaker {
	return g.cb
}

func (g *GuardedStore) Get(ctx context.Context, category string) (*Record, error) {
	var rec *Record
	err := g.cb.Do(ctx, func(ctx context.Context) error {
		var err error
		rec, err = g.inner.Get(ctx, category)
		return err
	})
	return rec, err
}

func (g *GuardedStore) Put(ctx context.Context, rec *Record) error {
	return g.cb.Do(ctx, func(ctx context.Context) error {
		return g.inner.Put(ctx, rec)
	})
}

func (g *GuardedStore) List(ctx context.Context) ([]*Record, error) {
	var recs []*Record
	err := g.cb.Do(ctx, func(ctx context.Context) error {
		var err error
		recs, err = g.inner.List(ctx)
		return err
	})
	return recs, err
}
