// Package demand serves the regional demand fixture with a small random
// jitter so repeated polling looks live.
package demand

import (
	"errors"
	"math"
	"math/rand/v2"
)

var ErrNotFound = errors.New("region not found")

const (
	demandJitter = 3.0  // points, either direction
	volumeJitter = 0.03 // fraction, either direction
)

// Source yields floats in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Snapshotter jitters the fixture on every call.
type Snapshotter struct {
	src     Source
	regions []Region
}

// NewSnapshotter uses src for jitter; nil means the unseeded global source.
func NewSnapshotter(src Source) *Snapshotter {
	if src == nil {
		src = globalSource{}
	}
	return &Snapshotter{src: src, regions: Regions()}
}

// All returns every region with fresh jitter applied.
func (s *Snapshotter) All() []Region {
	out := make([]Region, len(s.regions))
	for i, r := range s.regions {
		out[i] = s.jitter(r)
	}
	return out
}

// Get returns one jittered region by id.
func (s *Snapshotter) Get(id string) (Region, error) {
	// every region is drawn, as in a full snapshot, then filtered
	for _, r := range s.All() {
		if r.ID == id {
			return r, nil
		}
	}
	return Region{}, ErrNotFound
}

func (s *Snapshotter) jitter(r Region) Region {
	d := float64(r.Demand) + (s.src.Float64()-0.5)*2*demandJitter
	r.Demand = int(math.Round(clamp(d, 0, 100)))

	v := float64(r.MonthlyVolume) * (1 + (s.src.Float64()-0.5)*2*volumeJitter)
	r.MonthlyVolume = int(math.Round(v))
	return r
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
