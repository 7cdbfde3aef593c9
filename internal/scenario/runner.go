package scenario

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrAlreadyRunning = errors.New("simulation already running")

// DefaultRunDelay is how long a run pretends to work.
const DefaultRunDelay = 1500 * time.Millisecond

// Phase is the runner's position in Idle -> Running -> Ready -> Idle.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhaseReady   Phase = "ready"
)

// Result is everything a finished run produced.
type Result struct {
	Inputs    Inputs    `json:"inputs"`
	Outputs   Outputs   `json:"outputs"`
	Scenarios Scenarios `json:"scenarios"`
}

// State is a point-in-time view of the runner.
type State struct {
	Phase   Phase   `json:"state"`
	Inputs  Inputs  `json:"inputs"`
	Results *Result `json:"results,omitempty"`
}

// Runner drives the interactive simulation flow. Only one run may be in
// flight; the delay is fixed and cannot be cancelled.
type Runner struct {
	mu      sync.Mutex
	phase   Phase
	inputs  Inputs
	results *Result
	delay   time.Duration
	sleep   func(time.Duration)
}

func NewRunner(delay time.Duration) *Runner {
	if delay < 0 {
		delay = DefaultRunDelay
	}
	return &Runner{
		phase:  PhaseIdle,
		inputs: DefaultInputs(),
		delay:  delay,
		sleep:  time.Sleep,
	}
}

// Run computes the scenario for in after the fixed delay. It fails with
// ErrAlreadyRunning if another run has not finished yet.
func (r *Runner) Run(in Inputs) (*Result, error) {
	r.mu.Lock()
	if r.phase == PhaseRunning {
		r.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	r.phase = PhaseRunning
	r.inputs = in
	r.results = nil
	r.mu.Unlock()

	r.sleep(r.delay)

	out := Compute(in)
	res := &Result{Inputs: in, Outputs: out, Scenarios: DeriveScenarios(out)}

	r.mu.Lock()
	r.phase = PhaseReady
	r.results = res
	r.mu.Unlock()

	return res, nil
}

// Reset clears results and restores the default sliders.
func (r *Runner) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == PhaseRunning {
		return fmt.Errorf("reset: %w", ErrAlreadyRunning)
	}
	r.phase = PhaseIdle
	r.inputs = DefaultInputs()
	r.results = nil
	return nil
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return State{Phase: r.phase, Inputs: r.inputs, Results: r.results}
}
