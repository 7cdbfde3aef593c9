package scenario

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/retailpilot/backend/internal/ledger"
)

var ErrAutopilotEnabled = errors.New("autopilot already enabled")

// DefaultStepDelay is how long each autopilot action takes to "execute".
const DefaultStepDelay = 1800 * time.Millisecond

// Action is one change the autopilot applies on the operator's behalf.
type Action struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Confidence  int    `json:"confidence"`
}

// AutopilotActions returns the recommended actions in execution order.
func AutopilotActions() []Action {
	return []Action{
		{
			ID:          "price",
			Title:       "Dynamic Pricing Adjustment",
			Description: "Increase base price by 4.2% for electronics in Maharashtra",
			Impact:      "+$4,200/mo",
			Confidence:  94,
		},
		{
			ID:          "budget",
			Title:       "Marketing Budget Reallocation",
			Description: "Shift 15% of budget from print to digital channels in Delhi NCR",
			Impact:      "+$2,800/mo",
			Confidence:  91,
		},
		{
			ID:          "supplier",
			Title:       "Supplier Order Optimization",
			Description: "Increase order by 1,200 units for Q2 from verified supplier #A41",
			Impact:      "-$1,500 risk",
			Confidence:  88,
		},
	}
}

// AutopilotState is a point-in-time view of the autopilot.
type AutopilotState struct {
	Enabled   bool     `json:"enabled"`
	Executing string   `json:"executingAction,omitempty"`
	Executed  []string `json:"executedActions"`
	Completed bool     `json:"completed"`
	TxHash    string   `json:"txHash,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// CommitFunc settles a fully executed batch and returns its transaction hash.
type CommitFunc func(actions []Action) (string, error)

// Autopilot executes the action catalogue one step at a time in the
// background. It runs at most once per enable; Disable stops a run in
// progress and forgets everything it did.
type Autopilot struct {
	mu        sync.Mutex
	enabled   bool
	executing string
	executed  []string
	completed bool
	txHash    string
	failure   string
	cancel    context.CancelFunc
	done      chan struct{}

	actions []Action
	step    time.Duration
	commit  CommitFunc
	wait    func(ctx context.Context, d time.Duration) error
}

// NewAutopilot returns a disabled autopilot. A nil commit hands out a random
// transaction hash without recording anything.
func NewAutopilot(step time.Duration, commit CommitFunc) *Autopilot {
	if step < 0 {
		step = DefaultStepDelay
	}
	if commit == nil {
		commit = func([]Action) (string, error) { return ledger.RandomTxHash() }
	}
	return &Autopilot{
		executed: []string{},
		actions:  AutopilotActions(),
		step:     step,
		commit:   commit,
		wait:     waitFor,
	}
}

func waitFor(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Enable starts executing the catalogue and returns immediately. It fails
// with ErrAutopilotEnabled until Disable is called, even after the run ends.
func (a *Autopilot) Enable() (AutopilotState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabled {
		return a.stateLocked(), ErrAutopilotEnabled
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.reset()
	a.enabled = true
	a.cancel = cancel
	a.done = make(chan struct{})

	go a.run(ctx, a.done)
	return a.stateLocked(), nil
}

// Disable stops any run in progress and clears all progress. It waits for
// the background run to exit.
func (a *Autopilot) Disable() AutopilotState {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	done := a.done
	a.reset()
	a.cancel = nil
	a.done = nil
	a.mu.Unlock()

	if done != nil {
		<-done
	}
	return a.State()
}

func (a *Autopilot) State() AutopilotState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

func (a *Autopilot) stateLocked() AutopilotState {
	return AutopilotState{
		Enabled:   a.enabled,
		Executing: a.executing,
		Executed:  append([]string{}, a.executed...),
		Completed: a.completed,
		TxHash:    a.txHash,
		Error:     a.failure,
	}
}

// reset clears progress. Callers hold a.mu.
func (a *Autopilot) reset() {
	a.enabled = false
	a.executing = ""
	a.executed = []string{}
	a.completed = false
	a.txHash = ""
	a.failure = ""
}

// run writes state only while ctx is live, checked under a.mu, so nothing
// from a cancelled run leaks into a later one.
func (a *Autopilot) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for _, act := range a.actions {
		if !a.update(ctx, func() { a.executing = act.ID }) {
			return
		}
		if err := a.wait(ctx, a.step); err != nil {
			return
		}
		if !a.update(ctx, func() { a.executed = append(a.executed, act.ID) }) {
			return
		}
	}

	hash, err := a.commit(a.actions)
	a.update(ctx, func() {
		a.executing = ""
		a.completed = true
		if err != nil {
			a.failure = err.Error()
			return
		}
		a.txHash = hash
	})
}

func (a *Autopilot) update(ctx context.Context, fn func()) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	fn()
	return true
}
