package gosolve

import "sync"

// Step is one "show your work" entry: a rewrite from Before to After.
type Step struct {
	Description string
	Before      Expr
	After       Expr
}

func (s Step) String() string {
	if s.Before == nil || s.After == nil {
		return s.Description
	}
	return s.Description + ": " + s.Before.String() + " -> " + s.After.String()
}

// StepLog observes rewrites. It is append-only: nothing in this package
// reads from it, so results are identical with or without one.
type StepLog interface {
	Record(Step)
}

// StepLogFunc adapts a function to StepLog.
type StepLogFunc func(Step)

func (f StepLogFunc) Record(s Step) { f(s) }

// StepRecorder is a StepLog that keeps every step in memory. It is safe
// for concurrent use.
type StepRecorder struct {
	mu    sync.Mutex
	steps []Step
}

func (r *StepRecorder) Record(s Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, s)
}

// Steps returns a copy of the recorded steps.
func (r *StepRecorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}
