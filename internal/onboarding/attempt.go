package onboarding

import (
	"context"
	"sync"
)

// State is the lifecycle of one form submission.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Attempt guards a flow so that at most one submission is in flight.
//
// A failed submission leaves the attempt in StateFailed so callers can show
// the error. Dismiss moves it back to StateIdle; Submit may also be called
// directly from StateFailed. Err keeps the last error in both cases until a
// submission succeeds. Succeeded is terminal. Attempt is safe for concurrent
// use.
type Attempt[T any] struct {
	mu     sync.Mutex
	state  State
	result T
	err    error
}

// Submit runs fn unless a submission is already running (ErrInFlight) or
// the attempt has succeeded (ErrCompleted). Neither case calls fn.
func (a *Attempt[T]) Submit(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	a.mu.Lock()
	switch a.state {
	case StateSubmitting:
		a.mu.Unlock()
		return zero, ErrInFlight
	case StateSucceeded:
		a.mu.Unlock()
		return zero, ErrCompleted
	}
	a.state = StateSubmitting
	a.mu.Unlock()

	result, err := fn(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.state = StateFailed
		a.err = err
		return zero, err
	}
	a.state = StateSucceeded
	a.result = result
	a.err = nil
	return result, nil
}

func (a *Attempt[T]) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err is the error of the last failed submission.
func (a *Attempt[T]) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *Attempt[T]) Result() (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result, a.state == StateSucceeded
}

// Dismiss returns a failed attempt to Idle. The error stays readable. It
// does nothing in any other state.
func (a *Attempt[T]) Dismiss() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateFailed {
		a.state = StateIdle
	}
}
