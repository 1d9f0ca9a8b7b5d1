package command

import (
	"context"
	"math/rand"
	"sync"
)

// Repeat runs its inner command immediately and re-tags a failure as
// RepeatFailed. It executes the inner command exactly once per call.
type Repeat struct {
	inner   Command
	attempt int
}

// NewRepeat wraps inner as the first retry attempt.
func NewRepeat(inner Command) *Repeat {
	return &Repeat{inner: inner, attempt: 1}
}

func (r *Repeat) Execute(ctx context.Context) error {
	if err := r.inner.Execute(ctx); err != nil {
		if IsRepeatFailed(err) {
			return err
		}
		return RepeatFailed(err).WithMetadata(map[string]any{
			"command": CommandType(r.inner),
			"attempt": r.attempt,
		})
	}
	return nil
}

// Inner returns the wrapped command.
func (r *Repeat) Inner() Command { return r.inner }

// Attempt is the retry attempt this wrapper represents.
func (r *Repeat) Attempt() int { return r.attempt }

func (r *Repeat) Type() string { return "command::repeat" }

// Requeue defers its inner command by appending it to a queue. It only
// fails when built without a queue.
type Requeue struct {
	inner Command
	queue Enqueuer
}

func NewRequeue(inner Command, queue Enqueuer) *Requeue {
	return &Requeue{inner: inner, queue: queue}
}

func (r *Requeue) Execute(_ context.Context) error {
	if r.queue == nil {
		return ExecutionFailed("requeue without a queue", nil).WithMetadata(map[string]any{
			"command": CommandType(r.inner),
		})
	}
	r.queue.PushBack(r.inner)
	return nil
}

func (r *Requeue) Inner() Command { return r.inner }

func (r *Requeue) Type() string { return "command::requeue" }

// Fault decides whether a Fail command fails on a given call.
type Fault func() bool

// FailTimes fails the first n calls and succeeds afterwards.
func FailTimes(n int) Fault {
	var mu sync.Mutex
	calls := 0
	return func() bool {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return calls <= n
	}
}

// FailRate fails with probability rate using rng. A nil rng uses a
// generator seeded with seed 1 so runs are reproducible.
func FailRate(rate float64, rng *rand.Rand) Fault {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	var mu sync.Mutex
	return func() bool {
		mu.Lock()
		defer mu.Unlock()
		return rng.Float64() < rate
	}
}

// Fail is a leaf command that returns ExecutionFailed. Without a Fault it
// fails on every call.
type Fail struct {
	Reason string
	Fault  Fault

	mu    sync.Mutex
	calls int
}

// NewFail builds an always failing command.
func NewFail(reason string) *Fail {
	return &Fail{Reason: reason}
}

func (f *Fail) Execute(_ context.Context) error {
	f.mu.Lock()
	f.calls++
	calls := f.calls
	f.mu.Unlock()

	if f.Fault != nil && !f.Fault() {
		return nil
	}
	reason := f.Reason
	if reason == "" {
		reason = "fail"
	}
	return ExecutionFailed(reason, nil).WithMetadata(map[string]any{
		"call": calls,
	})
}

// Calls reports how many times Execute ran.
func (f *Fail) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fail) Type() string { return "command::fail" }
