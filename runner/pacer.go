package runner

import "time"

// Pacer returns the pause inserted after an iteration, for human-observable
// pacing only. The iteration index starts at 0.
type Pacer interface {
	Delay(iteration int) time.Duration
}

// NoDelay runs iterations back to back.
type NoDelay struct{}

func (NoDelay) Delay(int) time.Duration { return 0 }

// FixedDelay pauses for the same duration after every iteration.
type FixedDelay struct {
	Interval time.Duration
}

func (f FixedDelay) Delay(int) time.Duration {
	return f.Interval
}
