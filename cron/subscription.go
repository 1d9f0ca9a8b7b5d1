package cron

import "sync"

// ScheduleStatus reports a schedule handle state.
type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusRunning   ScheduleStatus = "running"
	ScheduleStatusIdle      ScheduleStatus = "idle"
	ScheduleStatusCompleted ScheduleStatus = "completed"
	ScheduleStatusCanceled  ScheduleStatus = "canceled"
	ScheduleStatusFailed    ScheduleStatus = "failed"
	ScheduleStatusStopped   ScheduleStatus = "stopped"
)

// Handle controls one scheduled job.
type Handle interface {
	Cancel()
	Status() ScheduleStatus
	// Err is the error of the last run, if any.
	Err() error
	// Runs counts completed executions.
	Runs() int
	Done() <-chan struct{}
	ID() int64
}

type cronSubscription struct {
	scheduler *Scheduler
	id        int64
	entryID   int
	done      chan struct{}

	mu     sync.RWMutex
	status ScheduleStatus
	err    error
	runs   int

	cancelOnce sync.Once
	doneOnce   sync.Once
}

func (s *cronSubscription) Cancel() {
	if s == nil {
		return
	}
	s.cancelOnce.Do(func() {
		if s.scheduler != nil {
			s.scheduler.removeHandle(s.id)
		}
		if !isTerminalStatus(s.Status()) {
			s.setTerminal(ScheduleStatusCanceled, nil)
		}
	})
}

func (s *cronSubscription) Status() ScheduleStatus {
	if s == nil {
		return ScheduleStatusStopped
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *cronSubscription) Err() error {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *cronSubscription) Runs() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs
}

func (s *cronSubscription) Done() <-chan struct{} {
	if s == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.done
}

func (s *cronSubscription) ID() int64 {
	if s == nil {
		return 0
	}
	return s.id
}

func (s *cronSubscription) setStatus(status ScheduleStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if isTerminalStatus(s.status) {
		return
	}
	s.status = status
	s.err = err
}

// finishRun records a run result and returns the new run count.
func (s *cronSubscription) finishRun(err error) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	s.err = err
	return s.runs
}

func (s *cronSubscription) setTerminal(status ScheduleStatus, err error) {
	s.mu.Lock()
	if isTerminalStatus(s.status) {
		s.mu.Unlock()
		return
	}
	s.status = status
	if err != nil {
		s.err = err
	}
	s.mu.Unlock()
	s.doneOnce.Do(func() { close(s.done) })
}
