package trading

import (
	"sync"
	"time"
)

type phaseOutcome uint8

const (
	outcomeSuccess phaseOutcome = iota
	outcomeError
	outcomeTimeout
)

type phaseResult struct {
	outcome phaseOutcome
	err     error
}

// phaseSignal is a single-fire cell a session blocks on. Only the first
// fire is delivered, later ones are dropped.
type phaseSignal struct {
	mx    sync.Mutex
	fired bool
	done  chan error
}

func newPhaseSignal() *phaseSignal {
	return &phaseSignal{
		done: make(chan error, 1),
	}
}

// fire reports whether this call delivered the outcome
func (s *phaseSignal) fire(err error) bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.fired {
		return false
	}
	s.fired = true
	s.done <- err
	return true
}

func (s *phaseSignal) wait(timeout time.Duration) phaseResult {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-s.done:
		if err != nil {
			return phaseResult{outcome: outcomeError, err: err}
		}
		return phaseResult{outcome: outcomeSuccess}
	case <-timer.C:
		return phaseResult{outcome: outcomeTimeout}
	}
}
