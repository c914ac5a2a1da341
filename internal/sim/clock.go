package sim

import (
	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// Scheduler is the slice of the host event scheduler the harness consumes:
// relative scheduling, the virtual clock, and a bounded run.
type Scheduler interface {
	Schedule(delay float64, fn func())
	Now() float64
	Run(horizon float64)
}

// EventScheduler adapts the evtm event manager to the Scheduler interface.
type EventScheduler struct {
	mgr *evtm.EventManager
}

// NewEventScheduler wraps a fresh event manager.
func NewEventScheduler() *EventScheduler {
	return &EventScheduler{mgr: evtm.New()}
}

// Schedule queues fn to execute after delay virtual seconds.
func (s *EventScheduler) Schedule(delay float64, fn func()) {
	s.mgr.Schedule(nil, nil,
		func(*evtm.EventManager, any, any) any {
			fn()
			return nil
		},
		vrtime.SecondsToTime(delay))
}

// Now returns the current virtual time in seconds.
func (s *EventScheduler) Now() float64 {
	return s.mgr.CurrentSeconds()
}

// Run executes queued events until the horizon is reached.
func (s *EventScheduler) Run(horizon float64) {
	s.mgr.Run(horizon)
}
