package sim

// Sampler is a repeating virtual-time timer: starting at Start it executes
// Sample(now) every Interval until its stop predicate holds. The predicate
// is the guard band before the horizon; a firing inside the band
// self-suppresses and the chain ends. There is no external cancellation.
type Sampler struct {
	Name     string
	Start    float64
	Interval float64
	Horizon  float64
	Guard    float64
	Sample   func(now float64)
}

// Install schedules the sampler's first firing on the host scheduler.
func (s *Sampler) Install(sched Scheduler) {
	delay := s.Start - sched.Now()
	if delay < 0 {
		delay = 0
	}
	sched.Schedule(delay, func() { s.fire(sched) })
}

func (s *Sampler) fire(sched Scheduler) {
	now := sched.Now()
	if now >= s.Horizon-s.Guard {
		return
	}
	s.Sample(now)
	sched.Schedule(s.Interval, func() { s.fire(sched) })
}
