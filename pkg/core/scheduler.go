package core

import (
	"sync"
	"time"
)

const DefaultRefreshPeriod = 30 * time.Second

type schedulerState int

const (
	schedulerIdle schedulerState = iota
	schedulerRunning
	schedulerPaused
	schedulerClosed
)

// Scheduler fires tick every period while running. Pause drops the pending
// timer entirely; Resume starts a fresh period. Close is final.
type Scheduler struct {
	mu     sync.Mutex
	clock  Clock
	period time.Duration
	tick   func()
	state  schedulerState
	timer  Timer
	gen    uint64
}

func NewScheduler(clock Clock, period time.Duration, tick func()) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	if period <= 0 {
		period = DefaultRefreshPeriod
	}
	return &Scheduler{clock: clock, period: period, tick: tick}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == schedulerClosed || s.state == schedulerRunning {
		return
	}
	s.state = schedulerRunning
	s.armLocked()
}

func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != schedulerRunning {
		return
	}
	s.state = schedulerPaused
	s.disarmLocked()
}

func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != schedulerPaused {
		return
	}
	s.state = schedulerRunning
	s.armLocked()
}

func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = schedulerClosed
	s.disarmLocked()
}

// Running reports whether a timer is currently armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == schedulerRunning
}

func (s *Scheduler) armLocked() {
	s.disarmLocked()
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.period, func() { s.fire(gen) })
}

func (s *Scheduler) disarmLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.state != schedulerRunning || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.armLocked()
	s.mu.Unlock()

	if s.tick != nil {
		s.tick()
	}
}
