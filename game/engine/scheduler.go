package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler delivers periodic ticks. A callback never runs after its
// timer is cancelled and at most one callback per timer runs at a time.
type Scheduler interface {
	Start(interval time.Duration, onTick func(now time.Time)) *Timer
	Cancel(t *Timer)
}

// Timer is a handle to a running tick source
type Timer struct {
	interval time.Duration
	stopped  atomic.Bool
	once     sync.Once
	stop     chan struct{}
}

// MinInterval is the shortest tick period a scheduler will honour
const MinInterval = time.Millisecond

func newTimer(interval time.Duration) *Timer {
	if interval < MinInterval {
		interval = MinInterval
	}
	return &Timer{interval: interval, stop: make(chan struct{})}
}

// Interval returns the tick period
func (t *Timer) Interval() time.Duration { return t.interval }

// Stop cancels the timer. Calling it more than once is harmless.
func (t *Timer) Stop() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		t.stopped.Store(true)
		close(t.stop)
	})
}

// Stopped reports whether Stop was called
func (t *Timer) Stopped() bool {
	return t == nil || t.stopped.Load()
}

// TickerScheduler runs each timer on its own goroutine backed by a
// time.Ticker.
type TickerScheduler struct{}

// NewTickerScheduler returns a wall clock scheduler
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

func (s *TickerScheduler) Start(interval time.Duration, onTick func(now time.Time)) *Timer {
	t := newTimer(interval)
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case now := <-ticker.C:
				if t.Stopped() {
					return
				}
				onTick(now)
			}
		}
	}()
	return t
}

func (s *TickerScheduler) Cancel(t *Timer) {
	t.Stop()
}

// ManualScheduler is a virtual clock. Time only moves when Advance is
// called, which makes tick driven code deterministic in tests and replays.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	*Timer
	next   time.Time
	onTick func(now time.Time)
}

// NewManualScheduler starts the virtual clock at start
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now returns the virtual time
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *ManualScheduler) Start(interval time.Duration, onTick func(now time.Time)) *Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	mt := &manualTimer{Timer: newTimer(interval), onTick: onTick}
	mt.next = s.now.Add(mt.interval)
	s.timers = append(s.timers, mt)
	return mt.Timer
}

func (s *ManualScheduler) Cancel(t *Timer) {
	t.Stop()
}

// Active returns the number of timers that have not been cancelled
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, mt := range s.timers {
		if !mt.Stopped() {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing due ticks in time order.
// Callbacks run on the caller's goroutine without the scheduler lock held,
// so they may start or cancel timers.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var due *manualTimer
		live := s.timers[:0]
		for _, mt := range s.timers {
			if mt.Stopped() {
				continue
			}
			live = append(live, mt)
			if !mt.next.After(target) && (due == nil || mt.next.Before(due.next)) {
				due = mt
			}
		}
		s.timers = live
		if due == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = due.next
		now := s.now
		due.next = due.next.Add(due.interval)
		s.mu.Unlock()

		due.onTick(now)
	}
}
