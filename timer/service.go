// Package timer delivers named deadlines to an event loop as channel values,
// so the loop handles them on its own goroutine alongside transport events.
package timer

import (
	"sync"
	"time"
)

// Event is sent when a timer fires.
type Event struct {
	ID        int
	Name      string
	Repeating bool
	Count     int // How many times the timer has fired, starting at 1
	At        time.Time
}

// Service owns a set of timers and sends their Events to one channel. A
// receiver that falls behind misses firings rather than stalling timers.
type Service struct {
	events chan<- Event

	mu     sync.Mutex
	timers map[int]*watch
	nextID int
}

// watch is one scheduled timer.
type watch struct {
	name   string
	period time.Duration // 0 for one-shot
	count  int
	timer  *time.Timer
}

// NewService creates a timer service that sends fired timers to events.
func NewService(events chan<- Event) *Service {
	return &Service{
		events: events,
		timers: make(map[int]*watch),
	}
}

// After fires name once after d and returns the timer ID.
func (s *Service) After(name string, d time.Duration) int {
	return s.start(name, d, 0)
}

// Every fires name every d until cancelled and returns the timer ID.
func (s *Service) Every(name string, d time.Duration) int {
	return s.start(name, d, d)
}

func (s *Service) start(name string, d, period time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	w := &watch{name: name, period: period}
	w.timer = time.AfterFunc(d, func() { s.fire(id) })
	s.timers[id] = w
	return id
}

func (s *Service) fire(id int) {
	s.mu.Lock()
	w, ok := s.timers[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	w.count++
	ev := Event{ID: id, Name: w.name, Repeating: w.period > 0, Count: w.count, At: time.Now()}
	if w.period > 0 {
		w.timer.Reset(w.period)
	} else {
		delete(s.timers, id)
	}
	s.mu.Unlock()

	select {
	case s.events <- ev:
	default:
	}
}

// Cancel stops the timer id. Unknown IDs are ignored. It reports whether a
// pending timer was stopped.
func (s *Service) Cancel(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.timers[id]
	if !ok {
		return false
	}
	w.timer.Stop()
	delete(s.timers, id)
	return true
}

// CancelAll stops every timer.
func (s *Service) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range s.timers {
		w.timer.Stop()
		delete(s.timers, id)
	}
}

// Active returns the number of pending timers.
func (s *Service) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
