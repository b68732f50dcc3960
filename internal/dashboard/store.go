package dashboard

import (
	"sync"
	"time"

	"github.com/zsprackett/morty-dashboard/internal/events"
)

// Store owns the current State for one observer and serializes updates.
// Subscribers are called after each change with the new State, outside
// the lock.
type Store struct {
	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	next  int
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		state: Initial(),
		subs:  make(map[int]func(State)),
		now:   time.Now,
	}
}

// SetClock replaces the time source used to stamp recent files.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) Dispatch(e events.Event) {
	s.update(func(st State, now time.Time) State { return Apply(st, e, now) })
}

func (s *Store) SetConnected(connected bool) {
	s.update(func(st State, _ time.Time) State {
		st.Connected = connected
		return st
	})
}

// Reset drops all projected state but keeps the connection flag.
func (s *Store) Reset() {
	s.update(func(st State, _ time.Time) State {
		fresh := Initial()
		fresh.Connected = st.Connected
		return fresh
	})
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for future changes and returns a func that
// removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) update(fn func(State, time.Time) State) {
	s.mu.Lock()
	s.state = fn(s.state, s.now())
	st := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(st)
	}
}
