// Package pubsub implements a minimal broadcast channel: a list of subscriber
// callbacks invoked in registration order for every published value.
//
// A Subject replays its most recent value to late subscribers once at least
// one value has been published (or when it was constructed with an initial
// value). Before that, a new subscriber receives nothing until the next
// Publish.
package pubsub

import "sync"

type subscriber[T any] struct {
	callback func(T)
	active   bool
}

// Subject is a multi-subscriber broadcast channel for values of type T.
type Subject[T any] struct {
	mu          sync.Mutex
	subscribers []*subscriber[T]
	last        T
	hasValue    bool
}

// New creates a Subject that replays nothing until the first Publish.
func New[T any]() *Subject[T] {
	return &Subject[T]{}
}

// NewWithInitial creates a Subject seeded with an initial value, which is
// replayed immediately to every subscriber.
func NewWithInitial[T any](initial T) *Subject[T] {
	return &Subject[T]{
		last:     initial,
		hasValue: true,
	}
}

// Subscribe registers callback and returns an unsubscribe handle.
// When the subject already holds a value, callback is invoked with it
// before Subscribe returns.
func (s *Subject[T]) Subscribe(callback func(T)) func() {
	s.mu.Lock()
	entry := &subscriber[T]{
		callback: callback,
		active:   true,
	}
	s.subscribers = append(s.subscribers, entry)
	replay := s.hasValue
	lastValue := s.last
	s.mu.Unlock()

	if replay {
		callback(lastValue)
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		entry.active = false
		for i, candidate := range s.subscribers {
			if candidate == entry {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers value to every subscriber in registration order and
// remembers it for late subscribers.
func (s *Subject[T]) Publish(value T) {
	s.mu.Lock()
	s.last = value
	s.hasValue = true
	targets := make([]func(T), 0, len(s.subscribers))
	for _, entry := range s.subscribers {
		if entry.active {
			targets = append(targets, entry.callback)
		}
	}
	s.mu.Unlock()

	for _, target := range targets {
		target(value)
	}
}

// Value returns the most recently published value, and false
// when nothing has been published yet.
func (s *Subject[T]) Value() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last, s.hasValue
}
