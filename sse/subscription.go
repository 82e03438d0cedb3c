package sse

import "sync"

// Subscription is one subscriber's registration with the broker.
type Subscription struct {
	broker *Broker
	ch     *Channel

	mu     sync.Mutex
	stop   func() bool
	closed bool
}

// ID returns the subscriber channel id.
func (s *Subscription) ID() string { return s.ch.ID() }

// Tenant returns the tenant the subscription belongs to.
func (s *Subscription) Tenant() string { return s.ch.Tenant() }

// Events yields events in publish order until the subscription is closed or
// the broker shuts down.
func (s *Subscription) Events() <-chan Event { return s.ch.Events() }

// Close unregisters and closes the channel. Safe to call more than once and
// from any goroutine.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	stop := s.stop
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	s.broker.release(s.ch)
}
