package sse

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultChannelCapacity is the buffer size of a subscriber channel.
const DefaultChannelCapacity = 256

// Channel is one subscriber's bounded delivery queue.
type Channel struct {
	id     string
	tenant string
	events chan Event

	mu     sync.Mutex
	closed bool
}

// NewChannel creates an open channel for tenant. A non-positive capacity
// falls back to DefaultChannelCapacity.
func NewChannel(tenant string, capacity int) *Channel {
	if capacity <= 0 {
		capacity = DefaultChannelCapacity
	}
	return &Channel{
		id:     uuid.NewString(),
		tenant: tenant,
		events: make(chan Event, capacity),
	}
}

func (c *Channel) ID() string { return c.id }

func (c *Channel) Tenant() string { return c.tenant }

// Events returns the receive side of the queue. It is closed by Close.
func (c *Channel) Events() <-chan Event { return c.events }

// Send enqueues ev without blocking. It returns false when the channel is
// full or closed.
func (c *Channel) Send(ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}

// Close closes the queue. Buffered events can still be drained.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
