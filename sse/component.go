package sse

import (
	"context"
	"fmt"

	"github.com/kbukum/clinicq/component"
)

// Component ties the broker to the application lifecycle.
type Component struct {
	broker *Broker
	path   string
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps broker; path is the stream route shown at startup.
func NewComponent(broker *Broker, path string) *Component {
	return &Component{broker: broker, path: path}
}

// Broker returns the wrapped broker.
func (c *Component) Broker() *Broker { return c.broker }

func (c *Component) Name() string { return "sse" }

func (c *Component) Start(context.Context) error { return nil }

// Stop shuts the broker down, ending every open stream.
func (c *Component) Stop(context.Context) error {
	c.broker.Shutdown()
	return nil
}

func (c *Component) Health(context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.broker.Closed() {
		h.Status = component.StatusUnhealthy
		h.Message = "broker closed"
		return h
	}
	tenants, channels := c.broker.Registry().Len()
	h.Message = fmt.Sprintf("%d subscribers across %d tenants", channels, tenants)
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "SSE Broker",
		Type:    "sse",
		Details: fmt.Sprintf("path=%s buffer=%d keepalive=%s", c.path, c.broker.capacity, c.broker.keepAlive),
	}
}
