package sse

import "context"

// Publisher is the narrow view of the broker that mutation code depends on.
type Publisher interface {
	Publish(ctx context.Context, tenant, eventType string, payload any) DispatchReport
}

// Broadcaster reaches every connected tenant.
type Broadcaster interface {
	Broadcast(ctx context.Context, eventType string, payload any) DispatchReport
}

var (
	_ Publisher   = (*Broker)(nil)
	_ Broadcaster = (*Broker)(nil)
)
