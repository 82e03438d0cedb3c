package sse

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kbukum/clinicq/logger"
)

var (
	// ErrEmptyTenant is returned by Subscribe for an empty tenant.
	ErrEmptyTenant = errors.New("sse: empty tenant")
	// ErrBrokerClosed is returned by Subscribe after Shutdown.
	ErrBrokerClosed = errors.New("sse: broker closed")
)

// DefaultKeepAlive is the interval between keep-alive comments on a stream.
const DefaultKeepAlive = 30 * time.Second

// DispatchReport summarises one Publish or Broadcast. Targets lists the
// tenants that had at least one live channel when the event was sent.
type DispatchReport struct {
	Targets   []string
	Delivered int
	Dropped   int
}

// Broker fans events out to the channels in a Registry.
type Broker struct {
	registry  *Registry
	capacity  int
	keepAlive time.Duration
	metrics   *Metrics
	log       *logger.Logger
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithCapacity sets the buffer size of new subscriber channels.
func WithCapacity(n int) Option {
	return func(b *Broker) {
		if n > 0 {
			b.capacity = n
		}
	}
}

// WithKeepAlive sets the keep-alive interval used by ServeSSE.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.keepAlive = d
		}
	}
}

// WithMetrics records dispatch and subscriber metrics.
func WithMetrics(m *Metrics) Option {
	return func(b *Broker) { b.metrics = m }
}

// WithLogger sets the broker logger.
func WithLogger(l *logger.Logger) Option {
	return func(b *Broker) {
		if l != nil {
			b.log = l.WithComponent("sse")
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Broker) { b.now = now }
}

// NewBroker creates a broker over registry. A nil registry gets a fresh one.
func NewBroker(registry *Registry, opts ...Option) *Broker {
	if registry == nil {
		registry = NewRegistry()
	}
	b := &Broker{
		registry:  registry,
		capacity:  DefaultChannelCapacity,
		keepAlive: DefaultKeepAlive,
		log:       logger.WithComponent("sse"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry returns the registry the broker delivers through.
func (b *Broker) Registry() *Registry { return b.registry }

// KeepAlive returns the keep-alive interval for streams.
func (b *Broker) KeepAlive() time.Duration { return b.keepAlive }

// Publish sends an event to every channel of tenant. It never blocks and
// never fails: full or closed channels are counted as dropped, a tenant with
// no channels is a no-op. An empty tenant is logged and ignored; use
// Broadcast to reach every tenant.
func (b *Broker) Publish(ctx context.Context, tenant, eventType string, payload any) DispatchReport {
	var report DispatchReport
	if tenant == "" {
		b.log.WithContext(ctx).Warn("Publish without tenant ignored", map[string]interface{}{
			logger.FieldEventType: eventType,
		})
		return report
	}

	ev := NewEvent(eventType, payload, b.now())
	b.deliver(&report, tenant, ev)
	b.observe(ctx, eventType, report)
	return report
}

// Broadcast sends an event to every tenant currently in the registry.
func (b *Broker) Broadcast(ctx context.Context, eventType string, payload any) DispatchReport {
	var report DispatchReport
	ev := NewEvent(eventType, payload, b.now())
	for _, tenant := range b.registry.Tenants() {
		b.deliver(&report, tenant, ev)
	}
	b.observe(ctx, eventType, report)
	return report
}

func (b *Broker) deliver(report *DispatchReport, tenant string, ev Event) {
	channels := b.registry.ChannelsFor(tenant)
	if len(channels) == 0 {
		return
	}
	report.Targets = append(report.Targets, tenant)
	for _, ch := range channels {
		if ch.Send(ev) {
			report.Delivered++
			continue
		}
		report.Dropped++
		b.log.Warn("Subscriber channel full or closed, event dropped", map[string]interface{}{
			logger.FieldTenant:    tenant,
			logger.FieldChannelID: ch.ID(),
			logger.FieldEventType: ev.Type,
		})
	}
}

func (b *Broker) observe(ctx context.Context, eventType string, report DispatchReport) {
	b.metrics.observeDispatch(eventType, report)
	b.log.WithContext(ctx).Debug("Event dispatched", map[string]interface{}{
		logger.FieldEventType: eventType,
		"targets":             report.Targets,
		"delivered":           report.Delivered,
		"dropped":             report.Dropped,
	})
}

// Subscribe registers a new channel for tenant. The returned Subscription is
// closed automatically when ctx is done; callers should also defer Close.
func (b *Broker) Subscribe(ctx context.Context, tenant string) (*Subscription, error) {
	if tenant == "" {
		return nil, ErrEmptyTenant
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil, ErrBrokerClosed
	}
	ch := NewChannel(tenant, b.capacity)
	b.registry.Register(tenant, ch)
	b.mu.RUnlock()
	b.syncSubscribers()

	sub := &Subscription{broker: b, ch: ch}
	stop := context.AfterFunc(ctx, sub.Close)
	sub.mu.Lock()
	sub.stop = stop
	sub.mu.Unlock()

	b.log.Debug("Subscriber registered", map[string]interface{}{
		logger.FieldTenant:    tenant,
		logger.FieldChannelID: ch.ID(),
	})
	return sub, nil
}

// release unregisters and closes ch.
func (b *Broker) release(ch *Channel) {
	b.registry.Unregister(ch.Tenant(), ch)
	ch.Close()
	b.syncSubscribers()
	b.log.Debug("Subscriber released", map[string]interface{}{
		logger.FieldTenant:    ch.Tenant(),
		logger.FieldChannelID: ch.ID(),
	})
}

func (b *Broker) syncSubscribers() {
	if b.metrics == nil {
		return
	}
	_, channels := b.registry.Len()
	b.metrics.setSubscribers(channels)
}

// Shutdown closes every channel and rejects further subscriptions. Open
// streams observe their channel closing and return.
func (b *Broker) Shutdown() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	channels := b.registry.drain()
	for _, ch := range channels {
		ch.Close()
	}
	b.syncSubscribers()
	b.log.Info("Broker shut down", map[string]interface{}{"closed_channels": len(channels)})
}

// Closed reports whether Shutdown has been called.
func (b *Broker) Closed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}
