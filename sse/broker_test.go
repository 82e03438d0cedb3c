package sse

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kbukum/clinicq/logger"
)

var fixedTime = time.Date(2026, 3, 1, 9, 30, 0, 123456789, time.FixedZone("BRT", -3*3600))

func newTestBroker(opts ...Option) *Broker {
	opts = append([]Option{WithLogger(logger.Nop()), WithClock(func() time.Time { return fixedTime })}, opts...)
	return NewBroker(NewRegistry(), opts...)
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func assertEmpty(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if ok {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPublishDeliversToEveryChannelOfTenant(t *testing.T) {
	b := newTestBroker()
	ctx := context.Background()

	s1, err := b.Subscribe(ctx, "T1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer s1.Close()
	s2, _ := b.Subscribe(ctx, "T1")
	defer s2.Close()
	other, _ := b.Subscribe(ctx, "T2")
	defer other.Close()

	if s1.ID() == s2.ID() {
		t.Fatal("expected independent channels")
	}

	report := b.Publish(ctx, "T1", EventRoomUpdate, map[string]string{"id": "r1"})
	if !reflect.DeepEqual(report.Targets, []string{"T1"}) || report.Delivered != 2 || report.Dropped != 0 {
		t.Errorf("unexpected report %+v", report)
	}

	for _, sub := range []*Subscription{s1, s2} {
		ev := receive(t, sub)
		if ev.Type != EventRoomUpdate {
			t.Errorf("expected room_update, got %s", ev.Type)
		}
		assertEmpty(t, sub)
	}
	assertEmpty(t, other)
}

func TestPublishStampsUTCTimestamp(t *testing.T) {
	b := newTestBroker()
	sub, _ := b.Subscribe(context.Background(), "T1")
	defer sub.Close()

	b.Publish(context.Background(), "T1", EventPatientUpdate, nil)
	ev := receive(t, sub)

	want := "2026-03-01T12:30:00.123456789Z"
	if ev.Timestamp != want {
		t.Errorf("expected %s, got %s", want, ev.Timestamp)
	}
}

func TestPublishWithoutChannelsIsNoop(t *testing.T) {
	b := newTestBroker()
	report := b.Publish(context.Background(), "nobody", EventRoomUpdate, nil)
	if len(report.Targets) != 0 || report.Delivered != 0 || report.Dropped != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}

	report = b.Publish(context.Background(), "", EventRoomUpdate, nil)
	if len(report.Targets) != 0 {
		t.Errorf("expected empty tenant to be ignored, got %+v", report)
	}
}

func TestPublishPreservesOrder(t *testing.T) {
	b := newTestBroker()
	sub, _ := b.Subscribe(context.Background(), "T1")
	defer sub.Close()

	types := []string{EventRoomUpdate, EventPatientUpdate, EventTicketUpdate}
	for _, typ := range types {
		b.Publish(context.Background(), "T1", typ, nil)
	}
	for _, want := range types {
		if got := receive(t, sub).Type; got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}

func TestPublishDropsWhenChannelFull(t *testing.T) {
	b := newTestBroker(WithCapacity(1))
	sub, _ := b.Subscribe(context.Background(), "T1")
	defer sub.Close()

	first := b.Publish(context.Background(), "T1", EventRoomUpdate, nil)
	second := b.Publish(context.Background(), "T1", EventRoomUpdate, nil)

	if first.Delivered != 1 || second.Dropped != 1 || second.Delivered != 0 {
		t.Errorf("unexpected reports %+v %+v", first, second)
	}
	if !reflect.DeepEqual(second.Targets, []string{"T1"}) {
		t.Errorf("a tenant with a full channel is still a target, got %v", second.Targets)
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	b := newTestBroker(WithCapacity(1))
	sub, _ := b.Subscribe(context.Background(), "T1")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.Publish(context.Background(), "T1", EventRoomUpdate, nil)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestCancelledSubscriberStopsReceiving(t *testing.T) {
	b := newTestBroker()
	ctx, cancel := context.WithCancel(context.Background())
	gone, _ := b.Subscribe(ctx, "T1")
	stay, _ := b.Subscribe(context.Background(), "T1")
	defer stay.Close()

	cancel()
	waitFor(t, func() bool { return len(b.Registry().ChannelsFor("T1")) == 1 })

	report := b.Publish(context.Background(), "T1", EventRoomUpdate, nil)
	if report.Delivered != 1 {
		t.Errorf("expected delivery to the remaining channel only, got %+v", report)
	}
	receive(t, stay)

	if _, ok := <-gone.Events(); ok {
		t.Error("expected cancelled subscription channel to be closed and empty")
	}
}

func TestBroadcastReachesEveryLiveTenant(t *testing.T) {
	b := newTestBroker()
	ctx := context.Background()
	s1, _ := b.Subscribe(ctx, "T1")
	defer s1.Close()
	s2, _ := b.Subscribe(ctx, "T2")
	defer s2.Close()
	s3, _ := b.Subscribe(ctx, "T3")
	s3.Close()

	report := b.Broadcast(ctx, "announcement", "maintenance at 18:00")
	if !reflect.DeepEqual(report.Targets, []string{"T1", "T2"}) || report.Delivered != 2 {
		t.Errorf("unexpected report %+v", report)
	}
	if ev := receive(t, s1); ev.Payload != "maintenance at 18:00" {
		t.Errorf("unexpected payload %v", ev.Payload)
	}
	receive(t, s2)
}

func TestBroadcastWithEmptyRegistry(t *testing.T) {
	b := newTestBroker()
	report := b.Broadcast(context.Background(), "announcement", nil)
	if len(report.Targets) != 0 || report.Delivered != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func TestSubscribeErrors(t *testing.T) {
	b := newTestBroker()
	if _, err := b.Subscribe(context.Background(), ""); !errors.Is(err, ErrEmptyTenant) {
		t.Errorf("expected ErrEmptyTenant, got %v", err)
	}

	b.Shutdown()
	if _, err := b.Subscribe(context.Background(), "T1"); !errors.Is(err, ErrBrokerClosed) {
		t.Errorf("expected ErrBrokerClosed, got %v", err)
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	b := newTestBroker()
	sub, _ := b.Subscribe(context.Background(), "T1")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub.Close()
		}()
	}
	wg.Wait()

	if tenants, channels := b.Registry().Len(); tenants != 0 || channels != 0 {
		t.Errorf("expected empty registry, got %d/%d", tenants, channels)
	}
}

func TestSubscribeWithCancelledContext(t *testing.T) {
	b := newTestBroker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sub, err := b.Subscribe(ctx, "T1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()
	waitFor(t, func() bool { _, n := b.Registry().Len(); return n == 0 })
}

func TestShutdownClosesAllChannels(t *testing.T) {
	b := newTestBroker()
	s1, _ := b.Subscribe(context.Background(), "T1")
	s2, _ := b.Subscribe(context.Background(), "T2")

	b.Shutdown()

	for _, sub := range []*Subscription{s1, s2} {
		if _, ok := <-sub.Events(); ok {
			t.Error("expected closed channel after shutdown")
		}
		sub.Close()
	}
	if tenants, _ := b.Registry().Len(); tenants != 0 {
		t.Errorf("expected registry drained, got %d tenants", tenants)
	}
	if !b.Closed() {
		t.Error("expected broker to report closed")
	}
}

// subscribe T1, publish, cancel, publish again.
func TestSubscribePublishCancelScenario(t *testing.T) {
	b := newTestBroker()
	ctx, cancel := context.WithCancel(context.Background())

	c1, _ := b.Subscribe(ctx, "T1")
	if got := b.Registry().Tenants(); !reflect.DeepEqual(got, []string{"T1"}) {
		t.Fatalf("expected registry {T1}, got %v", got)
	}

	b.Publish(context.Background(), "T1", EventRoomUpdate, map[string]any{})
	if ev := receive(t, c1); ev.Type != EventRoomUpdate {
		t.Fatalf("expected room_update, got %s", ev.Type)
	}

	cancel()
	waitFor(t, func() bool { return len(b.Registry().Tenants()) == 0 })

	report := b.Publish(context.Background(), "T1", EventRoomUpdate, map[string]any{})
	if len(report.Targets) != 0 || report.Delivered != 0 {
		t.Errorf("expected zero live targets, got %+v", report)
	}
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	b := newTestBroker(WithCapacity(8))
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub, err := b.Subscribe(ctx, "T1")
			if err != nil {
				return
			}
			b.Publish(ctx, "T1", EventRoomUpdate, nil)
			sub.Close()
		}()
		go func() {
			defer wg.Done()
			b.Publish(ctx, "T1", EventPatientUpdate, nil)
			b.Broadcast(ctx, EventTicketUpdate, nil)
		}()
	}
	wg.Wait()

	if tenants, channels := b.Registry().Len(); tenants != 0 || channels != 0 {
		t.Errorf("expected no leaked channels, got %d/%d", tenants, channels)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	b := newTestBroker(WithMetrics(m), WithCapacity(1))

	sub, _ := b.Subscribe(context.Background(), "T1")
	if got := testutil.ToFloat64(m.subscribers); got != 1 {
		t.Errorf("expected 1 subscriber, got %v", got)
	}

	b.Publish(context.Background(), "T1", EventRoomUpdate, nil)
	b.Publish(context.Background(), "T1", EventRoomUpdate, nil)

	if got := testutil.ToFloat64(m.published.WithLabelValues(EventRoomUpdate)); got != 2 {
		t.Errorf("expected 2 published, got %v", got)
	}
	if got := testutil.ToFloat64(m.delivered); got != 1 {
		t.Errorf("expected 1 delivered, got %v", got)
	}
	if got := testutil.ToFloat64(m.dropped); got != 1 {
		t.Errorf("expected 1 dropped, got %v", got)
	}

	sub.Close()
	if got := testutil.ToFloat64(m.subscribers); got != 0 {
		t.Errorf("expected 0 subscribers after close, got %v", got)
	}

	if _, err := NewMetrics(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestEventWire(t *testing.T) {
	ev := NewEvent(EventTicketUpdate, map[string]int{"n": 1}, fixedTime)
	if got := string(ev.Wire()); got != `{"type":"ticket_update","action":"refresh"}` {
		t.Errorf("unexpected wire encoding %s", got)
	}
}
