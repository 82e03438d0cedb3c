package sse

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
)

func TestRegistryRegisterUnregister(t *testing.T) {
	r := NewRegistry()
	c1 := NewChannel("T1", 1)
	c2 := NewChannel("T1", 1)

	r.Register("T1", c1)
	r.Register("T1", c2)
	if got := len(r.ChannelsFor("T1")); got != 2 {
		t.Fatalf("expected 2 channels, got %d", got)
	}

	r.Unregister("T1", c1)
	if got := r.ChannelsFor("T1"); len(got) != 1 || got[0] != c2 {
		t.Fatalf("expected only c2 to remain, got %v", got)
	}

	r.Unregister("T1", c2)
	if tenants, channels := r.Len(); tenants != 0 || channels != 0 {
		t.Errorf("expected empty registry, got %d tenants %d channels", tenants, channels)
	}
	if len(r.Tenants()) != 0 {
		t.Errorf("expected tenant entry to be removed, got %v", r.Tenants())
	}
}

func TestRegistryRegisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	ch := NewChannel("T1", 1)
	r.Register("T1", ch)
	r.Register("T1", ch)

	if _, channels := r.Len(); channels != 1 {
		t.Fatalf("expected set semantics, got %d channels", channels)
	}
	r.Unregister("T1", ch)
	if tenants, _ := r.Len(); tenants != 0 {
		t.Errorf("expected tenant removed after single unregister, got %d", tenants)
	}
}

func TestRegistryUnregisterUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	ch := NewChannel("T1", 1)

	r.Unregister("missing", ch)
	r.Register("T1", ch)
	r.Unregister("T1", NewChannel("T1", 1))
	r.Unregister("T1", ch)
	r.Unregister("T1", ch)

	if tenants, channels := r.Len(); tenants != 0 || channels != 0 {
		t.Errorf("expected empty registry, got %d/%d", tenants, channels)
	}
}

func TestRegistryEmptyTenantPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty tenant")
		}
	}()
	NewRegistry().Register("", NewChannel("", 1))
}

func TestRegistryChannelsForReturnsSnapshot(t *testing.T) {
	r := NewRegistry()
	ch := NewChannel("T1", 1)
	r.Register("T1", ch)

	snap := r.ChannelsFor("T1")
	r.Unregister("T1", ch)
	if len(snap) != 1 {
		t.Errorf("snapshot must not change after unregister, got %d", len(snap))
	}
	if got := r.ChannelsFor("nobody"); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestRegistryTenantsSorted(t *testing.T) {
	r := NewRegistry()
	for _, tenant := range []string{"c", "a", "b"} {
		r.Register(tenant, NewChannel(tenant, 1))
	}
	got := fmt.Sprint(r.Tenants())
	if got != "[a b c]" {
		t.Errorf("expected sorted tenants, got %s", got)
	}
}

// Random register/unregister sequences never leave an empty tenant entry.
func TestRegistryNeverKeepsEmptySets(t *testing.T) {
	r := NewRegistry()
	rng := rand.New(rand.NewSource(42))
	tenants := []string{"T1", "T2", "T3"}
	var live []*Channel

	for i := 0; i < 2000; i++ {
		if len(live) == 0 || rng.Intn(2) == 0 {
			tenant := tenants[rng.Intn(len(tenants))]
			ch := NewChannel(tenant, 1)
			r.Register(tenant, ch)
			live = append(live, ch)
		} else {
			idx := rng.Intn(len(live))
			ch := live[idx]
			r.Unregister(ch.Tenant(), ch)
			live = append(live[:idx], live[idx+1:]...)
		}

		r.mu.RLock()
		for tenant, set := range r.tenants {
			if len(set) == 0 {
				r.mu.RUnlock()
				t.Fatalf("step %d: tenant %s maps to an empty set", i, tenant)
			}
		}
		r.mu.RUnlock()
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tenant := fmt.Sprintf("T%d", i%5)
			ch := NewChannel(tenant, 1)
			r.Register(tenant, ch)
			_ = r.ChannelsFor(tenant)
			_ = r.Tenants()
			r.Unregister(tenant, ch)
		}(i)
	}
	wg.Wait()

	if tenants, channels := r.Len(); tenants != 0 || channels != 0 {
		t.Errorf("expected empty registry, got %d/%d", tenants, channels)
	}
}

func TestChannelSendAndClose(t *testing.T) {
	ch := NewChannel("T1", 2)
	ev := NewEvent(EventRoomUpdate, nil, fixedTime)

	if !ch.Send(ev) || !ch.Send(ev) {
		t.Fatal("expected sends within capacity to succeed")
	}
	if ch.Send(ev) {
		t.Error("expected send on full channel to fail")
	}

	ch.Close()
	ch.Close()
	if ch.Send(ev) {
		t.Error("expected send on closed channel to fail")
	}
	if !ch.Closed() {
		t.Error("expected channel to report closed")
	}

	var drained int
	for range ch.Events() {
		drained++
	}
	if drained != 2 {
		t.Errorf("expected buffered events to drain after close, got %d", drained)
	}
}

func TestNewChannelDefaultCapacity(t *testing.T) {
	ch := NewChannel("T1", 0)
	if cap(ch.events) != DefaultChannelCapacity {
		t.Errorf("expected capacity %d, got %d", DefaultChannelCapacity, cap(ch.events))
	}
	if ch.ID() == "" || ch.Tenant() != "T1" {
		t.Errorf("unexpected channel identity %q %q", ch.ID(), ch.Tenant())
	}
}
