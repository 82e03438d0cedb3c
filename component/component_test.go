package component

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/clinicq/logger"
)

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	order    *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.order != nil {
		*m.order = append(*m.order, "start:"+m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.order != nil {
		*m.order = append(*m.order, "stop:"+m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health { return m.health }

func newRegistry() *Registry { return NewRegistry(logger.Nop()) }

func TestRegisterDuplicate(t *testing.T) {
	r := newRegistry()
	if err := r.Register(&mockComponent{name: "database"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "database"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestStartStopOrder(t *testing.T) {
	var order []string
	r := newRegistry()
	for _, name := range []string{"database", "sse", "http-server"} {
		_ = r.Register(&mockComponent{name: name, order: &order})
	}

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	want := []string{
		"start:database", "start:sse", "start:http-server",
		"stop:http-server", "stop:sse", "stop:database",
	}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("unexpected order:\n got  %v\n want %v", order, want)
	}
}

func TestStartFailureStopsOnlyStarted(t *testing.T) {
	var order []string
	r := newRegistry()
	_ = r.Register(&mockComponent{name: "database", order: &order})
	_ = r.Register(&mockComponent{name: "sse", order: &order, startErr: fmt.Errorf("boom")})
	_ = r.Register(&mockComponent{name: "http-server", order: &order})

	ctx := context.Background()
	err := r.StartAll(ctx)
	if err == nil || !strings.Contains(err.Error(), "sse") {
		t.Fatalf("expected start error naming sse, got %v", err)
	}
	_ = r.StopAll(ctx)

	want := []string{"start:database", "start:sse", "stop:database"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("unexpected order:\n got  %v\n want %v", order, want)
	}
}

func TestStopAllCollectsErrors(t *testing.T) {
	r := newRegistry()
	_ = r.Register(&mockComponent{name: "a", stopErr: fmt.Errorf("a failed")})
	_ = r.Register(&mockComponent{name: "b", stopErr: fmt.Errorf("b failed")})

	ctx := context.Background()
	_ = r.StartAll(ctx)
	err := r.StopAll(ctx)
	if err == nil {
		t.Fatal("expected shutdown error")
	}
	if !strings.Contains(err.Error(), "a failed") || !strings.Contains(err.Error(), "b failed") {
		t.Errorf("expected both errors, got %v", err)
	}
}

func TestHealthAllAndLookup(t *testing.T) {
	r := newRegistry()
	db := &mockComponent{name: "database", health: Health{Name: "database", Status: StatusHealthy}}
	hub := &mockComponent{name: "sse", health: Health{Name: "sse", Status: StatusDegraded}}
	_ = r.Register(db)
	_ = r.Register(hub)

	health := r.HealthAll(context.Background())
	if len(health) != 2 || health[1].Status != StatusDegraded {
		t.Errorf("unexpected health: %+v", health)
	}
	if r.Get("sse") != hub {
		t.Error("expected Get to return the sse component")
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for an unknown component")
	}
	if len(r.All()) != 2 {
		t.Errorf("expected 2 components, got %d", len(r.All()))
	}
}
