package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// readUntil reads SSE lines until one has the given prefix.
func readUntil(t *testing.T, r *bufio.Reader, prefix string) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("stream ended before %q: %v", prefix, err)
		}
		if strings.HasPrefix(line, prefix) {
			return strings.TrimRight(line, "\n")
		}
	}
}

func TestServeSSEStreamsEvents(t *testing.T) {
	b := newTestBroker()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(b, w, r, "T1")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("unexpected content type %q", ct)
	}
	if resp.Header.Get("Cache-Control") != "no-cache" || resp.Header.Get("X-Accel-Buffering") != "no" {
		t.Errorf("missing streaming headers: %v", resp.Header)
	}

	body := bufio.NewReader(resp.Body)
	if line := readUntil(t, body, "event:"); line != "event: connected" {
		t.Errorf("expected connected event, got %q", line)
	}
	if line := readUntil(t, body, "data:"); !strings.Contains(line, `"tenant":"T1"`) {
		t.Errorf("expected tenant in connected data, got %q", line)
	}

	b.Publish(context.Background(), "T1", EventRoomUpdate, nil)
	b.Publish(context.Background(), "T2", EventPatientUpdate, nil)
	b.Publish(context.Background(), "T1", EventTicketUpdate, nil)

	if line := readUntil(t, body, "data:"); line != `data: {"type":"room_update","action":"refresh"}` {
		t.Errorf("unexpected event line %q", line)
	}
	if line := readUntil(t, body, "data:"); line != `data: {"type":"ticket_update","action":"refresh"}` {
		t.Errorf("unexpected event line %q", line)
	}

	cancel()
	waitFor(t, func() bool { tenants, _ := b.Registry().Len(); return tenants == 0 })
}

func TestServeSSEKeepAliveAndDisconnect(t *testing.T) {
	b := newTestBroker(WithKeepAlive(10 * time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/room/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		ServeSSE(b, rec, req, "T1")
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if !strings.Contains(rec.Body.String(), ": keepalive ") {
		t.Errorf("expected keep-alive comment, got %q", rec.Body.String())
	}
	if tenants, channels := b.Registry().Len(); tenants != 0 || channels != 0 {
		t.Errorf("expected channel released on disconnect, got %d/%d", tenants, channels)
	}
}

func TestServeSSEReturnsOnShutdown(t *testing.T) {
	b := newTestBroker()
	req := httptest.NewRequest(http.MethodGet, "/room/stream", nil)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		ServeSSE(b, rec, req, "T1")
		close(done)
	}()

	waitFor(t, func() bool { _, n := b.Registry().Len(); return n == 1 })
	b.Shutdown()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after broker shutdown")
	}
}

func TestServeSSERejectsAfterShutdown(t *testing.T) {
	b := newTestBroker()
	b.Shutdown()

	rec := httptest.NewRecorder()
	ServeSSE(b, rec, httptest.NewRequest(http.MethodGet, "/room/stream", nil), "T1")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestServeSSERejectsEmptyTenant(t *testing.T) {
	rec := httptest.NewRecorder()
	ServeSSE(newTestBroker(), rec, httptest.NewRequest(http.MethodGet, "/room/stream", nil), "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

type plainWriter struct {
	header http.Header
	code   int
}

func (w *plainWriter) Header() http.Header         { return w.header }
func (w *plainWriter) Write(b []byte) (int, error) { return len(b), nil }
func (w *plainWriter) WriteHeader(code int)        { w.code = code }

func TestServeSSERequiresFlusher(t *testing.T) {
	b := newTestBroker()
	w := &plainWriter{header: http.Header{}}
	ServeSSE(b, w, httptest.NewRequest(http.MethodGet, "/room/stream", nil), "T1")

	if w.code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.code)
	}
	if _, n := b.Registry().Len(); n != 0 {
		t.Errorf("expected no channel registered, got %d", n)
	}
}

// A panic while streaming still releases the channel.
func TestServeSSEReleasesOnPanic(t *testing.T) {
	b := newTestBroker()
	w := &panicWriter{ResponseRecorder: httptest.NewRecorder()}

	func() {
		defer func() { _ = recover() }()
		ServeSSE(b, w, httptest.NewRequest(http.MethodGet, "/room/stream", nil), "T1")
	}()

	if tenants, _ := b.Registry().Len(); tenants != 0 {
		t.Errorf("expected channel released after panic, got %d tenants", tenants)
	}
}

type panicWriter struct {
	*httptest.ResponseRecorder
}

func (w *panicWriter) Flush() { panic("connection reset") }
