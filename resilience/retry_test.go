package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(attempts int) Policy {
	return Policy{Backoff: Backoff{Attempts: attempts, Initial: time.Millisecond, Max: 2 * time.Millisecond}}
}

func TestRetry_FirstAttempt(t *testing.T) {
	calls := 0
	v, err := Retry(context.Background(), fastPolicy(3), func(int) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil || v != "ok" || calls != 1 {
		t.Errorf("Retry() = %q, %v after %d calls", v, err, calls)
	}
}

func TestRetry_RecoversAndReportsRetries(t *testing.T) {
	var retried []int
	p := fastPolicy(3)
	p.OnRetry = func(attempt int, _ error, _ time.Duration) { retried = append(retried, attempt) }

	v, err := Retry(context.Background(), p, func(attempt int) (int, error) {
		if attempt < 3 {
			return 0, errors.New("temporary")
		}
		return attempt, nil
	})
	if err != nil || v != 3 {
		t.Fatalf("Retry() = %d, %v", v, err)
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Errorf("OnRetry attempts = %v", retried)
	}
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	last := errors.New("third")
	err := Do(context.Background(), fastPolicy(3), func(attempt int) error {
		calls++
		if attempt == 3 {
			return last
		}
		return errors.New("earlier")
	})
	if !errors.Is(err, last) || calls != 3 {
		t.Errorf("Do() = %v after %d calls", err, calls)
	}
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	p := fastPolicy(5)
	p.RetryIf = func(err error) bool { return !errors.Is(err, permanent) }

	calls := 0
	err := Do(context.Background(), p, func(int) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("Do() = %v after %d calls", err, calls)
	}
}

func TestRetry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Do(ctx, fastPolicy(3), func(int) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) || calls != 0 {
		t.Errorf("Do() = %v after %d calls", err, calls)
	}
}

func TestRetry_CanceledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{Backoff: Backoff{Attempts: 3, Initial: time.Hour, Max: time.Hour}}
	p.OnRetry = func(int, error, time.Duration) { cancel() }

	err := Do(ctx, p, func(int) error { return errors.New("down") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
}

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{Initial: 100 * time.Millisecond, Max: 300 * time.Millisecond, Factor: 2}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 300 * time.Millisecond},
		{8, 300 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := b.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoff_JitterBounds(t *testing.T) {
	b := Backoff{Initial: 100 * time.Millisecond, Max: time.Second, Factor: 2, Jitter: 0.5}
	for range 50 {
		if d := b.Delay(1); d < 50*time.Millisecond || d > 150*time.Millisecond {
			t.Fatalf("Delay(1) = %v outside jitter range", d)
		}
	}
}
