package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestRetry_FirstAttemptSucceeds(t *testing.T) {
	var calls int
	v, err := Retry(context.Background(), fastPolicy(3), func(_ context.Context) (string, error) {
		calls++
		return "done", nil
	})
	if err != nil || v != "done" {
		t.Fatalf("got %q, %v", v, err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	var calls int
	v, err := Retry(context.Background(), fastPolicy(3), func(_ context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, Transient(errors.New("busy"), 503)
		}
		return calls, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 3 {
		t.Errorf("expected value 3, got %d", v)
	}
}

func TestRetry_PermanentErrorStops(t *testing.T) {
	var calls int
	_, err := Retry(context.Background(), fastPolicy(5), func(_ context.Context) (int, error) {
		calls++
		return 0, errors.New("bad request")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	var calls int
	_, err := Retry(context.Background(), fastPolicy(3), func(_ context.Context) (int, error) {
		calls++
		return 0, Transient(errors.New("busy"), 429)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	_, err := Retry(ctx, RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour}, func(_ context.Context) (int, error) {
		calls++
		cancel()
		return 0, Transient(errors.New("busy"), 503)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryPolicy_DelayCapped(t *testing.T) {
	p := RetryPolicy{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}
	if d := p.Delay(1); d != 100*time.Millisecond {
		t.Errorf("attempt 1: got %s", d)
	}
	if d := p.Delay(2); d != 200*time.Millisecond {
		t.Errorf("attempt 2: got %s", d)
	}
	if d := p.Delay(5); d != 300*time.Millisecond {
		t.Errorf("attempt 5: got %s", d)
	}
}
