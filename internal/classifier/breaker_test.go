package classifier

import (
	"context"
	"errors"
	"testing"
)

type scriptedClient struct {
	calls int
	fn    func(call int) (Output, error)
}

func (s *scriptedClient) Classify(ctx context.Context, in Input) (Output, error) {
	s.calls++
	return s.fn(s.calls)
}

func TestBreakerPassesThrough(t *testing.T) {
	inner := &scriptedClient{fn: func(int) (Output, error) {
		return Output{Raw: `{"category":"ok"}`}, nil
	}}
	b := NewBreaker(inner)

	out, err := b.Classify(context.Background(), Input{Text: "hello"})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if out.Raw != `{"category":"ok"}` {
		t.Fatalf("raw = %q", out.Raw)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("boom")
	inner := &scriptedClient{fn: func(int) (Output, error) {
		return Output{}, &TransportError{Op: "converse", Err: boom}
	}}
	b := NewBreaker(inner)

	for i := 0; i < 5; i++ {
		if _, err := b.Classify(context.Background(), Input{}); err == nil {
			t.Fatalf("call %d: expected error", i+1)
		}
	}
	if inner.calls != 5 {
		t.Fatalf("inner calls = %d, want 5", inner.calls)
	}

	// Circuit is open now: the inner client must not be reached and the
	// failure must surface as a TransportError.
	_, err := b.Classify(context.Background(), Input{})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if inner.calls != 5 {
		t.Fatalf("inner calls after open = %d, want 5", inner.calls)
	}
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	inner := &scriptedClient{fn: func(int) (Output, error) {
		return Output{}, context.Canceled
	}}
	b := NewBreaker(inner)

	for i := 0; i < 10; i++ {
		b.Classify(context.Background(), Input{})
	}
	// Cancellations never trip the breaker, so every call reaches the client.
	if inner.calls != 10 {
		t.Fatalf("inner calls = %d, want 10", inner.calls)
	}
}
