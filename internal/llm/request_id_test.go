package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestRequestIDFromContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	id, ok := RequestIDFromContext(ctx)
	if !ok {
		t.Fatalf("expected request id in context")
	}
	if id != "req-1" {
		t.Fatalf("expected req-1, got %q", id)
	}
}

func TestRequestIDFromContextMissing(t *testing.T) {
	if id, ok := RequestIDFromContext(context.Background()); ok {
		t.Fatalf("expected missing id, got %q", id)
	}
	if _, ok := RequestIDFromContext(WithRequestID(context.Background(), "")); ok {
		t.Fatalf("expected empty id to be treated as missing")
	}
}

func TestWithRequestIDHandlesNilContext(t *testing.T) {
	//nolint:staticcheck // nil context is accepted on purpose
	ctx := WithRequestID(nil, "req-2")
	if id, ok := RequestIDFromContext(ctx); !ok || id != "req-2" {
		t.Fatalf("expected req-2, got %q (%t)", id, ok)
	}
}

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := fmt.Errorf("dial: %w", ErrEgressBlocked)
	err := error(&Error{Kind: ErrRequestFailed, Message: "API request failed", Err: cause})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected kind to match")
	}
	if !errors.Is(err, ErrEgressBlocked) {
		t.Fatalf("expected cause to match")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unexpected unauthorized match")
	}
	if err.Error() != "API request failed" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
