package requestctx

import (
	"context"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	ctx := WithUser(context.Background(), "maria")
	ctx = WithAuthToken(ctx, "Bearer abc")
	ctx = WithRequestID(ctx, "req-1")

	if got := UserFromContext(ctx); got != "maria" {
		t.Fatalf("UserFromContext = %q, want maria", got)
	}
	if got := AuthTokenFromContext(ctx); got != "Bearer abc" {
		t.Fatalf("AuthTokenFromContext = %q", got)
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("RequestIDFromContext = %q", got)
	}
}

func TestEmptyAndNilContext(t *testing.T) {
	if got := UserFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty user, got %q", got)
	}
	//nolint:staticcheck // nil context is tolerated on purpose
	if got := AuthTokenFromContext(nil); got != "" {
		t.Fatalf("expected empty token for nil context, got %q", got)
	}
	//nolint:staticcheck
	ctx := WithUser(nil, "jose")
	if got := UserFromContext(ctx); got != "jose" {
		t.Fatalf("UserFromContext = %q, want jose", got)
	}
}
