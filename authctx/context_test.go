package authctx

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/authkit/user"
)

func TestPrincipalRoundTrip(t *testing.T) {
	p := &user.Principal{ID: 7, Username: "alice"}
	ctx := WithPrincipal(context.Background(), p)

	got, ok := Principal(ctx)
	if !ok || got != p {
		t.Fatalf("expected stored principal, got %v %v", got, ok)
	}
	if MustPrincipal(ctx).ID != 7 {
		t.Error("MustPrincipal returned the wrong principal")
	}
	if got, err := PrincipalOrError(ctx); err != nil || got.Username != "alice" {
		t.Errorf("PrincipalOrError: %v %v", got, err)
	}
}

func TestPrincipalMissing(t *testing.T) {
	ctx := context.Background()
	if _, ok := Principal(ctx); ok {
		t.Error("empty context should carry no principal")
	}
	if _, err := PrincipalOrError(ctx); !errors.Is(err, ErrNoPrincipal) {
		t.Errorf("expected ErrNoPrincipal, got %v", err)
	}

	typedNil := WithPrincipal(ctx, nil)
	if _, ok := Principal(typedNil); ok {
		t.Error("nil principal should not count as present")
	}
}

func TestPrincipalWrongType(t *testing.T) {
	ctx := Set(context.Background(), "not a principal")
	if _, ok := Principal(ctx); ok {
		t.Error("wrong type should not be returned")
	}
	if v, ok := Get[string](ctx); !ok || v != "not a principal" {
		t.Errorf("Get[string] = %q %v", v, ok)
	}
}

func TestMustPrincipalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustPrincipal(context.Background())
}
