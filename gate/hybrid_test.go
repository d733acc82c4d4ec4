package gate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/agence/gate"
)

type mapResolver struct {
	profiles map[uint]gate.Profile
	calls    int
	err      error
}

func (m *mapResolver) Resolve(_ context.Context, user uint) (gate.Profile, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.profiles[user], nil
}

func TestHybridGate_ProfileThenPolicy(t *testing.T) {
	editor := gate.NewStaticProfile("editeur", "document:*", "client:list")
	res := &mapResolver{profiles: map[uint]gate.Profile{1: editor, 2: editor}}
	g := gate.NewHybridGate[uint](res)
	g.Register("document", ownerPolicy())
	ctx := context.Background()

	if !g.Can(ctx, 1, gate.ActionList, "client", nil) {
		t.Fatal("client:list granted")
	}
	if g.Can(ctx, 1, gate.ActionDelete, "client", nil) {
		t.Fatal("client:delete not granted")
	}
	if !g.Can(ctx, 1, gate.ActionUpdate, "document", &doc{ClientID: 1}) {
		t.Fatal("policy should allow owner")
	}
	if g.Can(ctx, 2, gate.ActionUpdate, "document", &doc{ClientID: 1}) {
		t.Fatal("policy should deny non owner")
	}
	if g.Can(ctx, 9, gate.ActionView, "document", nil) {
		t.Fatal("subject without profile is denied")
	}
	if g.Profile(ctx, 1).Name() != "editeur" {
		t.Fatal("profile lookup")
	}
}

func TestHybridGate_ResolverErrorDenies(t *testing.T) {
	g := gate.NewHybridGate[uint](&mapResolver{err: errors.New("db down")})
	if err := g.Authorize(context.Background(), 1, gate.ActionView, "quote", nil); !errors.Is(err, gate.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCachedResolver_TTL(t *testing.T) {
	inner := &mapResolver{profiles: map[uint]gate.Profile{1: gate.NewStaticProfile("admin", gate.PermissionSuperAdmin)}}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cached := gate.NewCachedResolver[uint](inner, time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cached.Resolve(ctx, 1); err != nil {
			t.Fatal(err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}

	now = now.Add(2 * time.Minute)
	_, _ = cached.Resolve(ctx, 1)
	if inner.calls != 2 {
		t.Fatalf("expired entry should refetch, calls=%d", inner.calls)
	}

	cached.Invalidate(1)
	_, _ = cached.Resolve(ctx, 1)
	cached.InvalidateAll()
	_, _ = cached.Resolve(ctx, 1)
	if inner.calls != 4 {
		t.Fatalf("invalidation should refetch, calls=%d", inner.calls)
	}
}

func TestCachedResolver_ErrorsNotCached(t *testing.T) {
	inner := &mapResolver{err: errors.New("boom")}
	cached := gate.NewCachedResolver[uint](inner, time.Hour)
	_, _ = cached.Resolve(context.Background(), 1)
	_, _ = cached.Resolve(context.Background(), 1)
	if inner.calls != 2 {
		t.Fatalf("errors must not be cached, calls=%d", inner.calls)
	}
}

func TestStaticProfile_Permissions(t *testing.T) {
	p := gate.NewStaticProfile("x", "quote:view", "client:list")
	perms := p.Permissions()
	if len(perms) != 2 || perms[0] != "client:list" {
		t.Fatalf("expected sorted permissions, got %v", perms)
	}
	if !p.HasPermission("quote:view") || p.HasPermission("quote:delete") {
		t.Fatal("HasPermission mismatch")
	}
}
