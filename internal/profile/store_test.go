package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nexusquery/auth-gateway/internal/database"
)

func TestMemoryStore_EnsureProfileIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.EnsureProfile(ctx, "u1", "a@b.com"); err != nil {
		t.Fatalf("EnsureProfile failed: %v", err)
	}
	first, _ := s.GetByUID(ctx, "u1")
	if err := s.EnsureProfile(ctx, "u1", "new@b.com"); err != nil {
		t.Fatalf("EnsureProfile failed: %v", err)
	}
	second, err := s.GetByUID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByUID failed: %v", err)
	}

	if first.ID != second.ID {
		t.Error("Expected the same profile id across syncs")
	}
	if second.Email != "new@b.com" {
		t.Errorf("Expected refreshed email, got %q", second.Email)
	}
	if second.Role != "user" {
		t.Errorf("Expected default role, got %q", second.Role)
	}
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	t.Parallel()

	_, err := NewMemoryStore().GetByUID(context.Background(), "ghost")
	if !errors.Is(err, database.ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()
	for _, uid := range []string{"u1", "u2", "u3"} {
		_ = s.EnsureProfile(ctx, uid, uid+"@b.com")
	}

	got, _ := s.List(ctx, 2)
	if len(got) != 2 {
		t.Fatalf("Expected 2 profiles, got %d", len(got))
	}
	if got[0].FirebaseUID != "u3" || got[1].FirebaseUID != "u2" {
		t.Errorf("Unexpected order: %s, %s", got[0].FirebaseUID, got[1].FirebaseUID)
	}
}

type failingStore struct{ MemoryStore }

func (f *failingStore) EnsureProfile(context.Context, string, string) error {
	return errors.New("db down")
}

func TestSyncer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewSyncer(NewMemoryStore(), nil, 0)
	if err := s.EnsureProfile(ctx, "u1", "a@b.com"); err != nil {
		t.Fatalf("EnsureProfile failed: %v", err)
	}
	if p, err := s.store.GetByUID(ctx, "u1"); err != nil || p.Email != "a@b.com" {
		t.Errorf("Expected synced profile, got %v, %v", p, err)
	}

	failing := NewSyncer(&failingStore{}, nil, 0)
	if err := failing.EnsureProfile(ctx, "u1", "a@b.com"); err == nil {
		t.Error("Expected sync error")
	}
}
