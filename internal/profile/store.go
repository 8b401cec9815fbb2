// Package profile keeps the local profile linked to each verified subject.
package profile

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nexusquery/auth-gateway/internal/database"
	"github.com/nexusquery/auth-gateway/internal/identity"
	"github.com/nexusquery/auth-gateway/internal/models"
)

// Store persists profiles. database.ProfileRepository is the Postgres
// implementation.
type Store interface {
	EnsureProfile(ctx context.Context, uid, email string) error
	GetByUID(ctx context.Context, uid string) (*models.Profile, error)
	List(ctx context.Context, limit int) ([]*models.Profile, error)
}

var _ Store = (*database.ProfileRepository)(nil)

// MemoryStore is a process-local Store used when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*models.Profile), now: time.Now}
}

func (s *MemoryStore) EnsureProfile(_ context.Context, uid, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if p, ok := s.profiles[uid]; ok {
		p.Email = email
		p.LastSeenAt = now
		return nil
	}
	s.profiles[uid] = &models.Profile{
		ID:          uuid.New(),
		FirebaseUID: uid,
		Email:       email,
		Role:        identity.DefaultRole,
		CreatedAt:   now,
		LastSeenAt:  now,
	}
	return nil
}

func (s *MemoryStore) GetByUID(_ context.Context, uid string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[uid]
	if !ok {
		return nil, database.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*models.Profile, error) {
	s.mu.RLock()
	out := make([]*models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		cp := *p
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].LastSeenAt.After(out[j].LastSeenAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
