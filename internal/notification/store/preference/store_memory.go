// Package preference provides persistence for the sparse per-owner,
// per-type notification overrides.
package preference

import (
	"context"
	"sync"
	"time"

	"kolabo/internal/notification/models"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
)

type ownerKey struct {
	id   int64
	kind domain.ActorKind
	typ  models.Type
}

// InMemory implements the preference store with a mutex-guarded map. The
// at-most-one-per-(owner, type) invariant holds by construction of the key.
type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[ownerKey]*models.NotificationPreference
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[ownerKey]*models.NotificationPreference)}
}

func keyOf(p *models.NotificationPreference) ownerKey {
	return ownerKey{id: p.OwnerID, kind: p.OwnerType, typ: p.Type}
}

func (s *InMemory) Find(ctx context.Context, owner domain.Actor, typ models.Type) (*models.NotificationPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.rows[ownerKey{id: owner.ID, kind: owner.Kind, typ: typ}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemory) ListByOwner(ctx context.Context, owner domain.Actor) ([]*models.NotificationPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.NotificationPreference
	for _, p := range s.rows {
		if p.OwnerID == owner.ID && p.OwnerType == owner.Kind {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Upsert updates the row for (owner, type) or creates it.
func (s *InMemory) Upsert(ctx context.Context, p *models.NotificationPreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rows[keyOf(p)]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		s.nextID++
		p.ID = domain.PreferenceID(s.nextID)
	}
	cp := *p
	s.rows[keyOf(p)] = &cp
	return nil
}

// SetAllForOwner flips every existing row of the owner to the given state.
// Types with no row keep their implicit default; no rows are materialized.
func (s *InMemory) SetAllForOwner(ctx context.Context, owner domain.Actor, enabled bool, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, p := range s.rows {
		if p.OwnerID == owner.ID && p.OwnerType == owner.Kind {
			p.IsEnabled = enabled
			p.UpdatedAt = now
			count++
		}
	}
	return count, nil
}
