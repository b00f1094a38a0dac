// Package store provides read-only access to subscription records. The
// partnership core resolves membership through it but never writes;
// subscriptions are owned by an out-of-scope subsystem.
package store

import (
	"context"
	"sync"

	"kolabo/internal/abonnement/models"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
)

// InMemory is a map-backed abonnement store for tests and local runs. Seed
// writes through Put; everything else is read-only, matching the production
// contract.
type InMemory struct {
	mu   sync.RWMutex
	byID map[domain.AbonnementID]*models.Abonnement
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[domain.AbonnementID]*models.Abonnement)}
}

// Put seeds a subscription record. Test helper, not part of the read contract.
func (s *InMemory) Put(a *models.Abonnement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.byID[a.ID] = &cp
}

func (s *InMemory) FindByID(ctx context.Context, id domain.AbonnementID) (*models.Abonnement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemory) FindByUserAndSociete(ctx context.Context, userID domain.UserID, societeID domain.SocieteID) (*models.Abonnement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.byID {
		if a.UserID == userID && a.SocieteID == societeID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListForActor(ctx context.Context, actor domain.Actor) ([]*models.Abonnement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Abonnement
	for _, a := range s.byID {
		if a.HasMember(actor) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}
