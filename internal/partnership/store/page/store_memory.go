package page

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"kolabo/internal/partnership/models"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
)

// InMemory implements the page store with a mutex-guarded map. The
// one-page-per-abonnement invariant is enforced the same way the postgres
// unique index does it: at insert, under the lock.
type InMemory struct {
	mu           sync.RWMutex
	nextID       int64
	byID         map[domain.PageID]*models.PagePartenariat
	byAbonnement map[domain.AbonnementID]domain.PageID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:         make(map[domain.PageID]*models.PagePartenariat),
		byAbonnement: make(map[domain.AbonnementID]domain.PageID),
	}
}

func (s *InMemory) Create(ctx context.Context, p *models.PagePartenariat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byAbonnement[p.AbonnementID]; exists {
		return fmt.Errorf("%w: page for abonnement %d", sentinel.ErrConflict, p.AbonnementID)
	}
	s.nextID++
	p.ID = domain.PageID(s.nextID)
	cp := *p
	s.byID[p.ID] = &cp
	s.byAbonnement[p.AbonnementID] = p.ID
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.PageID) (*models.PagePartenariat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemory) FindByAbonnement(ctx context.Context, abID domain.AbonnementID) (*models.PagePartenariat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byAbonnement[abID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemory) ListByAbonnementIDs(ctx context.Context, abIDs []domain.AbonnementID) ([]*models.PagePartenariat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.PagePartenariat
	for _, abID := range abIDs {
		if id, ok := s.byAbonnement[abID]; ok {
			cp := *s.byID[id]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) Update(ctx context.Context, p *models.PagePartenariat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *p
	s.byID[p.ID] = &cp
	return nil
}

func (s *InMemory) UpdateStats(ctx context.Context, id domain.PageID, count int, total decimal.Decimal, lastAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.UpdateStats(count, total, lastAt)
	return nil
}
