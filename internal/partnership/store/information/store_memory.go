package information

import (
	"context"
	"fmt"
	"sync"

	"kolabo/internal/partnership/models"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
)

type partnerKey struct {
	page domain.PageID
	id   int64
	kind domain.ActorKind
}

// InMemory implements the information store with a mutex-guarded map. The
// at-most-one-per-(page, partenaire) invariant is enforced at insert under
// the lock, mirroring the postgres composite unique index.
type InMemory struct {
	mu        sync.RWMutex
	nextID    int64
	byID      map[domain.InformationID]*models.InformationPartenaire
	byPartner map[partnerKey]domain.InformationID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:      make(map[domain.InformationID]*models.InformationPartenaire),
		byPartner: make(map[partnerKey]domain.InformationID),
	}
}

func keyOf(i *models.InformationPartenaire) partnerKey {
	return partnerKey{page: i.PageID, id: i.PartenaireID, kind: i.PartenaireType}
}

func (s *InMemory) Create(ctx context.Context, i *models.InformationPartenaire) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byPartner[keyOf(i)]; exists {
		return fmt.Errorf("%w: information for partner %s:%d on page %d",
			sentinel.ErrConflict, i.PartenaireType, i.PartenaireID, i.PageID)
	}
	s.nextID++
	i.ID = domain.InformationID(s.nextID)
	cp := *i
	s.byID[i.ID] = &cp
	s.byPartner[keyOf(i)] = i.ID
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.InformationID) (*models.InformationPartenaire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (s *InMemory) FindByPartner(ctx context.Context, pageID domain.PageID, partenaireID int64, partenaireType domain.ActorKind) (*models.InformationPartenaire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPartner[partnerKey{page: pageID, id: partenaireID, kind: partenaireType}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemory) ListByPage(ctx context.Context, pageID domain.PageID) ([]*models.InformationPartenaire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.InformationPartenaire
	for _, i := range s.byID {
		if i.PageID == pageID {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) Update(ctx context.Context, i *models.InformationPartenaire) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[i.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *i
	s.byID[i.ID] = &cp
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id domain.InformationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byPartner, keyOf(i))
	delete(s.byID, id)
	return nil
}
