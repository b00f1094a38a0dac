package transaction

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"kolabo/internal/partnership/models"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
)

// InMemory implements the transaction store with a mutex-guarded map.
type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[domain.TransactionID]*models.TransactionPartenariat
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[domain.TransactionID]*models.TransactionPartenariat)}
}

func (s *InMemory) Create(ctx context.Context, t *models.TransactionPartenariat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t.ID = domain.TransactionID(s.nextID)
	cp := *t
	s.byID[t.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.TransactionID) (*models.TransactionPartenariat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemory) ListByPage(ctx context.Context, pageID domain.PageID) ([]*models.TransactionPartenariat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.TransactionPartenariat
	for _, t := range s.byID {
		if t.PageID == pageID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) ListByPagesWithStatus(ctx context.Context, pageIDs []domain.PageID, status models.TransactionStatus) ([]*models.TransactionPartenariat, error) {
	pages := make(map[domain.PageID]struct{}, len(pageIDs))
	for _, id := range pageIDs {
		pages[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.TransactionPartenariat
	for _, t := range s.byID {
		if _, ok := pages[t.PageID]; ok && t.Status == status {
			cp := *t
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) CountByPagesWithStatus(ctx context.Context, pageIDs []domain.PageID, status models.TransactionStatus) (int, error) {
	list, err := s.ListByPagesWithStatus(ctx, pageIDs, status)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (s *InMemory) Update(ctx context.Context, t *models.TransactionPartenariat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[t.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *t
	s.byID[t.ID] = &cp
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id domain.TransactionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// AggregateValidated recounts and resums the VALIDATED transactions of a
// page from source, returning the latest validation time as lastAt.
func (s *InMemory) AggregateValidated(ctx context.Context, pageID domain.PageID) (int, decimal.Decimal, *time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	total := decimal.Zero
	var lastAt *time.Time
	for _, t := range s.byID {
		if t.PageID != pageID || t.Status != models.StatusValidated {
			continue
		}
		count++
		total = total.Add(t.PrixTotal)
		if t.ValideeAt != nil && (lastAt == nil || t.ValideeAt.After(*lastAt)) {
			at := *t.ValideeAt
			lastAt = &at
		}
	}
	return count, total, lastAt, nil
}

func sortNewestFirst(list []*models.TransactionPartenariat) {
	sort.Slice(list, func(a, b int) bool {
		if list[a].CreatedAt.Equal(list[b].CreatedAt) {
			return list[a].ID > list[b].ID
		}
		return list[a].CreatedAt.After(list[b].CreatedAt)
	})
}
