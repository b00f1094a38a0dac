// Package notification provides persistence for notification records with
// memory and postgres implementations behind the same method set.
package notification

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"kolabo/internal/notification/models"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
)

// InMemory implements the notification store with a mutex-guarded map.
type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[domain.NotificationID]*models.Notification
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[domain.NotificationID]*models.Notification)}
}

func (s *InMemory) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n.ID = domain.NotificationID(s.nextID)
	cp := *n
	s.byID[n.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.NotificationID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

// HasDuplicate reports whether a notification with the same recipient, type
// and actor already exists. A non-empty dataKey narrows the match to records
// whose data payload carries dataValue under that key.
func (s *InMemory) HasDuplicate(ctx context.Context, recipient domain.Actor, typ models.Type, actor domain.Actor, dataKey string, dataValue any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.byID {
		if !n.BelongsTo(recipient) || n.Type != typ {
			continue
		}
		existing, ok := n.Actor()
		if !ok || existing != actor {
			continue
		}
		if dataKey == "" {
			return true, nil
		}
		// Text comparison matches the postgres implementation, which
		// compares data->>key against the candidate rendered as text.
		if v, ok := n.Data[dataKey]; ok && fmt.Sprint(v) == fmt.Sprint(dataValue) {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) ListByRecipient(ctx context.Context, recipient domain.Actor) ([]*models.Notification, error) {
	return s.list(recipient, func(n *models.Notification) bool { return true })
}

func (s *InMemory) ListUnread(ctx context.Context, recipient domain.Actor) ([]*models.Notification, error) {
	return s.list(recipient, func(n *models.Notification) bool { return !n.IsRead })
}

func (s *InMemory) CountUnread(ctx context.Context, recipient domain.Actor) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.byID {
		if n.BelongsTo(recipient) && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// ListSince returns notifications created at or after the cutoff, newest
// first. The boundary is inclusive.
func (s *InMemory) ListSince(ctx context.Context, recipient domain.Actor, since time.Time) ([]*models.Notification, error) {
	return s.list(recipient, func(n *models.Notification) bool {
		return !n.CreatedAt.Before(since)
	})
}

// ListPage returns one page of the recipient's notifications, newest first,
// along with the total count before paging.
func (s *InMemory) ListPage(ctx context.Context, recipient domain.Actor, limit, offset int) ([]*models.Notification, int, error) {
	all, err := s.ListByRecipient(ctx, recipient)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *InMemory) Update(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[n.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *n
	s.byID[n.ID] = &cp
	return nil
}

func (s *InMemory) MarkAllRead(ctx context.Context, recipient domain.Actor, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.byID {
		if n.BelongsTo(recipient) && n.MarkRead(now) {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) Delete(ctx context.Context, id domain.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *InMemory) DeleteRead(ctx context.Context, recipient domain.Actor) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for id, n := range s.byID {
		if n.BelongsTo(recipient) && n.IsRead {
			delete(s.byID, id)
			count++
		}
	}
	return count, nil
}

func (s *InMemory) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for id, n := range s.byID {
		if n.CreatedAt.Before(cutoff) {
			delete(s.byID, id)
			count++
		}
	}
	return count, nil
}

func (s *InMemory) list(recipient domain.Actor, keep func(*models.Notification) bool) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Notification
	for _, n := range s.byID {
		if n.BelongsTo(recipient) && keep(n) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID > out[b].ID
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}
