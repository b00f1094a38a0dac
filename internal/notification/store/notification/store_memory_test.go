package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kolabo/internal/notification/models"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
)

// =============================================================================
// Notification Memory Store Test Suite
// =============================================================================
// Justification for unit tests: the memory store must mirror the postgres
// semantics exactly (text-rendered dedup match, inclusive since-boundary,
// newest-first ordering) or the service suites stop meaning anything.

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) seed(recipient domain.Actor, typ models.Type, createdAt time.Time, data map[string]any) *models.Notification {
	n := &models.Notification{
		RecipientID:   recipient.ID,
		RecipientType: recipient.Kind,
		Type:          typ,
		Titre:         "titre",
		Message:       "message",
		Data:          data,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	n.SetActor(domain.SocieteActor(12))
	s.Require().NoError(s.store.Create(s.ctx, n))
	return n
}

func (s *MemoryStoreSuite) TestHasDuplicate() {
	recipient := domain.UserActor(7)
	s.seed(recipient, models.TypePostLiked, s.now, map[string]any{"post_id": int64(200)})

	s.Run("matches on recipient, type and actor", func() {
		found, err := s.store.HasDuplicate(s.ctx, recipient, models.TypePostLiked, domain.SocieteActor(12), "", nil)
		s.Require().NoError(err)
		s.True(found)
	})

	s.Run("different actor does not match", func() {
		found, err := s.store.HasDuplicate(s.ctx, recipient, models.TypePostLiked, domain.SocieteActor(13), "", nil)
		s.Require().NoError(err)
		s.False(found)
	})

	s.Run("data key narrows by text rendering", func() {
		found, err := s.store.HasDuplicate(s.ctx, recipient, models.TypePostLiked, domain.SocieteActor(12), "post_id", domain.PageID(200))
		s.Require().NoError(err)
		s.True(found)

		found, err = s.store.HasDuplicate(s.ctx, recipient, models.TypePostLiked, domain.SocieteActor(12), "post_id", int64(201))
		s.Require().NoError(err)
		s.False(found)
	})
}

func (s *MemoryStoreSuite) TestListOrderingAndBoundary() {
	recipient := domain.UserActor(7)
	old := s.seed(recipient, models.TypeSystem, s.now.Add(-48*time.Hour), nil)
	mid := s.seed(recipient, models.TypeSystem, s.now.Add(-24*time.Hour), nil)
	newest := s.seed(recipient, models.TypeSystem, s.now, nil)
	s.seed(domain.UserActor(8), models.TypeSystem, s.now, nil)

	s.Run("newest first, recipient scoped", func() {
		list, err := s.store.ListByRecipient(s.ctx, recipient)
		s.Require().NoError(err)
		s.Require().Len(list, 3)
		s.Equal(newest.ID, list[0].ID)
		s.Equal(old.ID, list[2].ID)
	})

	s.Run("since boundary is inclusive", func() {
		list, err := s.store.ListSince(s.ctx, recipient, s.now.Add(-24*time.Hour))
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(mid.ID, list[1].ID)
	})

	s.Run("page carries the pre-paging total", func() {
		items, total, err := s.store.ListPage(s.ctx, recipient, 2, 2)
		s.Require().NoError(err)
		s.Equal(3, total)
		s.Require().Len(items, 1)
		s.Equal(old.ID, items[0].ID)

		items, total, err = s.store.ListPage(s.ctx, recipient, 2, 10)
		s.Require().NoError(err)
		s.Equal(3, total)
		s.Empty(items)
	})
}

func (s *MemoryStoreSuite) TestReadLifecycle() {
	recipient := domain.UserActor(7)
	a := s.seed(recipient, models.TypeSystem, s.now, nil)
	s.seed(recipient, models.TypeSystem, s.now, nil)

	a.MarkRead(s.now)
	s.Require().NoError(s.store.Update(s.ctx, a))

	count, err := s.store.CountUnread(s.ctx, recipient)
	s.Require().NoError(err)
	s.Equal(1, count)

	marked, err := s.store.MarkAllRead(s.ctx, recipient, s.now)
	s.Require().NoError(err)
	s.Equal(1, marked)

	deleted, err := s.store.DeleteRead(s.ctx, recipient)
	s.Require().NoError(err)
	s.Equal(2, deleted)

	_, err = s.store.FindByID(s.ctx, a.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestDeleteOlderThan() {
	recipient := domain.UserActor(7)
	s.seed(recipient, models.TypeSystem, s.now.AddDate(0, 0, -40), nil)
	kept := s.seed(recipient, models.TypeSystem, s.now, nil)

	deleted, err := s.store.DeleteOlderThan(s.ctx, s.now.AddDate(0, 0, -30))
	s.Require().NoError(err)
	s.Equal(1, deleted)

	list, err := s.store.ListByRecipient(s.ctx, recipient)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(kept.ID, list[0].ID)
}

func (s *MemoryStoreSuite) TestCopyOnReadIsolation() {
	recipient := domain.UserActor(7)
	n := s.seed(recipient, models.TypeSystem, s.now, nil)

	got, err := s.store.FindByID(s.ctx, n.ID)
	s.Require().NoError(err)
	got.Titre = "mutated"

	again, err := s.store.FindByID(s.ctx, n.ID)
	s.Require().NoError(err)
	s.Equal("titre", again.Titre)
}
