package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"kolabo/internal/partnership/models"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
)

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
	s.now = time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) create(pageID domain.PageID, status models.TransactionStatus, total int64, createdAt time.Time) *models.TransactionPartenariat {
	t := &models.TransactionPartenariat{
		PageID:          pageID,
		Produit:         "Cacao",
		Quantite:        decimal.NewFromInt(1),
		PrixUnitaire:    decimal.NewFromInt(total),
		PrixTotal:       decimal.NewFromInt(total),
		Status:          status,
		CreeeParSociete: true,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	if status == models.StatusValidated {
		t.ValideeParUser = true
		at := createdAt.Add(time.Hour)
		t.ValideeAt = &at
	}
	s.Require().NoError(s.store.Create(s.ctx, t))
	return t
}

func (s *MemoryStoreSuite) TestListByPagesWithStatus() {
	oldest := s.create(1, models.StatusPendingValidation, 100, s.now.Add(-time.Hour))
	newest := s.create(1, models.StatusPendingValidation, 200, s.now)
	s.create(1, models.StatusValidated, 300, s.now)
	s.create(2, models.StatusPendingValidation, 400, s.now)

	list, err := s.store.ListByPagesWithStatus(s.ctx, []domain.PageID{1}, models.StatusPendingValidation)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newest.ID, list[0].ID)
	s.Equal(oldest.ID, list[1].ID)

	count, err := s.store.CountByPagesWithStatus(s.ctx, []domain.PageID{1, 2}, models.StatusPendingValidation)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *MemoryStoreSuite) TestAggregateValidated() {
	s.Run("empty page aggregates to zero", func() {
		count, total, lastAt, err := s.store.AggregateValidated(s.ctx, 1)
		s.Require().NoError(err)
		s.Zero(count)
		s.True(total.IsZero())
		s.Nil(lastAt)
	})

	s.Run("counts only the page's validated set", func() {
		s.create(1, models.StatusValidated, 5000, s.now.Add(-2*time.Hour))
		late := s.create(1, models.StatusValidated, 3000, s.now)
		s.create(1, models.StatusPendingValidation, 999, s.now)
		s.create(1, models.StatusRejected, 999, s.now)
		s.create(2, models.StatusValidated, 999, s.now)

		count, total, lastAt, err := s.store.AggregateValidated(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal(2, count)
		s.True(decimal.NewFromInt(8000).Equal(total))
		s.Require().NotNil(lastAt)
		s.Equal(*late.ValideeAt, *lastAt)
	})
}

func (s *MemoryStoreSuite) TestDeleteAndUpdateMisses() {
	s.ErrorIs(s.store.Delete(s.ctx, 999), sentinel.ErrNotFound)
	s.ErrorIs(s.store.Update(s.ctx, &models.TransactionPartenariat{ID: 999}), sentinel.ErrNotFound)

	t := s.create(1, models.StatusPendingValidation, 100, s.now)
	s.Require().NoError(s.store.Delete(s.ctx, t.ID))
	_, err := s.store.FindByID(s.ctx, t.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
