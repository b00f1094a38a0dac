//go:build integration

package transaction_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	abmodels "kolabo/internal/abonnement/models"
	"kolabo/internal/partnership/models"
	pagestore "kolabo/internal/partnership/store/page"
	"kolabo/internal/partnership/store/transaction"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
	"kolabo/pkg/platform/tx"
	"kolabo/pkg/testutil/containers"
)

// =============================================================================
// Transaction Postgres Store (integration)
// =============================================================================
// Justification for integration tests: AggregateValidated is real SQL the
// memory store only mimics, and the context-carried SQL transaction is the
// mechanism that keeps a validated row and stale page stats from being
// visible together. Both only mean something against Postgres.

type TransactionPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *transaction.Postgres
	pages    *pagestore.Postgres

	pageID domain.PageID
}

func TestTransactionPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(TransactionPostgresSuite))
}

func (s *TransactionPostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.postgres.ApplySchema(s.T())
	s.store = transaction.NewPostgres(s.postgres.DB)
	s.pages = pagestore.NewPostgres(s.postgres.DB)
}

func (s *TransactionPostgresSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx,
		"transactions_partenariat", "pages_partenariat", "abonnements")
	s.Require().NoError(err)

	now := time.Now().UTC()
	var abID int64
	err = s.postgres.DB.QueryRowContext(ctx, `
		INSERT INTO abonnements (user_id, societe_id, status, created_at, updated_at)
		VALUES (7, 12, $1, $2, $2) RETURNING id`,
		string(abmodels.StatusActif), now).Scan(&abID)
	s.Require().NoError(err)

	p := models.NewPage(&abmodels.Abonnement{ID: domain.AbonnementID(abID)}, "Page", now)
	s.Require().NoError(s.pages.Create(ctx, p))
	s.pageID = p.ID
}

func (s *TransactionPostgresSuite) create(quantite, prix int64, status models.TransactionStatus, valideeAt *time.Time) *models.TransactionPartenariat {
	now := time.Now().UTC().Truncate(time.Microsecond)
	t := &models.TransactionPartenariat{
		PageID:          s.pageID,
		DateDebut:       now,
		DateFin:         now.Add(24 * time.Hour),
		Produit:         "Cacao",
		Quantite:        decimal.NewFromInt(quantite),
		Unite:           models.DefaultUnite,
		PrixUnitaire:    decimal.NewFromInt(prix),
		Devise:          models.DefaultDevise,
		Status:          status,
		CreeeParSociete: true,
		ValideeParUser:  status == models.StatusValidated,
		ValideeAt:       valideeAt,
		Documents:       []string{"facture.pdf"},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	t.ComputeTotal()
	s.Require().NoError(s.store.Create(context.Background(), t))
	return t
}

func (s *TransactionPostgresSuite) TestRoundTrip() {
	ctx := context.Background()
	created := s.create(10, 500, models.StatusPendingValidation, nil)

	found, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Cacao", found.Produit)
	s.True(decimal.NewFromInt(5000).Equal(found.PrixTotal))
	s.Equal([]string{"facture.pdf"}, found.Documents)
	s.Equal(models.StatusPendingValidation, found.Status)
}

func (s *TransactionPostgresSuite) TestAggregateValidated() {
	ctx := context.Background()

	early := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	late := time.Now().UTC().Truncate(time.Microsecond)
	s.create(10, 500, models.StatusValidated, &early)
	s.create(6, 500, models.StatusValidated, &late)
	s.create(100, 500, models.StatusPendingValidation, nil)
	s.create(100, 500, models.StatusRejected, nil)

	count, total, lastAt, err := s.store.AggregateValidated(ctx, s.pageID)
	s.Require().NoError(err)
	s.Equal(2, count)
	s.True(decimal.NewFromInt(8000).Equal(total))
	s.Require().NotNil(lastAt)
	s.WithinDuration(late, *lastAt, time.Millisecond)
}

func (s *TransactionPostgresSuite) TestAggregateEmptyPage() {
	count, total, lastAt, err := s.store.AggregateValidated(context.Background(), s.pageID)
	s.Require().NoError(err)
	s.Zero(count)
	s.True(total.IsZero())
	s.Nil(lastAt)
}

func (s *TransactionPostgresSuite) TestStatusFilteredListing() {
	ctx := context.Background()
	s.create(10, 500, models.StatusPendingValidation, nil)
	s.create(20, 500, models.StatusPendingValidation, nil)
	now := time.Now().UTC()
	s.create(30, 500, models.StatusValidated, &now)

	list, err := s.store.ListByPagesWithStatus(ctx, []domain.PageID{s.pageID}, models.StatusPendingValidation)
	s.Require().NoError(err)
	s.Len(list, 2)

	count, err := s.store.CountByPagesWithStatus(ctx, []domain.PageID{s.pageID}, models.StatusPendingValidation)
	s.Require().NoError(err)
	s.Equal(2, count)
}

// TestTransactionalStatsUpdate drives the update-then-aggregate flow through
// tx.RunInTx and checks a mid-transaction failure leaves nothing behind.
func (s *TransactionPostgresSuite) TestTransactionalStatsUpdate() {
	ctx := context.Background()
	t := s.create(10, 500, models.StatusPendingValidation, nil)

	now := time.Now().UTC().Truncate(time.Microsecond)
	t.ApplyValidation("conforme", now)

	err := tx.RunInTx(ctx, s.postgres.DB, func(ctx context.Context) error {
		if err := s.store.Update(ctx, t); err != nil {
			return err
		}
		count, total, lastAt, err := s.store.AggregateValidated(ctx, s.pageID)
		if err != nil {
			return err
		}
		return s.pages.UpdateStats(ctx, s.pageID, count, total, lastAt)
	})
	s.Require().NoError(err)

	page, err := s.pages.FindByID(ctx, s.pageID)
	s.Require().NoError(err)
	s.Equal(1, page.TotalTransactions)
	s.True(decimal.NewFromInt(5000).Equal(page.MontantTotal))

	// A failing function must roll every write back.
	t2 := s.create(99, 500, models.StatusPendingValidation, nil)
	t2.ApplyValidation("", now)
	err = tx.RunInTx(ctx, s.postgres.DB, func(ctx context.Context) error {
		if err := s.store.Update(ctx, t2); err != nil {
			return err
		}
		return sentinel.ErrNotFound
	})
	s.Require().Error(err)

	found, err := s.store.FindByID(ctx, t2.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPendingValidation, found.Status)
}

func (s *TransactionPostgresSuite) TestDeleteMisses() {
	s.ErrorIs(s.store.Delete(context.Background(), 999), sentinel.ErrNotFound)
}
