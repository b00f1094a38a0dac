package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	abmodels "kolabo/internal/abonnement/models"
	abstore "kolabo/internal/abonnement/store"
	nmodels "kolabo/internal/notification/models"
	nservice "kolabo/internal/notification/service"
	notifstore "kolabo/internal/notification/store/notification"
	prefstore "kolabo/internal/notification/store/preference"
	"kolabo/internal/partnership/models"
	pagestore "kolabo/internal/partnership/store/page"
	transactionstore "kolabo/internal/partnership/store/transaction"
	"kolabo/pkg/domain"
	dErrors "kolabo/pkg/domain-errors"
	"kolabo/pkg/requestcontext"
)

// =============================================================================
// Transaction Service Test Suite
// =============================================================================
// Justification for unit tests: the validation workflow spans three stores
// and the dispatcher; permission outcomes (Forbidden vs NotFound) and the
// recompute-from-source stats rule are contracts the HTTP layer relies on.

type TransactionServiceSuite struct {
	suite.Suite
	abonnements   *abstore.InMemory
	pages         *pagestore.InMemory
	transactions  *transactionstore.InMemory
	notifications *notifstore.InMemory
	pageService   *PageService
	service       *TransactionService
	ctx           context.Context
	now           time.Time

	ab      *abmodels.Abonnement
	page    *models.PagePartenariat
	user    domain.Actor
	societe domain.Actor
}

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceSuite))
}

func (s *TransactionServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.abonnements = abstore.NewInMemory()
	s.pages = pagestore.NewInMemory()
	s.transactions = transactionstore.NewInMemory()
	s.notifications = notifstore.NewInMemory()

	dispatcher := nservice.NewDispatcher(s.notifications, prefstore.NewInMemory(), logger)
	s.pageService = NewPageService(s.pages, s.abonnements, logger, WithPageNotifier(dispatcher))
	s.service = NewTransactionService(s.transactions, s.pages, s.abonnements, logger,
		WithTransactionNotifier(dispatcher))

	s.now = time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.user = domain.UserActor(7)
	s.societe = domain.SocieteActor(12)
	s.ab = &abmodels.Abonnement{
		ID:        41,
		UserID:    7,
		SocieteID: 12,
		Status:    abmodels.StatusActif,
		Plan:      "standard",
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.abonnements.Put(s.ab)

	page, err := s.pageService.CreateForAbonnement(s.ctx, s.ab.ID, "Partenariat AgroPlus")
	s.Require().NoError(err)
	s.page = page
}

func (s *TransactionServiceSuite) create(quantite, prix int64) *models.TransactionPartenariat {
	t, err := s.service.Create(s.ctx, s.page.ID, s.societe, TransactionCreate{
		DateDebut:    s.now,
		DateFin:      s.now.AddDate(0, 1, 0),
		Produit:      "Cacao",
		Quantite:     decimal.NewFromInt(quantite),
		PrixUnitaire: decimal.NewFromInt(prix),
	})
	s.Require().NoError(err)
	return t
}

func (s *TransactionServiceSuite) notificationTypes(recipient domain.Actor) []nmodels.Type {
	list, err := s.notifications.ListByRecipient(s.ctx, recipient)
	s.Require().NoError(err)
	types := make([]nmodels.Type, len(list))
	for i, n := range list {
		types[i] = n.Type
	}
	return types
}

// =============================================================================
// Creation
// =============================================================================

func (s *TransactionServiceSuite) TestCreate() {
	s.Run("computes the total and defaults unit and currency", func() {
		t := s.create(10, 500)
		s.True(decimal.NewFromInt(5000).Equal(t.PrixTotal))
		s.Equal(models.StatusPendingValidation, t.Status)
		s.True(t.CreeeParSociete)
		s.Equal(models.DefaultUnite, t.Unite)
		s.Equal(models.DefaultDevise, t.Devise)
	})

	s.Run("notifies the user side", func() {
		s.Contains(s.notificationTypes(s.user), nmodels.TypeTransactionEnAttente)
	})

	s.Run("user kind cannot create", func() {
		_, err := s.service.Create(s.ctx, s.page.ID, s.user, TransactionCreate{
			Produit:      "Cacao",
			Quantite:     decimal.NewFromInt(1),
			PrixUnitaire: decimal.NewFromInt(1),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("foreign societe cannot create", func() {
		_, err := s.service.Create(s.ctx, s.page.ID, domain.SocieteActor(99), TransactionCreate{
			Produit:      "Cacao",
			Quantite:     decimal.NewFromInt(1),
			PrixUnitaire: decimal.NewFromInt(1),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("missing page is NotFound", func() {
		_, err := s.service.Create(s.ctx, domain.PageID(999), s.societe, TransactionCreate{
			Produit:      "Cacao",
			Quantite:     decimal.NewFromInt(1),
			PrixUnitaire: decimal.NewFromInt(1),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Validation workflow and page stats
// =============================================================================

func (s *TransactionServiceSuite) TestValidateRecomputesPageStats() {
	t := s.create(10, 500)

	validated, err := s.service.Validate(s.ctx, t.ID, 7, "ok")
	s.Require().NoError(err)
	s.Equal(models.StatusValidated, validated.Status)
	s.True(validated.ValideeParUser)
	s.Equal("ok", validated.CommentaireValidation)
	s.Require().NotNil(validated.ValideeAt)
	s.Equal(s.now, *validated.ValideeAt)

	page, err := s.pages.FindByID(s.ctx, s.page.ID)
	s.Require().NoError(err)
	s.Equal(1, page.TotalTransactions)
	s.True(decimal.NewFromInt(5000).Equal(page.MontantTotal))
	s.Require().NotNil(page.DerniereTransaction)
	s.Equal(s.now, *page.DerniereTransaction)

	s.Contains(s.notificationTypes(s.societe), nmodels.TypeTransactionValidee)
}

func (s *TransactionServiceSuite) TestValidate() {
	s.Run("wrong user cannot validate", func() {
		t := s.create(1, 100)
		_, err := s.service.Validate(s.ctx, t.ID, 99, "")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("validation is one-shot", func() {
		t := s.create(1, 100)
		_, err := s.service.Validate(s.ctx, t.ID, 7, "ok")
		s.Require().NoError(err)
		_, err = s.service.Validate(s.ctx, t.ID, 7, "again")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("stats stay a recount of the validated set", func() {
		first := s.create(2, 100)
		second := s.create(3, 100)
		_, err := s.service.Validate(s.ctx, first.ID, 7, "")
		s.Require().NoError(err)
		_, err = s.service.Validate(s.ctx, second.ID, 7, "")
		s.Require().NoError(err)

		page, err := s.pages.FindByID(s.ctx, s.page.ID)
		s.Require().NoError(err)
		count, total, _, err := s.transactions.AggregateValidated(s.ctx, s.page.ID)
		s.Require().NoError(err)
		s.Equal(count, page.TotalTransactions)
		s.True(total.Equal(page.MontantTotal))
	})
}

func (s *TransactionServiceSuite) TestReject() {
	s.Run("requires a comment", func() {
		t := s.create(1, 100)
		_, err := s.service.Reject(s.ctx, t.ID, 7, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("same guard as validation, no stats effect", func() {
		t := s.create(1, 100)
		rejected, err := s.service.Reject(s.ctx, t.ID, 7, "montant incorrect")
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, rejected.Status)
		s.False(rejected.ValideeParUser)

		page, err := s.pages.FindByID(s.ctx, s.page.ID)
		s.Require().NoError(err)
		s.Zero(page.TotalTransactions)

		s.Contains(s.notificationTypes(s.societe), nmodels.TypeTransactionRejetee)
	})

	s.Run("societe cannot reject", func() {
		t := s.create(1, 100)
		_, err := s.service.Reject(s.ctx, t.ID, 12, "non")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

// =============================================================================
// Edits and deletion around validation
// =============================================================================

func (s *TransactionServiceSuite) TestUpdate() {
	s.Run("user side never modifies, even pre-validation", func() {
		t := s.create(10, 500)
		notes := "tentative"
		_, err := s.service.Update(s.ctx, t.ID, s.user, models.TransactionUpdate{Notes: &notes})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("factor change recomputes the total", func() {
		t := s.create(10, 500)
		q := decimal.NewFromInt(20)
		updated, err := s.service.Update(s.ctx, t.ID, s.societe, models.TransactionUpdate{Quantite: &q})
		s.Require().NoError(err)
		s.True(decimal.NewFromInt(10000).Equal(updated.PrixTotal))
		s.NotNil(updated.ModifieeAt)
	})

	s.Run("validated transaction is immutable to the societe", func() {
		t := s.create(10, 500)
		_, err := s.service.Validate(s.ctx, t.ID, 7, "ok")
		s.Require().NoError(err)

		notes := "trop tard"
		_, err = s.service.Update(s.ctx, t.ID, s.societe, models.TransactionUpdate{Notes: &notes})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		err = s.service.Delete(s.ctx, t.ID, s.societe)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("pre-validation delete works and notifies", func() {
		t := s.create(1, 100)
		s.Require().NoError(s.service.Delete(s.ctx, t.ID, s.societe))
		s.Contains(s.notificationTypes(s.user), nmodels.TypeTransactionSupprimee)
	})
}

// =============================================================================
// Visibility
// =============================================================================

func (s *TransactionServiceSuite) TestVisibility() {
	pending := s.create(1, 100)
	resolved := s.create(2, 100)
	_, err := s.service.Validate(s.ctx, resolved.ID, 7, "")
	s.Require().NoError(err)

	s.Run("societe lists everything", func() {
		list, err := s.service.ListForPage(s.ctx, s.page.ID, s.societe)
		s.Require().NoError(err)
		s.Len(list, 2)
	})

	s.Run("user lists only pending", func() {
		list, err := s.service.ListForPage(s.ctx, s.page.ID, s.user)
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(pending.ID, list[0].ID)
	})

	s.Run("resolved transaction reads as missing for the user", func() {
		_, err := s.service.GetByID(s.ctx, resolved.ID, s.user)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		got, err := s.service.GetByID(s.ctx, resolved.ID, s.societe)
		s.NoError(err)
		s.Equal(resolved.ID, got.ID)
	})

	s.Run("outsider cannot list", func() {
		_, err := s.service.ListForPage(s.ctx, s.page.ID, domain.UserActor(99))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *TransactionServiceSuite) TestPendingForUser() {
	s.create(1, 100)
	s.create(2, 100)
	resolved := s.create(3, 100)
	_, err := s.service.Validate(s.ctx, resolved.ID, 7, "")
	s.Require().NoError(err)

	list, err := s.service.ListPendingForUser(s.ctx, 7)
	s.Require().NoError(err)
	s.Len(list, 2)

	count, err := s.service.CountPendingForUser(s.ctx, 7)
	s.NoError(err)
	s.Equal(2, count)

	count, err = s.service.CountPendingForUser(s.ctx, 99)
	s.NoError(err)
	s.Zero(count)
}
