package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	abmodels "kolabo/internal/abonnement/models"
	abstore "kolabo/internal/abonnement/store"
	nmodels "kolabo/internal/notification/models"
	nservice "kolabo/internal/notification/service"
	notifstore "kolabo/internal/notification/store/notification"
	prefstore "kolabo/internal/notification/store/preference"
	"kolabo/internal/partnership/models"
	informationstore "kolabo/internal/partnership/store/information"
	pagestore "kolabo/internal/partnership/store/page"
	"kolabo/pkg/domain"
	dErrors "kolabo/pkg/domain-errors"
	"kolabo/pkg/requestcontext"
)

// =============================================================================
// Information Service Test Suite
// =============================================================================
// Justification for unit tests: the ownership rule is stricter than the
// record's declared modifiable_par policy, and that divergence is easy to
// regress by "fixing" the guard to the policy predicate.

type InformationServiceSuite struct {
	suite.Suite
	abonnements   *abstore.InMemory
	pages         *pagestore.InMemory
	informations  *informationstore.InMemory
	notifications *notifstore.InMemory
	service       *InformationService
	ctx           context.Context
	now           time.Time

	pageID  domain.PageID
	user    domain.Actor
	societe domain.Actor
}

func TestInformationServiceSuite(t *testing.T) {
	suite.Run(t, new(InformationServiceSuite))
}

func (s *InformationServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.abonnements = abstore.NewInMemory()
	s.pages = pagestore.NewInMemory()
	s.informations = informationstore.NewInMemory()
	s.notifications = notifstore.NewInMemory()

	dispatcher := nservice.NewDispatcher(s.notifications, prefstore.NewInMemory(), logger)
	s.service = NewInformationService(s.informations, s.pages, s.abonnements, logger,
		WithInformationNotifier(dispatcher))

	s.now = time.Date(2026, 5, 2, 11, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.user = domain.UserActor(7)
	s.societe = domain.SocieteActor(12)
	ab := &abmodels.Abonnement{
		ID:        41,
		UserID:    7,
		SocieteID: 12,
		Status:    abmodels.StatusActif,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.abonnements.Put(ab)

	pageService := NewPageService(s.pages, s.abonnements, logger)
	page, err := pageService.CreateForAbonnement(s.ctx, ab.ID, "Partenariat")
	s.Require().NoError(err)
	s.pageID = page.ID
}

func (s *InformationServiceSuite) create(actor domain.Actor, in InformationCreate) *models.InformationPartenaire {
	info, err := s.service.Create(s.ctx, s.pageID, actor, in)
	s.Require().NoError(err)
	return info
}

// =============================================================================
// Creation
// =============================================================================

func (s *InformationServiceSuite) TestCreate() {
	s.Run("stamps the subject from the actor", func() {
		info := s.create(s.societe, InformationCreate{
			Nom:               "AgroPlus SARL",
			Secteur:           "Agro-industrie",
			DateDebutActivite: "2019-03-15",
		})
		s.Equal(s.societe.ID, info.PartenaireID)
		s.Equal(domain.KindSociete, info.PartenaireType)
		s.Equal(domain.KindSociete, info.CreeePar)
		s.Equal(models.ModifiableParLesDeux, info.ModifiablePar)
		s.True(info.VisibleSurPage)
		s.Require().NotNil(info.DateDebutActivite)
		s.Equal(time.Date(2019, 3, 15, 0, 0, 0, 0, time.UTC), *info.DateDebutActivite)
	})

	s.Run("notifies the other party", func() {
		list, err := s.notifications.ListByRecipient(s.ctx, s.user)
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(nmodels.TypeInformationPartenaireAjoutee, list[0].Type)
	})

	s.Run("second record for the same partner conflicts", func() {
		_, err := s.service.Create(s.ctx, s.pageID, s.societe, InformationCreate{Nom: "Doublon"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("each party gets its own record", func() {
		info := s.create(s.user, InformationCreate{Nom: "Jean Kouassi"})
		s.Equal(domain.KindUser, info.CreeePar)
	})

	s.Run("nom is required", func() {
		_, err := s.service.Create(s.ctx, s.pageID, s.user, InformationCreate{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("bad date is rejected", func() {
		_, err := s.service.Create(s.ctx, s.pageID, s.societe, InformationCreate{
			Nom:               "X",
			DateDebutActivite: "15/03/2019",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("bad policy is rejected", func() {
		_, err := s.service.Create(s.ctx, s.pageID, s.societe, InformationCreate{
			Nom:           "X",
			ModifiablePar: "PERSONNE",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("outsider is Forbidden", func() {
		_, err := s.service.Create(s.ctx, s.pageID, domain.UserActor(99), InformationCreate{Nom: "X"})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

// =============================================================================
// Reads
// =============================================================================

func (s *InformationServiceSuite) TestReads() {
	info := s.create(s.societe, InformationCreate{Nom: "AgroPlus SARL"})
	s.create(s.user, InformationCreate{Nom: "Jean Kouassi"})

	s.Run("either party reads any record", func() {
		got, err := s.service.GetByID(s.ctx, info.ID, s.user)
		s.Require().NoError(err)
		s.Equal("AgroPlus SARL", got.Nom)
	})

	s.Run("outsider read is NotFound", func() {
		_, err := s.service.GetByID(s.ctx, info.ID, domain.SocieteActor(99))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("members list everything on the page", func() {
		list, err := s.service.ListForPage(s.ctx, s.pageID, s.user)
		s.Require().NoError(err)
		s.Len(list, 2)
	})

	s.Run("outsider list is Forbidden", func() {
		_, err := s.service.ListForPage(s.ctx, s.pageID, domain.UserActor(99))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

// =============================================================================
// Ownership vs policy
// =============================================================================

func (s *InformationServiceSuite) TestUpdateIsOwnerScoped() {
	// LES_DEUX declares both parties may edit; the service still only lets
	// the creator through.
	info := s.create(s.societe, InformationCreate{
		Nom:           "AgroPlus SARL",
		ModifiablePar: string(models.ModifiableParLesDeux),
	})
	ab, err := s.abonnements.FindByID(s.ctx, 41)
	s.Require().NoError(err)
	s.True(info.CanBeModifiedBy(s.user, ab))

	nom := "AgroPlus"
	_, err = s.service.Update(s.ctx, info.ID, s.user, models.InformationUpdate{Nom: &nom})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	updated, err := s.service.Update(s.ctx, info.ID, s.societe, models.InformationUpdate{Nom: &nom})
	s.Require().NoError(err)
	s.Equal("AgroPlus", updated.Nom)

	list, err := s.notifications.ListByRecipient(s.ctx, s.user)
	s.Require().NoError(err)
	types := make([]nmodels.Type, len(list))
	for i, n := range list {
		types[i] = n.Type
	}
	s.Contains(types, nmodels.TypeInformationPartenaireModifiee)
}

func (s *InformationServiceSuite) TestUpdate() {
	info := s.create(s.societe, InformationCreate{Nom: "AgroPlus SARL", DateDebutActivite: "2019-03-15"})

	s.Run("merges and re-parses the date", func() {
		date := "2020-01-01"
		updated, err := s.service.Update(s.ctx, info.ID, s.societe, models.InformationUpdate{DateDebutActivite: &date})
		s.Require().NoError(err)
		s.Equal("AgroPlus SARL", updated.Nom)
		s.Require().NotNil(updated.DateDebutActivite)
		s.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), *updated.DateDebutActivite)
	})

	s.Run("empty date clears the field", func() {
		date := ""
		updated, err := s.service.Update(s.ctx, info.ID, s.societe, models.InformationUpdate{DateDebutActivite: &date})
		s.Require().NoError(err)
		s.Nil(updated.DateDebutActivite)
	})

	s.Run("bad policy change is rejected", func() {
		policy := "PERSONNE"
		_, err := s.service.Update(s.ctx, info.ID, s.societe, models.InformationUpdate{ModifiablePar: &policy})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *InformationServiceSuite) TestDelete() {
	info := s.create(s.societe, InformationCreate{Nom: "AgroPlus SARL"})

	s.Run("non-creator member is Forbidden", func() {
		err := s.service.Delete(s.ctx, info.ID, s.user)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("creator deletes", func() {
		s.Require().NoError(s.service.Delete(s.ctx, info.ID, s.societe))
		_, err := s.service.GetByID(s.ctx, info.ID, s.societe)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
