package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	abmodels "kolabo/internal/abonnement/models"
	"kolabo/internal/partnership/metrics"
	"kolabo/internal/partnership/models"
	"kolabo/pkg/domain"
	dErrors "kolabo/pkg/domain-errors"
	"kolabo/pkg/platform/sentinel"
	"kolabo/pkg/requestcontext"
)

// PageService guards the shared surface of a partnership. Reads answer
// NotFound for non-members so a page id alone never confirms existence;
// updates, where the caller has already proven visibility, answer Forbidden.
type PageService struct {
	pages       PageStore
	abonnements AbonnementStore
	notifier    Notifier
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

type PageOption func(*PageService)

func WithPageNotifier(n Notifier) PageOption {
	return func(s *PageService) { s.notifier = n }
}

func WithPageMetrics(m *metrics.Metrics) PageOption {
	return func(s *PageService) { s.metrics = m }
}

func NewPageService(pages PageStore, abonnements AbonnementStore, logger *slog.Logger, opts ...PageOption) *PageService {
	s := &PageService{pages: pages, abonnements: abonnements, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetByID returns the page when the actor is a member of its abonnement.
// Non-members get NotFound, indistinguishable from a missing page.
func (s *PageService) GetByID(ctx context.Context, id domain.PageID, actor domain.Actor) (*models.PagePartenariat, error) {
	page, ab, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if !page.CanBeAccessedBy(actor, ab) {
		return nil, dErrors.New(dErrors.CodeNotFound, "page not found")
	}
	return page, nil
}

// GetByUserAndSociete resolves through the subscription first, then the
// page. Either miss is NotFound; the two-step order prevents returning an
// unrelated page.
func (s *PageService) GetByUserAndSociete(ctx context.Context, userID domain.UserID, societeID domain.SocieteID, actor domain.Actor) (*models.PagePartenariat, error) {
	ab, err := s.abonnements.FindByUserAndSociete(ctx, userID, societeID)
	if err != nil {
		return nil, mapStoreErr(err, "page not found", "resolve abonnement")
	}
	page, err := s.pages.FindByAbonnement(ctx, ab.ID)
	if err != nil {
		return nil, mapStoreErr(err, "page not found", "load page")
	}
	if !page.CanBeAccessedBy(actor, ab) {
		return nil, dErrors.New(dErrors.CodeNotFound, "page not found")
	}
	return page, nil
}

// ListForActor returns every page whose abonnement the actor is a party of.
func (s *PageService) ListForActor(ctx context.Context, actor domain.Actor) ([]*models.PagePartenariat, error) {
	abs, err := s.abonnements.ListForActor(ctx, actor)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list abonnements")
	}
	ids := make([]domain.AbonnementID, len(abs))
	for i, ab := range abs {
		ids[i] = ab.ID
	}
	pages, err := s.pages.ListByAbonnementIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list pages")
	}
	return pages, nil
}

// Update mutates only the supplied fields. Non-members get Forbidden here:
// the id was obtained through a listing, so existence is already known.
func (s *PageService) Update(ctx context.Context, id domain.PageID, actor domain.Actor, update models.PageUpdate) (*models.PagePartenariat, error) {
	page, ab, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if !page.CanBeAccessedBy(actor, ab) {
		s.metrics.ObservePermissionDenial("page_update")
		return nil, dErrors.New(dErrors.CodeForbidden, "not a member of this partnership")
	}
	page.Apply(update, requestcontext.Now(ctx))
	if err := s.pages.Update(ctx, page); err != nil {
		return nil, mapStoreErr(err, "page not found", "update page")
	}
	return page, nil
}

// CreateForAbonnement creates the page when a subscription is established.
// The unique abonnement_id enforces the one-page invariant; a second call
// for the same subscription is a Conflict.
func (s *PageService) CreateForAbonnement(ctx context.Context, abID domain.AbonnementID, titre string) (*models.PagePartenariat, error) {
	ab, err := s.abonnements.FindByID(ctx, abID)
	if err != nil {
		return nil, mapStoreErr(err, "abonnement not found", "load abonnement")
	}
	page := models.NewPage(ab, titre, requestcontext.Now(ctx))
	if err := s.pages.Create(ctx, page); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a page already exists for this abonnement")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create page")
	}
	s.notifyBothParties(ctx, page, ab.UserSide(), ab.SocieteSide())
	return page, nil
}

// notifyBothParties fans the page-created notice out to both sides
// concurrently. Best effort: failures are logged, the page stands.
func (s *PageService) notifyBothParties(ctx context.Context, page *models.PagePartenariat, user, societe domain.Actor) {
	if s.notifier == nil {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, recipient := range []domain.Actor{user, societe} {
		g.Go(func() error {
			_, err := s.notifier.NotifyPartnershipPageCreated(gctx, recipient, domain.SystemActor, page.ID, page.Titre)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("page creation notification failed", "page_id", page.ID, "error", err)
	}
}

// resolve loads the page and its owning abonnement. A page whose abonnement
// cannot be resolved is unreachable and reported missing.
func (s *PageService) resolve(ctx context.Context, id domain.PageID) (*models.PagePartenariat, *abmodels.Abonnement, error) {
	page, err := s.pages.FindByID(ctx, id)
	if err != nil {
		return nil, nil, mapStoreErr(err, "page not found", "load page")
	}
	ab, err := s.abonnements.FindByID(ctx, page.AbonnementID)
	if err != nil {
		return nil, nil, mapStoreErr(err, "page not found", "resolve abonnement")
	}
	return page, ab, nil
}
