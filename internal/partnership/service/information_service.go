package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	abmodels "kolabo/internal/abonnement/models"
	"kolabo/internal/partnership/metrics"
	"kolabo/internal/partnership/models"
	"kolabo/pkg/domain"
	dErrors "kolabo/pkg/domain-errors"
	"kolabo/pkg/platform/sentinel"
	"kolabo/pkg/requestcontext"
)

// dateLayout is the wire format for date-only fields.
const dateLayout = "2006-01-02"

// InformationService manages the per-partner profile records. Creation is
// member-scoped; update and delete are ownership-scoped (creator only),
// which is stricter than the record's declared modifiable_par policy.
type InformationService struct {
	informations InformationStore
	pages        PageStore
	abonnements  AbonnementStore
	notifier     Notifier
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

type InformationOption func(*InformationService)

func WithInformationNotifier(n Notifier) InformationOption {
	return func(s *InformationService) { s.notifier = n }
}

func WithInformationMetrics(m *metrics.Metrics) InformationOption {
	return func(s *InformationService) { s.metrics = m }
}

func NewInformationService(informations InformationStore, pages PageStore, abonnements AbonnementStore, logger *slog.Logger, opts ...InformationOption) *InformationService {
	s := &InformationService{
		informations: informations,
		pages:        pages,
		abonnements:  abonnements,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InformationCreate carries the descriptive fields of a new record. The
// subject is the creating actor itself; partner identity and creee_par are
// stamped by the service, never taken from the payload.
type InformationCreate struct {
	Nom                string         `json:"nom"`
	Description        string         `json:"description"`
	Logo               string         `json:"logo"`
	Localite           string         `json:"localite"`
	Adresse            string         `json:"adresse"`
	Telephone          string         `json:"telephone"`
	Email              string         `json:"email"`
	Secteur            string         `json:"secteur"`
	TypeCulture        string         `json:"type_culture"`
	SuperficieHectares string         `json:"superficie_hectares"`
	DateDebutActivite  string         `json:"date_debut_activite"`
	NumeroRegistre     string         `json:"numero_registre"`
	SiteWeb            string         `json:"site_web"`
	ModifiablePar      string         `json:"modifiable_par"`
	VisibleSurPage     *bool          `json:"visible_sur_page"`
	Metadata           map[string]any `json:"metadata"`
}

// Create adds the actor's own information record to a page. At most one
// record per (page, partner) exists; the composite unique key backstops the
// check under concurrent creation.
func (s *InformationService) Create(ctx context.Context, pageID domain.PageID, actor domain.Actor, in InformationCreate) (*models.InformationPartenaire, error) {
	page, ab, err := s.resolvePage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if !ab.HasMember(actor) {
		s.metrics.ObservePermissionDenial("information_create")
		return nil, dErrors.New(dErrors.CodeForbidden, "not a member of this partnership")
	}
	if in.Nom == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "nom is required")
	}

	policy := models.ModifiablePar(in.ModifiablePar)
	if in.ModifiablePar == "" {
		policy = models.ModifiableParLesDeux
	}
	if !policy.Valid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "invalid modifiable_par %q", in.ModifiablePar)
	}
	debut, err := parseOptionalDate(in.DateDebutActivite)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	visible := true
	if in.VisibleSurPage != nil {
		visible = *in.VisibleSurPage
	}
	info := &models.InformationPartenaire{
		PageID:             page.ID,
		PartenaireID:       actor.ID,
		PartenaireType:     actor.Kind,
		CreeePar:           actor.Kind,
		Nom:                in.Nom,
		Description:        in.Description,
		Logo:               in.Logo,
		Localite:           in.Localite,
		Adresse:            in.Adresse,
		Telephone:          in.Telephone,
		Email:              in.Email,
		Secteur:            in.Secteur,
		TypeCulture:        in.TypeCulture,
		SuperficieHectares: in.SuperficieHectares,
		DateDebutActivite:  debut,
		NumeroRegistre:     in.NumeroRegistre,
		SiteWeb:            in.SiteWeb,
		ModifiablePar:      policy,
		VisibleSurPage:     visible,
		Metadata:           in.Metadata,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.informations.Create(ctx, info); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "information already exists for this partner")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create information")
	}

	s.notifyOtherParty(ctx, ab, actor, page.ID, info.Nom, false)
	return info, nil
}

// ListForPage returns every information record of the page; members only.
func (s *InformationService) ListForPage(ctx context.Context, pageID domain.PageID, actor domain.Actor) ([]*models.InformationPartenaire, error) {
	_, ab, err := s.resolvePage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if !ab.HasMember(actor) {
		s.metrics.ObservePermissionDenial("information_list")
		return nil, dErrors.New(dErrors.CodeForbidden, "not a member of this partnership")
	}
	list, err := s.informations.ListByPage(ctx, pageID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list informations")
	}
	return list, nil
}

// GetByID returns the record when the actor may view it. Denied views are
// NotFound so a foreign id never confirms existence.
func (s *InformationService) GetByID(ctx context.Context, id domain.InformationID, actor domain.Actor) (*models.InformationPartenaire, error) {
	info, ab, err := s.resolveInformation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !info.CanBeViewedBy(actor, ab) {
		return nil, dErrors.New(dErrors.CodeNotFound, "information not found")
	}
	return info, nil
}

// Update merges only the supplied fields. The ownership rule applies, not
// the modifiable_par policy: only the creator edits, whatever the policy
// declares.
func (s *InformationService) Update(ctx context.Context, id domain.InformationID, actor domain.Actor, update models.InformationUpdate) (*models.InformationPartenaire, error) {
	info, ab, err := s.resolveInformation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !info.CanBeModifiedByOwner(actor, ab) {
		s.metrics.ObservePermissionDenial("information_update")
		return nil, dErrors.New(dErrors.CodeForbidden, "only the creator may modify this information")
	}
	if err := s.apply(info, update, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.informations.Update(ctx, info); err != nil {
		return nil, mapStoreErr(err, "information not found", "update information")
	}
	s.notifyOtherParty(ctx, ab, actor, info.PageID, info.Nom, true)
	return info, nil
}

// Delete hard-deletes the record; creator only.
func (s *InformationService) Delete(ctx context.Context, id domain.InformationID, actor domain.Actor) error {
	info, ab, err := s.resolveInformation(ctx, id)
	if err != nil {
		return err
	}
	if !info.CanBeDeletedBy(actor, ab) {
		s.metrics.ObservePermissionDenial("information_delete")
		return dErrors.New(dErrors.CodeForbidden, "only the creator may delete this information")
	}
	if err := s.informations.Delete(ctx, info.ID); err != nil {
		return mapStoreErr(err, "information not found", "delete information")
	}
	return nil
}

// apply merges the supplied fields, re-parsing the date and validating the
// policy change.
func (s *InformationService) apply(info *models.InformationPartenaire, u models.InformationUpdate, now time.Time) error {
	if u.Nom != nil {
		info.Nom = *u.Nom
	}
	if u.Description != nil {
		info.Description = *u.Description
	}
	if u.Logo != nil {
		info.Logo = *u.Logo
	}
	if u.Localite != nil {
		info.Localite = *u.Localite
	}
	if u.Adresse != nil {
		info.Adresse = *u.Adresse
	}
	if u.Telephone != nil {
		info.Telephone = *u.Telephone
	}
	if u.Email != nil {
		info.Email = *u.Email
	}
	if u.Secteur != nil {
		info.Secteur = *u.Secteur
	}
	if u.TypeCulture != nil {
		info.TypeCulture = *u.TypeCulture
	}
	if u.SuperficieHectares != nil {
		info.SuperficieHectares = *u.SuperficieHectares
	}
	if u.DateDebutActivite != nil {
		debut, err := parseOptionalDate(*u.DateDebutActivite)
		if err != nil {
			return err
		}
		info.DateDebutActivite = debut
	}
	if u.NumeroRegistre != nil {
		info.NumeroRegistre = *u.NumeroRegistre
	}
	if u.SiteWeb != nil {
		info.SiteWeb = *u.SiteWeb
	}
	if u.ModifiablePar != nil {
		policy := models.ModifiablePar(*u.ModifiablePar)
		if !policy.Valid() {
			return dErrors.Newf(dErrors.CodeValidation, "invalid modifiable_par %q", *u.ModifiablePar)
		}
		info.ModifiablePar = policy
	}
	if u.VisibleSurPage != nil {
		info.VisibleSurPage = *u.VisibleSurPage
	}
	info.UpdatedAt = now
	return nil
}

func (s *InformationService) notifyOtherParty(ctx context.Context, ab *abmodels.Abonnement, actor domain.Actor, pageID domain.PageID, nom string, updated bool) {
	if s.notifier == nil {
		return
	}
	other, ok := ab.OtherParty(actor)
	if !ok {
		return
	}
	var err error
	if updated {
		_, err = s.notifier.NotifyPartnerInfoUpdated(ctx, other, actor, pageID, nom)
	} else {
		_, err = s.notifier.NotifyPartnerInfoAdded(ctx, other, actor, pageID, nom)
	}
	if err != nil {
		s.logger.Warn("partner information notification failed", "page_id", pageID, "error", err)
	}
}

func (s *InformationService) resolvePage(ctx context.Context, pageID domain.PageID) (*models.PagePartenariat, *abmodels.Abonnement, error) {
	page, err := s.pages.FindByID(ctx, pageID)
	if err != nil {
		return nil, nil, mapStoreErr(err, "page not found", "load page")
	}
	ab, err := s.abonnements.FindByID(ctx, page.AbonnementID)
	if err != nil {
		return nil, nil, mapStoreErr(err, "page not found", "resolve abonnement")
	}
	return page, ab, nil
}

func (s *InformationService) resolveInformation(ctx context.Context, id domain.InformationID) (*models.InformationPartenaire, *abmodels.Abonnement, error) {
	info, err := s.informations.FindByID(ctx, id)
	if err != nil {
		return nil, nil, mapStoreErr(err, "information not found", "load information")
	}
	_, ab, err := s.resolvePage(ctx, info.PageID)
	if err != nil {
		return nil, nil, err
	}
	return info, ab, nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeValidation, "invalid date %q, expected YYYY-MM-DD", value)
	}
	return &t, nil
}
