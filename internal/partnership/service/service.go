// Package service orchestrates the partnership models against persistence.
// Rule violations are detected here and surfaced as coded domain errors;
// stores only speak infrastructure sentinels.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	abmodels "kolabo/internal/abonnement/models"
	nmodels "kolabo/internal/notification/models"
	"kolabo/internal/partnership/models"
	"kolabo/pkg/domain"
	dErrors "kolabo/pkg/domain-errors"
	"kolabo/pkg/platform/sentinel"
)

// AbonnementStore resolves the external subscription aggregate. Read-only:
// the partnership core never creates or mutates subscriptions.
type AbonnementStore interface {
	FindByID(ctx context.Context, id domain.AbonnementID) (*abmodels.Abonnement, error)
	FindByUserAndSociete(ctx context.Context, userID domain.UserID, societeID domain.SocieteID) (*abmodels.Abonnement, error)
	ListForActor(ctx context.Context, actor domain.Actor) ([]*abmodels.Abonnement, error)
}

type PageStore interface {
	Create(ctx context.Context, p *models.PagePartenariat) error
	FindByID(ctx context.Context, id domain.PageID) (*models.PagePartenariat, error)
	FindByAbonnement(ctx context.Context, abID domain.AbonnementID) (*models.PagePartenariat, error)
	ListByAbonnementIDs(ctx context.Context, abIDs []domain.AbonnementID) ([]*models.PagePartenariat, error)
	Update(ctx context.Context, p *models.PagePartenariat) error
	UpdateStats(ctx context.Context, id domain.PageID, count int, total decimal.Decimal, lastAt *time.Time) error
}

type InformationStore interface {
	Create(ctx context.Context, i *models.InformationPartenaire) error
	FindByID(ctx context.Context, id domain.InformationID) (*models.InformationPartenaire, error)
	FindByPartner(ctx context.Context, pageID domain.PageID, partenaireID int64, partenaireType domain.ActorKind) (*models.InformationPartenaire, error)
	ListByPage(ctx context.Context, pageID domain.PageID) ([]*models.InformationPartenaire, error)
	Update(ctx context.Context, i *models.InformationPartenaire) error
	Delete(ctx context.Context, id domain.InformationID) error
}

type TransactionStore interface {
	Create(ctx context.Context, t *models.TransactionPartenariat) error
	FindByID(ctx context.Context, id domain.TransactionID) (*models.TransactionPartenariat, error)
	ListByPage(ctx context.Context, pageID domain.PageID) ([]*models.TransactionPartenariat, error)
	ListByPagesWithStatus(ctx context.Context, pageIDs []domain.PageID, status models.TransactionStatus) ([]*models.TransactionPartenariat, error)
	CountByPagesWithStatus(ctx context.Context, pageIDs []domain.PageID, status models.TransactionStatus) (int, error)
	Update(ctx context.Context, t *models.TransactionPartenariat) error
	Delete(ctx context.Context, id domain.TransactionID) error
	AggregateValidated(ctx context.Context, pageID domain.PageID) (int, decimal.Decimal, *time.Time, error)
}

// Notifier is the slice of the dispatch catalog the partnership services
// emit. The dispatcher satisfies it; a (nil, nil) result is a deliberate
// suppression and callers here only log errors, never fail the request.
type Notifier interface {
	NotifyPartnershipPageCreated(ctx context.Context, recipient, actor domain.Actor, pageID domain.PageID, titre string) (*nmodels.Notification, error)
	NotifyPartnerInfoAdded(ctx context.Context, recipient, actor domain.Actor, pageID domain.PageID, nom string) (*nmodels.Notification, error)
	NotifyPartnerInfoUpdated(ctx context.Context, recipient, actor domain.Actor, pageID domain.PageID, nom string) (*nmodels.Notification, error)
	NotifyTransactionPending(ctx context.Context, recipient, actor domain.Actor, transactionID domain.TransactionID, produit string, montant decimal.Decimal, devise string) (*nmodels.Notification, error)
	NotifyTransactionValidated(ctx context.Context, recipient, actor domain.Actor, transactionID domain.TransactionID, produit string, montant decimal.Decimal, devise string) (*nmodels.Notification, error)
	NotifyTransactionRejected(ctx context.Context, recipient, actor domain.Actor, transactionID domain.TransactionID, produit, commentaire string) (*nmodels.Notification, error)
	NotifyTransactionUpdated(ctx context.Context, recipient, actor domain.Actor, transactionID domain.TransactionID, produit string) (*nmodels.Notification, error)
	NotifyTransactionDeleted(ctx context.Context, recipient, actor domain.Actor, produit string) (*nmodels.Notification, error)
}

// mapStoreErr translates an infrastructure sentinel into the coded error the
// caller should see for a missing row.
func mapStoreErr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}
