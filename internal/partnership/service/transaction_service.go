package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	abmodels "kolabo/internal/abonnement/models"
	"kolabo/internal/partnership/metrics"
	"kolabo/internal/partnership/models"
	"kolabo/pkg/domain"
	dErrors "kolabo/pkg/domain-errors"
	pstrings "kolabo/pkg/platform/strings"
	"kolabo/pkg/platform/tx"
	"kolabo/pkg/requestcontext"
)

// TransactionService runs the asymmetric billing workflow: the societe side
// authors and edits, the user side validates or rejects. Validation commits
// together with the page-stats recomputation so a validated transaction and
// stale aggregates are never visible at once.
type TransactionService struct {
	transactions TransactionStore
	pages        PageStore
	abonnements  AbonnementStore
	db           tx.Runner
	notifier     Notifier
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

type TransactionOption func(*TransactionService)

// WithTxRunner enables SQL transactions around validation. Without it (the
// memory stores) the flow runs unwrapped.
func WithTxRunner(db tx.Runner) TransactionOption {
	return func(s *TransactionService) { s.db = db }
}

func WithTransactionNotifier(n Notifier) TransactionOption {
	return func(s *TransactionService) { s.notifier = n }
}

func WithTransactionMetrics(m *metrics.Metrics) TransactionOption {
	return func(s *TransactionService) { s.metrics = m }
}

func NewTransactionService(transactions TransactionStore, pages PageStore, abonnements AbonnementStore, logger *slog.Logger, opts ...TransactionOption) *TransactionService {
	s := &TransactionService{
		transactions: transactions,
		pages:        pages,
		abonnements:  abonnements,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TransactionCreate carries the line-item fields of a new transaction.
type TransactionCreate struct {
	DateDebut    time.Time       `json:"date_debut"`
	DateFin      time.Time       `json:"date_fin"`
	Periode      string          `json:"periode"`
	Produit      string          `json:"produit"`
	Categorie    string          `json:"categorie"`
	Quantite     decimal.Decimal `json:"quantite"`
	Unite        string          `json:"unite"`
	PrixUnitaire decimal.Decimal `json:"prix_unitaire"`
	Devise       string          `json:"devise"`
	Documents    []string        `json:"documents"`
	Notes        string          `json:"notes"`
	Metadata     map[string]any  `json:"metadata"`
}

// Create authors a transaction on the page. Societe side only; the total is
// computed from the factors, never taken from the caller.
func (s *TransactionService) Create(ctx context.Context, pageID domain.PageID, actor domain.Actor, in TransactionCreate) (*models.TransactionPartenariat, error) {
	if !models.TransactionCanBeCreatedBy(actor) {
		s.metrics.ObservePermissionDenial("transaction_create")
		return nil, dErrors.New(dErrors.CodeForbidden, "only organizations create transactions")
	}
	page, ab, err := s.resolvePage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if !ab.HasMember(actor) {
		s.metrics.ObservePermissionDenial("transaction_create")
		return nil, dErrors.New(dErrors.CodeForbidden, "not the organization of this partnership")
	}
	if in.Produit == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "produit is required")
	}
	if in.Quantite.IsNegative() || in.PrixUnitaire.IsNegative() {
		return nil, dErrors.New(dErrors.CodeValidation, "quantite and prix_unitaire must not be negative")
	}

	now := requestcontext.Now(ctx)
	t := &models.TransactionPartenariat{
		PageID:          page.ID,
		DateDebut:       in.DateDebut,
		DateFin:         in.DateFin,
		Periode:         in.Periode,
		Produit:         in.Produit,
		Categorie:       in.Categorie,
		Quantite:        in.Quantite,
		Unite:           in.Unite,
		PrixUnitaire:    in.PrixUnitaire,
		Devise:          in.Devise,
		Status:          models.StatusPendingValidation,
		CreeeParSociete: true,
		Documents:       pstrings.DedupeAndTrim(in.Documents),
		Notes:           in.Notes,
		Metadata:        in.Metadata,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if t.Unite == "" {
		t.Unite = models.DefaultUnite
	}
	if t.Devise == "" {
		t.Devise = models.DefaultDevise
	}
	t.ComputeTotal()

	if err := s.transactions.Create(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create transaction")
	}
	s.metrics.ObserveTransactionCreated()

	if s.notifier != nil {
		if _, err := s.notifier.NotifyTransactionPending(ctx, ab.UserSide(), actor, t.ID, t.Produit, t.PrixTotal, t.Devise); err != nil {
			s.logger.Warn("pending transaction notification failed", "transaction_id", t.ID, "error", err)
		}
	}
	return t, nil
}

// ListForPage returns the page's transactions filtered by the viewer's
// side: the societe sees everything, the user only what is still pending.
func (s *TransactionService) ListForPage(ctx context.Context, pageID domain.PageID, actor domain.Actor) ([]*models.TransactionPartenariat, error) {
	_, ab, err := s.resolvePage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if !ab.HasMember(actor) {
		s.metrics.ObservePermissionDenial("transaction_list")
		return nil, dErrors.New(dErrors.CodeForbidden, "not a member of this partnership")
	}
	all, err := s.transactions.ListByPage(ctx, pageID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list transactions")
	}
	visible := all[:0]
	for _, t := range all {
		if t.CanBeViewedBy(actor, ab) {
			visible = append(visible, t)
		}
	}
	return visible, nil
}

// ListPendingForUser returns every transaction awaiting the user's
// validation, across all of their partnerships, newest first.
func (s *TransactionService) ListPendingForUser(ctx context.Context, userID domain.UserID) ([]*models.TransactionPartenariat, error) {
	pageIDs, err := s.pageIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	list, err := s.transactions.ListByPagesWithStatus(ctx, pageIDs, models.StatusPendingValidation)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list pending transactions")
	}
	return list, nil
}

// CountPendingForUser counts the transactions awaiting the user's validation.
func (s *TransactionService) CountPendingForUser(ctx context.Context, userID domain.UserID) (int, error) {
	pageIDs, err := s.pageIDsForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	count, err := s.transactions.CountByPagesWithStatus(ctx, pageIDs, models.StatusPendingValidation)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count pending transactions")
	}
	return count, nil
}

// GetByID returns the transaction when the actor may view it; a resolved
// transaction is invisible to the user side and reads as missing.
func (s *TransactionService) GetByID(ctx context.Context, id domain.TransactionID, actor domain.Actor) (*models.TransactionPartenariat, error) {
	t, ab, err := s.resolveTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.CanBeViewedBy(actor, ab) {
		return nil, dErrors.New(dErrors.CodeNotFound, "transaction not found")
	}
	return t, nil
}

// Update edits an unvalidated transaction; societe side only. The total is
// recomputed whenever a factor changes.
func (s *TransactionService) Update(ctx context.Context, id domain.TransactionID, actor domain.Actor, update models.TransactionUpdate) (*models.TransactionPartenariat, error) {
	t, ab, err := s.resolveTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.CanBeModifiedBy(actor, ab) {
		s.metrics.ObservePermissionDenial("transaction_update")
		return nil, dErrors.New(dErrors.CodeForbidden, "transaction cannot be modified")
	}
	update.Documents = pstrings.DedupeAndTrim(update.Documents)
	t.Apply(update, requestcontext.Now(ctx))
	if err := s.transactions.Update(ctx, t); err != nil {
		return nil, mapStoreErr(err, "transaction not found", "update transaction")
	}
	if s.notifier != nil {
		if _, err := s.notifier.NotifyTransactionUpdated(ctx, ab.UserSide(), actor, t.ID, t.Produit); err != nil {
			s.logger.Warn("transaction update notification failed", "transaction_id", t.ID, "error", err)
		}
	}
	return t, nil
}

// Validate performs the user side's one-shot validation, then recounts and
// resums the page's VALIDATED set from source. Both writes share one SQL
// transaction when a runner is configured.
func (s *TransactionService) Validate(ctx context.Context, id domain.TransactionID, userID domain.UserID, comment string) (*models.TransactionPartenariat, error) {
	t, ab, err := s.resolveTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.CanBeValidatedBy(userID, ab) {
		s.metrics.ObservePermissionDenial("transaction_validate")
		return nil, dErrors.New(dErrors.CodeForbidden, "transaction cannot be validated")
	}

	now := requestcontext.Now(ctx)
	t.ApplyValidation(comment, now)
	if err := s.runInTx(ctx, func(ctx context.Context) error {
		if err := s.transactions.Update(ctx, t); err != nil {
			return mapStoreErr(err, "transaction not found", "update transaction")
		}
		return s.refreshPageStats(ctx, t.PageID)
	}); err != nil {
		return nil, err
	}
	s.metrics.ObserveTransactionValidated()

	if s.notifier != nil {
		if _, err := s.notifier.NotifyTransactionValidated(ctx, ab.SocieteSide(), domain.UserActor(userID), t.ID, t.Produit, t.PrixTotal, t.Devise); err != nil {
			s.logger.Warn("transaction validation notification failed", "transaction_id", t.ID, "error", err)
		}
	}
	return t, nil
}

// Reject is the validator's other exit from pending: same guard as
// Validate, a required comment, and no effect on page stats.
func (s *TransactionService) Reject(ctx context.Context, id domain.TransactionID, userID domain.UserID, comment string) (*models.TransactionPartenariat, error) {
	if comment == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "a rejection comment is required")
	}
	t, ab, err := s.resolveTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.CanBeValidatedBy(userID, ab) {
		s.metrics.ObservePermissionDenial("transaction_reject")
		return nil, dErrors.New(dErrors.CodeForbidden, "transaction cannot be rejected")
	}
	t.ApplyRejection(comment, requestcontext.Now(ctx))
	if err := s.transactions.Update(ctx, t); err != nil {
		return nil, mapStoreErr(err, "transaction not found", "update transaction")
	}
	s.metrics.ObserveTransactionRejected()

	if s.notifier != nil {
		if _, err := s.notifier.NotifyTransactionRejected(ctx, ab.SocieteSide(), domain.UserActor(userID), t.ID, t.Produit, comment); err != nil {
			s.logger.Warn("transaction rejection notification failed", "transaction_id", t.ID, "error", err)
		}
	}
	return t, nil
}

// Delete withdraws an unvalidated transaction; societe side only.
func (s *TransactionService) Delete(ctx context.Context, id domain.TransactionID, actor domain.Actor) error {
	t, ab, err := s.resolveTransaction(ctx, id)
	if err != nil {
		return err
	}
	if !t.CanBeDeletedBy(actor, ab) {
		s.metrics.ObservePermissionDenial("transaction_delete")
		return dErrors.New(dErrors.CodeForbidden, "transaction cannot be deleted")
	}
	if err := s.transactions.Delete(ctx, t.ID); err != nil {
		return mapStoreErr(err, "transaction not found", "delete transaction")
	}
	if s.notifier != nil {
		if _, err := s.notifier.NotifyTransactionDeleted(ctx, ab.UserSide(), actor, t.Produit); err != nil {
			s.logger.Warn("transaction deletion notification failed", "transaction_id", id, "error", err)
		}
	}
	return nil
}

// refreshPageStats recomputes the derived aggregates from the authoritative
// VALIDATED set. Recompute, never increment: increments drift under
// concurrent validations and deletions.
func (s *TransactionService) refreshPageStats(ctx context.Context, pageID domain.PageID) error {
	count, total, lastAt, err := s.transactions.AggregateValidated(ctx, pageID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "aggregate transactions")
	}
	if err := s.pages.UpdateStats(ctx, pageID, count, total, lastAt); err != nil {
		return mapStoreErr(err, "page not found", "update page stats")
	}
	return nil
}

func (s *TransactionService) runInTx(ctx context.Context, fn func(context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return tx.RunInTx(ctx, s.db, fn)
}

func (s *TransactionService) pageIDsForUser(ctx context.Context, userID domain.UserID) ([]domain.PageID, error) {
	abs, err := s.abonnements.ListForActor(ctx, domain.UserActor(userID))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list abonnements")
	}
	abIDs := make([]domain.AbonnementID, len(abs))
	for i, ab := range abs {
		abIDs[i] = ab.ID
	}
	pages, err := s.pages.ListByAbonnementIDs(ctx, abIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list pages")
	}
	ids := make([]domain.PageID, len(pages))
	for i, p := range pages {
		ids[i] = p.ID
	}
	return ids, nil
}

func (s *TransactionService) resolvePage(ctx context.Context, pageID domain.PageID) (*models.PagePartenariat, *abmodels.Abonnement, error) {
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

func (s *TransactionService) resolveTransaction(ctx context.Context, id domain.TransactionID) (*models.TransactionPartenariat, *abmodels.Abonnement, error) {
	t, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, nil, mapStoreErr(err, "transaction not found", "load transaction")
	}
	_, ab, err := s.resolvePage(ctx, t.PageID)
	if err != nil {
		return nil, nil, err
	}
	return t, ab, nil
}
