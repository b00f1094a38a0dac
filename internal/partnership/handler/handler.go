// Package handler exposes the partnership core over HTTP. Handlers stay
// thin: decode, resolve the actor from context, delegate to a service, and
// translate the result.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kolabo/internal/partnership/models"
	"kolabo/internal/partnership/service"
	"kolabo/pkg/domain"
	dErrors "kolabo/pkg/domain-errors"
	"kolabo/pkg/platform/httputil"
	"kolabo/pkg/requestcontext"
)

// PageService defines the page operations the handler needs.
type PageService interface {
	GetByID(ctx context.Context, id domain.PageID, actor domain.Actor) (*models.PagePartenariat, error)
	GetByUserAndSociete(ctx context.Context, userID domain.UserID, societeID domain.SocieteID, actor domain.Actor) (*models.PagePartenariat, error)
	ListForActor(ctx context.Context, actor domain.Actor) ([]*models.PagePartenariat, error)
	Update(ctx context.Context, id domain.PageID, actor domain.Actor, update models.PageUpdate) (*models.PagePartenariat, error)
	CreateForAbonnement(ctx context.Context, abID domain.AbonnementID, titre string) (*models.PagePartenariat, error)
}

// InformationService defines the partner information operations.
type InformationService interface {
	Create(ctx context.Context, pageID domain.PageID, actor domain.Actor, in service.InformationCreate) (*models.InformationPartenaire, error)
	ListForPage(ctx context.Context, pageID domain.PageID, actor domain.Actor) ([]*models.InformationPartenaire, error)
	GetByID(ctx context.Context, id domain.InformationID, actor domain.Actor) (*models.InformationPartenaire, error)
	Update(ctx context.Context, id domain.InformationID, actor domain.Actor, update models.InformationUpdate) (*models.InformationPartenaire, error)
	Delete(ctx context.Context, id domain.InformationID, actor domain.Actor) error
}

// TransactionService defines the transaction workflow operations.
type TransactionService interface {
	Create(ctx context.Context, pageID domain.PageID, actor domain.Actor, in service.TransactionCreate) (*models.TransactionPartenariat, error)
	ListForPage(ctx context.Context, pageID domain.PageID, actor domain.Actor) ([]*models.TransactionPartenariat, error)
	ListPendingForUser(ctx context.Context, userID domain.UserID) ([]*models.TransactionPartenariat, error)
	CountPendingForUser(ctx context.Context, userID domain.UserID) (int, error)
	GetByID(ctx context.Context, id domain.TransactionID, actor domain.Actor) (*models.TransactionPartenariat, error)
	Update(ctx context.Context, id domain.TransactionID, actor domain.Actor, update models.TransactionUpdate) (*models.TransactionPartenariat, error)
	Validate(ctx context.Context, id domain.TransactionID, userID domain.UserID, comment string) (*models.TransactionPartenariat, error)
	Reject(ctx context.Context, id domain.TransactionID, userID domain.UserID, comment string) (*models.TransactionPartenariat, error)
	Delete(ctx context.Context, id domain.TransactionID, actor domain.Actor) error
}

// Handler wires partnership endpoints to the domain services.
type Handler struct {
	pages        PageService
	informations InformationService
	transactions TransactionService
	logger       *slog.Logger
}

func New(pages PageService, informations InformationService, transactions TransactionService, logger *slog.Logger) *Handler {
	return &Handler{
		pages:        pages,
		informations: informations,
		transactions: transactions,
		logger:       logger,
	}
}

// Register mounts the partnership endpoints on the router. All routes assume
// the actor middleware already ran.
func (h *Handler) Register(r chi.Router) {
	r.Post("/abonnements/{abonnementID}/page-partenariat", h.HandleCreatePage)

	r.Get("/pages-partenariat", h.HandleListPages)
	r.Get("/pages-partenariat/{pageID}", h.HandleGetPage)
	r.Patch("/pages-partenariat/{pageID}", h.HandleUpdatePage)

	r.Post("/pages-partenariat/{pageID}/informations", h.HandleCreateInformation)
	r.Get("/pages-partenariat/{pageID}/informations", h.HandleListInformations)
	r.Get("/informations-partenaire/{informationID}", h.HandleGetInformation)
	r.Patch("/informations-partenaire/{informationID}", h.HandleUpdateInformation)
	r.Delete("/informations-partenaire/{informationID}", h.HandleDeleteInformation)

	r.Post("/pages-partenariat/{pageID}/transactions", h.HandleCreateTransaction)
	r.Get("/pages-partenariat/{pageID}/transactions", h.HandleListTransactions)
	r.Get("/transactions-partenariat/pending", h.HandleListPending)
	r.Get("/transactions-partenariat/pending/count", h.HandleCountPending)
	r.Get("/transactions-partenariat/{transactionID}", h.HandleGetTransaction)
	r.Patch("/transactions-partenariat/{transactionID}", h.HandleUpdateTransaction)
	r.Post("/transactions-partenariat/{transactionID}/validate", h.HandleValidateTransaction)
	r.Post("/transactions-partenariat/{transactionID}/reject", h.HandleRejectTransaction)
	r.Delete("/transactions-partenariat/{transactionID}", h.HandleDeleteTransaction)
}

// =============================================================================
// Pages
// =============================================================================

// HandleCreatePage handles POST /abonnements/{abonnementID}/page-partenariat.
func (h *Handler) HandleCreatePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	abID, ok := pathID(w, r, "abonnementID")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreatePageRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	page, err := h.pages.CreateForAbonnement(ctx, domain.AbonnementID(abID), req.Titre)
	if err != nil {
		h.logError(ctx, "page creation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, page)
}

// HandleListPages handles GET /pages-partenariat. With user_id and societe_id
// query params it resolves the single page of that pair instead.
func (h *Handler) HandleListPages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.Actor(ctx)

	q := r.URL.Query()
	if q.Get("user_id") != "" || q.Get("societe_id") != "" {
		userID, err := strconv.ParseInt(q.Get("user_id"), 10, 64)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user_id"))
			return
		}
		societeID, err := strconv.ParseInt(q.Get("societe_id"), 10, 64)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid societe_id"))
			return
		}
		page, err := h.pages.GetByUserAndSociete(ctx, domain.UserID(userID), domain.SocieteID(societeID), actor)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, page)
		return
	}

	pages, err := h.pages.ListForActor(ctx, actor)
	if err != nil {
		h.logError(ctx, "page listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pages)
}

// HandleGetPage handles GET /pages-partenariat/{pageID}.
func (h *Handler) HandleGetPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "pageID")
	if !ok {
		return
	}
	page, err := h.pages.GetByID(ctx, domain.PageID(id), requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// HandleUpdatePage handles PATCH /pages-partenariat/{pageID}.
func (h *Handler) HandleUpdatePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "pageID")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.PageUpdate](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	page, err := h.pages.Update(ctx, domain.PageID(id), requestcontext.Actor(ctx), *req)
	if err != nil {
		h.logError(ctx, "page update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// =============================================================================
// Informations
// =============================================================================

// HandleCreateInformation handles POST /pages-partenariat/{pageID}/informations.
func (h *Handler) HandleCreateInformation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "pageID")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[service.InformationCreate](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	info, err := h.informations.Create(ctx, domain.PageID(id), requestcontext.Actor(ctx), *req)
	if err != nil {
		h.logError(ctx, "information creation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, info)
}

// HandleListInformations handles GET /pages-partenariat/{pageID}/informations.
func (h *Handler) HandleListInformations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "pageID")
	if !ok {
		return
	}
	list, err := h.informations.ListForPage(ctx, domain.PageID(id), requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// HandleGetInformation handles GET /informations-partenaire/{informationID}.
func (h *Handler) HandleGetInformation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "informationID")
	if !ok {
		return
	}
	info, err := h.informations.GetByID(ctx, domain.InformationID(id), requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

// HandleUpdateInformation handles PATCH /informations-partenaire/{informationID}.
func (h *Handler) HandleUpdateInformation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "informationID")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.InformationUpdate](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	info, err := h.informations.Update(ctx, domain.InformationID(id), requestcontext.Actor(ctx), *req)
	if err != nil {
		h.logError(ctx, "information update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

// HandleDeleteInformation handles DELETE /informations-partenaire/{informationID}.
func (h *Handler) HandleDeleteInformation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "informationID")
	if !ok {
		return
	}
	if err := h.informations.Delete(ctx, domain.InformationID(id), requestcontext.Actor(ctx)); err != nil {
		h.logError(ctx, "information deletion failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Transactions
// =============================================================================

// HandleCreateTransaction handles POST /pages-partenariat/{pageID}/transactions.
func (h *Handler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "pageID")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[service.TransactionCreate](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	t, err := h.transactions.Create(ctx, domain.PageID(id), requestcontext.Actor(ctx), *req)
	if err != nil {
		h.logError(ctx, "transaction creation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, t)
}

// HandleListTransactions handles GET /pages-partenariat/{pageID}/transactions.
func (h *Handler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "pageID")
	if !ok {
		return
	}
	list, err := h.transactions.ListForPage(ctx, domain.PageID(id), requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// HandleListPending handles GET /transactions-partenariat/pending. User side
// only: pending validation is the individual's work queue.
func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.Actor(ctx)
	if !actor.IsUser() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "pending transactions are the individual's queue"))
		return
	}
	list, err := h.transactions.ListPendingForUser(ctx, domain.UserID(actor.ID))
	if err != nil {
		h.logError(ctx, "pending transaction listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// HandleCountPending handles GET /transactions-partenariat/pending/count.
func (h *Handler) HandleCountPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.Actor(ctx)
	if !actor.IsUser() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "pending transactions are the individual's queue"))
		return
	}
	count, err := h.transactions.CountPendingForUser(ctx, domain.UserID(actor.ID))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CountResponse{Count: count})
}

// HandleGetTransaction handles GET /transactions-partenariat/{transactionID}.
func (h *Handler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "transactionID")
	if !ok {
		return
	}
	t, err := h.transactions.GetByID(ctx, domain.TransactionID(id), requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

// HandleUpdateTransaction handles PATCH /transactions-partenariat/{transactionID}.
func (h *Handler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "transactionID")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.TransactionUpdate](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	t, err := h.transactions.Update(ctx, domain.TransactionID(id), requestcontext.Actor(ctx), *req)
	if err != nil {
		h.logError(ctx, "transaction update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

// HandleValidateTransaction handles POST /transactions-partenariat/{transactionID}/validate.
func (h *Handler) HandleValidateTransaction(w http.ResponseWriter, r *http.Request) {
	h.resolveTransaction(w, r, h.transactions.Validate)
}

// HandleRejectTransaction handles POST /transactions-partenariat/{transactionID}/reject.
func (h *Handler) HandleRejectTransaction(w http.ResponseWriter, r *http.Request) {
	h.resolveTransaction(w, r, h.transactions.Reject)
}

// resolveTransaction is the shared validate/reject flow: user actor, optional
// comment body, one service call.
func (h *Handler) resolveTransaction(w http.ResponseWriter, r *http.Request, op func(context.Context, domain.TransactionID, domain.UserID, string) (*models.TransactionPartenariat, error)) {
	ctx := r.Context()
	id, ok := pathID(w, r, "transactionID")
	if !ok {
		return
	}
	actor := requestcontext.Actor(ctx)
	if !actor.IsUser() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only the individual side resolves transactions"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[ResolveTransactionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	t, err := op(ctx, domain.TransactionID(id), domain.UserID(actor.ID), req.Commentaire)
	if err != nil {
		h.logError(ctx, "transaction resolution failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

// HandleDeleteTransaction handles DELETE /transactions-partenariat/{transactionID}.
func (h *Handler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "transactionID")
	if !ok {
		return
	}
	if err := h.transactions.Delete(ctx, domain.TransactionID(id), requestcontext.Actor(ctx)); err != nil {
		h.logError(ctx, "transaction deletion failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"actor", requestcontext.Actor(ctx).String(),
		"error", err,
	)
}

// pathID parses a numeric chi URL parameter, writing a bad_request envelope
// on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s", name))
		return 0, false
	}
	return id, true
}
