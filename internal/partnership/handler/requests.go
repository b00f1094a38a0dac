package handler

import (
	"strings"

	dErrors "kolabo/pkg/domain-errors"
)

// CreatePageRequest is the body for POST /abonnements/{id}/page-partenariat.
type CreatePageRequest struct {
	Titre string `json:"titre"`
}

func (r *CreatePageRequest) Validate() error {
	r.Titre = strings.TrimSpace(r.Titre)
	if r.Titre == "" {
		return dErrors.New(dErrors.CodeValidation, "titre is required")
	}
	if len(r.Titre) > 200 {
		return dErrors.New(dErrors.CodeValidation, "titre must be at most 200 characters")
	}
	return nil
}

// ResolveTransactionRequest is the body for validate and reject. The comment
// is optional on validation and required on rejection; the service enforces
// the latter.
type ResolveTransactionRequest struct {
	Commentaire string `json:"commentaire"`
}

// CountResponse wraps a bare count.
type CountResponse struct {
	Count int `json:"count"`
}
