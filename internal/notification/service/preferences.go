package service

import (
	"context"
	"errors"
	"log/slog"

	"kolabo/internal/notification/models"
	"kolabo/pkg/domain"
	dErrors "kolabo/pkg/domain-errors"
	"kolabo/pkg/platform/sentinel"
	"kolabo/pkg/requestcontext"
)

// PreferenceService is the owner-facing surface of the sparse overrides.
// Absence of a row means enabled, applied consistently everywhere a
// preference is read.
type PreferenceService struct {
	store  PreferenceStore
	logger *slog.Logger
}

func NewPreferenceService(store PreferenceStore, logger *slog.Logger) *PreferenceService {
	return &PreferenceService{store: store, logger: logger}
}

// IsEnabled returns the stored flag, or true when no row exists.
func (s *PreferenceService) IsEnabled(ctx context.Context, owner domain.Actor, typ models.Type) (bool, error) {
	p, err := s.store.Find(ctx, owner, typ)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return true, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "preference lookup failed")
	}
	return p.IsEnabled, nil
}

// Set upserts the (owner, type) row with the given flag.
func (s *PreferenceService) Set(ctx context.Context, owner domain.Actor, typ models.Type, enabled bool) (*models.NotificationPreference, error) {
	if err := owner.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid owner")
	}
	if !typ.Valid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown notification type %q", typ)
	}
	now := requestcontext.Now(ctx)
	p := &models.NotificationPreference{
		OwnerID:   owner.ID,
		OwnerType: owner.Kind,
		Type:      typ,
		IsEnabled: enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Upsert(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store preference")
	}
	return p, nil
}

// EnableAll flips every stored row of the owner to enabled. Types with no
// row keep their implicit enabled default; no rows are materialized, so a
// type added to the catalog later is unaffected by an earlier bulk call.
func (s *PreferenceService) EnableAll(ctx context.Context, owner domain.Actor) (int, error) {
	return s.setAll(ctx, owner, true)
}

// DisableAll flips every stored row of the owner to disabled. Same narrow
// semantics as EnableAll: untouched types remain implicitly enabled.
func (s *PreferenceService) DisableAll(ctx context.Context, owner domain.Actor) (int, error) {
	return s.setAll(ctx, owner, false)
}

func (s *PreferenceService) setAll(ctx context.Context, owner domain.Actor, enabled bool) (int, error) {
	count, err := s.store.SetAllForOwner(ctx, owner, enabled, requestcontext.Now(ctx))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "bulk update preferences")
	}
	return count, nil
}

// AllWithDefaults returns the full catalog with each type's effective flag:
// the stored value when a row exists, else true.
func (s *PreferenceService) AllWithDefaults(ctx context.Context, owner domain.Actor) ([]models.TypePreference, error) {
	stored, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list preferences")
	}
	overrides := make(map[models.Type]bool, len(stored))
	for _, p := range stored {
		overrides[p.Type] = p.IsEnabled
	}
	types := models.AllTypes()
	out := make([]models.TypePreference, 0, len(types))
	for _, typ := range types {
		enabled, ok := overrides[typ]
		if !ok {
			enabled = true
		}
		out = append(out, models.TypePreference{Type: typ, IsEnabled: enabled})
	}
	return out, nil
}
