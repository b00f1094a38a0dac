package preference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kolabo/internal/notification/models"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
)

// Postgres persists preference rows. The unique index on
// (owner_id, owner_type, notification_type) backs the upsert.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const preferenceColumns = `id, owner_id, owner_type, notification_type, is_enabled, created_at, updated_at`

func (s *Postgres) Find(ctx context.Context, owner domain.Actor, typ models.Type) (*models.NotificationPreference, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+preferenceColumns+` FROM notification_preferences
		WHERE owner_id = $1 AND owner_type = $2 AND notification_type = $3`,
		owner.ID, string(owner.Kind), string(typ))
	return scanPreference(row)
}

func (s *Postgres) ListByOwner(ctx context.Context, owner domain.Actor) ([]*models.NotificationPreference, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+preferenceColumns+` FROM notification_preferences
		WHERE owner_id = $1 AND owner_type = $2
		ORDER BY notification_type`,
		owner.ID, string(owner.Kind))
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	var out []*models.NotificationPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate preferences: %w", err)
	}
	return out, nil
}

func (s *Postgres) Upsert(ctx context.Context, p *models.NotificationPreference) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notification_preferences (
			owner_id, owner_type, notification_type, is_enabled, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id, owner_type, notification_type)
		DO UPDATE SET is_enabled = EXCLUDED.is_enabled, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		p.OwnerID, string(p.OwnerType), string(p.Type), p.IsEnabled, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}
	return nil
}

func (s *Postgres) SetAllForOwner(ctx context.Context, owner domain.Actor, enabled bool, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notification_preferences
		SET is_enabled = $3, updated_at = $4
		WHERE owner_id = $1 AND owner_type = $2`,
		owner.ID, string(owner.Kind), enabled, now)
	if err != nil {
		return 0, fmt.Errorf("bulk update preferences: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func scanPreference(row interface{ Scan(...any) error }) (*models.NotificationPreference, error) {
	var p models.NotificationPreference
	err := row.Scan(&p.ID, &p.OwnerID, &p.OwnerType, &p.Type, &p.IsEnabled, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan preference: %w", err)
	}
	return &p, nil
}
