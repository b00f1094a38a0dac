package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kolabo/internal/abonnement/models"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
)

// Postgres reads subscription records from the abonnements table owned by
// the subscription subsystem. No writes.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const abonnementColumns = `id, user_id, societe_id, status, plan, created_at, updated_at`

func (s *Postgres) FindByID(ctx context.Context, id domain.AbonnementID) (*models.Abonnement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+abonnementColumns+` FROM abonnements WHERE id = $1`, int64(id))
	return scanAbonnement(row)
}

func (s *Postgres) FindByUserAndSociete(ctx context.Context, userID domain.UserID, societeID domain.SocieteID) (*models.Abonnement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+abonnementColumns+` FROM abonnements WHERE user_id = $1 AND societe_id = $2`,
		int64(userID), int64(societeID))
	return scanAbonnement(row)
}

func (s *Postgres) ListForActor(ctx context.Context, actor domain.Actor) ([]*models.Abonnement, error) {
	var column string
	switch actor.Kind {
	case domain.KindUser:
		column = "user_id"
	case domain.KindSociete:
		column = "societe_id"
	default:
		return nil, fmt.Errorf("list abonnements: unsupported actor kind %q", actor.Kind)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+abonnementColumns+` FROM abonnements WHERE `+column+` = $1 ORDER BY id`, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("query abonnements: %w", err)
	}
	defer rows.Close()

	var out []*models.Abonnement
	for rows.Next() {
		a, err := scanAbonnement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate abonnements: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAbonnement(row rowScanner) (*models.Abonnement, error) {
	var a models.Abonnement
	err := row.Scan(&a.ID, &a.UserID, &a.SocieteID, &a.Status, &a.Plan, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan abonnement: %w", err)
	}
	return &a, nil
}
