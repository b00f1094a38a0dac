package page

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kolabo/internal/partnership/models"
	"kolabo/internal/platform/postgres"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
	txcontext "kolabo/pkg/platform/tx"
)

// Postgres persists partnership pages. The unique index on abonnement_id is
// the authoritative backstop for the one-page-per-abonnement invariant.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const pageColumns = `id, abonnement_id, titre, description, logo, couleur,
	total_transactions, montant_total, date_debut_partenariat, derniere_transaction_at,
	visibilite, secteur, is_active, metadata, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, p *models.PagePartenariat) error {
	metadata, err := marshalMetadata(p.Metadata)
	if err != nil {
		return err
	}
	err = s.execer(ctx).QueryRowContext(ctx, `
		INSERT INTO pages_partenariat (
			abonnement_id, titre, description, logo, couleur,
			total_transactions, montant_total, date_debut_partenariat, derniere_transaction_at,
			visibilite, secteur, is_active, metadata, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		int64(p.AbonnementID), p.Titre, p.Description, p.Logo, p.Couleur,
		p.TotalTransactions, p.MontantTotal, p.DateDebutPartenariat, p.DerniereTransaction,
		string(p.Visibilite), p.Secteur, p.IsActive, metadata, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert page: %w", postgres.MapUniqueViolation(err))
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.PageID) (*models.PagePartenariat, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages_partenariat WHERE id = $1`, int64(id))
	return scanPage(row)
}

func (s *Postgres) FindByAbonnement(ctx context.Context, abID domain.AbonnementID) (*models.PagePartenariat, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages_partenariat WHERE abonnement_id = $1`, int64(abID))
	return scanPage(row)
}

func (s *Postgres) ListByAbonnementIDs(ctx context.Context, abIDs []domain.AbonnementID) ([]*models.PagePartenariat, error) {
	if len(abIDs) == 0 {
		return nil, nil
	}
	ids := make([]int64, len(abIDs))
	for i, id := range abIDs {
		ids[i] = int64(id)
	}
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages_partenariat WHERE abonnement_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var out []*models.PagePartenariat
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}
	return out, nil
}

func (s *Postgres) Update(ctx context.Context, p *models.PagePartenariat) error {
	metadata, err := marshalMetadata(p.Metadata)
	if err != nil {
		return err
	}
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE pages_partenariat
		SET titre = $2, description = $3, logo = $4, couleur = $5,
		    visibilite = $6, secteur = $7, is_active = $8, metadata = $9, updated_at = $10
		WHERE id = $1`,
		int64(p.ID), p.Titre, p.Description, p.Logo, p.Couleur,
		string(p.Visibilite), p.Secteur, p.IsActive, metadata, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) UpdateStats(ctx context.Context, id domain.PageID, count int, total decimal.Decimal, lastAt *time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE pages_partenariat
		SET total_transactions = $2, montant_total = $3, derniere_transaction_at = $4, updated_at = now()
		WHERE id = $1`,
		int64(id), count, total, lastAt,
	)
	if err != nil {
		return fmt.Errorf("update page stats: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return b, nil
}

func scanPage(row interface{ Scan(...any) error }) (*models.PagePartenariat, error) {
	var (
		p        models.PagePartenariat
		metadata []byte
	)
	err := row.Scan(
		&p.ID, &p.AbonnementID, &p.Titre, &p.Description, &p.Logo, &p.Couleur,
		&p.TotalTransactions, &p.MontantTotal, &p.DateDebutPartenariat, &p.DerniereTransaction,
		&p.Visibilite, &p.Secteur, &p.IsActive, &metadata, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan page: %w", err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal page metadata: %w", err)
		}
	}
	return &p, nil
}
