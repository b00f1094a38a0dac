package transaction

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kolabo/internal/partnership/models"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
	txcontext "kolabo/pkg/platform/tx"
)

// Postgres persists partnership transactions. Validation and the page-stats
// recomputation run inside one SQL transaction carried through context, so
// a validated-but-unaggregated state is never observable.
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

const transactionColumns = `id, page_partenariat_id, date_debut, date_fin, periode, produit, categorie,
	quantite, unite, prix_unitaire, devise, prix_total,
	status, creee_par_societe, validee_par_user, validee_at, modifiee_at,
	documents, notes, commentaire_validation, metadata, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, t *models.TransactionPartenariat) error {
	documents, metadata, err := marshalJSONFields(t)
	if err != nil {
		return err
	}
	err = s.execer(ctx).QueryRowContext(ctx, `
		INSERT INTO transactions_partenariat (
			page_partenariat_id, date_debut, date_fin, periode, produit, categorie,
			quantite, unite, prix_unitaire, devise, prix_total,
			status, creee_par_societe, validee_par_user, validee_at, modifiee_at,
			documents, notes, commentaire_validation, metadata, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id`,
		int64(t.PageID), t.DateDebut, t.DateFin, t.Periode, t.Produit, t.Categorie,
		t.Quantite, t.Unite, t.PrixUnitaire, t.Devise, t.PrixTotal,
		string(t.Status), t.CreeeParSociete, t.ValideeParUser, t.ValideeAt, t.ModifieeAt,
		documents, t.Notes, t.CommentaireValidation, metadata, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.TransactionID) (*models.TransactionPartenariat, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions_partenariat WHERE id = $1`, int64(id))
	return scanTransaction(row)
}

func (s *Postgres) ListByPage(ctx context.Context, pageID domain.PageID) ([]*models.TransactionPartenariat, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions_partenariat
		WHERE page_partenariat_id = $1
		ORDER BY created_at DESC, id DESC`, int64(pageID))
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return collect(rows)
}

func (s *Postgres) ListByPagesWithStatus(ctx context.Context, pageIDs []domain.PageID, status models.TransactionStatus) ([]*models.TransactionPartenariat, error) {
	if len(pageIDs) == 0 {
		return nil, nil
	}
	ids := make([]int64, len(pageIDs))
	for i, id := range pageIDs {
		ids[i] = int64(id)
	}
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions_partenariat
		WHERE page_partenariat_id = ANY($1) AND status = $2
		ORDER BY created_at DESC, id DESC`, ids, string(status))
	if err != nil {
		return nil, fmt.Errorf("query transactions by status: %w", err)
	}
	return collect(rows)
}

func (s *Postgres) CountByPagesWithStatus(ctx context.Context, pageIDs []domain.PageID, status models.TransactionStatus) (int, error) {
	if len(pageIDs) == 0 {
		return 0, nil
	}
	ids := make([]int64, len(pageIDs))
	for i, id := range pageIDs {
		ids[i] = int64(id)
	}
	var count int
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT count(*) FROM transactions_partenariat
		WHERE page_partenariat_id = ANY($1) AND status = $2`, ids, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

func (s *Postgres) Update(ctx context.Context, t *models.TransactionPartenariat) error {
	documents, metadata, err := marshalJSONFields(t)
	if err != nil {
		return err
	}
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE transactions_partenariat
		SET date_debut = $2, date_fin = $3, periode = $4, produit = $5, categorie = $6,
		    quantite = $7, unite = $8, prix_unitaire = $9, devise = $10, prix_total = $11,
		    status = $12, validee_par_user = $13, validee_at = $14, modifiee_at = $15,
		    documents = $16, notes = $17, commentaire_validation = $18, metadata = $19, updated_at = $20
		WHERE id = $1`,
		int64(t.ID), t.DateDebut, t.DateFin, t.Periode, t.Produit, t.Categorie,
		t.Quantite, t.Unite, t.PrixUnitaire, t.Devise, t.PrixTotal,
		string(t.Status), t.ValideeParUser, t.ValideeAt, t.ModifieeAt,
		documents, t.Notes, t.CommentaireValidation, metadata, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) Delete(ctx context.Context, id domain.TransactionID) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM transactions_partenariat WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

// AggregateValidated recounts and resums the VALIDATED transactions of a
// page from source in one query.
func (s *Postgres) AggregateValidated(ctx context.Context, pageID domain.PageID) (int, decimal.Decimal, *time.Time, error) {
	var (
		count  int
		total  decimal.Decimal
		lastAt *time.Time
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT count(*), coalesce(sum(prix_total), 0), max(validee_at)
		FROM transactions_partenariat
		WHERE page_partenariat_id = $1 AND status = $2`,
		int64(pageID), string(models.StatusValidated),
	).Scan(&count, &total, &lastAt)
	if err != nil {
		return 0, decimal.Zero, nil, fmt.Errorf("aggregate validated transactions: %w", err)
	}
	return count, total, lastAt, nil
}

func collect(rows *sql.Rows) ([]*models.TransactionPartenariat, error) {
	defer rows.Close()
	var out []*models.TransactionPartenariat
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
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

func marshalJSONFields(t *models.TransactionPartenariat) (documents, metadata []byte, err error) {
	if t.Documents != nil {
		documents, err = json.Marshal(t.Documents)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal documents: %w", err)
		}
	}
	if t.Metadata != nil {
		metadata, err = json.Marshal(t.Metadata)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal metadata: %w", err)
		}
	}
	return documents, metadata, nil
}

func scanTransaction(row interface{ Scan(...any) error }) (*models.TransactionPartenariat, error) {
	var (
		t         models.TransactionPartenariat
		documents []byte
		metadata  []byte
	)
	err := row.Scan(
		&t.ID, &t.PageID, &t.DateDebut, &t.DateFin, &t.Periode, &t.Produit, &t.Categorie,
		&t.Quantite, &t.Unite, &t.PrixUnitaire, &t.Devise, &t.PrixTotal,
		&t.Status, &t.CreeeParSociete, &t.ValideeParUser, &t.ValideeAt, &t.ModifieeAt,
		&documents, &t.Notes, &t.CommentaireValidation, &metadata, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	if len(documents) > 0 {
		if err := json.Unmarshal(documents, &t.Documents); err != nil {
			return nil, fmt.Errorf("unmarshal transaction documents: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal transaction metadata: %w", err)
		}
	}
	return &t, nil
}
