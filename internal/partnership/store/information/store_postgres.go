package information

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"kolabo/internal/partnership/models"
	"kolabo/internal/platform/postgres"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
)

// Postgres persists partner information records. The composite unique index
// on (page_partenariat_id, partenaire_id, partenaire_type) is the backstop
// for the at-most-one invariant under concurrent creation.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const informationColumns = `id, page_partenariat_id, partenaire_id, partenaire_type, creee_par,
	nom, description, logo, localite, adresse, telephone, email, secteur,
	type_culture, superficie_hectares, date_debut_activite, numero_registre, site_web,
	modifiable_par, visible_sur_page, metadata, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, i *models.InformationPartenaire) error {
	metadata, err := marshalMetadata(i.Metadata)
	if err != nil {
		return err
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO informations_partenaire (
			page_partenariat_id, partenaire_id, partenaire_type, creee_par,
			nom, description, logo, localite, adresse, telephone, email, secteur,
			type_culture, superficie_hectares, date_debut_activite, numero_registre, site_web,
			modifiable_par, visible_sur_page, metadata, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id`,
		int64(i.PageID), i.PartenaireID, string(i.PartenaireType), string(i.CreeePar),
		i.Nom, i.Description, i.Logo, i.Localite, i.Adresse, i.Telephone, i.Email, i.Secteur,
		i.TypeCulture, i.SuperficieHectares, i.DateDebutActivite, i.NumeroRegistre, i.SiteWeb,
		string(i.ModifiablePar), i.VisibleSurPage, metadata, i.CreatedAt, i.UpdatedAt,
	).Scan(&i.ID)
	if err != nil {
		return fmt.Errorf("insert information: %w", postgres.MapUniqueViolation(err))
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.InformationID) (*models.InformationPartenaire, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+informationColumns+` FROM informations_partenaire WHERE id = $1`, int64(id))
	return scanInformation(row)
}

func (s *Postgres) FindByPartner(ctx context.Context, pageID domain.PageID, partenaireID int64, partenaireType domain.ActorKind) (*models.InformationPartenaire, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+informationColumns+` FROM informations_partenaire
		WHERE page_partenariat_id = $1 AND partenaire_id = $2 AND partenaire_type = $3`,
		int64(pageID), partenaireID, string(partenaireType))
	return scanInformation(row)
}

func (s *Postgres) ListByPage(ctx context.Context, pageID domain.PageID) ([]*models.InformationPartenaire, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+informationColumns+` FROM informations_partenaire WHERE page_partenariat_id = $1 ORDER BY id`,
		int64(pageID))
	if err != nil {
		return nil, fmt.Errorf("query informations: %w", err)
	}
	defer rows.Close()

	var out []*models.InformationPartenaire
	for rows.Next() {
		i, err := scanInformation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate informations: %w", err)
	}
	return out, nil
}

func (s *Postgres) Update(ctx context.Context, i *models.InformationPartenaire) error {
	metadata, err := marshalMetadata(i.Metadata)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE informations_partenaire
		SET nom = $2, description = $3, logo = $4, localite = $5, adresse = $6,
		    telephone = $7, email = $8, secteur = $9,
		    type_culture = $10, superficie_hectares = $11, date_debut_activite = $12,
		    numero_registre = $13, site_web = $14,
		    modifiable_par = $15, visible_sur_page = $16, metadata = $17, updated_at = $18
		WHERE id = $1`,
		int64(i.ID), i.Nom, i.Description, i.Logo, i.Localite, i.Adresse,
		i.Telephone, i.Email, i.Secteur,
		i.TypeCulture, i.SuperficieHectares, i.DateDebutActivite,
		i.NumeroRegistre, i.SiteWeb,
		string(i.ModifiablePar), i.VisibleSurPage, metadata, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update information: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) Delete(ctx context.Context, id domain.InformationID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM informations_partenaire WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("delete information: %w", err)
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

func scanInformation(row interface{ Scan(...any) error }) (*models.InformationPartenaire, error) {
	var (
		i        models.InformationPartenaire
		metadata []byte
	)
	err := row.Scan(
		&i.ID, &i.PageID, &i.PartenaireID, &i.PartenaireType, &i.CreeePar,
		&i.Nom, &i.Description, &i.Logo, &i.Localite, &i.Adresse, &i.Telephone, &i.Email, &i.Secteur,
		&i.TypeCulture, &i.SuperficieHectares, &i.DateDebutActivite, &i.NumeroRegistre, &i.SiteWeb,
		&i.ModifiablePar, &i.VisibleSurPage, &metadata, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan information: %w", err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &i.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal information metadata: %w", err)
		}
	}
	return &i, nil
}
