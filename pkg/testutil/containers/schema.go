//go:build integration

package containers

import "testing"

// schema mirrors the production tables the stores read and write. The
// abonnements table is owned by the subscription subsystem; it appears here
// only because the partnership stores join against it.
const schema = `
CREATE TABLE IF NOT EXISTS abonnements (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL,
	societe_id BIGINT NOT NULL,
	status     TEXT NOT NULL,
	plan       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, societe_id)
);

CREATE TABLE IF NOT EXISTS pages_partenariat (
	id                      BIGSERIAL PRIMARY KEY,
	abonnement_id           BIGINT NOT NULL UNIQUE REFERENCES abonnements (id),
	titre                   TEXT NOT NULL,
	description             TEXT NOT NULL DEFAULT '',
	logo                    TEXT NOT NULL DEFAULT '',
	couleur                 TEXT NOT NULL DEFAULT '',
	total_transactions      INTEGER NOT NULL DEFAULT 0,
	montant_total           NUMERIC(18,2) NOT NULL DEFAULT 0,
	date_debut_partenariat  TIMESTAMPTZ NOT NULL,
	derniere_transaction_at TIMESTAMPTZ,
	visibilite              TEXT NOT NULL,
	secteur                 TEXT NOT NULL DEFAULT '',
	is_active               BOOLEAN NOT NULL DEFAULT TRUE,
	metadata                JSONB,
	created_at              TIMESTAMPTZ NOT NULL,
	updated_at              TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS informations_partenaire (
	id                   BIGSERIAL PRIMARY KEY,
	page_partenariat_id  BIGINT NOT NULL REFERENCES pages_partenariat (id) ON DELETE CASCADE,
	partenaire_id        BIGINT NOT NULL,
	partenaire_type      TEXT NOT NULL,
	creee_par            TEXT NOT NULL,
	nom                  TEXT NOT NULL,
	description          TEXT NOT NULL DEFAULT '',
	logo                 TEXT NOT NULL DEFAULT '',
	localite             TEXT NOT NULL DEFAULT '',
	adresse              TEXT NOT NULL DEFAULT '',
	telephone            TEXT NOT NULL DEFAULT '',
	email                TEXT NOT NULL DEFAULT '',
	secteur              TEXT NOT NULL DEFAULT '',
	type_culture         TEXT NOT NULL DEFAULT '',
	superficie_hectares  TEXT NOT NULL DEFAULT '',
	date_debut_activite  TIMESTAMPTZ,
	numero_registre      TEXT NOT NULL DEFAULT '',
	site_web             TEXT NOT NULL DEFAULT '',
	modifiable_par       TEXT NOT NULL,
	visible_sur_page     BOOLEAN NOT NULL DEFAULT TRUE,
	metadata             JSONB,
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL,
	UNIQUE (page_partenariat_id, partenaire_id, partenaire_type)
);

CREATE TABLE IF NOT EXISTS transactions_partenariat (
	id                     BIGSERIAL PRIMARY KEY,
	page_partenariat_id    BIGINT NOT NULL REFERENCES pages_partenariat (id) ON DELETE CASCADE,
	date_debut             TIMESTAMPTZ NOT NULL,
	date_fin               TIMESTAMPTZ NOT NULL,
	periode                TEXT NOT NULL DEFAULT '',
	produit                TEXT NOT NULL,
	categorie              TEXT NOT NULL DEFAULT '',
	quantite               NUMERIC(18,3) NOT NULL,
	unite                  TEXT NOT NULL,
	prix_unitaire          NUMERIC(18,2) NOT NULL,
	devise                 TEXT NOT NULL,
	prix_total             NUMERIC(18,2) NOT NULL,
	status                 TEXT NOT NULL,
	creee_par_societe      BOOLEAN NOT NULL,
	validee_par_user       BOOLEAN NOT NULL DEFAULT FALSE,
	validee_at             TIMESTAMPTZ,
	modifiee_at            TIMESTAMPTZ,
	documents              JSONB,
	notes                  TEXT NOT NULL DEFAULT '',
	commentaire_validation TEXT NOT NULL DEFAULT '',
	metadata               JSONB,
	created_at             TIMESTAMPTZ NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_page_status
	ON transactions_partenariat (page_partenariat_id, status);

CREATE TABLE IF NOT EXISTS notifications (
	id             BIGSERIAL PRIMARY KEY,
	recipient_id   BIGINT NOT NULL,
	recipient_type TEXT NOT NULL,
	actor_id       BIGINT,
	actor_type     TEXT,
	type           TEXT NOT NULL,
	titre          TEXT NOT NULL,
	message        TEXT NOT NULL,
	data           JSONB,
	action_url     TEXT NOT NULL DEFAULT '',
	is_read        BOOLEAN NOT NULL DEFAULT FALSE,
	read_at        TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient
	ON notifications (recipient_id, recipient_type, created_at DESC);

CREATE TABLE IF NOT EXISTS notification_preferences (
	id                BIGSERIAL PRIMARY KEY,
	owner_id          BIGINT NOT NULL,
	owner_type        TEXT NOT NULL,
	notification_type TEXT NOT NULL,
	is_enabled        BOOLEAN NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL,
	UNIQUE (owner_id, owner_type, notification_type)
);
`

// ApplySchema creates every table the stores use. Idempotent, so suites can
// share one container.
func (p *PostgresContainer) ApplySchema(t *testing.T) {
	t.Helper()
	p.Exec(t, schema)
}
