package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kolabo/internal/notification/models"
	"kolabo/pkg/domain"
	"kolabo/pkg/platform/sentinel"
)

// Postgres persists notification records in the notifications table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const notificationColumns = `id, recipient_id, recipient_type, actor_id, actor_type, type,
	titre, message, data, action_url, is_read, read_at, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, n *models.Notification) error {
	data, err := marshalData(n.Data)
	if err != nil {
		return err
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO notifications (
			recipient_id, recipient_type, actor_id, actor_type, type,
			titre, message, data, action_url, is_read, read_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		n.RecipientID, string(n.RecipientType), n.ActorID, actorTypeArg(n.ActorType), string(n.Type),
		n.Titre, n.Message, data, n.ActionURL, n.IsRead, n.ReadAt, n.CreatedAt, n.UpdatedAt,
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.NotificationID) (*models.Notification, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, int64(id))
	return scanNotification(row)
}

// HasDuplicate is the point-in-time dedup query. A non-empty dataKey narrows
// the match to rows carrying the candidate value (rendered as text) under
// that key of the data payload.
func (s *Postgres) HasDuplicate(ctx context.Context, recipient domain.Actor, typ models.Type, actor domain.Actor, dataKey string, dataValue any) (bool, error) {
	var exists bool
	var err error
	if dataKey == "" {
		err = s.db.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM notifications
				WHERE recipient_id = $1 AND recipient_type = $2
				  AND type = $3 AND actor_id = $4 AND actor_type = $5
			)`,
			recipient.ID, string(recipient.Kind), string(typ), actor.ID, string(actor.Kind),
		).Scan(&exists)
	} else {
		err = s.db.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM notifications
				WHERE recipient_id = $1 AND recipient_type = $2
				  AND type = $3 AND actor_id = $4 AND actor_type = $5
				  AND data ->> $6 = $7
			)`,
			recipient.ID, string(recipient.Kind), string(typ), actor.ID, string(actor.Kind),
			dataKey, fmt.Sprint(dataValue),
		).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("check duplicate notification: %w", err)
	}
	return exists, nil
}

func (s *Postgres) ListByRecipient(ctx context.Context, recipient domain.Actor) ([]*models.Notification, error) {
	return s.query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE recipient_id = $1 AND recipient_type = $2
		ORDER BY created_at DESC, id DESC`,
		recipient.ID, string(recipient.Kind))
}

func (s *Postgres) ListUnread(ctx context.Context, recipient domain.Actor) ([]*models.Notification, error) {
	return s.query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE recipient_id = $1 AND recipient_type = $2 AND NOT is_read
		ORDER BY created_at DESC, id DESC`,
		recipient.ID, string(recipient.Kind))
}

func (s *Postgres) CountUnread(ctx context.Context, recipient domain.Actor) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM notifications
		WHERE recipient_id = $1 AND recipient_type = $2 AND NOT is_read`,
		recipient.ID, string(recipient.Kind)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *Postgres) ListSince(ctx context.Context, recipient domain.Actor, since time.Time) ([]*models.Notification, error) {
	return s.query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE recipient_id = $1 AND recipient_type = $2 AND created_at >= $3
		ORDER BY created_at DESC, id DESC`,
		recipient.ID, string(recipient.Kind), since)
}

func (s *Postgres) ListPage(ctx context.Context, recipient domain.Actor, limit, offset int) ([]*models.Notification, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM notifications
		WHERE recipient_id = $1 AND recipient_type = $2`,
		recipient.ID, string(recipient.Kind)).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	items, err := s.query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE recipient_id = $1 AND recipient_type = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		recipient.ID, string(recipient.Kind), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Postgres) Update(ctx context.Context, n *models.Notification) error {
	data, err := marshalData(n.Data)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET titre = $2, message = $3, data = $4, action_url = $5,
		    is_read = $6, read_at = $7, updated_at = $8
		WHERE id = $1`,
		int64(n.ID), n.Titre, n.Message, data, n.ActionURL,
		n.IsRead, n.ReadAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) MarkAllRead(ctx context.Context, recipient domain.Actor, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = $3, updated_at = $3
		WHERE recipient_id = $1 AND recipient_type = $2 AND NOT is_read`,
		recipient.ID, string(recipient.Kind), now)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return rowsAffected(res)
}

func (s *Postgres) Delete(ctx context.Context, id domain.NotificationID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) DeleteRead(ctx context.Context, recipient domain.Actor) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE recipient_id = $1 AND recipient_type = $2 AND is_read`,
		recipient.ID, string(recipient.Kind))
	if err != nil {
		return 0, fmt.Errorf("delete read notifications: %w", err)
	}
	return rowsAffected(res)
}

func (s *Postgres) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge notifications: %w", err)
	}
	return rowsAffected(res)
}

func (s *Postgres) query(ctx context.Context, q string, args ...any) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
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

func rowsAffected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func marshalData(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal notification data: %w", err)
	}
	return b, nil
}

func actorTypeArg(k *domain.ActorKind) *string {
	if k == nil {
		return nil
	}
	s := string(*k)
	return &s
}

func scanNotification(row interface{ Scan(...any) error }) (*models.Notification, error) {
	var (
		n         models.Notification
		actorType *string
		data      []byte
	)
	err := row.Scan(
		&n.ID, &n.RecipientID, &n.RecipientType, &n.ActorID, &actorType, &n.Type,
		&n.Titre, &n.Message, &data, &n.ActionURL, &n.IsRead, &n.ReadAt, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	if actorType != nil {
		kind := domain.ActorKind(*actorType)
		n.ActorType = &kind
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, fmt.Errorf("unmarshal notification data: %w", err)
		}
	}
	return &n, nil
}
