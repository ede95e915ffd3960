package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jaekwang-park/vici/internal/model"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotification(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, title, message, notification_type, action_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, title, message, notification_type, is_read, created_at, action_url`

	row := r.db.QueryRowContext(ctx, query,
		n.UserID, n.Title, n.Message, string(n.NotificationType), n.ActionURL,
	)
	return scanNotification(row)
}

func (r *PostgresNotificationRepository) List(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > maxNotificationLimit {
		limit = defaultNotificationLimit
	}

	query := `
		SELECT id, user_id, title, message, notification_type, is_read, created_at, action_url
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", notFoundOnInvalidID(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanNotification(row scannable) (model.Notification, error) {
	var (
		n         model.Notification
		typ       string
		actionURL sql.NullString
	)
	err := row.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message,
		&typ, &n.IsRead, &n.CreatedAt, &actionURL,
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("failed to scan notification: %w", err)
	}
	n.NotificationType = model.NotificationType(typ)
	if actionURL.Valid {
		u := actionURL.String
		n.ActionURL = &u
	}
	return n, nil
}

var _ NotificationRepository = (*PostgresNotificationRepository)(nil)
