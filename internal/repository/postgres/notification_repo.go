package postgres

import (
	"context"
	"database/sql"

	"eventscout/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{
		DB: db,
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (user_email, event_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, n.UserEmail, n.EventID, n.CreatedAt).Scan(&n.ID)
}

func (r *notificationRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_email, event_id, created_at
		FROM notifications
		WHERE user_email = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{}
		if err := rows.Scan(&n.ID, &n.UserEmail, &n.EventID, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
