package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mentorconnect/goaltracker/internal/model"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	Notifications(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, userID, id string, at time.Time) error
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `INSERT INTO notifications (id, user_id, type, goal_id, message, read_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query, n.ID, n.UserID, n.Type, n.GoalID, n.Message, n.ReadAt, n.CreatedAt)
	return err
}

// Notifications returns newest first.
func (r *notificationRepository) Notifications(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error) {
	notifications := []*model.Notification{}
	query := `SELECT id, user_id, type, goal_id, message, read_at, created_at FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	err := r.db.SelectContext(ctx, &notifications, query, userID)
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

// MarkRead is idempotent for an already read notification.
func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	query := `UPDATE notifications SET read_at = COALESCE(read_at, $1) WHERE id = $2 AND user_id = $3`

	result, err := r.db.ExecContext(ctx, query, at, id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}
