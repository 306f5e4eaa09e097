package model

import "time"

const (
	NotificationTypeHelpRequested = "HELP_REQUESTED"
)

type Notification struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"userId"`
	Type      string     `db:"type" json:"type"`
	GoalID    *string    `db:"goal_id" json:"goalId,omitempty"`
	Message   string     `db:"message" json:"message"`
	ReadAt    *time.Time `db:"read_at" json:"readAt,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}
