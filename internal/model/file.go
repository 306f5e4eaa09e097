package model

import (
	"time"
)

const (
	FileOwnerGoal = "goal"

	FileTypeAttachment = "attachment"
)

type File struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`       // uploader
	OwnerType    string    `db:"owner_type" json:"ownerType"` // "goal"
	OwnerID      string    `db:"owner_id" json:"ownerId"`
	Type         string    `db:"type" json:"type"`
	Filename     string    `db:"filename" json:"-"`
	OriginalName string    `db:"original_name" json:"originalName"`
	MimeType     string    `db:"mime_type" json:"mimeType"`
	Size         int64     `db:"size" json:"size"`
	StoragePath  string    `db:"storage_path" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`

	// Computed, presigned on read
	URL string `db:"-" json:"url,omitempty"`
}
