package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mentorconnect/goaltracker/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	ByID(ctx context.Context, id string) (*model.File, error)
	Files(ctx context.Context, ownerType, ownerID string) ([]*model.File, error)
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerType, ownerID string) error
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

const fileColumns = `id, user_id, owner_type, owner_id, type, filename, original_name, mime_type, size, storage_path, created_at`

func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	query := `INSERT INTO files (` + fileColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID,
		file.UserID,
		file.OwnerType,
		file.OwnerID,
		file.Type,
		file.Filename,
		file.OriginalName,
		file.MimeType,
		file.Size,
		file.StoragePath,
		file.CreatedAt,
	)

	return err
}

func (r *fileRepository) ByID(ctx context.Context, id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	err := r.db.GetContext(ctx, file, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *fileRepository) Files(ctx context.Context, ownerType, ownerID string) ([]*model.File, error) {
	files := []*model.File{}
	query := `SELECT ` + fileColumns + ` FROM files WHERE owner_type = $1 AND owner_id = $2 ORDER BY created_at ASC, id ASC`

	err := r.db.SelectContext(ctx, &files, query, ownerType, ownerID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrFileNotFound
	}

	return nil
}

func (r *fileRepository) DeleteByOwner(ctx context.Context, ownerType, ownerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE owner_type = $1 AND owner_id = $2`, ownerType, ownerID)
	return err
}
