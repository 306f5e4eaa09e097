package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mentorconnect/goaltracker/internal/model"
	"github.com/mentorconnect/goaltracker/internal/repository"
	"github.com/mentorconnect/goaltracker/internal/storage"
	"github.com/mentorconnect/goaltracker/internal/validation"
)

var ErrAttachmentsDisabled = errors.New("attachments are not enabled")

// FileService stores goal attachments. Metadata lives in the files table,
// bytes in object storage.
type FileService struct {
	fileRepo repository.FileRepository
	goalRepo repository.GoalRepository
	storage  storage.Storage
}

// NewFileService accepts a nil storage; uploads then fail with
// ErrAttachmentsDisabled.
func NewFileService(fileRepo repository.FileRepository, goalRepo repository.GoalRepository, st storage.Storage) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		goalRepo: goalRepo,
		storage:  st,
	}
}

func (s *FileService) Enabled() bool {
	return s.storage != nil
}

// UploadGoalAttachment validates the upload and stores it for a goal the
// user owns.
func (s *FileService) UploadGoalAttachment(ctx context.Context, userID, goalID string, header *multipart.FileHeader) (*model.File, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("%w: %w", ErrInfrastructure, ErrAttachmentsDisabled)
	}

	_, err := s.goalRepo.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, storeError(err)
	}

	err = validation.ValidateFile(header, validation.ImageConstraints, validation.DocumentConstraints)
	if err != nil {
		return nil, validationError(err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, validationErrorf("failed to open upload: %v", err)
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := uuid.NewString() + ext
	storagePath := path.Join("goals", goalID, filename)

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	err = s.storage.Save(ctx, storagePath, file, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInfrastructure, err)
	}

	record := &model.File{
		ID:           uuid.NewString(),
		UserID:       userID,
		OwnerType:    model.FileOwnerGoal,
		OwnerID:      goalID,
		Type:         model.FileTypeAttachment,
		Filename:     filename,
		OriginalName: filepath.Base(header.Filename),
		MimeType:     mimeType,
		Size:         header.Size,
		StoragePath:  storagePath,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.fileRepo.Create(ctx, record)
	if err != nil {
		delErr := s.storage.Delete(ctx, storagePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, storeError(err)
	}

	s.presign(ctx, record)
	slog.Info("attachment uploaded", "file_id", record.ID, "goal_id", goalID, "size", record.Size)
	return record, nil
}

// GoalAttachments lists a goal's files with presigned URLs.
func (s *FileService) GoalAttachments(ctx context.Context, userID, goalID string) ([]*model.File, error) {
	_, err := s.goalRepo.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, storeError(err)
	}

	files, err := s.fileRepo.Files(ctx, model.FileOwnerGoal, goalID)
	if err != nil {
		return nil, storeError(err)
	}

	for _, f := range files {
		s.presign(ctx, f)
	}
	return files, nil
}

func (s *FileService) DeleteGoalAttachment(ctx context.Context, userID, goalID, fileID string) error {
	_, err := s.goalRepo.ByID(ctx, userID, goalID)
	if err != nil {
		return storeError(err)
	}

	file, err := s.fileRepo.ByID(ctx, fileID)
	if err != nil {
		return storeError(err)
	}
	if file.OwnerType != model.FileOwnerGoal || file.OwnerID != goalID {
		return storeError(repository.ErrFileNotFound)
	}

	err = s.fileRepo.Delete(ctx, fileID)
	if err != nil {
		return storeError(err)
	}

	s.deleteObject(ctx, file.StoragePath)
	return nil
}

// PurgeGoalFiles drops every attachment of a deleted goal. Object removal is
// best effort.
func (s *FileService) PurgeGoalFiles(ctx context.Context, goalID string) error {
	files, err := s.fileRepo.Files(ctx, model.FileOwnerGoal, goalID)
	if err != nil {
		return fmt.Errorf("failed to list goal files: %w", err)
	}

	err = s.fileRepo.DeleteByOwner(ctx, model.FileOwnerGoal, goalID)
	if err != nil {
		return fmt.Errorf("failed to delete goal file records: %w", err)
	}

	for _, f := range files {
		s.deleteObject(ctx, f.StoragePath)
	}

	return nil
}

func (s *FileService) deleteObject(ctx context.Context, storagePath string) {
	if s.storage == nil {
		return
	}
	err := s.storage.Delete(ctx, storagePath)
	if err != nil {
		slog.Warn("failed to delete file from storage", "error", err, "path", storagePath)
	}
}

func (s *FileService) presign(ctx context.Context, f *model.File) {
	if s.storage == nil {
		return
	}
	url, err := s.storage.PresignedURL(ctx, f.StoragePath)
	if err != nil {
		slog.Warn("failed to presign attachment", "error", err, "file_id", f.ID)
		return
	}
	f.URL = url
}
