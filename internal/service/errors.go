package service

import (
	"errors"
	"fmt"

	"github.com/mentorconnect/goaltracker/internal/repository"
)

// Error kinds. Every error returned by a service wraps exactly one of them;
// callers branch with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInfrastructure = errors.New("infrastructure error")
)

func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeError classifies a repository error.
func storeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrGoalNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrFileNotFound),
		errors.Is(err, repository.ErrAssignmentNotFound),
		errors.Is(err, repository.ErrNotificationNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repository.ErrRevisionConflict),
		errors.Is(err, repository.ErrAssignmentExists),
		errors.Is(err, repository.ErrDuplicateEmail):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %w", ErrInfrastructure, err)
	}
}
