package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mentorconnect/goaltracker/internal/model"
	"github.com/mentorconnect/goaltracker/internal/repository"
	"github.com/mentorconnect/goaltracker/internal/validation"
)

type UserService struct {
	userRepository repository.UserRepository
}

func NewUserService(userRepository repository.UserRepository) *UserService {
	return &UserService{userRepository: userRepository}
}

// CreateUser registers a user directly. Self sign-up and invite approval
// live outside this service.
func (s *UserService) CreateUser(ctx context.Context, email, name string, role model.Role) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = validation.NormalizeText(name)

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, validationError(err)
	}

	err = validation.ValidateName(name)
	if err != nil {
		return nil, validationError(err)
	}

	if !role.IsValid() {
		return nil, validationErrorf("invalid role %q", role)
	}

	user := &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	err = s.userRepository.Create(ctx, user)
	if err != nil {
		return nil, storeError(err)
	}

	slog.Info("user created", "user_id", user.ID, "role", role)
	return user, nil
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepository.ByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

func (s *UserService) ByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepository.ByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}
