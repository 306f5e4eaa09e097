package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mentorconnect/goaltracker/internal/model"
	"github.com/mentorconnect/goaltracker/internal/repository"
)

// HelpMailer emails a mentor about a single help request.
type HelpMailer interface {
	SendHelpRequestedEmail(ctx context.Context, mentor, mentee *model.User, goal *model.Goal) error
}

// NotificationService fans help requests out to the owner's mentors as
// in-app notifications and emails.
type NotificationService struct {
	repo        repository.NotificationRepository
	users       repository.UserRepository
	assignments repository.AssignmentRepository
	mailer      HelpMailer
	now         func() time.Time
}

func NewNotificationService(
	repo repository.NotificationRepository,
	users repository.UserRepository,
	assignments repository.AssignmentRepository,
	mailer HelpMailer,
) *NotificationService {
	return &NotificationService{
		repo:        repo,
		users:       users,
		assignments: assignments,
		mailer:      mailer,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// HelpRequested records a notification for every mentor of the goal owner
// and emails them. It keeps going past individual failures and returns them
// joined.
func (s *NotificationService) HelpRequested(ctx context.Context, goal *model.Goal) error {
	mentorIDs, err := s.assignments.MentorIDs(ctx, goal.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to load mentors: %w", err)
	}
	if len(mentorIDs) == 0 {
		return nil
	}

	mentee, err := s.users.ByID(ctx, goal.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to load goal owner: %w", err)
	}

	mentors, err := s.users.ByIDs(ctx, mentorIDs)
	if err != nil {
		return fmt.Errorf("failed to load mentors: %w", err)
	}

	message := fmt.Sprintf("%s asked for help with %q", mentee.Name, goal.Title)
	goalID := goal.ID

	var errs []error
	for _, mentor := range mentors {
		n := &model.Notification{
			ID:        uuid.NewString(),
			UserID:    mentor.ID,
			Type:      model.NotificationTypeHelpRequested,
			GoalID:    &goalID,
			Message:   message,
			CreatedAt: s.now(),
		}

		err = s.repo.Create(ctx, n)
		if err != nil {
			errs = append(errs, fmt.Errorf("notification for %s: %w", mentor.ID, err))
			continue
		}

		if s.mailer == nil {
			continue
		}
		err = s.mailer.SendHelpRequestedEmail(ctx, mentor, mentee, goal)
		if err != nil {
			errs = append(errs, fmt.Errorf("email to %s: %w", mentor.ID, err))
		}
	}

	slog.Info("help request fanned out", "goal_id", goal.ID, "mentors", len(mentors), "failures", len(errs))
	return errors.Join(errs...)
}

func (s *NotificationService) Notifications(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error) {
	notifications, err := s.repo.Notifications(ctx, userID, unreadOnly)
	if err != nil {
		return nil, storeError(err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	err := s.repo.MarkRead(ctx, userID, id, s.now())
	if err != nil {
		return storeError(err)
	}
	return nil
}
