package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mentorconnect/goaltracker/internal/cache"
	"github.com/mentorconnect/goaltracker/internal/model"
	"github.com/mentorconnect/goaltracker/internal/repository"
)

// AssignmentService manages which mentor sees which mentee. Mentee lists are
// read through the cache.
type AssignmentService struct {
	repo  repository.AssignmentRepository
	users repository.UserRepository
	cache cache.MenteeCache
}

func NewAssignmentService(repo repository.AssignmentRepository, users repository.UserRepository, menteeCache cache.MenteeCache) *AssignmentService {
	if menteeCache == nil {
		menteeCache = cache.Noop{}
	}
	return &AssignmentService{
		repo:  repo,
		users: users,
		cache: menteeCache,
	}
}

func (s *AssignmentService) Assign(ctx context.Context, mentorID, menteeID string) (*model.MentorAssignment, error) {
	err := s.checkRoles(ctx, mentorID, menteeID)
	if err != nil {
		return nil, err
	}

	a := &model.MentorAssignment{
		MentorID:  mentorID,
		MenteeID:  menteeID,
		CreatedAt: time.Now().UTC(),
	}

	err = s.repo.Assign(ctx, a)
	if err != nil {
		return nil, storeError(err)
	}

	s.invalidate(ctx, mentorID)
	slog.Info("mentor assigned", "mentor_id", mentorID, "mentee_id", menteeID)
	return a, nil
}

func (s *AssignmentService) Unassign(ctx context.Context, mentorID, menteeID string) error {
	err := s.repo.Unassign(ctx, mentorID, menteeID)
	if err != nil {
		return storeError(err)
	}

	s.invalidate(ctx, mentorID)
	slog.Info("mentor unassigned", "mentor_id", mentorID, "mentee_id", menteeID)
	return nil
}

func (s *AssignmentService) MenteeIDs(ctx context.Context, mentorID string) ([]string, error) {
	ids, err := s.cache.MenteeIDs(ctx, mentorID, func(ctx context.Context) ([]string, error) {
		return s.repo.MenteeIDs(ctx, mentorID)
	})
	if err != nil {
		return nil, storeError(err)
	}
	return ids, nil
}

func (s *AssignmentService) MentorIDs(ctx context.Context, menteeID string) ([]string, error) {
	ids, err := s.repo.MentorIDs(ctx, menteeID)
	if err != nil {
		return nil, storeError(err)
	}
	return ids, nil
}

// MentorsWithOpenHelpRequests lists mentors that have at least one visible
// goal flagged for help.
func (s *AssignmentService) MentorsWithOpenHelpRequests(ctx context.Context) ([]string, error) {
	ids, err := s.repo.MentorsWithOpenHelpRequests(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return ids, nil
}

func (s *AssignmentService) checkRoles(ctx context.Context, mentorID, menteeID string) error {
	if mentorID == menteeID {
		return validationErrorf("a user cannot mentor themselves")
	}

	mentor, err := s.users.ByID(ctx, mentorID)
	if err != nil {
		return storeError(err)
	}
	if !mentor.HasRole(model.RoleMentor) {
		return validationErrorf("user %s is not a mentor", mentorID)
	}

	mentee, err := s.users.ByID(ctx, menteeID)
	if err != nil {
		return storeError(err)
	}
	if !mentee.HasRole(model.RoleMentee) {
		return validationErrorf("user %s is not a mentee", menteeID)
	}

	return nil
}

func (s *AssignmentService) invalidate(ctx context.Context, mentorID string) {
	err := s.cache.Invalidate(ctx, mentorID)
	if err != nil {
		slog.Warn("failed to invalidate mentee cache", "error", err, "mentor_id", mentorID)
	}
}
