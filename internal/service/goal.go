package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mentorconnect/goaltracker/internal/markdown"
	"github.com/mentorconnect/goaltracker/internal/model"
	"github.com/mentorconnect/goaltracker/internal/repository"
	"github.com/mentorconnect/goaltracker/internal/validation"
)

// HelpNotifier is told when a mentee raises the help flag on a goal their
// mentors can see.
type HelpNotifier interface {
	HelpRequested(ctx context.Context, goal *model.Goal) error
}

// AttachmentPurger removes the files attached to a deleted goal.
type AttachmentPurger interface {
	PurgeGoalFiles(ctx context.Context, goalID string) error
}

// MenteeLister resolves the mentees assigned to a mentor.
type MenteeLister interface {
	MenteeIDs(ctx context.Context, mentorID string) ([]string, error)
}

type MilestoneInput struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type GoalDraft struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    model.GoalCategory `json:"category"`
	Priority    model.GoalPriority `json:"priority"`
	Progress    *int               `json:"progress"`
	DueDate     *time.Time         `json:"dueDate"`
	Milestones  []MilestoneInput   `json:"milestones"`
}

// GoalPatch changes only the fields that are set. Milestones, when set,
// replace the whole list; entries keep their id when it matches an existing
// milestone.
type GoalPatch struct {
	Title           *string             `json:"title"`
	Description     *string             `json:"description"`
	Category        *model.GoalCategory `json:"category"`
	Priority        *model.GoalPriority `json:"priority"`
	Status          *model.GoalStatus   `json:"status"`
	Progress        *int                `json:"progress"`
	DueDate         *time.Time          `json:"dueDate"`
	ClearDueDate    bool                `json:"clearDueDate"`
	Milestones      *[]MilestoneInput   `json:"milestones"`
	VisibleToMentor *bool               `json:"visibleToMentor"`
	// Revision, when set, must equal the stored revision.
	Revision *int64 `json:"revision"`
}

type GoalStats struct {
	Total           int                        `json:"total"`
	ByStatus        map[model.GoalStatus]int   `json:"byStatus"`
	ByCategory      map[model.GoalCategory]int `json:"byCategory"`
	NeedsHelp       int                        `json:"needsHelp"`
	AverageProgress float64                    `json:"averageProgress"`
}

type GoalService struct {
	repo        repository.GoalRepository
	mentees     MenteeLister
	notifier    HelpNotifier
	attachments AttachmentPurger
	markdown    *markdown.Parser
	now         func() time.Time
}

// NewGoalService wires the goal service. notifier and attachments may be nil.
func NewGoalService(
	repo repository.GoalRepository,
	mentees MenteeLister,
	notifier HelpNotifier,
	attachments AttachmentPurger,
) *GoalService {
	return &GoalService{
		repo:        repo,
		mentees:     mentees,
		notifier:    notifier,
		attachments: attachments,
		markdown:    markdown.NewParser(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *GoalService) CreateGoal(ctx context.Context, ownerID string, draft GoalDraft) (*model.Goal, error) {
	title := validation.NormalizeText(draft.Title)
	err := validation.ValidateGoalTitle(title)
	if err != nil {
		return nil, validationError(err)
	}

	description := validation.NormalizeText(draft.Description)
	err = validation.ValidateGoalDescription(description)
	if err != nil {
		return nil, validationError(err)
	}

	category := draft.Category
	if category == "" {
		category = model.GoalCategoryPersonalGrowth
	}
	if !category.IsValid() {
		return nil, validationErrorf("invalid category %q", category)
	}

	priority := draft.Priority
	if priority == "" {
		priority = model.GoalPriorityMedium
	}
	if !priority.IsValid() {
		return nil, validationErrorf("invalid priority %q", priority)
	}

	progress := 0
	if draft.Progress != nil {
		progress = *draft.Progress
		err = validation.ValidateProgress(progress)
		if err != nil {
			return nil, validationError(err)
		}
	}

	milestones, err := buildMilestones(draft.Milestones, nil)
	if err != nil {
		return nil, err
	}
	progress = model.MilestoneProgress(milestones, progress)

	now := s.now()
	goal := &model.Goal{
		ID:          newGoalID(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		Status:      model.GoalStatusNotStarted,
		Progress:    progress,
		DueDate:     utcPtr(draft.DueDate),
		Revision:    1,
		CreatedAt:   now,
		UpdatedAt:   now,
		Milestones:  milestones,
	}
	settleCompletion(goal, now)

	err = s.repo.Create(ctx, goal)
	if err != nil {
		return nil, storeError(err)
	}

	slog.Info("goal created", "goal_id", goal.ID, "owner_id", ownerID, "milestones", len(milestones))
	return goal, nil
}

func (s *GoalService) UpdateGoal(ctx context.Context, ownerID, goalID string, patch GoalPatch) (*model.Goal, error) {
	current, err := s.repo.ByID(ctx, ownerID, goalID)
	if err != nil {
		return nil, storeError(err)
	}

	if patch.Revision != nil && *patch.Revision != current.Revision {
		return nil, fmt.Errorf("%w: goal is at revision %d, not %d", ErrConflict, current.Revision, *patch.Revision)
	}

	goal := current.Clone()
	err = applyPatch(goal, patch)
	if err != nil {
		return nil, err
	}

	now := s.now()
	goal.UpdatedAt = now
	settleCompletion(goal, now)

	err = s.repo.Update(ctx, goal, current.Revision, patch.Milestones != nil)
	if err != nil {
		return nil, storeError(err)
	}

	return goal, nil
}

// applyPatch merges patch into goal, deriving progress from milestones.
func applyPatch(goal *model.Goal, patch GoalPatch) error {
	if patch.Title != nil {
		title := validation.NormalizeText(*patch.Title)
		err := validation.ValidateGoalTitle(title)
		if err != nil {
			return validationError(err)
		}
		goal.Title = title
	}

	if patch.Description != nil {
		description := validation.NormalizeText(*patch.Description)
		err := validation.ValidateGoalDescription(description)
		if err != nil {
			return validationError(err)
		}
		goal.Description = description
	}

	if patch.Category != nil {
		if !patch.Category.IsValid() {
			return validationErrorf("invalid category %q", *patch.Category)
		}
		goal.Category = *patch.Category
	}

	if patch.Priority != nil {
		if !patch.Priority.IsValid() {
			return validationErrorf("invalid priority %q", *patch.Priority)
		}
		goal.Priority = *patch.Priority
	}

	if patch.ClearDueDate {
		goal.DueDate = nil
	} else if patch.DueDate != nil {
		goal.DueDate = utcPtr(patch.DueDate)
	}

	if patch.VisibleToMentor != nil {
		v := *patch.VisibleToMentor
		goal.VisibleToMentor = &v
	}

	if patch.Progress != nil {
		err := validation.ValidateProgress(*patch.Progress)
		if err != nil {
			return validationError(err)
		}
	}

	if patch.Milestones != nil {
		milestones, err := buildMilestones(*patch.Milestones, goal.Milestones)
		if err != nil {
			return err
		}
		goal.Milestones = milestones
	}

	switch {
	case len(goal.Milestones) > 0:
		derived := model.MilestoneProgress(goal.Milestones, goal.Progress)
		if patch.Milestones == nil && patch.Progress != nil && *patch.Progress != derived {
			return validationErrorf("progress is derived from milestones (%d), cannot set %d", derived, *patch.Progress)
		}
		goal.Progress = derived
	case patch.Progress != nil:
		goal.Progress = *patch.Progress
	}

	if patch.Status != nil {
		status := *patch.Status
		if !status.IsValid() {
			return validationErrorf("invalid status %q", status)
		}
		if status == model.GoalStatusOverdue {
			return validationErrorf("status %s follows from the due date and cannot be set", status)
		}

		if status == model.GoalStatusCompleted {
			if len(goal.Milestones) > 0 {
				if goal.Progress != 100 {
					return validationErrorf("cannot complete a goal with open milestones")
				}
			} else {
				if patch.Progress != nil && *patch.Progress != 100 {
					return validationErrorf("a completed goal has progress 100, not %d", *patch.Progress)
				}
				goal.Progress = 100
			}
		}

		goal.Status = status
	}

	return nil
}

// SetHelpFlag raises or lowers the help flag. Raising stamps
// helpRequestedAt and notifies mentors; repeating the current value writes
// nothing.
func (s *GoalService) SetHelpFlag(ctx context.Context, ownerID, goalID string, needsHelp bool) (*model.Goal, error) {
	current, err := s.repo.ByID(ctx, ownerID, goalID)
	if err != nil {
		return nil, storeError(err)
	}

	now := s.now()
	if current.NeedsHelp == needsHelp {
		current.Status = model.ResolveStatus(current, now)
		return current, nil
	}

	goal := current.Clone()
	goal.NeedsHelp = needsHelp
	if needsHelp {
		goal.HelpRequestedAt = &now
	}
	goal.UpdatedAt = now
	goal.Status = model.ResolveStatus(goal, now)

	err = s.repo.Update(ctx, goal, current.Revision, false)
	if err != nil {
		return nil, storeError(err)
	}

	if needsHelp && s.notifier != nil && model.VisibleToMentor(goal.VisibleToMentor) {
		err = s.notifier.HelpRequested(ctx, goal.Clone())
		if err != nil {
			slog.Error("failed to notify mentors", "error", err, "goal_id", goal.ID)
		}
	}

	return goal, nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, ownerID, goalID string) error {
	err := s.repo.Delete(ctx, ownerID, goalID)
	if err != nil {
		return storeError(err)
	}

	if s.attachments != nil {
		err = s.attachments.PurgeGoalFiles(ctx, goalID)
		if err != nil {
			slog.Error("failed to purge goal attachments", "error", err, "goal_id", goalID)
		}
	}

	slog.Info("goal deleted", "goal_id", goalID, "owner_id", ownerID)
	return nil
}

func (s *GoalService) Goal(ctx context.Context, ownerID, goalID string) (*model.Goal, error) {
	goal, err := s.repo.ByID(ctx, ownerID, goalID)
	if err != nil {
		return nil, storeError(err)
	}

	s.resolve(goal)
	return goal, nil
}

func (s *GoalService) ListGoalsForOwner(ctx context.Context, ownerID string) ([]*model.Goal, error) {
	goals, err := s.repo.Goals(ctx, ownerID)
	if err != nil {
		return nil, storeError(err)
	}

	s.resolve(goals...)
	return goals, nil
}

// ListGoalsForMentorView returns the visible goals of every mentee assigned
// to the mentor.
func (s *GoalService) ListGoalsForMentorView(ctx context.Context, mentorID string) ([]*model.Goal, error) {
	menteeIDs, err := s.mentees.MenteeIDs(ctx, mentorID)
	if err != nil {
		return nil, asServiceError(err)
	}

	goals, err := s.repo.GoalsForOwners(ctx, menteeIDs)
	if err != nil {
		return nil, storeError(err)
	}

	visible := make([]*model.Goal, 0, len(goals))
	for _, g := range goals {
		if model.VisibleToMentor(g.VisibleToMentor) {
			visible = append(visible, g)
		}
	}

	s.resolve(visible...)
	return visible, nil
}

// ListGoalsNeedingHelp returns the mentor view goals with the help flag up,
// oldest request first.
func (s *GoalService) ListGoalsNeedingHelp(ctx context.Context, mentorID string) ([]*model.Goal, error) {
	goals, err := s.ListGoalsForMentorView(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	help := make([]*model.Goal, 0)
	for _, g := range goals {
		if g.NeedsHelp {
			help = append(help, g)
		}
	}

	sort.SliceStable(help, func(i, j int) bool {
		a, b := help[i].HelpRequestedAt, help[j].HelpRequestedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.Before(*b)
	})

	return help, nil
}

func (s *GoalService) GoalStats(ctx context.Context, ownerID string) (*GoalStats, error) {
	goals, err := s.ListGoalsForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := &GoalStats{
		Total:      len(goals),
		ByStatus:   make(map[model.GoalStatus]int, len(model.AllGoalStatuses)),
		ByCategory: make(map[model.GoalCategory]int, len(model.AllGoalCategories)),
	}
	for _, st := range model.AllGoalStatuses {
		stats.ByStatus[st] = 0
	}
	for _, c := range model.AllGoalCategories {
		stats.ByCategory[c] = 0
	}

	sum := 0
	for _, g := range goals {
		stats.ByStatus[g.Status]++
		stats.ByCategory[g.Category]++
		if g.NeedsHelp {
			stats.NeedsHelp++
		}
		sum += g.Progress
	}

	if len(goals) > 0 {
		stats.AverageProgress = math.Round(float64(sum)/float64(len(goals))*10) / 10
	}

	return stats, nil
}

// ImportGoal creates a goal from a markdown document with optional
// frontmatter; task list items become milestones.
func (s *GoalService) ImportGoal(ctx context.Context, ownerID string, source []byte) (*model.Goal, error) {
	doc, err := s.markdown.ParseGoal(source)
	if err != nil {
		return nil, validationError(err)
	}

	draft := GoalDraft{
		Title:       doc.Title,
		Description: doc.Description,
		Category:    model.GoalCategory(doc.Category),
		Priority:    model.GoalPriority(doc.Priority),
		DueDate:     doc.Due,
	}
	for _, task := range doc.Tasks {
		draft.Milestones = append(draft.Milestones, MilestoneInput{Title: task.Title, Completed: task.Done})
	}

	return s.CreateGoal(ctx, ownerID, draft)
}

func (s *GoalService) resolve(goals ...*model.Goal) {
	now := s.now()
	for _, g := range goals {
		g.Status = model.ResolveStatus(g, now)
	}
}

// settleCompletion keeps completedAt in step with progress and normalizes the
// stored status.
func settleCompletion(goal *model.Goal, now time.Time) {
	if goal.Progress < 100 {
		goal.CompletedAt = nil
	} else if goal.CompletedAt == nil {
		t := now
		goal.CompletedAt = &t
	}
	goal.Status = model.ResolveStatus(goal, now)
}

func buildMilestones(inputs []MilestoneInput, existing []model.Milestone) ([]model.Milestone, error) {
	known := make(map[string]bool, len(existing))
	for _, m := range existing {
		known[m.ID] = true
	}

	titles := make([]string, len(inputs))
	milestones := make([]model.Milestone, len(inputs))
	for i, in := range inputs {
		titles[i] = validation.NormalizeText(in.Title)

		id := in.ID
		if id == "" || !known[id] {
			id = uuid.NewString()
		}
		known[id] = false

		milestones[i] = model.Milestone{
			ID:        id,
			Position:  i,
			Title:     titles[i],
			Completed: in.Completed,
		}
	}

	err := validation.ValidateMilestoneTitles(titles)
	if err != nil {
		return nil, validationError(err)
	}

	return milestones, nil
}

// newGoalID returns a time ordered id so goals created in the same instant
// still list in creation order.
func newGoalID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// asServiceError passes service errors through and classifies anything else
// as a store failure.
func asServiceError(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrInfrastructure} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return storeError(err)
}
