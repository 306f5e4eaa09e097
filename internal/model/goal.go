package model

import (
	"time"
)

type GoalCategory string

const (
	GoalCategorySkillDevelopment  GoalCategory = "SKILL_DEVELOPMENT"
	GoalCategoryCareerAdvancement GoalCategory = "CAREER_ADVANCEMENT"
	GoalCategoryLearningObjective GoalCategory = "LEARNING_OBJECTIVE"
	GoalCategoryProjectCompletion GoalCategory = "PROJECT_COMPLETION"
	GoalCategoryPersonalGrowth    GoalCategory = "PERSONAL_GROWTH"
	GoalCategoryNetworking        GoalCategory = "NETWORKING"
	GoalCategoryCertification     GoalCategory = "CERTIFICATION"
)

var AllGoalCategories = []GoalCategory{
	GoalCategorySkillDevelopment,
	GoalCategoryCareerAdvancement,
	GoalCategoryLearningObjective,
	GoalCategoryProjectCompletion,
	GoalCategoryPersonalGrowth,
	GoalCategoryNetworking,
	GoalCategoryCertification,
}

func (c GoalCategory) IsValid() bool {
	for _, v := range AllGoalCategories {
		if v == c {
			return true
		}
	}
	return false
}

type GoalPriority string

const (
	GoalPriorityLow      GoalPriority = "LOW"
	GoalPriorityMedium   GoalPriority = "MEDIUM"
	GoalPriorityHigh     GoalPriority = "HIGH"
	GoalPriorityCritical GoalPriority = "CRITICAL"
)

var AllGoalPriorities = []GoalPriority{
	GoalPriorityLow,
	GoalPriorityMedium,
	GoalPriorityHigh,
	GoalPriorityCritical,
}

func (p GoalPriority) IsValid() bool {
	for _, v := range AllGoalPriorities {
		if v == p {
			return true
		}
	}
	return false
}

type GoalStatus string

const (
	GoalStatusNotStarted GoalStatus = "NOT_STARTED"
	GoalStatusInProgress GoalStatus = "IN_PROGRESS"
	GoalStatusCompleted  GoalStatus = "COMPLETED"
	GoalStatusOverdue    GoalStatus = "OVERDUE"
	GoalStatusPaused     GoalStatus = "PAUSED"
	GoalStatusCancelled  GoalStatus = "CANCELLED"
)

var AllGoalStatuses = []GoalStatus{
	GoalStatusNotStarted,
	GoalStatusInProgress,
	GoalStatusCompleted,
	GoalStatusOverdue,
	GoalStatusPaused,
	GoalStatusCancelled,
}

func (s GoalStatus) IsValid() bool {
	for _, v := range AllGoalStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsSticky reports whether the status is set explicitly by the owner and
// survives date based resolution.
func (s GoalStatus) IsSticky() bool {
	return s == GoalStatusPaused || s == GoalStatusCancelled
}

type Goal struct {
	ID              string       `db:"id" json:"id"`
	OwnerID         string       `db:"owner_id" json:"ownerId"`
	Title           string       `db:"title" json:"title"`
	Description     string       `db:"description" json:"description"`
	Category        GoalCategory `db:"category" json:"category"`
	Priority        GoalPriority `db:"priority" json:"priority"`
	Status          GoalStatus   `db:"status" json:"status"`
	Progress        int          `db:"progress" json:"progress"`
	DueDate         *time.Time   `db:"due_date" json:"dueDate,omitempty"`
	CompletedAt     *time.Time   `db:"completed_at" json:"completedAt,omitempty"`
	VisibleToMentor *bool        `db:"visible_to_mentor" json:"visibleToMentor,omitempty"`
	NeedsHelp       bool         `db:"needs_help" json:"needsHelp"`
	HelpRequestedAt *time.Time   `db:"help_requested_at" json:"helpRequestedAt,omitempty"`
	Revision        int64        `db:"revision" json:"revision"`
	CreatedAt       time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updatedAt"`

	// Loaded from goal_milestones, ordered by position
	Milestones []Milestone `db:"-" json:"milestones"`
}

type Milestone struct {
	ID        string `db:"id" json:"id"`
	GoalID    string `db:"goal_id" json:"-"`
	Position  int    `db:"position" json:"-"`
	Title     string `db:"title" json:"title"`
	Completed bool   `db:"completed" json:"completed"`
}

// Clone returns a deep copy so a patch can be applied without touching the
// stored snapshot.
func (g *Goal) Clone() *Goal {
	c := *g
	if g.Milestones != nil {
		c.Milestones = make([]Milestone, len(g.Milestones))
		copy(c.Milestones, g.Milestones)
	}
	c.DueDate = cloneTime(g.DueDate)
	c.CompletedAt = cloneTime(g.CompletedAt)
	c.HelpRequestedAt = cloneTime(g.HelpRequestedAt)
	if g.VisibleToMentor != nil {
		v := *g.VisibleToMentor
		c.VisibleToMentor = &v
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
