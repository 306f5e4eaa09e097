package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mentorconnect/goaltracker/internal/model"
)

var (
	ErrGoalNotFound     = errors.New("goal not found")
	ErrRevisionConflict = errors.New("goal was modified concurrently")
)

type GoalRepository interface {
	Create(ctx context.Context, goal *model.Goal) error
	ByID(ctx context.Context, ownerID, goalID string) (*model.Goal, error)
	Goals(ctx context.Context, ownerID string) ([]*model.Goal, error)
	GoalsForOwners(ctx context.Context, ownerIDs []string) ([]*model.Goal, error)
	// Update writes goal if its stored revision still equals expectedRevision.
	// On success goal.Revision is advanced. Milestones are replaced only
	// when replaceMilestones is set.
	Update(ctx context.Context, goal *model.Goal, expectedRevision int64, replaceMilestones bool) error
	Delete(ctx context.Context, ownerID, goalID string) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

const goalColumns = `id, owner_id, title, description, category, priority, status, progress,
	due_date, completed_at, visible_to_mentor, needs_help, help_requested_at, revision, created_at, updated_at`

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO goals (` + goalColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = tx.ExecContext(ctx, query,
		goal.ID,
		goal.OwnerID,
		goal.Title,
		goal.Description,
		goal.Category,
		goal.Priority,
		goal.Status,
		goal.Progress,
		goal.DueDate,
		goal.CompletedAt,
		goal.VisibleToMentor,
		goal.NeedsHelp,
		goal.HelpRequestedAt,
		goal.Revision,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		return err
	}

	err = insertMilestones(ctx, tx, goal.ID, goal.Milestones)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *goalRepository) ByID(ctx context.Context, ownerID, goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND owner_id = $2`

	err := r.db.GetContext(ctx, goal, query, goalID, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	err = r.attachMilestones(ctx, []*model.Goal{goal})
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// Goals returns the owner's goals in creation order.
func (r *goalRepository) Goals(ctx context.Context, ownerID string) ([]*model.Goal, error) {
	return r.GoalsForOwners(ctx, []string{ownerID})
}

// GoalsForOwners returns goals grouped by owner in the order the owners were
// given, each owner's goals in creation order.
func (r *goalRepository) GoalsForOwners(ctx context.Context, ownerIDs []string) ([]*model.Goal, error) {
	if len(ownerIDs) == 0 {
		return []*model.Goal{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+goalColumns+` FROM goals WHERE owner_id IN (?) ORDER BY created_at ASC, id ASC`, ownerIDs)
	if err != nil {
		return nil, err
	}

	var goals []*model.Goal
	err = r.db.SelectContext(ctx, &goals, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	err = r.attachMilestones(ctx, goals)
	if err != nil {
		return nil, err
	}

	if len(ownerIDs) == 1 {
		return goals, nil
	}

	byOwner := make(map[string][]*model.Goal, len(ownerIDs))
	for _, g := range goals {
		byOwner[g.OwnerID] = append(byOwner[g.OwnerID], g)
	}

	ordered := make([]*model.Goal, 0, len(goals))
	seen := make(map[string]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, byOwner[id]...)
	}

	return ordered, nil
}

func (r *goalRepository) Update(ctx context.Context, goal *model.Goal, expectedRevision int64, replaceMilestones bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `UPDATE goals
	          SET title = $1, description = $2, category = $3, priority = $4, status = $5, progress = $6,
	              due_date = $7, completed_at = $8, visible_to_mentor = $9, needs_help = $10,
	              help_requested_at = $11, revision = $12, updated_at = $13
	          WHERE id = $14 AND owner_id = $15 AND revision = $16`

	result, err := tx.ExecContext(ctx, query,
		goal.Title,
		goal.Description,
		goal.Category,
		goal.Priority,
		goal.Status,
		goal.Progress,
		goal.DueDate,
		goal.CompletedAt,
		goal.VisibleToMentor,
		goal.NeedsHelp,
		goal.HelpRequestedAt,
		expectedRevision+1,
		goal.UpdatedAt,
		goal.ID,
		goal.OwnerID,
		expectedRevision,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		var exists int
		err = tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM goals WHERE id = $1 AND owner_id = $2`, goal.ID, goal.OwnerID)
		if err != nil {
			return err
		}
		if exists == 0 {
			return ErrGoalNotFound
		}
		return ErrRevisionConflict
	}

	if replaceMilestones {
		_, err = tx.ExecContext(ctx, `DELETE FROM goal_milestones WHERE goal_id = $1`, goal.ID)
		if err != nil {
			return err
		}

		err = insertMilestones(ctx, tx, goal.ID, goal.Milestones)
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return err
	}

	goal.Revision = expectedRevision + 1
	return nil
}

func (r *goalRepository) Delete(ctx context.Context, ownerID, goalID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND owner_id = $2`, goalID, ownerID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	// Covers SQLite connections opened without foreign_keys enabled
	_, err = tx.ExecContext(ctx, `DELETE FROM goal_milestones WHERE goal_id = $1`, goalID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func insertMilestones(ctx context.Context, tx *sqlx.Tx, goalID string, milestones []model.Milestone) error {
	query := `INSERT INTO goal_milestones (id, goal_id, position, title, completed) VALUES ($1, $2, $3, $4, $5)`

	for i := range milestones {
		m := &milestones[i]
		m.GoalID = goalID
		m.Position = i

		_, err := tx.ExecContext(ctx, query, m.ID, goalID, i, m.Title, m.Completed)
		if err != nil {
			return fmt.Errorf("failed to insert milestone %d: %w", i, err)
		}
	}

	return nil
}

func (r *goalRepository) attachMilestones(ctx context.Context, goals []*model.Goal) error {
	if len(goals) == 0 {
		return nil
	}

	ids := make([]string, len(goals))
	byID := make(map[string]*model.Goal, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
		byID[g.ID] = g
		g.Milestones = []model.Milestone{}
	}

	query, args, err := sqlx.In(`SELECT id, goal_id, position, title, completed FROM goal_milestones
	                             WHERE goal_id IN (?) ORDER BY goal_id, position ASC`, ids)
	if err != nil {
		return err
	}

	var milestones []model.Milestone
	err = r.db.SelectContext(ctx, &milestones, r.db.Rebind(query), args...)
	if err != nil {
		return err
	}

	for _, m := range milestones {
		g := byID[m.GoalID]
		g.Milestones = append(g.Milestones, m)
	}

	return nil
}
