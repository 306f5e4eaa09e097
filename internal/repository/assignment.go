package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mentorconnect/goaltracker/internal/model"
)

var (
	ErrAssignmentNotFound = errors.New("mentor assignment not found")
	ErrAssignmentExists   = errors.New("mentor assignment already exists")
)

type AssignmentRepository interface {
	Assign(ctx context.Context, a *model.MentorAssignment) error
	Unassign(ctx context.Context, mentorID, menteeID string) error
	// MenteeIDs returns the mentor's mentees in assignment order.
	MenteeIDs(ctx context.Context, mentorID string) ([]string, error)
	MentorIDs(ctx context.Context, menteeID string) ([]string, error)
	// MentorsWithOpenHelpRequests lists mentors with at least one visible
	// goal flagged for help among their mentees.
	MentorsWithOpenHelpRequests(ctx context.Context) ([]string, error)
}

type assignmentRepository struct {
	db *sqlx.DB
}

func NewAssignmentRepository(db *sqlx.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Assign(ctx context.Context, a *model.MentorAssignment) error {
	query := `INSERT INTO mentor_assignments (mentor_id, mentee_id, created_at) VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, a.MentorID, a.MenteeID, a.CreatedAt)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrAssignmentExists
		}
		return err
	}

	return nil
}

func (r *assignmentRepository) Unassign(ctx context.Context, mentorID, menteeID string) error {
	query := `DELETE FROM mentor_assignments WHERE mentor_id = $1 AND mentee_id = $2`
	result, err := r.db.ExecContext(ctx, query, mentorID, menteeID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrAssignmentNotFound
	}

	return nil
}

func (r *assignmentRepository) MenteeIDs(ctx context.Context, mentorID string) ([]string, error) {
	ids := []string{}
	query := `SELECT mentee_id FROM mentor_assignments WHERE mentor_id = $1 ORDER BY created_at ASC, mentee_id ASC`

	err := r.db.SelectContext(ctx, &ids, query, mentorID)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *assignmentRepository) MentorIDs(ctx context.Context, menteeID string) ([]string, error) {
	ids := []string{}
	query := `SELECT mentor_id FROM mentor_assignments WHERE mentee_id = $1 ORDER BY created_at ASC, mentor_id ASC`

	err := r.db.SelectContext(ctx, &ids, query, menteeID)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *assignmentRepository) MentorsWithOpenHelpRequests(ctx context.Context) ([]string, error) {
	ids := []string{}
	query := `SELECT DISTINCT a.mentor_id
	          FROM mentor_assignments a
	          JOIN goals g ON g.owner_id = a.mentee_id
	          WHERE g.needs_help = $1 AND (g.visible_to_mentor IS NULL OR g.visible_to_mentor = $1)
	          ORDER BY a.mentor_id`

	err := r.db.SelectContext(ctx, &ids, query, true)
	if err != nil {
		return nil, err
	}

	return ids, nil
}
