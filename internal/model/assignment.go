package model

import "time"

// MentorAssignment links a mentor to one of their mentees.
type MentorAssignment struct {
	MentorID  string    `db:"mentor_id" json:"mentorId"`
	MenteeID  string    `db:"mentee_id" json:"menteeId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
