package model

import "time"

// ResolveStatus computes the effective status shown to users. It is pure:
// the result depends only on the stored status, progress, completion and due
// dates, and now.
//
// Rules, first match wins:
//  1. progress is 100 and completedAt is set: COMPLETED
//  2. stored status is PAUSED or CANCELLED: unchanged
//  3. due date passed with progress below 100: OVERDUE
//  4. progress above 0: IN_PROGRESS
//  5. NOT_STARTED
func ResolveStatus(g *Goal, now time.Time) GoalStatus {
	if g.Progress == 100 && g.CompletedAt != nil {
		return GoalStatusCompleted
	}
	if g.Status.IsSticky() {
		return g.Status
	}
	if g.DueDate != nil && g.DueDate.Before(now) && g.Progress < 100 {
		return GoalStatusOverdue
	}
	if g.Progress > 0 {
		return GoalStatusInProgress
	}
	return GoalStatusNotStarted
}
