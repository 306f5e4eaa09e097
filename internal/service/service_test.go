package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mentorconnect/goaltracker/internal/db/dbtest"
	"github.com/mentorconnect/goaltracker/internal/model"
	"github.com/mentorconnect/goaltracker/internal/repository"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu    sync.Mutex
	goals []*model.Goal
}

func (n *recordingNotifier) HelpRequested(_ context.Context, goal *model.Goal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.goals = append(n.goals, goal)
	return nil
}

func (n *recordingNotifier) calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.goals)
}

type testEnv struct {
	db          *sqlx.DB
	clock       *fakeClock
	notifier    *recordingNotifier
	users       *UserService
	assignments *AssignmentService
	goals       *GoalService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := dbtest.New(t)
	userRepo := repository.NewUserRepository(database)

	env := &testEnv{
		db:       database,
		clock:    &fakeClock{now: baseTime},
		notifier: &recordingNotifier{},
		users:    NewUserService(userRepo),
	}
	env.assignments = NewAssignmentService(repository.NewAssignmentRepository(database), userRepo, nil)
	env.goals = NewGoalService(repository.NewGoalRepository(database), env.assignments, env.notifier, nil)
	env.goals.now = env.clock.Now

	return env
}

func (e *testEnv) user(t *testing.T, name string, role model.Role) *model.User {
	t.Helper()

	u, err := e.users.CreateUser(context.Background(), name+"@example.com", name, role)
	require.NoError(t, err)
	return u
}

func (e *testEnv) assign(t *testing.T, mentor, mentee *model.User) {
	t.Helper()

	_, err := e.assignments.Assign(context.Background(), mentor.ID, mentee.ID)
	require.NoError(t, err)
}

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
