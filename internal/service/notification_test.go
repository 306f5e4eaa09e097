package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mentorconnect/goaltracker/internal/model"
	"github.com/mentorconnect/goaltracker/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	fail string
}

func (m *fakeMailer) SendHelpRequestedEmail(_ context.Context, mentor, _ *model.User, _ *model.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mentor.ID == m.fail {
		return errors.New("mailbox full")
	}
	m.sent = append(m.sent, mentor.ID)
	return nil
}

func TestNotificationService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mentor := env.user(t, "mia", model.RoleMentor)
	second := env.user(t, "max", model.RoleMentor)
	mentee := env.user(t, "ana", model.RoleMentee)
	env.assign(t, mentor, mentee)
	env.assign(t, second, mentee)

	mailer := &fakeMailer{fail: second.ID}
	notifications := NewNotificationService(
		repository.NewNotificationRepository(env.db),
		repository.NewUserRepository(env.db),
		repository.NewAssignmentRepository(env.db),
		mailer,
	)
	env.goals.notifier = notifications

	goal, err := env.goals.CreateGoal(ctx, mentee.ID, GoalDraft{Title: "Switch teams"})
	require.NoError(t, err)

	// A failed email is logged, never surfaced to the mentee
	_, err = env.goals.SetHelpFlag(ctx, mentee.ID, goal.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{mentor.ID}, mailer.sent)

	for _, m := range []*model.User{mentor, second} {
		list, err := notifications.Notifications(ctx, m.ID, true)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, model.NotificationTypeHelpRequested, list[0].Type)
		require.NotNil(t, list[0].GoalID)
		assert.Equal(t, goal.ID, *list[0].GoalID)
		assert.Contains(t, list[0].Message, "Switch teams")
	}

	t.Run("direct call reports the failed email", func(t *testing.T) {
		err := notifications.HelpRequested(ctx, goal)
		assert.Error(t, err)
	})

	t.Run("mark read", func(t *testing.T) {
		list, err := notifications.Notifications(ctx, mentor.ID, true)
		require.NoError(t, err)
		require.NotEmpty(t, list)

		require.NoError(t, notifications.MarkRead(ctx, mentor.ID, list[0].ID))
		require.NoError(t, notifications.MarkRead(ctx, mentor.ID, list[0].ID))
		assert.ErrorIs(t, notifications.MarkRead(ctx, second.ID, list[0].ID), ErrNotFound)

		unread, err := notifications.Notifications(ctx, mentor.ID, true)
		require.NoError(t, err)
		assert.Len(t, unread, len(list)-1)
	})

	t.Run("mentee without mentors", func(t *testing.T) {
		loner := env.user(t, "lee", model.RoleMentee)
		g, err := env.goals.CreateGoal(ctx, loner.ID, GoalDraft{Title: "Alone"})
		require.NoError(t, err)
		assert.NoError(t, notifications.HelpRequested(ctx, g))
	})
}

func TestHelpEmailTemplates(t *testing.T) {
	goal := &model.Goal{
		ID:       "g1",
		OwnerID:  "u1",
		Title:    "Learn <Rust>",
		Progress: 40,
		Status:   model.GoalStatusInProgress,
	}

	subject, text, html := helpRequestedEmailTemplate("Mia", "Ana", goal, "<p>desc</p>", "http://localhost/mentor/goals/help", "MentorConnect")
	assert.Equal(t, "Ana asked for help with a goal", subject)
	assert.Contains(t, text, `"Learn <Rust>" (40% done`)
	assert.Contains(t, html, "Learn &lt;Rust&gt;")
	assert.Contains(t, html, "<p>desc</p>")

	subject, body := helpDigestEmailTemplate("Mia", []*model.Goal{goal}, map[string]*model.User{"u1": {Name: "Ana"}}, "http://x", "MentorConnect")
	assert.Equal(t, "1 goal(s) waiting for your help", subject)
	assert.Contains(t, body, "- Ana: Learn <Rust> (40%)")
}
