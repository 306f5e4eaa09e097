package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mentorconnect/goaltracker/internal/model"
	"github.com/robfig/cron/v3"
)

type DigestMailer interface {
	SendHelpDigestEmail(ctx context.Context, mentor *model.User, goals []*model.Goal, owners map[string]*model.User) error
}

type MentorSource interface {
	MentorsWithOpenHelpRequests(ctx context.Context) ([]string, error)
}

type HelpGoalSource interface {
	ListGoalsNeedingHelp(ctx context.Context, mentorID string) ([]*model.Goal, error)
}

type UserSource interface {
	ByID(ctx context.Context, id string) (*model.User, error)
}

// HelpDigest emails every mentor a summary of the goals still waiting on
// them.
type HelpDigest struct {
	mentors DigestMentors
	mailer  DigestMailer
}

// DigestMentors bundles the lookups the digest needs.
type DigestMentors struct {
	Mentors MentorSource
	Goals   HelpGoalSource
	Users   UserSource
}

func NewHelpDigest(mentors DigestMentors, mailer DigestMailer) *HelpDigest {
	return &HelpDigest{mentors: mentors, mailer: mailer}
}

// Run sends one digest per mentor and returns the number sent. Failures for
// one mentor don't stop the others.
func (d *HelpDigest) Run(ctx context.Context) (int, error) {
	mentorIDs, err := d.mentors.Mentors.MentorsWithOpenHelpRequests(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list mentors: %w", err)
	}

	sent := 0
	var errs []error
	for _, mentorID := range mentorIDs {
		ok, err := d.sendOne(ctx, mentorID)
		if err != nil {
			slog.Error("failed to send help digest", "error", err, "mentor_id", mentorID)
			errs = append(errs, err)
			continue
		}
		if ok {
			sent++
		}
	}

	return sent, errors.Join(errs...)
}

func (d *HelpDigest) sendOne(ctx context.Context, mentorID string) (bool, error) {
	goals, err := d.mentors.Goals.ListGoalsNeedingHelp(ctx, mentorID)
	if err != nil {
		return false, err
	}
	if len(goals) == 0 {
		return false, nil
	}

	mentor, err := d.mentors.Users.ByID(ctx, mentorID)
	if err != nil {
		return false, err
	}

	owners := make(map[string]*model.User)
	for _, g := range goals {
		if _, ok := owners[g.OwnerID]; ok {
			continue
		}
		owner, err := d.mentors.Users.ByID(ctx, g.OwnerID)
		if err != nil {
			return false, err
		}
		owners[g.OwnerID] = owner
	}

	err = d.mailer.SendHelpDigestEmail(ctx, mentor, goals, owners)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Scheduler runs the digest on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers the digest under schedule, a standard five field cron
// expression.
func NewScheduler(schedule string, digest *HelpDigest) (*Scheduler, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		sent, err := digest.Run(context.Background())
		if err != nil {
			slog.Error("help digest finished with errors", "error", err, "sent", sent)
			return
		}
		slog.Info("help digest sent", "sent", sent)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", schedule, err)
	}

	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for a running one to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
