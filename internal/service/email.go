package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mentorconnect/goaltracker/internal/markdown"
	"github.com/mentorconnect/goaltracker/internal/model"
	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	markdown  *markdown.Parser
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

// NewEmailService sends through Resend. In dev mode emails are logged
// instead.
func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		markdown:  markdown.NewParser(),
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendHelpRequestedEmail(ctx context.Context, mentor, mentee *model.User, goal *model.Goal) error {
	goalURL := fmt.Sprintf("%s/mentor/goals/help", s.appURL)

	descriptionHTML, err := s.markdown.RenderHTML([]byte(goal.Description))
	if err != nil {
		slog.Warn("failed to render goal description", "error", err, "goal_id", goal.ID)
		descriptionHTML = ""
	}

	subject, text, html := helpRequestedEmailTemplate(mentor.Name, mentee.Name, goal, descriptionHTML, goalURL, s.appName)
	return s.send(ctx, "help_requested", mentor.Email, subject, text, html)
}

func (s *EmailService) SendHelpDigestEmail(ctx context.Context, mentor *model.User, goals []*model.Goal, owners map[string]*model.User) error {
	helpURL := fmt.Sprintf("%s/mentor/goals/help", s.appURL)

	subject, text := helpDigestEmailTemplate(mentor.Name, goals, owners, helpURL, s.appName)
	return s.send(ctx, "help_digest", mentor.Email, subject, text, "")
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, text, html string) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    text,
		Html:    html,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	slog.Info("email sent", "type", kind, "to", to)
	return nil
}
