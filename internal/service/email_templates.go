package service

import (
	"fmt"
	"html"
	"strings"

	"github.com/mentorconnect/goaltracker/internal/model"
)

func helpRequestedEmailTemplate(mentorName, menteeName string, goal *model.Goal, descriptionHTML, goalURL, appName string) (string, string, string) {
	subject := fmt.Sprintf("%s asked for help with a goal", menteeName)

	text := fmt.Sprintf(`Hi %s,

%s asked for help with their goal "%s" (%d%% done, status %s).

%s

See every goal waiting for you: %s

Best,
The %s Team`, mentorName, menteeName, goal.Title, goal.Progress, goal.Status, goal.Description, goalURL, appName)

	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>%s asked for help with their goal <strong>%s</strong> (%d%% done, status %s).</p>
%s
<p><a href="%s">See every goal waiting for you</a></p>
<p>Best,<br>The %s Team</p>`,
		html.EscapeString(mentorName),
		html.EscapeString(menteeName),
		html.EscapeString(goal.Title),
		goal.Progress,
		goal.Status,
		descriptionHTML,
		html.EscapeString(goalURL),
		html.EscapeString(appName),
	)

	return subject, text, body
}

func helpDigestEmailTemplate(mentorName string, goals []*model.Goal, owners map[string]*model.User, helpURL, appName string) (string, string) {
	subject := fmt.Sprintf("%d goal(s) waiting for your help", len(goals))

	var list strings.Builder
	for _, g := range goals {
		owner := "A mentee"
		if u, ok := owners[g.OwnerID]; ok {
			owner = u.Name
		}
		since := ""
		if g.HelpRequestedAt != nil {
			since = ", asked " + g.HelpRequestedAt.Format("Jan 2")
		}
		fmt.Fprintf(&list, "- %s: %s (%d%%%s)\n", owner, g.Title, g.Progress, since)
	}

	body := fmt.Sprintf(`Hi %s,

These goals are still flagged for help, oldest first:

%s
Open your help queue: %s

Best,
The %s Team`, mentorName, list.String(), helpURL, appName)

	return subject, body
}
