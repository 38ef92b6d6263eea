package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/slack-go/slack"
)

// SlackPoster is the part of the Slack client the notifier needs. It lets
// tests swap the real client for a fake.
type SlackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier posts rotation weeks to Slack channels
type Notifier struct {
	client SlackPoster
	logger *slog.Logger
}

// New creates a Notifier for a bot token
func New(token string, logger *slog.Logger) *Notifier {
	return NewWithClient(slack.New(token), logger)
}

// NewWithClient creates a Notifier around an existing client
func NewWithClient(client SlackPoster, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{client: client, logger: logger}
}

// FormatWeek renders one week as a Slack message, tasks in configured order
func FormatWeek(week models.Week, tasks []models.Task, assignment models.Assignment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, ":broom: *Chores for the week of %s*\n", week.ID())
	for i, people := range assignment.Ordered(tasks) {
		names := make([]string, len(people))
		for j, p := range people {
			names[j] = string(p)
		}
		who := strings.Join(names, ", ")
		if who == "" {
			who = "_nobody_"
		}
		fmt.Fprintf(&sb, "• %s: %s\n", tasks[i].Name, who)
	}
	return sb.String()
}

// PostWeek sends the assignment of week to every channel
func (n *Notifier) PostWeek(ctx context.Context, channels []string, week models.Week, tasks []models.Task, assignment models.Assignment) error {
	text := FormatWeek(week, tasks, assignment)
	for _, channel := range channels {
		_, ts, err := n.client.PostMessageContext(ctx, channel,
			slack.MsgOptionText(text, false),
			slack.MsgOptionAsUser(false),
		)
		if err != nil {
			return fmt.Errorf("failed to post week %s to %s: %w", week.ID(), channel, err)
		}
		n.logger.Info("posted rotation", "channel", channel, "week", week.ID(), "ts", ts)
	}
	return nil
}
