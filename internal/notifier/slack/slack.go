package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/pitchside/internal/evaluation"
	"github.com/mauv0809/pitchside/internal/matchmaking"
	"github.com/mauv0809/pitchside/internal/metrics"
	"github.com/mauv0809/pitchside/internal/notifier"
	"github.com/slack-go/slack"
)

const timeLayout = "Monday 02 Jan, 15:04"

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts match announcements to a Slack channel.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	loc       *time.Location
}

// NewNotifier creates a new Notifier. Kick-off times are shown in timezone,
// falling back to UTC when it cannot be loaded.
func NewNotifier(token, channelID, timezone string, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, timezone, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific client.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID, timezone string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		loc:       loadLocation(timezone),
	}
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("Unknown timezone, using UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendTeamsAnnouncement(match *matchmaking.Match, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatTeamsAnnouncement(match), dryRun)
	return err
}

func (s *Notifier) SendEvaluationReminder(match *matchmaking.Match, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatEvaluationReminder(match), dryRun)
	return err
}

func (s *Notifier) SendRatingSummary(match *matchmaking.Match, deltas []evaluation.Delta, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatRatingSummary(match, deltas), dryRun)
	return err
}

func (s *Notifier) details(match *matchmaking.Match) string {
	text := fmt.Sprintf("%s\nKick-off: %s", match.Title, match.ScheduledAt.In(s.loc).Format(timeLayout))
	if match.Location != "" {
		text += "\nPitch: " + match.Location
	}
	return text
}

// formatTeamsAnnouncement lists both sides with their average rating.
func (s *Notifier) formatTeamsAnnouncement(match *matchmaking.Match) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⚽ Teams are set! ⚽", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", s.details(match), true, false), nil, nil))

	if match.Teams == nil {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Teams have not been generated yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject("mrkdwn", formatSide(match.Teams.Team1), false, false),
		slack.NewTextBlockObject("mrkdwn", formatSide(match.Teams.Team2), false, false),
	}
	blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))

	balance := fmt.Sprintf("Balance difference: %d OVR", match.Teams.BalanceDiff)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", balance, true, false)))

	return slack.NewBlockMessage(blocks...)
}

func formatSide(side matchmaking.TeamSide) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s* (avg %d)", side.Name, side.AvgOVR)
	for _, p := range side.Players {
		fmt.Fprintf(&sb, "\n• %s, %s %d", p.Name, p.Position, p.OVR)
		if p.IsGuest {
			sb.WriteString(" (guest)")
		}
	}
	return sb.String()
}

// formatEvaluationReminder asks every player with an assignment to rate their peers.
func (s *Notifier) formatEvaluationReminder(match *matchmaking.Match) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "📝 Time to rate your teammates", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", s.details(match), true, false), nil, nil))

	names := make(map[string]string, len(match.RegisteredPlayers))
	for _, p := range match.RegisteredPlayers {
		names[p.ID] = p.Name
	}
	evaluators := make([]string, 0, len(match.EvaluationAssignments))
	for id := range match.EvaluationAssignments {
		evaluators = append(evaluators, id)
	}
	sort.Slice(evaluators, func(i, j int) bool { return names[evaluators[i]] < names[evaluators[j]] })

	var lines []string
	for _, id := range evaluators {
		var subjects []string
		for _, sub := range match.EvaluationAssignments[id] {
			subjects = append(subjects, sub.Name)
		}
		lines = append(lines, fmt.Sprintf("• %s rates %s", names[id], strings.Join(subjects, " & ")))
	}
	if len(lines) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))
	}
	return slack.NewBlockMessage(blocks...)
}

// formatRatingSummary shows each rated player's OVR movement, biggest gains first.
func (s *Notifier) formatRatingSummary(match *matchmaking.Match, deltas []evaluation.Delta) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "📈 Ratings updated", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", s.details(match), true, false), nil, nil))

	if len(deltas) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No ratings changed.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	sorted := append([]evaluation.Delta(nil), deltas...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OVRChange > sorted[j].OVRChange })

	var lines []string
	for _, d := range sorted {
		lines = append(lines, fmt.Sprintf("• *%s* %d → %d (%+d, avg %.1f from %d)", d.Name, d.PreviousOVR, d.NewOVR, d.OVRChange, d.AvgRating, d.RatingsCount))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}
