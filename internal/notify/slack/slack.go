// Package slack posts owner alerts to a Slack channel.
package slack

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/coperto/internal/notify"
)

// SlackAPI abstracts the subset of the Slack client used by Sender.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

type Sender struct {
	api SlackAPI
}

var _ notify.Sender = (*Sender)(nil)

func New(api SlackAPI) *Sender {
	return &Sender{api: api}
}

// NewFromToken builds a Sender backed by the Slack Web API.
func NewFromToken(botToken string) *Sender {
	return New(slacklib.New(botToken))
}

func (s *Sender) Channel() string { return notify.ChannelSlack }

// Send posts msg to channelID. The subject becomes a bold first line.
func (s *Sender) Send(ctx context.Context, channelID string, msg notify.Message) error {
	_, _, err := s.api.PostMessageContext(ctx, channelID,
		slacklib.MsgOptionText(msg.Subject, false),
		slacklib.MsgOptionBlocks(BuildMessageBlocks(msg)...),
	)
	if err != nil {
		return fmt.Errorf("slack.Sender.Send: %w", err)
	}
	return nil
}

// BuildMessageBlocks renders a notification as a header plus a body section.
func BuildMessageBlocks(msg notify.Message) []slacklib.Block {
	header := slacklib.NewSectionBlock(
		slacklib.NewTextBlockObject(slacklib.MarkdownType, "*"+msg.Subject+"*", false, false),
		nil,
		nil,
	)
	if msg.Body == "" {
		return []slacklib.Block{header}
	}

	body := slacklib.NewSectionBlock(
		slacklib.NewTextBlockObject(slacklib.MarkdownType, "```"+msg.Body+"```", false, false),
		nil,
		nil,
	)
	return []slacklib.Block{header, body}
}
