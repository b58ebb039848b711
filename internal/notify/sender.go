package notify

import "context"

const (
	ChannelEmail = "email"
	ChannelSlack = "slack"
)

// Message is a rendered notification.
type Message struct {
	Subject string
	Body    string
}

// Sender delivers a message to a recipient address on one channel (an email
// address, a Slack channel id).
type Sender interface {
	Send(ctx context.Context, to string, msg Message) error
	Channel() string
}
