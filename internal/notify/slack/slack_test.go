package slack_test

import (
	"context"
	"errors"
	"testing"

	slacklib "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/coperto/internal/notify"
	copertoslack "github.com/gosuda/coperto/internal/notify/slack"
)

// --- mock SlackAPI ---

type mockSlackAPI struct {
	postMsgChannel string
	postMsgOpts    []slacklib.MsgOption
	postMsgErr     error
}

func (m *mockSlackAPI) PostMessageContext(_ context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error) {
	m.postMsgChannel = channelID
	m.postMsgOpts = options
	if m.postMsgErr != nil {
		return "", "", m.postMsgErr
	}
	return channelID, "1700000000.000100", nil
}

func TestSender_Send(t *testing.T) {
	t.Parallel()

	t.Run("posts to the channel", func(t *testing.T) {
		t.Parallel()

		api := &mockSlackAPI{}
		s := copertoslack.New(api)

		err := s.Send(t.Context(), "C0123", notify.Message{Subject: "New reservation", Body: "Mario, 4 guests"})
		require.NoError(t, err)
		assert.Equal(t, "C0123", api.postMsgChannel)
		assert.Len(t, api.postMsgOpts, 2)
		assert.Equal(t, notify.ChannelSlack, s.Channel())
	})

	t.Run("api error is wrapped", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("channel_not_found")
		s := copertoslack.New(&mockSlackAPI{postMsgErr: boom})

		err := s.Send(t.Context(), "C0123", notify.Message{Subject: "x"})
		require.ErrorIs(t, err, boom)
	})
}

func TestBuildMessageBlocks(t *testing.T) {
	t.Parallel()

	blocks := copertoslack.BuildMessageBlocks(notify.Message{Subject: "Hi"})
	require.Len(t, blocks, 1)
	assert.Equal(t, slacklib.MBTSection, blocks[0].BlockType())

	blocks = copertoslack.BuildMessageBlocks(notify.Message{Subject: "Hi", Body: "details"})
	require.Len(t, blocks, 2)

	section, ok := blocks[1].(*slacklib.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "details")
}
