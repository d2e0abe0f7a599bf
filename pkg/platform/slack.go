package platform

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"kidoku/pkg/logger"
)

// SlackClient implements Client against the Slack Web API.
type SlackClient struct {
	api *slack.Client
}

// NewSlackClient builds a SlackClient from a bot token.
func NewSlackClient(botToken string) *SlackClient {
	return &SlackClient{api: slack.New(botToken)}
}

// AuthTest verifies the bot token against the workspace.
func (c *SlackClient) AuthTest(ctx context.Context) error {
	_, err := c.api.AuthTestContext(ctx)
	return err
}

// PostMessage posts the attachments with link_names enabled and fetches the
// message back so callers see rendered mention tokens, which the audience
// resolver scans.
func (c *SlackClient) PostMessage(ctx context.Context, channelID string, attachments []slack.Attachment) (PostedMessage, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionAttachments(attachments...),
		slack.MsgOptionLinkNames(true),
	)
	if err != nil {
		return PostedMessage{}, err
	}
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Latest:    ts,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		logger.Warn("posted_message_fetch_failed", "channel", channelID, "ts", ts, "error", err)
		// fall back to the attachments we sent; mention tokens typed as
		// <@U...> are already in rendered form
		return PostedMessage{Timestamp: ts, Attachments: attachments}, nil
	}
	if len(resp.Messages) == 0 {
		return PostedMessage{Timestamp: ts, Attachments: attachments}, nil
	}
	return PostedMessage{Timestamp: ts, Attachments: resp.Messages[0].Attachments}, nil
}

func (c *SlackClient) PostText(ctx context.Context, channelID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	return err
}

func (c *SlackClient) ReplyEphemeral(ctx context.Context, responseURL string, reply Reply) error {
	return slack.PostWebhookContext(ctx, responseURL, &slack.WebhookMessage{
		Text:            reply.Text,
		Attachments:     reply.Attachments,
		ResponseType:    slack.ResponseTypeEphemeral,
		ReplaceOriginal: false,
	})
}

func (c *SlackClient) ReplyReplacingOriginal(ctx context.Context, responseURL string, reply Reply) error {
	return slack.PostWebhookContext(ctx, responseURL, &slack.WebhookMessage{
		Text:            reply.Text,
		Attachments:     reply.Attachments,
		ReplaceOriginal: true,
	})
}

func (c *SlackClient) DeleteOriginal(ctx context.Context, responseURL string) error {
	return slack.PostWebhookContext(ctx, responseURL, &slack.WebhookMessage{
		DeleteOriginal: true,
	})
}

func (c *SlackClient) LookupUser(ctx context.Context, userID string) (UserInfo, error) {
	u, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return UserInfo{}, fmt.Errorf("users.info %s: %w", userID, err)
	}
	return UserInfo{Name: u.Name, AvatarURL: u.Profile.Image24}, nil
}

func (c *SlackClient) LookupChannelMembers(ctx context.Context, channelID string) ([]string, error) {
	var members []string
	params := &slack.GetUsersInConversationParameters{ChannelID: channelID}
	for {
		page, cursor, err := c.api.GetUsersInConversationContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("conversations.members %s: %w", channelID, err)
		}
		members = append(members, page...)
		if cursor == "" {
			return members, nil
		}
		params.Cursor = cursor
	}
}

func (c *SlackClient) LookupDMChannel(ctx context.Context, userID string) (string, error) {
	ch, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		return "", fmt.Errorf("conversations.open %s: %w", userID, err)
	}
	return ch.ID, nil
}

func (c *SlackClient) ListWorkspaceUsers(ctx context.Context) ([]DirectoryUser, error) {
	users, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("users.list: %w", err)
	}
	out := make([]DirectoryUser, 0, len(users))
	for _, u := range users {
		out = append(out, DirectoryUser{ID: u.ID, IsBot: u.IsBot, IsDeleted: u.Deleted})
	}
	return out, nil
}
