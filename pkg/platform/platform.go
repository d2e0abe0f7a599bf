// Package platform abstracts the chat platform the bot talks to. The core
// components receive a constructed Client; nothing in this repository holds
// a package-level session.
package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// PostedMessage is the result of posting to a channel: the message
// timestamp and the attachments as the platform rendered them (mention
// tokens expanded).
type PostedMessage struct {
	Timestamp   string
	Attachments []slack.Attachment
}

// UserInfo is the display identity of a user.
type UserInfo struct {
	Name      string
	AvatarURL string
}

// DirectoryUser is one entry of the workspace user directory.
type DirectoryUser struct {
	ID        string
	IsBot     bool
	IsDeleted bool
}

// Reply is an interactive response sent back through a response URL.
type Reply struct {
	Text        string
	Attachments []slack.Attachment
}

// Client is the platform capability surface the bot core depends on.
type Client interface {
	// PostMessage posts attachments to a channel and returns the rendered
	// message.
	PostMessage(ctx context.Context, channelID string, attachments []slack.Attachment) (PostedMessage, error)
	// PostText posts a plain text message (used for direct-message notices).
	PostText(ctx context.Context, channelID, text string) error
	// ReplyEphemeral answers an interactive event without replacing the
	// message the event came from; only the acting user sees it.
	ReplyEphemeral(ctx context.Context, responseURL string, reply Reply) error
	// ReplyReplacingOriginal answers an interactive event by replacing the
	// originating message.
	ReplyReplacingOriginal(ctx context.Context, responseURL string, reply Reply) error
	// DeleteOriginal dismisses the originating (ephemeral) message.
	DeleteOriginal(ctx context.Context, responseURL string) error
	LookupUser(ctx context.Context, userID string) (UserInfo, error)
	LookupChannelMembers(ctx context.Context, channelID string) ([]string, error)
	LookupDMChannel(ctx context.Context, userID string) (string, error)
	ListWorkspaceUsers(ctx context.Context) ([]DirectoryUser, error)
}

// ErrChannelNotFound marks a post failure caused by the bot not being a
// member of the target channel.
var ErrChannelNotFound = errors.New("channel_not_found")

// IsChannelNotFound reports whether err is the platform's
// "channel_not_found" post failure.
func IsChannelNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrChannelNotFound) {
		return true
	}
	var ser slack.SlackErrorResponse
	if errors.As(err, &ser) {
		return ser.Err == "channel_not_found"
	}
	return err.Error() == "channel_not_found"
}

// Permalink builds the archive URL of a posted message from the workspace
// domain, channel and message timestamp.
func Permalink(teamDomain, channelID, messageTS string) string {
	return fmt.Sprintf("https://%s.slack.com/archives/%s/p%s",
		teamDomain, channelID, strings.Replace(messageTS, ".", "", 1))
}
