package models

import "github.com/slack-go/slack"

// CommandEvent is a parsed slash-command invocation.
type CommandEvent struct {
	Command     string
	Text        string
	UserID      string
	ChannelID   string
	TeamDomain  string
	ResponseURL string
}

// ButtonEvent is a parsed interactive button press.
type ButtonEvent struct {
	CallbackID          string
	ActionName          string
	ActionValue         string
	UserID              string
	ChannelID           string
	OriginalAttachments []slack.Attachment
	MessageTimestamp    string
	TeamDomain          string
	ResponseURL         string
}
