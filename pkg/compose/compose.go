// Package compose builds the reply and attachment payloads the bot sends.
// All builders are pure functions over ledger state and the string table;
// none perform I/O.
package compose

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"kidoku/pkg/platform"
)

// Callback namespaces and action names carried on interactive attachments.
const (
	CallbackPreview = "preview"
	CallbackConfirm = "slack-kidoku-confirm"
	CallbackKidoku  = "slack-kidoku"

	ActionOK         = "ok"
	ActionCancel     = "cancel"
	ActionToggle     = "kidoku"
	ActionShowUnread = "show-unread"
	ActionRemind     = "remind"
	ActionClose      = "close"
)

// Composer renders payloads with a fixed string table.
type Composer struct {
	S Strings
}

func New(s Strings) *Composer {
	return &Composer{S: s}
}

// PreviewButton renders the read-confirmation button as it will appear
// once posted, under the inert preview callback id.
func (c *Composer) PreviewButton(text string, author platform.UserInfo) slack.Attachment {
	return c.button(text, author, CallbackPreview, "")
}

// PostedButton renders the live read-confirmation button carrying the
// ledger entry key.
func (c *Composer) PostedButton(text string, author platform.UserInfo, key string) slack.Attachment {
	return c.button(text, author, CallbackKidoku, key)
}

func (c *Composer) button(text string, author platform.UserInfo, callbackID, value string) slack.Attachment {
	return slack.Attachment{
		Fallback:   c.S.ButtonFallback,
		CallbackID: callbackID,
		Color:      "good",
		Text:       text,
		AuthorName: author.Name,
		AuthorIcon: author.AvatarURL,
		Actions: []slack.AttachmentAction{
			{Name: ActionToggle, Text: c.S.ButtonRead, Type: "button", Style: "primary", Value: value},
			{Name: ActionShowUnread, Text: c.S.ButtonShowUnread, Type: "button", Value: value},
		},
	}
}

// ConfirmPrompt renders the ok/cancel attachment; both actions carry the
// draft entry key.
func (c *Composer) ConfirmPrompt(draftKey string) slack.Attachment {
	return slack.Attachment{
		Fallback:   c.S.ConfirmFallback,
		CallbackID: CallbackConfirm,
		Title:      c.S.ConfirmTitle,
		Actions: []slack.AttachmentAction{
			{Name: ActionOK, Text: c.S.ButtonOK, Type: "button", Style: "primary", Value: draftKey},
			{Name: ActionCancel, Text: c.S.ButtonCancel, Type: "button", Style: "danger", Value: draftKey},
		},
	}
}

// Preview renders the ephemeral preview reply shown to the command invoker.
func (c *Composer) Preview(text string, author platform.UserInfo, draftKey string) platform.Reply {
	return platform.Reply{
		Text: c.S.PreviewPrompt,
		Attachments: []slack.Attachment{
			c.PreviewButton(text, author),
			c.ConfirmPrompt(draftKey),
		},
	}
}

// ReadCountAttachment renders the acknowledger list and count that is
// appended below the posted button after each toggle.
func (c *Composer) ReadCountAttachment(readUsers []string) slack.Attachment {
	return slack.Attachment{
		Title: fmt.Sprintf(c.S.ReadTitle, len(readUsers)),
		Text:  MentionList(readUsers),
	}
}

// UnreadList renders the ephemeral unread report. With unread users left it
// carries remind/close buttons bound to the entry key; once everyone has
// read, it is a plain confirmation sentence.
func (c *Composer) UnreadList(unreadUsers []string, key string) platform.Reply {
	if len(unreadUsers) == 0 {
		return platform.Reply{Text: c.S.EveryoneRead}
	}
	return platform.Reply{
		Text: fmt.Sprintf(c.S.UnreadTitle, len(unreadUsers)),
		Attachments: []slack.Attachment{{
			Fallback:   c.S.ButtonFallback,
			CallbackID: CallbackKidoku,
			Text:       MentionList(unreadUsers),
			Actions: []slack.AttachmentAction{
				{Name: ActionRemind, Text: c.S.ButtonRemind, Type: "button", Value: key},
				{Name: ActionClose, Text: c.S.ButtonClose, Type: "button", Value: key},
			},
		}},
	}
}

// ReminderNotice renders the private notice sent to each unread user.
func (c *Composer) ReminderNotice(senderID, messageURL string) string {
	return fmt.Sprintf(c.S.ReminderNotice, senderID, messageURL)
}

// MentionList joins user ids into a rendered mention list ("<@U1>, <@U2>").
func MentionList(users []string) string {
	if len(users) == 0 {
		return ""
	}
	parts := make([]string, 0, len(users))
	for _, u := range users {
		parts = append(parts, "<@"+u+">")
	}
	return strings.Join(parts, ", ")
}
