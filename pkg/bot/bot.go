// Package bot dispatches inbound platform events onto the read-receipt
// ledger: the slash command that drafts a tracked message, and the button
// presses that confirm, acknowledge, query and remind.
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"kidoku/pkg/audience"
	"kidoku/pkg/compose"
	"kidoku/pkg/ledger"
	"kidoku/pkg/logger"
	"kidoku/pkg/models"
	"kidoku/pkg/platform"
)

// Dispatcher routes command and button events. All failures are caught at
// the handler boundary, logged, and converted to one ephemeral reply; the
// ledger is never left with a half-committed confirm.
type Dispatcher struct {
	client   platform.Client
	resolver *audience.Resolver
	comp     *compose.Composer
}

func NewDispatcher(client platform.Client, comp *compose.Composer) *Dispatcher {
	return &Dispatcher{
		client:   client,
		resolver: audience.NewResolver(client),
		comp:     comp,
	}
}

// HandleCommand processes a slash-command invocation: it stores a draft
// keyed by the invocation time and answers with an ephemeral preview plus
// the confirm prompt.
func (d *Dispatcher) HandleCommand(ctx context.Context, ev models.CommandEvent) {
	commandsTotal.Inc()

	if strings.HasPrefix(ev.ChannelID, "D") {
		d.replyText(ctx, ev.ResponseURL, d.comp.S.DMNotAllowed)
		return
	}
	if strings.TrimSpace(ev.Text) == "" {
		d.replyText(ctx, ev.ResponseURL, d.comp.S.EmptyText)
		return
	}

	author, err := d.client.LookupUser(ctx, ev.UserID)
	if err != nil {
		logger.Error("command_user_lookup_failed", "user", ev.UserID, "error", err)
		d.replyText(ctx, ev.ResponseURL, d.comp.S.GenericError)
		return
	}

	key := models.DraftKey(time.Now())
	if err := ledger.CreateDraft(ev.ChannelID, key, ev.Text); err != nil {
		logger.Error("draft_create_failed", "channel", ev.ChannelID, "key", key, "error", err)
		d.replyText(ctx, ev.ResponseURL, d.comp.S.GenericError)
		return
	}

	if err := d.client.ReplyEphemeral(ctx, ev.ResponseURL, d.comp.Preview(ev.Text, author, key)); err != nil {
		logger.Error("preview_reply_failed", "channel", ev.ChannelID, "error", err)
	}
}

// HandleAction routes a button press by callback namespace and action name.
// Events outside the recognized namespaces are ignored.
func (d *Dispatcher) HandleAction(ctx context.Context, ev models.ButtonEvent) {
	switch ev.CallbackID {
	case compose.CallbackConfirm:
		d.handleConfirm(ctx, ev)
	case compose.CallbackKidoku:
		d.handleKidoku(ctx, ev)
	default:
		logger.Debug("action_unknown_callback", "callback", ev.CallbackID)
	}
}

func (d *Dispatcher) handleConfirm(ctx context.Context, ev models.ButtonEvent) {
	actionsTotal.WithLabelValues(ev.ActionName).Inc()
	switch ev.ActionName {
	case compose.ActionOK:
		d.confirmDraft(ctx, ev)
	case compose.ActionCancel:
		d.cancelDraft(ctx, ev)
	default:
		logger.Debug("action_unknown_name", "callback", ev.CallbackID, "action", ev.ActionName)
	}
}

func (d *Dispatcher) cancelDraft(ctx context.Context, ev models.ButtonEvent) {
	if err := ledger.ResolveDraft(ev.ChannelID, ev.ActionValue, ledger.DraftOutcome{}); err != nil {
		logger.Error("draft_cancel_failed", "channel", ev.ChannelID, "key", ev.ActionValue, "error", err)
		d.replyText(ctx, ev.ResponseURL, d.comp.S.GenericError)
		return
	}
	d.replaceText(ctx, ev.ResponseURL, d.comp.S.Canceled)
}

// confirmDraft posts the tracked message, resolves its audience from the
// rendered text and promotes the draft to a live entry. The draft is
// deleted once the confirm decision is made, whether or not the downstream
// post succeeds.
func (d *Dispatcher) confirmDraft(ctx context.Context, ev models.ButtonEvent) {
	draftKey := ev.ActionValue
	text, err := ledger.GetDraft(ev.ChannelID, draftKey)
	if err != nil {
		logger.Error("draft_lookup_failed", "channel", ev.ChannelID, "key", draftKey, "error", err)
		d.replaceText(ctx, ev.ResponseURL, d.comp.S.GenericError)
		return
	}

	author, err := d.client.LookupUser(ctx, ev.UserID)
	if err != nil {
		logger.Error("confirm_user_lookup_failed", "user", ev.UserID, "error", err)
		d.dropDraft(ctx, ev, draftKey)
		d.replaceText(ctx, ev.ResponseURL, d.comp.S.GenericError)
		return
	}

	// The live entry key is derived from the message timestamp at press
	// time, so the value field stays empty on the posted button.
	posted, err := d.client.PostMessage(ctx, ev.ChannelID,
		[]slack.Attachment{d.comp.PostedButton(text, author, "")})
	if err != nil {
		logger.Error("post_failed", "channel", ev.ChannelID, "error", err)
		d.dropDraft(ctx, ev, draftKey)
		if platform.IsChannelNotFound(err) {
			d.replaceText(ctx, ev.ResponseURL, d.comp.S.BotNotMember)
		} else {
			d.replaceText(ctx, ev.ResponseURL, d.comp.S.GenericError)
		}
		return
	}

	rendered := text
	if len(posted.Attachments) > 0 {
		rendered = posted.Attachments[0].Text
	}
	allUsers, err := d.resolver.Resolve(ctx, rendered, ev.ChannelID)
	if err != nil {
		logger.Error("audience_resolve_failed", "channel", ev.ChannelID, "error", err)
		d.dropDraft(ctx, ev, draftKey)
		d.replaceText(ctx, ev.ResponseURL, d.comp.S.GenericError)
		return
	}

	outcome := ledger.DraftOutcome{
		Confirmed:  true,
		LiveKey:    models.LiveKey(posted.Timestamp),
		Audience:   allUsers,
		MessageURL: platform.Permalink(ev.TeamDomain, ev.ChannelID, posted.Timestamp),
	}
	if err := ledger.ResolveDraft(ev.ChannelID, draftKey, outcome); err != nil {
		logger.Error("draft_confirm_failed", "channel", ev.ChannelID, "key", draftKey, "error", err)
		d.replaceText(ctx, ev.ResponseURL, d.comp.S.GenericError)
		return
	}
	d.replaceText(ctx, ev.ResponseURL, d.comp.S.Success)
}

// dropDraft deletes the draft after a failed confirm round trip. The
// round trip completed with a decision, so the draft must not survive.
func (d *Dispatcher) dropDraft(ctx context.Context, ev models.ButtonEvent, draftKey string) {
	if err := ledger.ResolveDraft(ev.ChannelID, draftKey, ledger.DraftOutcome{}); err != nil {
		logger.Error("draft_cleanup_failed", "channel", ev.ChannelID, "key", draftKey, "error", err)
	}
}

func (d *Dispatcher) handleKidoku(ctx context.Context, ev models.ButtonEvent) {
	actionsTotal.WithLabelValues(ev.ActionName).Inc()
	switch ev.ActionName {
	case compose.ActionToggle:
		d.toggleRead(ctx, ev)
	case compose.ActionShowUnread:
		d.showUnread(ctx, ev)
	case compose.ActionRemind:
		d.remindUnread(ctx, ev)
	case compose.ActionClose:
		if err := d.client.DeleteOriginal(ctx, ev.ResponseURL); err != nil {
			logger.Error("close_failed", "channel", ev.ChannelID, "error", err)
		}
	default:
		logger.Debug("action_unknown_name", "callback", ev.CallbackID, "action", ev.ActionName)
	}
}

// toggleRead flips the pressing user's acknowledgment and re-renders the
// posted message: the original button attachment unchanged, plus the
// updated acknowledger list.
func (d *Dispatcher) toggleRead(ctx context.Context, ev models.ButtonEvent) {
	key := models.LiveKey(ev.MessageTimestamp)
	readUsers, err := ledger.ToggleRead(ev.ChannelID, key, ev.UserID)
	if err != nil {
		logger.Error("toggle_read_failed", "channel", ev.ChannelID, "key", key, "user", ev.UserID, "error", err)
		d.replyText(ctx, ev.ResponseURL, d.comp.S.GenericError)
		return
	}
	if len(ev.OriginalAttachments) == 0 {
		logger.Error("toggle_read_missing_original", "channel", ev.ChannelID, "key", key)
		d.replyText(ctx, ev.ResponseURL, d.comp.S.GenericError)
		return
	}
	reply := platform.Reply{
		Attachments: []slack.Attachment{
			ev.OriginalAttachments[0],
			d.comp.ReadCountAttachment(readUsers),
		},
	}
	if err := d.client.ReplyReplacingOriginal(ctx, ev.ResponseURL, reply); err != nil {
		logger.Error("toggle_render_failed", "channel", ev.ChannelID, "key", key, "error", err)
	}
}

func (d *Dispatcher) showUnread(ctx context.Context, ev models.ButtonEvent) {
	key := models.LiveKey(ev.MessageTimestamp)
	unread, err := ledger.UnreadUsers(ev.ChannelID, key)
	if err != nil {
		logger.Error("show_unread_failed", "channel", ev.ChannelID, "key", key, "error", err)
		d.replyText(ctx, ev.ResponseURL, d.comp.S.GenericError)
		return
	}
	if err := d.client.ReplyEphemeral(ctx, ev.ResponseURL, d.comp.UnreadList(unread, key)); err != nil {
		logger.Error("show_unread_reply_failed", "channel", ev.ChannelID, "key", key, "error", err)
	}
}

// remindUnread sends each unread user a private notice with the original
// message's permalink, then reports completion in place of the unread list.
func (d *Dispatcher) remindUnread(ctx context.Context, ev models.ButtonEvent) {
	key := ev.ActionValue
	entry, err := ledger.GetLiveEntry(ev.ChannelID, key)
	if err != nil {
		logger.Error("remind_lookup_failed", "channel", ev.ChannelID, "key", key, "error", err)
		d.replyText(ctx, ev.ResponseURL, d.comp.S.GenericError)
		return
	}
	unread, err := ledger.UnreadUsers(ev.ChannelID, key)
	if err != nil {
		logger.Error("remind_unread_failed", "channel", ev.ChannelID, "key", key, "error", err)
		d.replyText(ctx, ev.ResponseURL, d.comp.S.GenericError)
		return
	}
	notice := d.comp.ReminderNotice(ev.UserID, entry.MessageURL)
	for _, user := range unread {
		dm, err := d.client.LookupDMChannel(ctx, user)
		if err != nil {
			logger.Error("remind_dm_lookup_failed", "user", user, "error", err)
			d.replyText(ctx, ev.ResponseURL, d.comp.S.GenericError)
			return
		}
		if err := d.client.PostText(ctx, dm, notice); err != nil {
			logger.Error("remind_post_failed", "user", user, "channel", dm, "error", err)
			d.replyText(ctx, ev.ResponseURL, d.comp.S.GenericError)
			return
		}
		remindersTotal.Inc()
	}
	logger.Info("reminders_sent", "channel", ev.ChannelID, "key", key, "count", len(unread))
	d.replaceText(ctx, ev.ResponseURL, d.comp.S.ReminderSent)
}

func (d *Dispatcher) replyText(ctx context.Context, responseURL, text string) {
	if err := d.client.ReplyEphemeral(ctx, responseURL, platform.Reply{Text: text}); err != nil {
		logger.Error("ephemeral_reply_failed", "error", err)
	}
}

func (d *Dispatcher) replaceText(ctx context.Context, responseURL, text string) {
	if err := d.client.ReplyReplacingOriginal(ctx, responseURL, platform.Reply{Text: text}); err != nil {
		logger.Error("replacing_reply_failed", "error", err)
	}
}
