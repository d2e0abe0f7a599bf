// Package api receives Slack's webhook deliveries, converts them to typed
// events and hands them to the dispatcher. Requests are acknowledged
// immediately; event processing continues in the background to stay inside
// the platform's acknowledgment window.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/slack-go/slack"

	"kidoku/pkg/bot"
	"kidoku/pkg/logger"
	"kidoku/pkg/models"
)

// Handler serves the Slack webhook endpoints.
type Handler struct {
	disp    *bot.Dispatcher
	secret  string
	limiter *limiterPool
}

// New builds the webhook handler. secret is the workspace signing secret;
// rps/burst throttle inbound deliveries per remote host.
func New(disp *bot.Dispatcher, secret string, rps float64, burst int) *Handler {
	return &Handler{disp: disp, secret: secret, limiter: newLimiterPool(rps, burst)}
}

// Register installs the webhook routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("POST /slack/commands",
		h.limiter.rateLimit(verifySignature(h.secret, http.HandlerFunc(h.handleCommand))))
	mux.Handle("POST /slack/actions",
		h.limiter.rateLimit(verifySignature(h.secret, http.HandlerFunc(h.handleAction))))
}

func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		logger.Warn("command_parse_failed", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	ev := models.CommandEvent{
		Command:     cmd.Command,
		Text:        cmd.Text,
		UserID:      cmd.UserID,
		ChannelID:   cmd.ChannelID,
		TeamDomain:  cmd.TeamDomain,
		ResponseURL: cmd.ResponseURL,
	}
	w.WriteHeader(http.StatusOK)
	go h.disp.HandleCommand(context.Background(), ev)
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	var cb slack.InteractionCallback
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &cb); err != nil {
		logger.Warn("action_parse_failed", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if len(cb.ActionCallback.AttachmentActions) == 0 {
		// not an attachment-action interaction; nothing to dispatch
		w.WriteHeader(http.StatusOK)
		return
	}
	action := cb.ActionCallback.AttachmentActions[0]
	ev := models.ButtonEvent{
		CallbackID:          cb.CallbackID,
		ActionName:          action.Name,
		ActionValue:         action.Value,
		UserID:              cb.User.ID,
		ChannelID:           cb.Channel.ID,
		OriginalAttachments: cb.OriginalMessage.Attachments,
		MessageTimestamp:    cb.MessageTs,
		TeamDomain:          cb.Team.Domain,
		ResponseURL:         cb.ResponseURL,
	}
	w.WriteHeader(http.StatusOK)
	go h.disp.HandleAction(context.Background(), ev)
}
