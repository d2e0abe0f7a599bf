// Package audience computes the set of users obligated to read a posted
// message: the individually mentioned users when the message addresses
// specific people, otherwise the channel roster minus bot and deactivated
// accounts.
package audience

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"kidoku/pkg/platform"
)

var (
	// rendered user mention token, e.g. <@U12345678> or <@U12345678|name>
	userMentionRe = regexp.MustCompile(`<@([UW][A-Z0-9]+)(?:\|[^>]*)?>`)
	// rendered broadcast token, e.g. <!channel>, <!here>, <!subteam^S...>
	broadcastRe = regexp.MustCompile(`<!([^>]+)>`)
)

// Resolver determines a posted message's audience.
type Resolver struct {
	client platform.Client
}

func NewResolver(client platform.Client) *Resolver {
	return &Resolver{client: client}
}

// MentionedUsers extracts individually mentioned user ids from rendered
// text, in order of first appearance, duplicates removed.
func MentionedUsers(renderedText string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range userMentionRe.FindAllStringSubmatch(renderedText, -1) {
		if id := m[1]; !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// HasBroadcastMention reports whether rendered text contains a channel-wide
// or role-wide mention token.
func HasBroadcastMention(renderedText string) bool {
	return broadcastRe.MatchString(renderedText)
}

// Resolve returns the ordered, de-duplicated audience for a message with
// the given rendered text posted in channelID. Individual mentions without
// a broadcast mention pin the audience to exactly those users; any other
// text falls back to the channel roster. Lookup failures propagate; a
// failure never yields a silently empty audience.
func (r *Resolver) Resolve(ctx context.Context, renderedText, channelID string) ([]string, error) {
	mentioned := MentionedUsers(renderedText)
	if len(mentioned) > 0 && !HasBroadcastMention(renderedText) {
		return mentioned, nil
	}
	return r.roster(ctx, channelID)
}

// roster fetches channel membership and filters it against the workspace
// directory. Public channels (C) and private groups (G) resolve membership
// through the same conversations lookup; the type branch below runs once
// and both kinds share the filter path.
func (r *Resolver) roster(ctx context.Context, channelID string) ([]string, error) {
	switch {
	case strings.HasPrefix(channelID, "C"), strings.HasPrefix(channelID, "G"):
		// channel kinds the bot can be posted into
	default:
		return nil, fmt.Errorf("unsupported channel type: %s", channelID)
	}

	members, err := r.client.LookupChannelMembers(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("membership lookup: %w", err)
	}
	directory, err := r.client.ListWorkspaceUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("directory lookup: %w", err)
	}

	excluded := map[string]bool{}
	for _, u := range directory {
		if u.IsBot || u.IsDeleted {
			excluded[u.ID] = true
		}
	}

	var out []string
	seen := map[string]bool{}
	for _, id := range members {
		if excluded[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}
