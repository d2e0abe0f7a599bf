package audience

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"

	"kidoku/pkg/platform"
)

// fakeClient implements platform.Client for resolver tests. Only the roster
// lookups carry behavior; the rest are inert.
type fakeClient struct {
	members      []string
	membersErr   error
	directory    []platform.DirectoryUser
	directoryErr error
}

func (f *fakeClient) PostMessage(context.Context, string, []slack.Attachment) (platform.PostedMessage, error) {
	return platform.PostedMessage{}, nil
}
func (f *fakeClient) PostText(context.Context, string, string) error              { return nil }
func (f *fakeClient) ReplyEphemeral(context.Context, string, platform.Reply) error { return nil }
func (f *fakeClient) ReplyReplacingOriginal(context.Context, string, platform.Reply) error {
	return nil
}
func (f *fakeClient) DeleteOriginal(context.Context, string) error { return nil }
func (f *fakeClient) LookupUser(context.Context, string) (platform.UserInfo, error) {
	return platform.UserInfo{}, nil
}
func (f *fakeClient) LookupChannelMembers(context.Context, string) ([]string, error) {
	return f.members, f.membersErr
}
func (f *fakeClient) LookupDMChannel(context.Context, string) (string, error) { return "", nil }
func (f *fakeClient) ListWorkspaceUsers(context.Context) ([]platform.DirectoryUser, error) {
	return f.directory, f.directoryErr
}

// TestMentionedUsersOrderedDedup verifies extraction order and duplicate
// removal.
func TestMentionedUsersOrderedDedup(t *testing.T) {
	got := MentionedUsers("please read <@U2> and <@U1|alice>, again <@U2>")
	if len(got) != 2 || got[0] != "U2" || got[1] != "U1" {
		t.Fatalf("expected [U2 U1]; got %v", got)
	}
	if got := MentionedUsers("no mentions here"); got != nil {
		t.Fatalf("expected nil for plain text; got %v", got)
	}
}

// TestHasBroadcastMention verifies broadcast token detection.
func TestHasBroadcastMention(t *testing.T) {
	if !HasBroadcastMention("heads up <!channel>") {
		t.Fatalf("expected <!channel> to be detected")
	}
	if !HasBroadcastMention("<!here> please") {
		t.Fatalf("expected <!here> to be detected")
	}
	if HasBroadcastMention("plain <@U1> text") {
		t.Fatalf("user mention must not count as broadcast")
	}
}

// TestResolveMentionsPinAudience verifies individual mentions pin the
// audience to exactly those users, deterministically ordered.
func TestResolveMentionsPinAudience(t *testing.T) {
	r := NewResolver(&fakeClient{members: []string{"U9"}})
	got, err := r.Resolve(context.Background(), "<@U1> <@U2> hello", "C1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 || got[0] != "U1" || got[1] != "U2" {
		t.Fatalf("expected [U1 U2]; got %v", got)
	}
}

// TestResolveBroadcastFallsBackToRoster verifies a broadcast token forces
// the roster path even when individual mentions are present.
func TestResolveBroadcastFallsBackToRoster(t *testing.T) {
	f := &fakeClient{
		members: []string{"U1", "U2"},
		directory: []platform.DirectoryUser{
			{ID: "U1"}, {ID: "U2"},
		},
	}
	r := NewResolver(f)
	got, err := r.Resolve(context.Background(), "<!channel> <@U1>", "C1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 || got[0] != "U1" || got[1] != "U2" {
		t.Fatalf("expected roster [U1 U2]; got %v", got)
	}
}

// TestResolveRosterExcludesBotsAndDeleted verifies bot and deactivated
// accounts are filtered from the roster fallback.
func TestResolveRosterExcludesBotsAndDeleted(t *testing.T) {
	f := &fakeClient{
		members: []string{"U1", "U2", "BOT", "DELETED"},
		directory: []platform.DirectoryUser{
			{ID: "U1"},
			{ID: "U2"},
			{ID: "BOT", IsBot: true},
			{ID: "DELETED", IsDeleted: true},
		},
	}
	r := NewResolver(f)
	got, err := r.Resolve(context.Background(), "everyone please read", "C1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 || got[0] != "U1" || got[1] != "U2" {
		t.Fatalf("expected [U1 U2]; got %v", got)
	}
}

// TestResolvePrivateGroupUsesRoster verifies G-prefixed channels take the
// same membership path as public channels.
func TestResolvePrivateGroupUsesRoster(t *testing.T) {
	f := &fakeClient{
		members:   []string{"U5"},
		directory: []platform.DirectoryUser{{ID: "U5"}},
	}
	r := NewResolver(f)
	got, err := r.Resolve(context.Background(), "hello", "G123")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 1 || got[0] != "U5" {
		t.Fatalf("expected [U5]; got %v", got)
	}
}

// TestResolveLookupFailurePropagates verifies a roster lookup failure never
// yields a silently empty audience.
func TestResolveLookupFailurePropagates(t *testing.T) {
	f := &fakeClient{membersErr: errors.New("conversations.members failed")}
	r := NewResolver(f)
	if _, err := r.Resolve(context.Background(), "hello", "C1"); err == nil {
		t.Fatalf("expected error from failed membership lookup")
	}
}

// TestResolveUnsupportedChannelType verifies unknown channel prefixes are
// rejected.
func TestResolveUnsupportedChannelType(t *testing.T) {
	r := NewResolver(&fakeClient{})
	if _, err := r.Resolve(context.Background(), "hello", "D123"); err == nil {
		t.Fatalf("expected error for DM channel roster")
	}
}
