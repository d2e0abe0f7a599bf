package models

import (
	"testing"
	"time"
)

// TestDraftKeyMillisecondResolution verifies draft keys encode the
// invocation time in unix milliseconds.
func TestDraftKeyMillisecondResolution(t *testing.T) {
	ts := time.UnixMilli(1503064212123)
	if got := DraftKey(ts); got != "1503064212123" {
		t.Fatalf("expected 1503064212123; got %s", got)
	}
}

// TestLiveKeyStripsDot verifies live keys are the message timestamp with
// the dot removed.
func TestLiveKeyStripsDot(t *testing.T) {
	if got := LiveKey("1503064212.000123"); got != "1503064212000123" {
		t.Fatalf("expected 1503064212000123; got %s", got)
	}
	if got := LiveKey("1503064212000123"); got != "1503064212000123" {
		t.Fatalf("dotless timestamp should pass through; got %s", got)
	}
}

// TestLiveAndDraftKeysDisjoint verifies a live key can never collide with a
// draft key created at the same wall-clock instant.
func TestLiveAndDraftKeysDisjoint(t *testing.T) {
	at := time.UnixMilli(1503064212123)
	draft := DraftKey(at)
	live := LiveKey("1503064212.123456")
	if draft == live {
		t.Fatalf("draft and live keys collided: %s", draft)
	}
	if len(draft) == len(live) {
		t.Fatalf("expected differing key widths; draft=%s live=%s", draft, live)
	}
}

// TestNewLiveEntryCopiesAudience verifies the audience slice is copied and
// the acknowledger list starts empty but non-nil.
func TestNewLiveEntryCopiesAudience(t *testing.T) {
	audience := []string{"U1", "U2"}
	e := NewLiveEntry(audience, "https://example.slack.com/archives/C1/p1")
	audience[0] = "MUTATED"
	if e.AllUsers[0] != "U1" {
		t.Fatalf("audience not copied; got %v", e.AllUsers)
	}
	if e.ReadUsers == nil || len(e.ReadUsers) != 0 {
		t.Fatalf("expected empty non-nil ReadUsers; got %v", e.ReadUsers)
	}
	if e.Kind != EntryLive {
		t.Fatalf("expected live kind; got %s", e.Kind)
	}
}

// TestNewDraftEntryKind verifies the draft builder tags the variant.
func TestNewDraftEntryKind(t *testing.T) {
	e := NewDraftEntry("hello")
	if e.Kind != EntryDraft {
		t.Fatalf("expected draft kind; got %s", e.Kind)
	}
	if e.Text != "hello" {
		t.Fatalf("expected text preserved; got %q", e.Text)
	}
}
