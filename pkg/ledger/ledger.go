// Package ledger maintains the per-message acknowledgment state: which
// users a posted message obligates, who has acknowledged it, and the
// draft entries that exist only during a confirm/cancel round trip.
//
// Every operation is a read-modify-write on one channel record. The store
// gives no transaction across concurrent operations on the same channel;
// the window between get and save is kept minimal and the race is accepted
// (last write wins).
package ledger

import (
	"errors"
	"fmt"

	"kidoku/pkg/logger"
	"kidoku/pkg/models"
	"kidoku/pkg/store"
)

var (
	// ErrEntryNotFound is returned when an operation names an entry key
	// absent from the channel record. Callers must surface it, not
	// fabricate empty state.
	ErrEntryNotFound = errors.New("ledger: entry not found")
	// ErrWrongKind is returned when an operation targets an entry of the
	// other variant (e.g. toggling a draft).
	ErrWrongKind = errors.New("ledger: entry has wrong kind")
)

// CreateDraft inserts a draft entry under key and persists the record.
func CreateDraft(channelID, key, text string) error {
	rec, err := store.GetChannelRecord(channelID)
	if err != nil {
		return err
	}
	rec.Entries[key] = models.NewDraftEntry(text)
	if err := store.SaveChannelRecord(channelID, rec); err != nil {
		return err
	}
	logger.Info("draft_created", "channel", channelID, "key", key)
	return nil
}

// GetDraft returns the text of the draft stored under key.
func GetDraft(channelID, key string) (string, error) {
	e, err := getEntry(channelID, key, models.EntryDraft)
	if err != nil {
		return "", err
	}
	return e.Text, nil
}

// DraftOutcome carries the result of a confirm/cancel decision. On confirm,
// LiveKey, Audience and MessageURL describe the posted message.
type DraftOutcome struct {
	Confirmed  bool
	LiveKey    string
	Audience   []string
	MessageURL string
}

// ResolveDraft ends a draft's life. The draft is deleted in every case; on
// confirm the live entry is created under outcome.LiveKey in the same
// persisted write, so the two mutations commit together or not at all.
func ResolveDraft(channelID, key string, outcome DraftOutcome) error {
	rec, err := store.GetChannelRecord(channelID)
	if err != nil {
		return err
	}
	e, ok := rec.Entries[key]
	if !ok {
		return fmt.Errorf("%w: channel %s key %s", ErrEntryNotFound, channelID, key)
	}
	if e.Kind != models.EntryDraft {
		return fmt.Errorf("%w: channel %s key %s is %s", ErrWrongKind, channelID, key, e.Kind)
	}
	delete(rec.Entries, key)
	if outcome.Confirmed {
		rec.Entries[outcome.LiveKey] = models.NewLiveEntry(outcome.Audience, outcome.MessageURL)
	}
	if err := store.SaveChannelRecord(channelID, rec); err != nil {
		return err
	}
	logger.Info("draft_resolved", "channel", channelID, "key", key,
		"confirmed", outcome.Confirmed, "live_key", outcome.LiveKey)
	return nil
}

// ToggleRead flips the user's acknowledgment on the live entry under key:
// an unseen user is appended, an already-acknowledged user is removed.
// Returns the updated acknowledger list in acknowledgment order.
func ToggleRead(channelID, key, userID string) ([]string, error) {
	rec, err := store.GetChannelRecord(channelID)
	if err != nil {
		return nil, err
	}
	e, ok := rec.Entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: channel %s key %s", ErrEntryNotFound, channelID, key)
	}
	if e.Kind != models.EntryLive {
		return nil, fmt.Errorf("%w: channel %s key %s is %s", ErrWrongKind, channelID, key, e.Kind)
	}
	found := false
	next := make([]string, 0, len(e.ReadUsers)+1)
	for _, u := range e.ReadUsers {
		if u == userID {
			found = true
			continue
		}
		next = append(next, u)
	}
	if !found {
		next = append(next, userID)
	}
	e.ReadUsers = next
	rec.Entries[key] = e
	if err := store.SaveChannelRecord(channelID, rec); err != nil {
		return nil, err
	}
	logger.Debug("toggle_read", "channel", channelID, "key", key, "user", userID, "read", !found)
	return e.ReadUsers, nil
}

// GetLiveEntry returns the live entry stored under key.
func GetLiveEntry(channelID, key string) (models.Entry, error) {
	return getEntry(channelID, key, models.EntryLive)
}

// UnreadUsers returns the audience members who have not acknowledged the
// live entry under key, preserving audience order.
func UnreadUsers(channelID, key string) ([]string, error) {
	e, err := getEntry(channelID, key, models.EntryLive)
	if err != nil {
		return nil, err
	}
	read := map[string]bool{}
	for _, u := range e.ReadUsers {
		read[u] = true
	}
	out := []string{}
	for _, u := range e.AllUsers {
		if !read[u] {
			out = append(out, u)
		}
	}
	return out, nil
}

func getEntry(channelID, key string, kind models.EntryKind) (models.Entry, error) {
	rec, err := store.GetChannelRecord(channelID)
	if err != nil {
		return models.Entry{}, err
	}
	e, ok := rec.Entries[key]
	if !ok {
		return models.Entry{}, fmt.Errorf("%w: channel %s key %s", ErrEntryNotFound, channelID, key)
	}
	if e.Kind != kind {
		return models.Entry{}, fmt.Errorf("%w: channel %s key %s is %s", ErrWrongKind, channelID, key, e.Kind)
	}
	return e, nil
}
