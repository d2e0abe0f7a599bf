package models

import (
	"strconv"
	"strings"
	"time"
)

// EntryKind discriminates the two Entry variants.
type EntryKind string

const (
	// EntryDraft is a not-yet-posted message candidate awaiting the
	// confirm/cancel round trip. Drafts never survive that round trip.
	EntryDraft EntryKind = "draft"
	// EntryLive tracks acknowledgments for an already-posted message.
	EntryLive EntryKind = "live"
)

// Entry is one tracked message inside a channel record. Exactly one variant
// is populated, selected by Kind.
type Entry struct {
	Kind EntryKind `json:"kind"`

	// Draft variant.
	Text string `json:"text,omitempty"`

	// Live variant. ReadUsers is ordered by acknowledgment time and kept
	// duplicate-free. AllUsers is the audience frozen at post time.
	ReadUsers  []string `json:"read_users,omitempty"`
	AllUsers   []string `json:"all_users,omitempty"`
	MessageURL string   `json:"message_url,omitempty"`
}

// NewDraftEntry builds the draft variant.
func NewDraftEntry(text string) Entry {
	return Entry{Kind: EntryDraft, Text: text}
}

// NewLiveEntry builds the live variant. ReadUsers starts empty.
func NewLiveEntry(allUsers []string, messageURL string) Entry {
	return Entry{
		Kind:       EntryLive,
		ReadUsers:  []string{},
		AllUsers:   append([]string{}, allUsers...),
		MessageURL: messageURL,
	}
}

// ChannelRecord is the per-channel blob persisted in the record store: a
// mapping from entry key to Entry.
type ChannelRecord struct {
	ID      string           `json:"id"`
	Entries map[string]Entry `json:"entries"`
}

// NewChannelRecord returns an empty record for the channel.
func NewChannelRecord(channelID string) ChannelRecord {
	return ChannelRecord{ID: channelID, Entries: map[string]Entry{}}
}

// DraftKey derives a draft entry key from the command invocation time.
// Collisions within the same channel and millisecond are not expected from
// interactive use.
func DraftKey(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// LiveKey derives a live entry key from the posted message's Slack
// timestamp ("1503064212.000123" -> "1503064212000123"). The microsecond
// scale keeps live keys from colliding with millisecond draft keys created
// by concurrent confirmations in the same channel.
func LiveKey(messageTS string) string {
	return strings.Replace(messageTS, ".", "", 1)
}
