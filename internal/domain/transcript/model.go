package transcript

import "time"

// ChannelAccount identifies a participant on a channel.
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ConversationAccount identifies the conversation an activity belongs to.
type ConversationAccount struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	IsGroup bool   `json:"isGroup,omitempty"`
}

// Activity is one message or event in a conversation. The payload is
// treated as an immutable value once logged.
type Activity struct {
	ID           string              `json:"id,omitempty"`
	Type         string              `json:"type,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
	ChannelID    string              `json:"channelId"`
	Conversation ConversationAccount `json:"conversation"`
	From         ChannelAccount      `json:"from"`
	Recipient    ChannelAccount      `json:"recipient"`
	Text         string              `json:"text,omitempty"`
	Locale       string              `json:"locale,omitempty"`
	ChannelData  map[string]any      `json:"channelData,omitempty"`
	Value        map[string]any      `json:"value,omitempty"`
}

// Key returns the conversation identity key used for the seen-cache and
// for collapsing duplicate start records.
func (a *Activity) Key() string {
	return a.ChannelID + a.Conversation.ID
}

// Record is the persisted unit: the activity plus a flag marking it as
// the (believed) first activity of its conversation. Concurrent writers
// may produce more than one start record per conversation; readers
// collapse duplicates by earliest timestamp.
type Record struct {
	Activity *Activity `json:"activity"`
	Start    bool      `json:"start"`
}

// Info is a derived, deduplicated conversation summary. It is never
// stored, always computed from a query result set.
type Info struct {
	ChannelID string    `json:"channelId"`
	ID        string    `json:"id"`
	Created   time.Time `json:"created"`
}

// Key returns the conversation identity key for this summary.
func (i Info) Key() string {
	return i.ChannelID + i.ID
}

// PagedResult holds one page of items plus the opaque continuation token
// to fetch the next page. An empty token means no further pages.
type PagedResult[T any] struct {
	Items             []T    `json:"items"`
	ContinuationToken string `json:"continuationToken,omitempty"`
}
