package transcript

import (
	"context"
	"time"
)

// ActivityPageOptions narrows a GetTranscriptActivities query.
type ActivityPageOptions struct {
	// ContinuationToken resumes a prior query. The token is opaque and
	// must be passed back verbatim.
	ContinuationToken string
	// StartDate, when non-zero, limits results to activities with
	// timestamp >= StartDate.
	StartDate time.Time
}

// Store is the append-only transcript log shared by all backing engines.
type Store interface {
	// LogActivity appends one activity, flagging it as the conversation
	// start if no prior record is known for its conversation key.
	LogActivity(ctx context.Context, activity *Activity) error

	// GetTranscriptActivities returns activities for one conversation in
	// ascending timestamp order.
	GetTranscriptActivities(ctx context.Context, channelID, conversationID string, opts ActivityPageOptions) (PagedResult[Activity], error)

	// ListTranscripts returns distinct conversations for a channel,
	// collapsing duplicate start records down to the earliest one.
	ListTranscripts(ctx context.Context, channelID, continuationToken string) (PagedResult[Info], error)
}

// Deleter is the optional delete capability. Stores whose engine offers
// no delete primitive simply do not implement it; callers probe with
// Delete rather than discovering support through a runtime failure.
type Deleter interface {
	DeleteTranscript(ctx context.Context, channelID, conversationID string) error
}

// Delete removes every record of a conversation if the store supports
// deletion, and returns ErrDeleteUnsupported otherwise.
func Delete(ctx context.Context, store Store, channelID, conversationID string) error {
	d, ok := store.(Deleter)
	if !ok {
		return ErrDeleteUnsupported
	}
	return d.DeleteTranscript(ctx, channelID, conversationID)
}
