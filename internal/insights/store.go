package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/scribe/internal/domain/transcript"
)

const activityEventName = "activity"

// StoreOptions configures a Store.
type StoreOptions struct {
	// CacheLimit bounds the seen-conversation key cache.
	CacheLimit int
}

// Store implements transcript.Store over an analytics event engine.
// Events are append-only: the engine cannot delete individual records,
// so the store deliberately does not implement transcript.Deleter.
type Store struct {
	tracker EventTracker
	reader  EventsReader
	seen    *transcript.KeySet
	logger  *slog.Logger
}

// NewStore creates a transcript store writing through tracker and reading
// through reader. A Client satisfies both.
func NewStore(tracker EventTracker, reader EventsReader, opts StoreOptions, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		tracker: tracker,
		reader:  reader,
		seen:    transcript.NewKeySet(opts.CacheLimit),
		logger:  logger,
	}
}

// LogActivity serializes the activity to flat properties, promotes the
// queryable fields, and tracks one event. On first sight of a
// conversation the read API is point-queried for an existing start
// record; without read credentials the local cache alone decides, which
// can re-flag a conversation start after a restart.
func (s *Store) LogActivity(ctx context.Context, activity *transcript.Activity) error {
	start := false
	if !s.seen.Seen(activity.Key()) {
		exists, err := s.conversationStarted(ctx, activity.ChannelID, activity.Conversation.ID)
		if errors.Is(err, transcript.ErrReadNotConfigured) {
			exists = false
		} else if err != nil {
			return err
		}
		start = !exists
	}

	fields, err := activityFields(activity)
	if err != nil {
		return err
	}
	props := Serialize(fields, s.logger)
	SerializeMetadata(props, map[string]string{
		"conversationId": activity.Conversation.ID,
		"fromId":         activity.From.ID,
		"recipientId":    activity.Recipient.ID,
		"timestamp":      activity.Timestamp.UTC().Format(time.RFC3339Nano),
		"start":          strconv.FormatBool(start),
	})

	if err := s.tracker.TrackEvent(ctx, Event{Name: activityEventName, Properties: props}); err != nil {
		return fmt.Errorf("tracking activity event: %w", err)
	}
	return nil
}

// GetTranscriptActivities returns a conversation's activities in
// ascending timestamp order. The engine paginates internally; no
// continuation token is ever returned.
func (s *Store) GetTranscriptActivities(ctx context.Context, channelID, conversationID string, opts transcript.ActivityPageOptions) (transcript.PagedResult[transcript.Activity], error) {
	var page transcript.PagedResult[transcript.Activity]

	filters := []string{
		"channelId eq " + quoteFilterValue(channelID),
		"$conversationId eq " + quoteFilterValue(conversationID),
	}
	if !opts.StartDate.IsZero() {
		filters = append(filters, "$timestamp ge "+quoteFilterValue(opts.StartDate.UTC().Format(time.RFC3339Nano)))
	}

	events, err := s.reader.CustomEvents(ctx, EventsQuery{
		Filter:  strings.Join(filters, " and "),
		OrderBy: "$timestamp asc",
	})
	if err != nil {
		return page, err
	}

	page.Items = make([]transcript.Activity, 0, len(events))
	for _, props := range events {
		activity, err := decodeActivity(props)
		if err != nil {
			return transcript.PagedResult[transcript.Activity]{}, err
		}
		page.Items = append(page.Items, *activity)
	}
	return page, nil
}

// ListTranscripts returns distinct conversations for a channel, keeping
// the earliest start record per conversation key.
func (s *Store) ListTranscripts(ctx context.Context, channelID, continuationToken string) (transcript.PagedResult[transcript.Info], error) {
	var page transcript.PagedResult[transcript.Info]

	filter := strings.Join([]string{
		"channelId eq " + quoteFilterValue(channelID),
		"$start eq 'true'",
	}, " and ")

	events, err := s.reader.CustomEvents(ctx, EventsQuery{
		Filter:  filter,
		Select:  "channelId,$conversationId,$timestamp",
		OrderBy: "$timestamp desc",
	})
	if err != nil {
		return page, err
	}

	index := make(map[string]int)
	page.Items = make([]transcript.Info, 0, len(events))
	for _, props := range events {
		created, err := time.Parse(time.RFC3339Nano, props[metaPrefix+"timestamp"])
		if err != nil {
			return transcript.PagedResult[transcript.Info]{}, fmt.Errorf("parsing start record timestamp: %w", err)
		}
		info := transcript.Info{
			ChannelID: props["channelId"],
			ID:        props[metaPrefix+"conversationId"],
			Created:   created.UTC(),
		}
		if at, ok := index[info.Key()]; ok {
			if info.Created.Before(page.Items[at].Created) {
				page.Items[at] = info
			}
			continue
		}
		index[info.Key()] = len(page.Items)
		page.Items = append(page.Items, info)
	}
	return page, nil
}

func (s *Store) conversationStarted(ctx context.Context, channelID, conversationID string) (bool, error) {
	filter := strings.Join([]string{
		"channelId eq " + quoteFilterValue(channelID),
		"$conversationId eq " + quoteFilterValue(conversationID),
		"$start eq 'true'",
	}, " and ")

	events, err := s.reader.CustomEvents(ctx, EventsQuery{Filter: filter, Top: 1})
	if err != nil {
		return false, err
	}
	return len(events) > 0, nil
}

// quoteFilterValue wraps a value for interpolation into a textual filter,
// doubling embedded single quotes.
func quoteFilterValue(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func activityFields(activity *transcript.Activity) (map[string]any, error) {
	encoded, err := json.Marshal(activity)
	if err != nil {
		return nil, fmt.Errorf("encoding activity: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, fmt.Errorf("decoding activity fields: %w", err)
	}
	return fields, nil
}

func decodeActivity(props Properties) (*transcript.Activity, error) {
	fields, err := Deserialize(props)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding activity fields: %w", err)
	}
	var activity transcript.Activity
	if err := json.Unmarshal(encoded, &activity); err != nil {
		return nil, fmt.Errorf("decoding activity: %w", err)
	}
	return &activity, nil
}
