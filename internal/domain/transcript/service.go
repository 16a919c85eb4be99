package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service validates input and delegates to a Store. Transports talk to
// the service, not to store implementations directly.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a transcript service over the given store.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// LogActivity appends one activity, stamping a missing timestamp with the
// current time.
func (s *Service) LogActivity(ctx context.Context, activity *Activity) error {
	if activity == nil {
		return fmt.Errorf("%w: activity is required", ErrInvalidInput)
	}
	if activity.ChannelID == "" || activity.Conversation.ID == "" {
		return fmt.Errorf("%w: activity channel and conversation ids are required", ErrInvalidInput)
	}
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now().UTC()
	}
	if err := s.store.LogActivity(ctx, activity); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	s.logger.Debug("activity logged",
		"channel_id", activity.ChannelID,
		"conversation_id", activity.Conversation.ID,
		"type", activity.Type)
	return nil
}

// GetTranscriptActivities returns one page of a conversation's activities
// in ascending timestamp order.
func (s *Service) GetTranscriptActivities(ctx context.Context, channelID, conversationID string, opts ActivityPageOptions) (PagedResult[Activity], error) {
	if channelID == "" || conversationID == "" {
		return PagedResult[Activity]{}, fmt.Errorf("%w: channel and conversation ids are required", ErrInvalidInput)
	}
	return s.store.GetTranscriptActivities(ctx, channelID, conversationID, opts)
}

// ListTranscripts returns one page of distinct conversations for a channel.
func (s *Service) ListTranscripts(ctx context.Context, channelID, continuationToken string) (PagedResult[Info], error) {
	if channelID == "" {
		return PagedResult[Info]{}, fmt.Errorf("%w: channel id is required", ErrInvalidInput)
	}
	return s.store.ListTranscripts(ctx, channelID, continuationToken)
}

// DeleteTranscript removes every record of a conversation, failing with
// ErrDeleteUnsupported when the backing store cannot delete.
func (s *Service) DeleteTranscript(ctx context.Context, channelID, conversationID string) error {
	if channelID == "" || conversationID == "" {
		return fmt.Errorf("%w: channel and conversation ids are required", ErrInvalidInput)
	}
	if err := Delete(ctx, s.store, channelID, conversationID); err != nil {
		return err
	}
	s.logger.Info("transcript deleted", "channel_id", channelID, "conversation_id", conversationID)
	return nil
}
