package mocks

import (
	"context"

	"github.com/rpggio/scribe/internal/domain/transcript"
	"github.com/stretchr/testify/mock"
)

// Store is a mock for transcript.Store.
type Store struct {
	mock.Mock
}

func (m *Store) LogActivity(ctx context.Context, activity *transcript.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *Store) GetTranscriptActivities(ctx context.Context, channelID, conversationID string, opts transcript.ActivityPageOptions) (transcript.PagedResult[transcript.Activity], error) {
	args := m.Called(ctx, channelID, conversationID, opts)
	if page, ok := args.Get(0).(transcript.PagedResult[transcript.Activity]); ok {
		return page, args.Error(1)
	}
	return transcript.PagedResult[transcript.Activity]{}, args.Error(1)
}

func (m *Store) ListTranscripts(ctx context.Context, channelID, continuationToken string) (transcript.PagedResult[transcript.Info], error) {
	args := m.Called(ctx, channelID, continuationToken)
	if page, ok := args.Get(0).(transcript.PagedResult[transcript.Info]); ok {
		return page, args.Error(1)
	}
	return transcript.PagedResult[transcript.Info]{}, args.Error(1)
}

// DeletableStore is a mock for a transcript.Store that also implements
// transcript.Deleter.
type DeletableStore struct {
	Store
}

func (m *DeletableStore) DeleteTranscript(ctx context.Context, channelID, conversationID string) error {
	args := m.Called(ctx, channelID, conversationID)
	return args.Error(0)
}
