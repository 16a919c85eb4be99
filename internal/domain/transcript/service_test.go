package transcript_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/scribe/internal/domain/transcript"
	"github.com/rpggio/scribe/internal/domain/transcript/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_LogActivityValidatesInput(t *testing.T) {
	ctx := context.Background()
	store := &mocks.Store{}
	svc := transcript.NewService(store, nil)

	require.ErrorIs(t, svc.LogActivity(ctx, nil), transcript.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(ctx, &transcript.Activity{ChannelID: "test"}), transcript.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(ctx, &transcript.Activity{
		Conversation: transcript.ConversationAccount{ID: "conv1"},
	}), transcript.ErrInvalidInput)
	store.AssertNotCalled(t, "LogActivity")
}

func TestService_LogActivityStampsMissingTimestamp(t *testing.T) {
	ctx := context.Background()
	store := &mocks.Store{}
	store.On("LogActivity", ctx, mock.Anything).Return(nil)

	svc := transcript.NewService(store, nil)
	activity := &transcript.Activity{
		ChannelID:    "test",
		Conversation: transcript.ConversationAccount{ID: "conv1"},
	}
	require.NoError(t, svc.LogActivity(ctx, activity))
	require.False(t, activity.Timestamp.IsZero())
	store.AssertExpectations(t)
}

func TestService_GetTranscriptActivitiesDelegates(t *testing.T) {
	ctx := context.Background()
	store := &mocks.Store{}
	opts := transcript.ActivityPageOptions{StartDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	page := transcript.PagedResult[transcript.Activity]{
		Items: []transcript.Activity{{ChannelID: "test"}},
	}
	store.On("GetTranscriptActivities", ctx, "test", "conv1", opts).Return(page, nil)

	svc := transcript.NewService(store, nil)
	got, err := svc.GetTranscriptActivities(ctx, "test", "conv1", opts)
	require.NoError(t, err)
	require.Equal(t, page, got)

	_, err = svc.GetTranscriptActivities(ctx, "", "conv1", opts)
	require.ErrorIs(t, err, transcript.ErrInvalidInput)
}

func TestService_DeleteProbesCapability(t *testing.T) {
	ctx := context.Background()

	plain := &mocks.Store{}
	svc := transcript.NewService(plain, nil)
	require.ErrorIs(t, svc.DeleteTranscript(ctx, "test", "conv1"), transcript.ErrDeleteUnsupported)

	deletable := &mocks.DeletableStore{}
	deletable.On("DeleteTranscript", ctx, "test", "conv1").Return(nil)
	svc = transcript.NewService(deletable, nil)
	require.NoError(t, svc.DeleteTranscript(ctx, "test", "conv1"))
	deletable.AssertExpectations(t)
}

func TestActivityKey(t *testing.T) {
	a := &transcript.Activity{
		ChannelID:    "foo",
		Conversation: transcript.ConversationAccount{ID: "bar"},
	}
	require.Equal(t, "foobar", a.Key())
	require.Equal(t, "foobar", transcript.Info{ChannelID: "foo", ID: "bar"}.Key())
}
