package mcp

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/scribe/internal/domain/transcript"
	"github.com/rpggio/scribe/internal/domain/transcript/mocks"
	"github.com/rpggio/scribe/internal/sqlite"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := sqlite.NewTranscriptStore(db, sqlite.TranscriptStoreOptions{}, nil)
	return NewHandler(transcript.NewService(store, nil))
}

func TestHandler_LogAndReadBack(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, out, err := h.LogActivity(ctx, nil, LogActivityParams{
			ChannelID:      "web",
			ConversationID: "conv1",
			Type:           "message",
			Text:           fmt.Sprintf("m%d", i),
			Timestamp:      base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		})
		require.NoError(t, err)
		require.Equal(t, "logged", out.Status)
	}

	_, page, err := h.GetTranscriptActivities(ctx, nil, GetActivitiesParams{
		ChannelID:      "web",
		ConversationID: "conv1",
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	require.Equal(t, "m0", page.Items[0].Text)

	_, listing, err := h.ListTranscripts(ctx, nil, ListTranscriptsParams{ChannelID: "web"})
	require.NoError(t, err)
	require.Len(t, listing.Items, 1)
	require.Equal(t, "conv1", listing.Items[0].ID)
}

func TestHandler_StartDateFilter(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, _, err := h.LogActivity(ctx, nil, LogActivityParams{
			ChannelID:      "web",
			ConversationID: "conv1",
			Text:           fmt.Sprintf("m%d", i),
			Timestamp:      base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		})
		require.NoError(t, err)
	}

	_, page, err := h.GetTranscriptActivities(ctx, nil, GetActivitiesParams{
		ChannelID:      "web",
		ConversationID: "conv1",
		StartDate:      base.Add(time.Minute).Format(time.RFC3339),
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
}

func TestHandler_RejectsBadTimestamps(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	_, _, err := h.LogActivity(ctx, nil, LogActivityParams{
		ChannelID:      "web",
		ConversationID: "conv1",
		Timestamp:      "yesterday",
	})
	require.Error(t, err)

	_, _, err = h.GetTranscriptActivities(ctx, nil, GetActivitiesParams{
		ChannelID:      "web",
		ConversationID: "conv1",
		StartDate:      "yesterday",
	})
	require.Error(t, err)
}

func TestHandler_MapsDomainErrors(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	_, _, err := h.LogActivity(ctx, nil, LogActivityParams{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "INVALID_INPUT", apiErr.Code)

	_, _, err = h.ListTranscripts(ctx, nil, ListTranscriptsParams{
		ChannelID:         "web",
		ContinuationToken: "garbage",
	})
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "INVALID_CONTINUATION", apiErr.Code)
}

func TestHandler_DeleteTranscript(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	_, _, err := h.LogActivity(ctx, nil, LogActivityParams{
		ChannelID:      "web",
		ConversationID: "conv1",
		Text:           "hello",
	})
	require.NoError(t, err)

	_, out, err := h.DeleteTranscript(ctx, nil, DeleteTranscriptParams{
		ChannelID:      "web",
		ConversationID: "conv1",
	})
	require.NoError(t, err)
	require.Equal(t, "deleted", out.Status)

	_, page, err := h.GetTranscriptActivities(ctx, nil, GetActivitiesParams{
		ChannelID:      "web",
		ConversationID: "conv1",
	})
	require.NoError(t, err)
	require.Empty(t, page.Items)
}

func TestHandler_DeleteUnsupportedStore(t *testing.T) {
	h := NewHandler(transcript.NewService(&mocks.Store{}, nil))

	_, _, err := h.DeleteTranscript(context.Background(), nil, DeleteTranscriptParams{
		ChannelID:      "web",
		ConversationID: "conv1",
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "DELETE_UNSUPPORTED", apiErr.Code)
}
