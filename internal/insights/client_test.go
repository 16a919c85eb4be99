package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpggio/scribe/internal/domain/transcript"
	"github.com/stretchr/testify/require"
)

func TestClient_TrackEventPostsEnvelope(t *testing.T) {
	var got trackEnvelope
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{
		InstrumentationKey: "ikey-123",
		IngestURL:          server.URL,
	})

	err := client.TrackEvent(context.Background(), Event{
		Name:       "activity",
		Properties: Properties{"channelId": "foo"},
	})
	require.NoError(t, err)

	require.Equal(t, "Microsoft.ApplicationInsights.Event", got.Name)
	require.Equal(t, "ikey-123", got.IKey)
	require.Equal(t, "EventData", got.Data.BaseType)
	require.Equal(t, "activity", got.Data.BaseData.Name)
	require.Equal(t, Properties{"channelId": "foo"}, got.Data.BaseData.Properties)
}

func TestClient_TrackEventSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{IngestURL: server.URL})
	err := client.TrackEvent(context.Background(), Event{Name: "activity"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
	require.Contains(t, err.Error(), "throttled")
}

func TestClient_CustomEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/apps/my-app/events/customEvents", r.URL.Path)
		require.Equal(t, "read-key", r.Header.Get("X-Api-Key"))
		require.Equal(t, "channelId eq 'foo'", r.URL.Query().Get("$filter"))
		require.Equal(t, "1", r.URL.Query().Get("$top"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":[{"customDimensions":{"channelId":"foo","$start":"true"}}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{
		ApplicationID: "my-app",
		APIKey:        "read-key",
		APIURL:        server.URL,
	})

	events, err := client.CustomEvents(context.Background(), EventsQuery{
		Filter: "channelId eq 'foo'",
		Top:    1,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, Properties{"channelId": "foo", "$start": "true"}, events[0])
}

func TestClient_CustomEventsRequiresReadCredentials(t *testing.T) {
	client := NewClient(ClientOptions{InstrumentationKey: "ikey-123"})

	_, err := client.CustomEvents(context.Background(), EventsQuery{})
	require.ErrorIs(t, err, transcript.ErrReadNotConfigured)
}

func TestClient_CustomEventsSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"Forbidden"}}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{
		ApplicationID: "my-app",
		APIKey:        "bad-key",
		APIURL:        server.URL,
	})

	_, err := client.CustomEvents(context.Background(), EventsQuery{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}
