package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rpggio/scribe/internal/domain/transcript"
)

const (
	defaultIngestURL = "https://dc.services.visualstudio.com/v2/track"
	defaultAPIURL    = "https://api.applicationinsights.io/v1"
)

// Event is one telemetry item to be written.
type Event struct {
	Name       string
	Properties Properties
}

// EventTracker writes events to the analytics engine. Writes are
// append-only; the engine offers no delete primitive.
type EventTracker interface {
	TrackEvent(ctx context.Context, event Event) error
}

// EventsQuery selects custom events on the read path. The engine's read
// API accepts only textual filter expressions; values interpolated into
// Filter must go through quoteFilterValue.
type EventsQuery struct {
	Filter  string
	Select  string
	OrderBy string
	Top     int
}

// EventsReader reads custom events back from the analytics engine.
type EventsReader interface {
	CustomEvents(ctx context.Context, query EventsQuery) ([]Properties, error)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// InstrumentationKey authorizes writes.
	InstrumentationKey string
	// ApplicationID and APIKey authorize reads. Leave empty for a
	// write-only client; read operations then fail with
	// transcript.ErrReadNotConfigured.
	ApplicationID string
	APIKey        string
	// IngestURL and APIURL override the service endpoints, mainly for tests.
	IngestURL string
	APIURL    string
	// HTTPClient overrides the default http.Client.
	HTTPClient *http.Client
}

// Client talks to an Application-Insights-style telemetry service:
// fire-and-forget event ingestion plus a REST query API for custom
// events.
type Client struct {
	httpClient         *http.Client
	ingestURL          string
	apiURL             string
	instrumentationKey string
	appID              string
	apiKey             string
}

// NewClient creates a telemetry client.
func NewClient(opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	ingestURL := opts.IngestURL
	if ingestURL == "" {
		ingestURL = defaultIngestURL
	}
	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		httpClient:         httpClient,
		ingestURL:          ingestURL,
		apiURL:             apiURL,
		instrumentationKey: opts.InstrumentationKey,
		appID:              opts.ApplicationID,
		apiKey:             opts.APIKey,
	}
}

type trackEnvelope struct {
	Name string    `json:"name"`
	Time time.Time `json:"time"`
	IKey string    `json:"iKey"`
	Data struct {
		BaseType string `json:"baseType"`
		BaseData struct {
			Ver        int        `json:"ver"`
			Name       string     `json:"name"`
			Properties Properties `json:"properties"`
		} `json:"baseData"`
	} `json:"data"`
}

// TrackEvent posts one custom event to the ingestion endpoint.
func (c *Client) TrackEvent(ctx context.Context, event Event) error {
	envelope := trackEnvelope{
		Name: "Microsoft.ApplicationInsights.Event",
		Time: time.Now().UTC(),
		IKey: c.instrumentationKey,
	}
	envelope.Data.BaseType = "EventData"
	envelope.Data.BaseData.Ver = 2
	envelope.Data.BaseData.Name = event.Name
	envelope.Data.BaseData.Properties = event.Properties

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encoding telemetry event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ingestURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building telemetry request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting telemetry event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpStatusError(http.MethodPost, c.ingestURL, resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

type eventsResponse struct {
	Value []struct {
		CustomDimensions Properties `json:"customDimensions"`
	} `json:"value"`
}

// CustomEvents queries the read API for custom events matching the
// textual filter. Requires read credentials.
func (c *Client) CustomEvents(ctx context.Context, query EventsQuery) ([]Properties, error) {
	if c.appID == "" || c.apiKey == "" {
		return nil, fmt.Errorf("%w: application id and api key are required", transcript.ErrReadNotConfigured)
	}

	endpoint := fmt.Sprintf("%s/apps/%s/events/customEvents", c.apiURL, url.PathEscape(c.appID))
	params := url.Values{}
	if query.Filter != "" {
		params.Set("$filter", query.Filter)
	}
	if query.Select != "" {
		params.Set("$select", query.Select)
	}
	if query.OrderBy != "" {
		params.Set("$orderby", query.OrderBy)
	}
	if query.Top > 0 {
		params.Set("$top", strconv.Itoa(query.Top))
	}
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building events request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying custom events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpStatusError(http.MethodGet, endpoint, resp)
	}

	var decoded eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding events response: %w", err)
	}

	events := make([]Properties, 0, len(decoded.Value))
	for _, row := range decoded.Value {
		events = append(events, row.CustomDimensions)
	}
	return events, nil
}

func httpStatusError(method, endpoint string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("cannot %s %s (%d): %s", method, endpoint, resp.StatusCode, bytes.TrimSpace(body))
}
