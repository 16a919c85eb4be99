package mcp

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/scribe/internal/domain/transcript"
)

// Handler implements the MCP tools over the transcript service.
type Handler struct {
	svc *transcript.Service
}

// NewHandler creates a new MCP handler.
func NewHandler(svc *transcript.Service) *Handler {
	return &Handler{svc: svc}
}

// LogActivityParams are the inputs for the log_activity tool.
type LogActivityParams struct {
	ChannelID      string `json:"channel_id" jsonschema:"channel the conversation belongs to"`
	ConversationID string `json:"conversation_id" jsonschema:"conversation identifier"`
	ActivityID     string `json:"activity_id,omitempty" jsonschema:"activity identifier (generated when omitted)"`
	Type           string `json:"type,omitempty" jsonschema:"activity type, e.g. message"`
	Text           string `json:"text,omitempty" jsonschema:"message text"`
	FromID         string `json:"from_id,omitempty" jsonschema:"sender account id"`
	RecipientID    string `json:"recipient_id,omitempty" jsonschema:"recipient account id"`
	Timestamp      string `json:"timestamp,omitempty" jsonschema:"RFC 3339 timestamp (defaults to now)"`
	Locale         string `json:"locale,omitempty" jsonschema:"locale of the activity text"`
}

// LogActivityResult is the output of the log_activity tool.
type LogActivityResult struct {
	Status string `json:"status"`
}

func (h *Handler) LogActivity(ctx context.Context, req *sdkmcp.CallToolRequest, params LogActivityParams) (*sdkmcp.CallToolResult, LogActivityResult, error) {
	activity := &transcript.Activity{
		ID:           params.ActivityID,
		Type:         params.Type,
		ChannelID:    params.ChannelID,
		Conversation: transcript.ConversationAccount{ID: params.ConversationID},
		From:         transcript.ChannelAccount{ID: params.FromID},
		Recipient:    transcript.ChannelAccount{ID: params.RecipientID},
		Text:         params.Text,
		Locale:       params.Locale,
	}
	if params.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, params.Timestamp)
		if err != nil {
			return nil, LogActivityResult{}, fmt.Errorf("timestamp must be RFC 3339: %v", err)
		}
		activity.Timestamp = ts
	}

	if err := h.svc.LogActivity(ctx, activity); err != nil {
		return nil, LogActivityResult{}, mapError(err)
	}
	return nil, LogActivityResult{Status: "logged"}, nil
}

// ListTranscriptsParams are the inputs for the list_transcripts tool.
type ListTranscriptsParams struct {
	ChannelID         string `json:"channel_id" jsonschema:"channel to list conversations for"`
	ContinuationToken string `json:"continuation_token,omitempty" jsonschema:"opaque token from a previous page"`
}

func (h *Handler) ListTranscripts(ctx context.Context, req *sdkmcp.CallToolRequest, params ListTranscriptsParams) (*sdkmcp.CallToolResult, transcript.PagedResult[transcript.Info], error) {
	page, err := h.svc.ListTranscripts(ctx, params.ChannelID, params.ContinuationToken)
	if err != nil {
		return nil, transcript.PagedResult[transcript.Info]{}, mapError(err)
	}
	return nil, page, nil
}

// GetActivitiesParams are the inputs for the get_transcript_activities tool.
type GetActivitiesParams struct {
	ChannelID         string `json:"channel_id" jsonschema:"channel the conversation belongs to"`
	ConversationID    string `json:"conversation_id" jsonschema:"conversation identifier"`
	ContinuationToken string `json:"continuation_token,omitempty" jsonschema:"opaque token from a previous page"`
	StartDate         string `json:"start_date,omitempty" jsonschema:"RFC 3339 lower bound, inclusive"`
}

func (h *Handler) GetTranscriptActivities(ctx context.Context, req *sdkmcp.CallToolRequest, params GetActivitiesParams) (*sdkmcp.CallToolResult, transcript.PagedResult[transcript.Activity], error) {
	opts := transcript.ActivityPageOptions{ContinuationToken: params.ContinuationToken}
	if params.StartDate != "" {
		startDate, err := time.Parse(time.RFC3339, params.StartDate)
		if err != nil {
			return nil, transcript.PagedResult[transcript.Activity]{}, fmt.Errorf("start_date must be RFC 3339: %v", err)
		}
		opts.StartDate = startDate
	}

	page, err := h.svc.GetTranscriptActivities(ctx, params.ChannelID, params.ConversationID, opts)
	if err != nil {
		return nil, transcript.PagedResult[transcript.Activity]{}, mapError(err)
	}
	return nil, page, nil
}

// DeleteTranscriptParams are the inputs for the delete_transcript tool.
type DeleteTranscriptParams struct {
	ChannelID      string `json:"channel_id" jsonschema:"channel the conversation belongs to"`
	ConversationID string `json:"conversation_id" jsonschema:"conversation identifier"`
}

// DeleteTranscriptResult is the output of the delete_transcript tool.
type DeleteTranscriptResult struct {
	Status string `json:"status"`
}

func (h *Handler) DeleteTranscript(ctx context.Context, req *sdkmcp.CallToolRequest, params DeleteTranscriptParams) (*sdkmcp.CallToolResult, DeleteTranscriptResult, error) {
	if err := h.svc.DeleteTranscript(ctx, params.ChannelID, params.ConversationID); err != nil {
		return nil, DeleteTranscriptResult{}, mapError(err)
	}
	return nil, DeleteTranscriptResult{Status: "deleted"}, nil
}
