package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/scribe/internal/domain/transcript"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, transcript.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check channel_id and conversation_id"}
	case errors.Is(err, transcript.ErrInvalidContinuation):
		return &APIError{Code: "INVALID_CONTINUATION", Message: "continuation token could not be decoded", RecoveryHint: "Pass the token from the previous page verbatim, or omit it"}
	case errors.Is(err, transcript.ErrDeleteUnsupported):
		return &APIError{Code: "DELETE_UNSUPPORTED", Message: "this store cannot delete transcripts"}
	case errors.Is(err, transcript.ErrReadNotConfigured):
		return &APIError{Code: "READ_NOT_CONFIGURED", Message: "store has no read credentials configured", RecoveryHint: "Configure the application id and API key"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
