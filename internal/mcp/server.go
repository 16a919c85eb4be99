package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/scribe/internal/domain/transcript"
)

const serverInstructions = `Scribe stores bot conversation transcripts.

Use log_activity to append activities as a conversation happens. Use
list_transcripts to discover conversations on a channel, then
get_transcript_activities to read one conversation in order. Pass
continuation tokens back verbatim to fetch the next page; an empty token
means the listing is complete.`

// Config contains server configuration.
type Config struct {
	Service *transcript.Service
	Logger  *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "scribe",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Service))

	return server
}

func registerTools(server *sdkmcp.Server, h *Handler) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "log_activity",
		Description: "Append one activity to a conversation transcript",
	}, h.LogActivity)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_transcripts",
		Description: "List conversations recorded for a channel, newest first",
	}, h.ListTranscripts)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_transcript_activities",
		Description: "Read one conversation's activities in ascending timestamp order",
	}, h.GetTranscriptActivities)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_transcript",
		Description: "Delete every stored record of a conversation",
	}, h.DeleteTranscript)
}
