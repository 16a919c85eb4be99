package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/scribe/internal/config"
	"github.com/rpggio/scribe/internal/domain/transcript"
	"github.com/rpggio/scribe/internal/httpapi"
	"github.com/rpggio/scribe/internal/insights"
	"github.com/rpggio/scribe/internal/mcp"
	"github.com/rpggio/scribe/internal/sqlite"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.MCP.Mode == "stdio" {
		logWriter = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	store, cleanup, err := buildStore(cfg, logger)
	if err != nil {
		logger.Error("failed to build transcript store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	svc := transcript.NewService(store, logger)

	mcpServer := mcp.NewServer(mcp.Config{
		Service: svc,
		Logger:  logger,
	})

	if cfg.MCP.Mode == "stdio" {
		runStdioMode(logger, mcpServer)
	} else {
		runHTTPMode(logger, svc, mcpServer, cfg.Server.Host, cfg.Server.Port)
	}
}

func buildStore(cfg config.Config, logger *slog.Logger) (transcript.Store, func(), error) {
	switch cfg.Store.Backend {
	case "sqlite":
		if err := ensureDBDir(cfg.Store.SQLite.Path); err != nil {
			return nil, nil, fmt.Errorf("preparing database path: %w", err)
		}
		db, err := sqlite.New(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		store := sqlite.NewTranscriptStore(db, sqlite.TranscriptStoreOptions{
			PageSize: cfg.Store.SQLite.PageSize,
		}, logger)
		return store, func() { db.Close() }, nil
	case "insights":
		client := insights.NewClient(insights.ClientOptions{
			InstrumentationKey: cfg.Store.Insights.InstrumentationKey,
			ApplicationID:      cfg.Store.Insights.ApplicationID,
			APIKey:             cfg.Store.Insights.APIKey,
			IngestURL:          cfg.Store.Insights.IngestURL,
			APIURL:             cfg.Store.Insights.APIURL,
		})
		return insights.NewStore(client, client, insights.StoreOptions{}, logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport")

	transport := &sdkmcp.StdioTransport{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	if err := mcpServer.Run(ctx, transport); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func runHTTPMode(logger *slog.Logger, svc *transcript.Service, mcpServer *sdkmcp.Server, host string, port int) {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := httpapi.NewRouter(svc, logger)
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/*", mcpHandler)

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
