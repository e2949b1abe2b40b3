// Package mcpserver exposes the error digest as a Model Context Protocol tool
// over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"b2ctail/internal/digest"
	"b2ctail/internal/logging"
)

// Name is the advertised server name.
const Name = "b2ctail"

// ToolGetErrorLogs is the name of the digest tool.
const ToolGetErrorLogs = "get-error-logs"

// Version is reported to clients.
var Version = "dev"

// ErrorLogsService produces digests.
type ErrorLogsService interface {
	ErrorLogs(ctx context.Context, req digest.Request) digest.Response
}

// Server wraps the MCP server and its tool handlers.
type Server struct {
	mcp     *server.MCPServer
	service ErrorLogsService
	logger  *slog.Logger
}

// New registers the tools and returns a ready server.
func New(service ErrorLogsService, logger *slog.Logger) *Server {
	s := &Server{
		service: service,
		logger:  logging.NewComponentLogger(logger, "mcp"),
	}
	s.mcp = server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.mcp.AddTool(errorLogsTool(), s.handleErrorLogs)
	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve speaks the protocol on in/out until ctx is done or in is closed.
// Diagnostics go to the structured logger, never to out.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(logWriter{s.logger}, "", 0))
	s.logger.Info("mcp server listening on stdio", logging.String("version", Version))
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

func errorLogsTool() mcp.Tool {
	return mcp.NewTool(ToolGetErrorLogs,
		mcp.WithDescription("Fetch recent error logs from the instance"),
		mcp.WithNumber("maxEntries",
			mcp.Description("Maximum number of log entries to return (default: 5)"),
			mcp.DefaultNumber(digest.DefaultMaxEntries),
		),
		mcp.WithArray("filters",
			mcp.Description(`Log file prefixes to filter (default: ["error-", "customerror-"])`),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithBoolean("includeAllLogs",
			mcp.Description("Include all logs, not just those with local project paths (default: false)"),
			mcp.DefaultBool(false),
		),
	)
}

func (s *Server) handleErrorLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	digestReq := digest.Request{
		MaxEntries:     int(req.GetFloat("maxEntries", digest.DefaultMaxEntries)),
		Filters:        req.GetStringSlice("filters", nil),
		IncludeAllLogs: req.GetBool("includeAllLogs", false),
	}
	s.logger.Debug("get-error-logs called",
		logging.Int("max_entries", digestReq.MaxEntries),
		logging.Int("filters", len(digestReq.Filters)),
		logging.Bool("include_all_logs", digestReq.IncludeAllLogs),
	)
	resp := s.service.ErrorLogs(ctx, digestReq)
	body, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode digest: %w", err)
	}
	return mcp.NewToolResultText(string(body)), nil
}

type logWriter struct {
	logger *slog.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.logger.Warn("mcp transport", logging.String("detail", string(trimNewline(p))))
	return len(p), nil
}

func trimNewline(p []byte) []byte {
	for len(p) > 0 && (p[len(p)-1] == '\n' || p[len(p)-1] == '\r') {
		p = p[:len(p)-1]
	}
	return p
}
