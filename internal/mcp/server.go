package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/brendan.keane/oauthhttp/internal/buffer"
	"github.com/brendan.keane/oauthhttp/internal/config"
	"github.com/brendan.keane/oauthhttp/internal/errors"
	applog "github.com/brendan.keane/oauthhttp/internal/logger"
	"github.com/brendan.keane/oauthhttp/internal/transport"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Tool names
const (
	ToolGet      = "http_get"
	ToolPost     = "http_post"
	ToolPostFile = "http_post_file"
)

const defaultInstructions = "Send HTTP requests through the configured oauthhttp backend. " +
	"Responses are returned verbatim; use the regex or jmespath arguments to reduce large bodies."

// Server exposes a Transport as MCP tools over stdio
type Server struct {
	logger    zerolog.Logger
	config    *config.Config
	transport transport.Transport
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server
func NewServer(logger zerolog.Logger, cfg *config.Config, tr transport.Transport) *Server {
	instructions := cfg.MCP.Description
	if instructions == "" {
		instructions = defaultInstructions
	}

	s := &Server{
		logger:    applog.ForComponent(logger, "mcp_server"),
		config:    cfg,
		transport: tr,
		mcpServer: server.NewMCPServer(
			"oauthhttp",
			config.Version,
			server.WithToolCapabilities(false),
			server.WithInstructions(instructions),
		),
	}

	s.mcpServer.AddTool(getTool(), s.handleGet)
	s.mcpServer.AddTool(postTool(), s.handlePost)
	s.mcpServer.AddTool(postFileTool(), s.handlePostFile)

	return s
}

// Start serves MCP requests on stdin/stdout until stdin closes
func (s *Server) Start() error {
	s.logger.Debug().
		Str("backend", s.transport.Backend()).
		Msg("MCP server started, reading from stdin")

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "MCP server stopped")
	}
	return nil
}

func filterOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("regex",
			mcp.Description("Return only the regions of the response around matches of this regular expression"),
		),
		mcp.WithNumber("context_lines",
			mcp.Description("Lines of context around each regex match (default 5)"),
		),
		mcp.WithString("jmespath",
			mcp.Description("JMESPath expression applied to a JSON response. Cannot be combined with regex"),
		),
	}
}

func getTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Send an HTTP GET request and return the response body"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute request URL"),
		),
		mcp.WithString("query",
			mcp.Description("Query string appended after '?', without the '?'"),
		),
	}
	return mcp.NewTool(ToolGet, append(opts, filterOptions()...)...)
}

func postTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Send a form-encoded HTTP POST request and return the response body"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute request URL"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Request body, usually application/x-www-form-urlencoded"),
		),
	}
	return mcp.NewTool(ToolPost, append(opts, filterOptions()...)...)
}

func postFileTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Upload a local file as the raw body of an HTTP POST request (native backend only)"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute request URL"),
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the file to upload"),
		),
		mcp.WithNumber("length",
			mcp.Description("Number of bytes to send. Defaults to the file size"),
		),
		mcp.WithString("content_type",
			mcp.Description("Content type or full 'Name: value' header line (default image/jpeg)"),
		),
	}
	return mcp.NewTool(ToolPostFile, append(opts, filterOptions()...)...)
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query := request.GetString("query", "")

	return s.execute(ctx, request, ToolGet, http.MethodGet, url, func(ctx context.Context) (*buffer.Buffer, error) {
		return s.transport.Get(ctx, url, query)
	})
}

func (s *Server) handlePost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := request.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.execute(ctx, request, ToolPost, http.MethodPost, url, func(ctx context.Context) (*buffer.Buffer, error) {
		return s.transport.Post(ctx, url, body)
	})
}

func (s *Server) handlePostFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	length := int64(request.GetFloat("length", 0))
	if length < 0 {
		return mcp.NewToolResultError("length must not be negative"), nil
	}
	contentType := request.GetString("content_type", "")

	return s.execute(ctx, request, ToolPostFile, http.MethodPost, url, func(ctx context.Context) (*buffer.Buffer, error) {
		return s.transport.PostFile(ctx, url, path, length, contentType)
	})
}

// execute runs one request and renders the body, filtered when asked.
// Request failures are reported as tool errors, not protocol errors.
func (s *Server) execute(ctx context.Context, request mcp.CallToolRequest, tool, method, url string, do func(context.Context) (*buffer.Buffer, error)) (*mcp.CallToolResult, error) {
	logger := applog.ForRequest(s.logger, s.transport.Backend(), method, url).With().
		Str("request_id", uuid.NewString()).
		Str("tool", tool).
		Logger()

	regex := strings.TrimSpace(request.GetString("regex", ""))
	jmesExpr := strings.TrimSpace(request.GetString("jmespath", ""))
	if regex != "" && jmesExpr != "" {
		return mcp.NewToolResultError("cannot use both regex and jmespath filters"), nil
	}

	startTime := time.Now()
	buf, err := do(ctx)
	if err != nil {
		logger.Error().Err(err).Str("error_type", string(errors.GetType(err))).Msg("HTTP request failed via MCP")
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}

	logger.Debug().
		Int("bytes", buf.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("HTTP request completed via MCP")

	body := buf.String()

	var filtered *FilterResult
	switch {
	case regex != "":
		contextLines := request.GetInt("context_lines", DefaultContextLines)
		filtered, err = filterRegex(logger, body, regex, contextLines)
	case jmesExpr != "":
		filtered, err = filterJMESPath(logger, body, jmesExpr)
	default:
		return mcp.NewToolResultText(body), nil
	}
	if err != nil {
		logger.Error().Err(err).Msg("response filter failed")
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}

	return filteredResult(filtered), nil
}

// filteredResult renders a filter result as text followed by its metadata
func filteredResult(filtered *FilterResult) *mcp.CallToolResult {
	meta, err := json.Marshal(filtered.Meta)
	if err != nil {
		return mcp.NewToolResultText(filtered.Content)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(filtered.Content),
			mcp.NewTextContent(string(meta)),
		},
	}
}
