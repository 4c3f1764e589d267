package cli

import (
	"github.com/brendan.keane/oauthhttp/internal/mcp"
	"github.com/brendan.keane/oauthhttp/internal/transport"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// MCPHandler handles MCP server commands
type MCPHandler struct {
	logger  zerolog.Logger
	factory *transport.Factory
}

// NewMCPHandler creates a new MCP command handler
func NewMCPHandler(logger zerolog.Logger) *MCPHandler {
	return &MCPHandler{
		logger:  logger.With().Str("handler", "mcp").Logger(),
		factory: transport.NewFactory(logger),
	}
}

// Server builds the MCP server for the command's configuration
func (h *MCPHandler) Server(cmd *cobra.Command) (*mcp.Server, error) {
	cfg, err := loadConfig(h.logger, cmd)
	if err != nil {
		return nil, err
	}

	tr, err := h.factory.Create(cmd.Context(), cfg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create transport for MCP server")
		return nil, err
	}

	h.logger.Debug().
		Str("backend", tr.Backend()).
		Bool("custom_description", cfg.MCP.Description != "").
		Msg("starting MCP server")

	return mcp.NewServer(h.logger, cfg, tr), nil
}

// Execute handles the MCP server command
func (h *MCPHandler) Execute(cmd *cobra.Command, args []string) error {
	server, err := h.Server(cmd)
	if err != nil {
		return err
	}
	return server.Start()
}
