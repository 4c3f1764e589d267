package main

import (
	"os"

	"github.com/brendan.keane/oauthhttp/internal/cli"
	"github.com/brendan.keane/oauthhttp/internal/config"
	"github.com/brendan.keane/oauthhttp/internal/errors"
	"github.com/brendan.keane/oauthhttp/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	log := logger.SetupFromFlags(false, false)

	if err := newRootCmd(&log).Execute(); err != nil {
		errors.PresentError(log, err)
		log.Debug().Fields(errors.DebugInfo(err)).Msg("error details")
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. log is replaced once flags are parsed.
func newRootCmd(log *zerolog.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "oauthhttp",
		Short: "HTTP transport for OAuth flows",
		Long: `oauthhttp sends the HTTP requests of an OAuth flow and prints the raw response body.

Requests go through a Go HTTP client (--backend native) or through an external
command-line client (--backend command) configured with templates:

  OAUTH_HTTP_CMD      POST template with %u (URL) and %p (body) placeholders
  OAUTH_HTTP_GET_CMD  GET template with a %u placeholder

Templates are split into arguments and executed without a shell.`,
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			*log = logger.SetupFromFlags(cfg.Verbose, cfg.Debug)

			log.Debug().
				Str("command", cmd.Name()).
				Str("backend", cfg.Backend).
				Int("overrides", len(cfg.Overrides)).
				Msg("configuration loaded")

			cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
			return nil
		},
	}

	config.RegisterFlags(rootCmd.PersistentFlags())

	getCmd := &cobra.Command{
		Use:   "get URL [QUERY]",
		Short: "Send a GET request, appending QUERY after '?'",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.NewRequestHandler(*log).Get(cmd, args)
		},
	}

	postCmd := &cobra.Command{
		Use:   "post URL BODY",
		Short: "Send a form-encoded POST request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.NewRequestHandler(*log).Post(cmd, args)
		},
	}

	postFileCmd := &cobra.Command{
		Use:   "post-file URL FILE",
		Short: "Upload a file as the raw POST body (native backend)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.NewRequestHandler(*log).PostFile(cmd, args)
		},
	}
	postFileCmd.Flags().Int64("length", 0, "Bytes to send (default: file size)")
	postFileCmd.Flags().String("content-type", "", "Content type or full 'Name: value' header line (default image/jpeg)")

	templateCmd := &cobra.Command{
		Use:       "template get|post",
		Short:     "Show the command template a request kind resolves to",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"get", "post"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.NewTemplateHandler(*log).Execute(cmd, args)
		},
	}

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the transport as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.NewMCPHandler(*log).Execute(cmd, args)
		},
	}

	rootCmd.AddCommand(getCmd, postCmd, postFileCmd, templateCmd, mcpCmd)

	return rootCmd
}
