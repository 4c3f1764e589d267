package cli

import (
	"github.com/brendan.keane/oauthhttp/internal/buffer"
	"github.com/brendan.keane/oauthhttp/internal/config"
	"github.com/brendan.keane/oauthhttp/internal/errors"
	"github.com/brendan.keane/oauthhttp/internal/transport"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RequestHandler handles the get, post and post-file commands
type RequestHandler struct {
	logger  zerolog.Logger
	factory *transport.Factory
}

// NewRequestHandler creates a new request command handler
func NewRequestHandler(logger zerolog.Logger) *RequestHandler {
	return &RequestHandler{
		logger:  logger.With().Str("handler", "request").Logger(),
		factory: transport.NewFactory(logger),
	}
}

// loadConfig returns the config stored on the command context, falling back
// to the command's flags
func loadConfig(logger zerolog.Logger, cmd *cobra.Command) (*config.Config, error) {
	if cfg, ok := config.FromContext(cmd.Context()); ok {
		return cfg, nil
	}

	cfg, err := config.LoadFromFlags(cmd.Flags())
	if err != nil {
		logger.Error().Err(err).Msg("failed to load configuration")
		return nil, err
	}
	return cfg, nil
}

func (h *RequestHandler) transportFor(cmd *cobra.Command) (transport.Transport, error) {
	cfg, err := loadConfig(h.logger, cmd)
	if err != nil {
		return nil, err
	}
	return h.factory.Create(cmd.Context(), cfg)
}

// Get handles `get URL [QUERY]`
func (h *RequestHandler) Get(cmd *cobra.Command, args []string) error {
	tr, err := h.transportFor(cmd)
	if err != nil {
		return err
	}

	query := ""
	if len(args) > 1 {
		query = args[1]
	}

	h.logger.Debug().
		Str("backend", tr.Backend()).
		Str("url", args[0]).
		Bool("has_query", query != "").
		Msg("processing GET command")

	buf, err := tr.Get(cmd.Context(), args[0], query)
	if err != nil {
		return err
	}
	return h.write(cmd, buf)
}

// Post handles `post URL BODY`
func (h *RequestHandler) Post(cmd *cobra.Command, args []string) error {
	tr, err := h.transportFor(cmd)
	if err != nil {
		return err
	}

	h.logger.Debug().
		Str("backend", tr.Backend()).
		Str("url", args[0]).
		Int("body_bytes", len(args[1])).
		Msg("processing POST command")

	buf, err := tr.Post(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	return h.write(cmd, buf)
}

// PostFile handles `post-file URL FILE [--length N] [--content-type HDR]`
func (h *RequestHandler) PostFile(cmd *cobra.Command, args []string) error {
	length, err := cmd.Flags().GetInt64("length")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to get length flag")
	}
	if length < 0 {
		return errors.New(errors.ErrorTypeValidation, "length must not be negative").
			WithContext("length", length)
	}

	contentType, err := cmd.Flags().GetString("content-type")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to get content-type flag")
	}

	tr, err := h.transportFor(cmd)
	if err != nil {
		return err
	}

	h.logger.Debug().
		Str("backend", tr.Backend()).
		Str("url", args[0]).
		Str("path", args[1]).
		Int64("length", length).
		Msg("processing POST file command")

	buf, err := tr.PostFile(cmd.Context(), args[0], args[1], length, contentType)
	if err != nil {
		return err
	}
	return h.write(cmd, buf)
}

// write copies the raw response body to the command output
func (h *RequestHandler) write(cmd *cobra.Command, buf *buffer.Buffer) error {
	if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write response")
	}
	return nil
}
