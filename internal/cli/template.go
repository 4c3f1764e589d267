package cli

import (
	"fmt"

	"github.com/brendan.keane/oauthhttp/internal/command"
	"github.com/brendan.keane/oauthhttp/internal/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// TemplateHandler prints the command template a request kind resolves to
type TemplateHandler struct {
	logger zerolog.Logger
}

// NewTemplateHandler creates a new template command handler
func NewTemplateHandler(logger zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{
		logger: logger.With().Str("handler", "template").Logger(),
	}
}

// Execute handles `template get|post`
func (h *TemplateHandler) Execute(cmd *cobra.Command, args []string) error {
	var kind command.Kind
	switch args[0] {
	case "get", "GET":
		kind = command.KindGET
	case "post", "POST":
		kind = command.KindPOST
	default:
		return errors.Newf(errors.ErrorTypeValidation, "unknown request kind %q", args[0]).
			WithContext("suggestion", "use get or post")
	}

	cfg, err := loadConfig(h.logger, cmd)
	if err != nil {
		return err
	}

	resolver := command.NewResolver(h.logger, cfg.Lookup(), cfg.UserAgent)
	tpl, err := resolver.Resolve(kind)
	if err != nil {
		return err
	}

	body := sampleBody
	if kind == command.KindGET {
		body = ""
	}
	sample, err := command.Format(tpl, sampleURL, body, cfg.MaxCommandLength)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), renderTemplate(tpl, sample))
	return err
}
