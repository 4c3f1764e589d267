package transport

import (
	"context"
	"time"

	"github.com/brendan.keane/oauthhttp/internal/buffer"
	"github.com/brendan.keane/oauthhttp/internal/command"
	"github.com/brendan.keane/oauthhttp/internal/config"
	"github.com/brendan.keane/oauthhttp/internal/errors"
	applog "github.com/brendan.keane/oauthhttp/internal/logger"
	"github.com/rs/zerolog"
)

// commandTransport implements Transport by running a command-line HTTP client
type commandTransport struct {
	logger    zerolog.Logger
	resolver  TemplateResolver
	runner    CommandRunner
	maxLength int
}

// NewCommandTransport creates a Transport that formats and runs command templates
func NewCommandTransport(logger zerolog.Logger, resolver TemplateResolver, runner CommandRunner, maxLength int) Transport {
	return &commandTransport{
		logger:    applog.ForComponent(logger, "command_transport"),
		resolver:  resolver,
		runner:    runner,
		maxLength: maxLength,
	}
}

func (t *commandTransport) Backend() string {
	return config.BackendCommand
}

// Get runs the GET template with url and the optional query
func (t *commandTransport) Get(ctx context.Context, url, query string) (*buffer.Buffer, error) {
	return t.execute(ctx, command.KindGET, url, query)
}

// Post runs the POST template with url and body
func (t *commandTransport) Post(ctx context.Context, url, body string) (*buffer.Buffer, error) {
	return t.execute(ctx, command.KindPOST, url, body)
}

// PostFile has no command template equivalent
func (t *commandTransport) PostFile(ctx context.Context, url, path string, length int64, contentType string) (*buffer.Buffer, error) {
	t.logger.Error().
		Str("url", url).
		Str("path", path).
		Msg("file upload requires the native backend")
	return nil, errors.New(errors.ErrorTypeUnsupported, "file upload is not supported by the command backend").
		WithContext("backend", config.BackendCommand).
		WithContext("suggestion", "use --backend native")
}

func (t *commandTransport) execute(ctx context.Context, kind command.Kind, url, value string) (*buffer.Buffer, error) {
	logger := applog.ForRequest(t.logger, config.BackendCommand, kind.String(), url)

	tpl, err := t.resolver.Resolve(kind)
	if err != nil {
		return nil, err
	}

	cmd, err := command.Format(tpl, url, value, t.maxLength)
	if err != nil {
		logger.Error().Err(err).Msg("failed to format HTTP command")
		return nil, err
	}

	startTime := time.Now()
	buf, err := t.runner.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("template_source", tpl.Source).
		Int("bytes", buf.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("HTTP command request completed")

	return buf, nil
}
