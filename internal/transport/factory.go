package transport

import (
	"context"
	"net/http"

	"github.com/brendan.keane/oauthhttp/internal/command"
	"github.com/brendan.keane/oauthhttp/internal/config"
	lambdahttp "github.com/brendan.keane/oauthhttp/pkg/http"
	"github.com/rs/zerolog"
)

// New creates the Transport selected by cfg.Backend
func New(ctx context.Context, logger zerolog.Logger, cfg *config.Config) (Transport, error) {
	return NewFactory(logger).Create(ctx, cfg)
}

// Factory centralizes Transport creation with dependency injection support
type Factory struct {
	logger zerolog.Logger
}

// NewFactory creates a new transport factory
func NewFactory(logger zerolog.Logger) *Factory {
	return &Factory{
		logger: logger,
	}
}

// Create builds the Transport selected by cfg.Backend.
// This is the main entry point for all transport creation in the application
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := f.logger.With().Str("backend", cfg.Backend).Logger()

	switch cfg.Backend {
	case config.BackendCommand:
		logger.Debug().Int("max_command_length", cfg.MaxCommandLength).Msg("using command backend")
		return f.CreateCommand(cfg, command.NewRunner(f.logger)), nil

	default:
		httpClient := lambdahttp.NewClientWithHTTPClient(&http.Client{
			Transport: newBaseTransport(ctx, cfg, nil),
		})

		logger.Debug().
			Bool("sigv4", cfg.SigV4Enabled).
			Bool("oauth2", cfg.OAuth2.Enabled()).
			Msg("using native backend")
		return f.CreateNative(cfg, httpClient), nil
	}
}

// CreateNative creates a native Transport around the given HTTP client.
// This is useful for testing with mock HTTP clients
func (f *Factory) CreateNative(cfg *config.Config, httpClient HTTPClientProvider) Transport {
	var signer RequestSigner
	if cfg.SigV4Enabled {
		signer = NewSigV4Signer(f.logger, cfg.SigV4Service)
	}
	return NewNativeTransport(f.logger, httpClient, signer, cfg)
}

// CreateCommand creates a command Transport using cfg's template overrides
// and the given runner
func (f *Factory) CreateCommand(cfg *config.Config, runner CommandRunner) Transport {
	resolver := command.NewResolver(f.logger, cfg.Lookup(), cfg.UserAgent)
	return NewCommandTransport(f.logger, resolver, runner, cfg.MaxCommandLength)
}
