package testutil

import (
	"github.com/brendan.keane/oauthhttp/internal/command"
	"github.com/brendan.keane/oauthhttp/internal/config"
)

// ConfigBuilder provides a fluent interface for building test configurations
type ConfigBuilder struct {
	config *config.Config
}

// NewConfigBuilder creates a new config builder with the library defaults
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: config.NewConfig()}
}

// WithBackend sets the transport backend
func (b *ConfigBuilder) WithBackend(backend string) *ConfigBuilder {
	b.config.Backend = backend
	return b
}

// WithGetCommand overrides the GET command template
func (b *ConfigBuilder) WithGetCommand(raw string) *ConfigBuilder {
	b.config.Overrides[command.EnvGetCommand] = raw
	return b
}

// WithPostCommand overrides the POST command template
func (b *ConfigBuilder) WithPostCommand(raw string) *ConfigBuilder {
	b.config.Overrides[command.EnvPostCommand] = raw
	return b
}

// WithMaxCommandLength sets the formatted command limit
func (b *ConfigBuilder) WithMaxCommandLength(n int) *ConfigBuilder {
	b.config.MaxCommandLength = n
	return b
}

// WithUserAgent sets the user agent
func (b *ConfigBuilder) WithUserAgent(ua string) *ConfigBuilder {
	b.config.UserAgent = ua
	return b
}

// WithSigV4 enables SigV4 signing for service
func (b *ConfigBuilder) WithSigV4(service string) *ConfigBuilder {
	b.config.SigV4Enabled = true
	b.config.SigV4Service = service
	return b
}

// WithOAuth2 enables client-credentials bearer tokens
func (b *ConfigBuilder) WithOAuth2(tokenURL, clientID, clientSecret string, scopes ...string) *ConfigBuilder {
	b.config.OAuth2 = config.OAuth2Config{
		TokenURL:     tokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       scopes,
	}
	return b
}

// WithMCPDescription sets the MCP server instructions
func (b *ConfigBuilder) WithMCPDescription(desc string) *ConfigBuilder {
	b.config.MCP.Description = desc
	return b
}

// Build returns the built configuration
func (b *ConfigBuilder) Build() *config.Config {
	return b.config
}
